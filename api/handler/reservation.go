package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/courts/api/transport"
	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/pkg/httpcontext"
	"github.com/fastygo/courts/repository"
	"github.com/fastygo/courts/usecase/availability"
)

type ReservationHandler struct {
	baseHandler
	engine *availability.Engine
}

func NewReservationHandler(engine *availability.Engine, adapter *httpcontext.Adapter, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
	}
}

// @Summary Book a court slot
// @Tags reservations
// @Router /api/v1/reservations [post]
func (h *ReservationHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.ReservationRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.engine.Reserve(stdCtx, availability.ReserveRequest{
		ResourceID: req.ResourceID,
		Date:       req.Date,
		Slot:       req.Slot,
		Label:      req.Label,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, res)
}

// @Summary List reservations
// @Tags reservations
// @Router /api/v1/reservations [get]
func (h *ReservationHandler) List(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	filter := repository.ReservationFilter{
		Date:       string(args.Peek("date")),
		ResourceID: string(args.Peek("resource")),
		Status:     domain.ReservationStatus(args.Peek("status")),
		CustomerID: parseInt64(string(args.Peek("customer_id"))),
		Limit:      repository.PageLimit(parseInt(string(args.Peek("limit")), repository.MaxPageSize)),
		Offset:     parseInt(string(args.Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.engine.List(stdCtx, filter)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	if out == nil {
		out = []domain.Reservation{}
	}
	h.respondList(ctx, out, transport.ListMeta{Count: len(out), Limit: filter.Limit, Offset: filter.Offset})
}

// @Summary Get reservation
// @Tags reservations
// @Router /api/v1/reservations/{id} [get]
func (h *ReservationHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.engine.Get(stdCtx, id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, res)
}

// @Summary Rename reservation
// @Tags reservations
// @Router /api/v1/reservations/{id} [put]
func (h *ReservationHandler) Rename(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req transport.RenameRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.engine.Rename(stdCtx, id, req.Label)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, res)
}

// @Summary Cancel reservation
// @Tags reservations
// @Router /api/v1/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.engine.Cancel(stdCtx, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondNoContent(ctx)
}
