package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/courts/api/transport"
	"github.com/fastygo/courts/pkg/httpcontext"
	"github.com/fastygo/courts/usecase/availability"
)

type ScheduleHandler struct {
	baseHandler
	engine   *availability.Engine
	clock    availability.Clock
	timezone string
}

func NewScheduleHandler(engine *availability.Engine, clock availability.Clock, timezone string, adapter *httpcontext.Adapter, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
		clock:       clock,
		timezone:    timezone,
	}
}

// @Summary Slot and court enumerations
// @Tags schedule
// @Router /api/v1/config [get]
func (h *ScheduleHandler) Config(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.ScheduleConfig{
		Slots:    h.engine.Slots(),
		Courts:   h.engine.Resources(),
		Today:    h.clock.Today(),
		Timezone: h.timezone,
	})
}

// @Summary Slot table of one day
// @Tags schedule
// @Router /api/v1/schedule/{date} [get]
func (h *ScheduleHandler) Grid(ctx *fasthttp.RequestCtx) {
	date, _ := ctx.UserValue("date").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	grid, err := h.engine.SlotTable(stdCtx, date)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, grid)
}

// @Summary Free slots of one court
// @Tags schedule
// @Router /api/v1/schedule/{date}/available [get]
func (h *ScheduleHandler) Available(ctx *fasthttp.RequestCtx) {
	date, _ := ctx.UserValue("date").(string)
	resource := string(ctx.QueryArgs().Peek("resource"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	slots, err := h.engine.AvailableSlots(stdCtx, date, resource)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.AvailableSlots{Date: date, ResourceID: resource, Slots: slots})
}

// @Summary Check a single slot
// @Tags schedule
// @Router /api/v1/schedule/{date}/check [get]
func (h *ScheduleHandler) Check(ctx *fasthttp.RequestCtx) {
	date, _ := ctx.UserValue("date").(string)
	args := ctx.QueryArgs()

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	check, err := h.engine.CheckSlot(stdCtx, date, string(args.Peek("resource")), string(args.Peek("slot")))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, check)
}
