package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/courts/api/transport"
	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/pkg/httpcontext"
	customerUC "github.com/fastygo/courts/usecase/customer"
)

type CustomerHandler struct {
	baseHandler
	uc *customerUC.UseCase
}

func NewCustomerHandler(uc *customerUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List customers
// @Tags customers
// @Router /api/v1/customers [get]
func (h *CustomerHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	if out == nil {
		out = []domain.Customer{}
	}
	h.respondList(ctx, out, transport.ListMeta{Count: len(out)})
}

// @Summary Get customer
// @Tags customers
// @Router /api/v1/customers/{id} [get]
func (h *CustomerHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	c, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, c)
}

// @Summary Create customer
// @Tags customers
// @Router /api/v1/customers [post]
func (h *CustomerHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.CustomerRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	c, err := h.uc.Create(stdCtx, customerInput(req))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, c)
}

// @Summary Update customer
// @Tags customers
// @Router /api/v1/customers/{id} [put]
func (h *CustomerHandler) Update(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req transport.CustomerRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	c, err := h.uc.Update(stdCtx, id, customerInput(req))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, c)
}

// @Summary Delete customer
// @Tags customers
// @Router /api/v1/customers/{id} [delete]
func (h *CustomerHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondNoContent(ctx)
}

func customerInput(req transport.CustomerRequest) customerUC.Input {
	return customerUC.Input{
		Name:     req.Name,
		LastName: req.LastName,
		Phone:    req.Phone,
		Email:    req.Email,
	}
}
