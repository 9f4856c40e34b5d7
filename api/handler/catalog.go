package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/courts/api/transport"
	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/pkg/httpcontext"
	"github.com/fastygo/courts/repository"
	catalogUC "github.com/fastygo/courts/usecase/catalog"
)

type CatalogHandler struct {
	baseHandler
	uc *catalogUC.UseCase
}

func NewCatalogHandler(uc *catalogUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List products
// @Tags products
// @Router /api/v1/products [get]
func (h *CatalogHandler) ListProducts(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.ListProducts(stdCtx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	if out == nil {
		out = []domain.Product{}
	}
	h.respondList(ctx, out, transport.ListMeta{Count: len(out)})
}

// @Summary Get product
// @Tags products
// @Router /api/v1/products/{id} [get]
func (h *CatalogHandler) GetProduct(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	p, err := h.uc.GetProduct(stdCtx, id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, p)
}

// @Summary Create product
// @Tags products
// @Router /api/v1/products [post]
func (h *CatalogHandler) CreateProduct(ctx *fasthttp.RequestCtx) {
	var req transport.ProductRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	p, err := h.uc.CreateProduct(stdCtx, catalogUC.ProductInput(req))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, p)
}

// @Summary Update product
// @Tags products
// @Router /api/v1/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req transport.ProductRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	p, err := h.uc.UpdateProduct(stdCtx, id, catalogUC.ProductInput(req))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, p)
}

// @Summary Delete product
// @Tags products
// @Router /api/v1/products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteProduct(stdCtx, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondNoContent(ctx)
}

// @Summary List purchases
// @Tags purchases
// @Router /api/v1/purchases [get]
func (h *CatalogHandler) ListPurchases(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	filter := repository.PurchaseFilter{
		CustomerID: parseInt64(string(args.Peek("customer_id"))),
		UnpaidOnly: args.GetBool("unpaid"),
		Limit:      repository.PageLimit(parseInt(string(args.Peek("limit")), repository.MaxPageSize)),
		Offset:     parseInt(string(args.Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.ListPurchases(stdCtx, filter)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	if out == nil {
		out = []domain.Purchase{}
	}
	h.respondList(ctx, out, transport.ListMeta{Count: len(out), Limit: filter.Limit, Offset: filter.Offset})
}

// @Summary Record purchase
// @Tags purchases
// @Router /api/v1/purchases [post]
func (h *CatalogHandler) CreatePurchase(ctx *fasthttp.RequestCtx) {
	var req transport.PurchaseRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	p, err := h.uc.CreatePurchase(stdCtx, catalogUC.PurchaseInput(req))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, p)
}

// @Summary Settle purchase
// @Tags purchases
// @Router /api/v1/purchases/{id}/pay [put]
func (h *CatalogHandler) MarkPaid(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	p, err := h.uc.MarkPaid(stdCtx, id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, p)
}
