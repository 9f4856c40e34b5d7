package router

import (
	"fmt"
	"net/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/courts/api/handler"
)

type Handlers struct {
	Auth        *apiHandler.AuthHandler
	Reservation *apiHandler.ReservationHandler
	Schedule    *apiHandler.ScheduleHandler
	Customer    *apiHandler.CustomerHandler
	Catalog     *apiHandler.CatalogHandler
	Health      *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, logger *zap.Logger) *router.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := router.New()
	r.PanicHandler = func(ctx *fasthttp.RequestCtx, recovered interface{}) {
		logger.Error("handler panic",
			zap.String("path", string(ctx.Path())),
			zap.String("panic", fmt.Sprint(recovered)))
		ctx.Error(`{"status":"error","code":"INTERNAL","error":"internal error"}`, http.StatusInternalServerError)
		ctx.Response.Header.SetContentType("application/json")
	}

	r.GET("/health", handlers.Health.Check)

	v1 := r.Group("/api/v1")
	v1.GET("/config", handlers.Schedule.Config)

	// Auth routes
	v1.POST("/auth/login", handlers.Auth.Login)
	v1.POST("/auth/refresh", handlers.Auth.Refresh)
	v1.POST("/auth/logout", handlers.Auth.Logout)

	// Protected routes
	v1.POST("/reservations", authMiddleware(handlers.Reservation.Create))
	v1.GET("/reservations", authMiddleware(handlers.Reservation.List))
	v1.GET("/reservations/{id}", authMiddleware(handlers.Reservation.Get))
	v1.PUT("/reservations/{id}", authMiddleware(handlers.Reservation.Rename))
	v1.POST("/reservations/{id}/cancel", authMiddleware(handlers.Reservation.Cancel))

	v1.GET("/schedule/{date}", authMiddleware(handlers.Schedule.Grid))
	v1.GET("/schedule/{date}/available", authMiddleware(handlers.Schedule.Available))
	v1.GET("/schedule/{date}/check", authMiddleware(handlers.Schedule.Check))

	v1.GET("/customers", authMiddleware(handlers.Customer.List))
	v1.POST("/customers", authMiddleware(handlers.Customer.Create))
	v1.GET("/customers/{id}", authMiddleware(handlers.Customer.Get))
	v1.PUT("/customers/{id}", authMiddleware(handlers.Customer.Update))
	v1.DELETE("/customers/{id}", authMiddleware(handlers.Customer.Delete))

	v1.GET("/products", authMiddleware(handlers.Catalog.ListProducts))
	v1.POST("/products", authMiddleware(handlers.Catalog.CreateProduct))
	v1.GET("/products/{id}", authMiddleware(handlers.Catalog.GetProduct))
	v1.PUT("/products/{id}", authMiddleware(handlers.Catalog.UpdateProduct))
	v1.DELETE("/products/{id}", authMiddleware(handlers.Catalog.DeleteProduct))

	v1.GET("/purchases", authMiddleware(handlers.Catalog.ListPurchases))
	v1.POST("/purchases", authMiddleware(handlers.Catalog.CreatePurchase))
	v1.PUT("/purchases/{id}/pay", authMiddleware(handlers.Catalog.MarkPaid))

	return r
}
