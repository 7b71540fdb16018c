package components

import (
	"solestore/internal/handler"
	"solestore/internal/handler/api"
	"solestore/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewProductHandler,
		api.NewCartHandler,
		api.NewOrderHandler,
		api.NewDiscountHandler,
		api.NewAdminOrderHandler,
		middleware.NewAuthMiddleware,
		middleware.NewServerMetrics,
		newHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func newHandlers(
	auth *api.AuthHandler,
	product *api.ProductHandler,
	cart *api.CartHandler,
	order *api.OrderHandler,
	discount *api.DiscountHandler,
	admin *api.AdminOrderHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:     auth,
		Product:  product,
		Cart:     cart,
		Order:    order,
		Discount: discount,
		Admin:    admin,
	}
}
