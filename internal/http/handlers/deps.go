package handlers

import (
	"github.com/jmoiron/sqlx"

	"shopmart/internal/config"
	"shopmart/internal/repos"
	"shopmart/internal/services"
)

type Deps struct {
	AuthHandler    *AuthHandler
	ShopHandler    *ShopHandler
	CartHandler    *CartHandler
	PaymentHandler *PaymentHandler
	OrderHandler   *OrderHandler
	AdminHandler   *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	checkoutSvc := services.NewCheckoutService(db, cartRepo, prodRepo, orderRepo)
	orderSvc := services.NewOrderService(orderRepo)

	return &Deps{
		AuthHandler:    &AuthHandler{Auth: auth},
		ShopHandler:    &ShopHandler{Catalog: catalogSvc, Cart: cartSvc, MediaDir: cfg.MediaDir},
		CartHandler:    &CartHandler{Cart: cartSvc, Checkout: checkoutSvc},
		PaymentHandler: &PaymentHandler{Checkout: checkoutSvc, Orders: orderSvc},
		OrderHandler:   &OrderHandler{Orders: orderSvc},
		AdminHandler: &AdminHandler{
			Catalog:  catalogSvc,
			Order:    orderSvc,
			Users:    auth.Users,
			Prods:    prodRepo,
			Orders:   orderRepo,
			MediaDir: cfg.MediaDir,
		},
	}
}
