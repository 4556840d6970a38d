package httpserver

import (
	"context"
	"log"
	"time"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository/item"
	"storefront-api/internal/service/auth"
	"storefront-api/internal/service/catalog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartService is the engine surface the handlers call.
type CartService interface {
	Add(ctx context.Context, ownerID, itemID string, qty int) (*domain.Cart, error)
	SetQuantity(ctx context.Context, ownerID, itemID string, qty int) (*domain.Cart, error)
	Remove(ctx context.Context, ownerID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, ownerID string) (*domain.Cart, error)
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
}

type CatalogService interface {
	List(ctx context.Context, in catalog.ListInput) ([]domain.Item, catalog.Pagination, error)
	Search(ctx context.Context, query string) ([]domain.Item, []string, error)
	Categories(ctx context.Context) ([]item.CategoryCount, error)
	Get(ctx context.Context, id string) (*domain.Item, error)
	Create(ctx context.Context, in catalog.ItemInput) (*domain.Item, error)
	Update(ctx context.Context, id string, in catalog.ItemInput) (*domain.Item, error)
}

type AuthService interface {
	Signup(ctx context.Context, in auth.SignupInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Verify(token string) (*auth.Claims, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// RateLimiter is the counter store backing auth throttling; nil disables it.
type RateLimiter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type Deps struct {
	AuthSvc    AuthService
	CatalogSvc CatalogService
	CartSvc    CartService

	Limiter    RateLimiter
	RateLimit  int
	RateWindow time.Duration
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	throttled := authGroup.Group("")
	throttled.Use(rateLimit(deps.Limiter, deps.RateLimit, deps.RateWindow, logger))
	throttled.POST("/signup", signupHandler(deps.AuthSvc))
	throttled.POST("/login", loginHandler(deps.AuthSvc))
	authGroup.POST("/verify", verifyHandler(deps.AuthSvc))
	authGroup.POST("/logout", logoutHandler())
	authGroup.GET("/me", authRequired(deps.AuthSvc), meHandler(deps.AuthSvc))

	items := api.Group("/items")
	items.GET("", listItemsHandler(deps.CatalogSvc))
	items.GET("/search", searchItemsHandler(deps.CatalogSvc))
	items.GET("/categories", categoriesHandler(deps.CatalogSvc))
	items.GET("/:id", getItemHandler(deps.CatalogSvc))
	items.POST("", authRequired(deps.AuthSvc), createItemHandler(deps.CatalogSvc))
	items.PUT("/:id", authRequired(deps.AuthSvc), updateItemHandler(deps.CatalogSvc))

	cart := api.Group("/cart")
	cart.Use(authRequired(deps.AuthSvc))
	cart.GET("", getCartHandler(deps.CartSvc))
	cart.DELETE("", clearCartHandler(deps.CartSvc))
	cart.POST("/add", addToCartHandler(deps.CartSvc))
	cart.PUT("/update", updateCartHandler(deps.CartSvc))
	cart.DELETE("/remove", removeFromCartHandler(deps.CartSvc))

	return router
}
