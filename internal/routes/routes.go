package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/wholesale-shop/internal/handlers"
	"github.com/01moynul/wholesale-shop/internal/middleware"
)

// Options are the router settings that do not belong to the handlers.
type Options struct {
	AuthRequired bool
	CORSOrigin   string
	StaticDir    string
	Logger       *zap.Logger

	// AuthLimiter throttles register and login. Nil disables throttling.
	AuthLimiter *middleware.RateLimiter
}

func SetupRouter(h *handlers.Handlers, opts Options) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSOrigin),
		middleware.ErrorHandler(opts.Logger),
	)

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)

		// --- Auth Routes (Public) ---
		authRoutes := api.Group("/auth")
		if opts.AuthLimiter != nil {
			authRoutes.Use(opts.AuthLimiter.Middleware())
		}
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		api.GET("/auth/me", middleware.Auth(h.Tokens), h.Me)

		// --- Shop Routes (protected only when AUTH_REQUIRED) ---
		shop := api.Group("")
		if opts.AuthRequired {
			shop.Use(middleware.Auth(h.Tokens))
		}

		products := shop.Group("/products")
		products.GET("", h.ListProducts)
		products.GET("/categories", h.ListCategories)
		products.GET("/:id", h.GetProduct)
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)

		orders := shop.Group("/orders")
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("", h.CreateOrder)
		orders.PUT("/:id/status", h.UpdateOrderStatus)

		reports := shop.Group("/reports")
		reports.GET("/sales/summary", h.SalesSummary)
		reports.GET("/sales/by-product", h.SalesByProduct)
		reports.GET("/top-selling-products", h.TopSellingProducts)

		shop.POST("/uploads", h.UploadFile)
	}

	router.Static("/uploads", h.UploadDir)
	router.NoRoute(spaFallback(opts.StaticDir))

	return router, nil
}

// spaFallback serves the admin UI build: real files as they are, every other
// non-API path as index.html so client-side routing works.
func spaFallback(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/api" || c.Request.Method != http.MethodGet {
			middleware.NotFound(c)
			return
		}

		if staticDir != "" {
			file := filepath.Join(staticDir, filepath.FromSlash(filepath.Clean("/"+path)))
			if info, err := os.Stat(file); err == nil && !info.IsDir() {
				c.File(file)
				return
			}
			index := filepath.Join(staticDir, "index.html")
			if _, err := os.Stat(index); err == nil {
				c.File(index)
				return
			}
		}
		c.String(http.StatusNotFound, "Frontend application not found. Ensure the client has been built.")
	}
}
