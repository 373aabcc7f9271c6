package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nvak1999/book-store/config"
	"github.com/nvak1999/book-store/internal/app/controller"
	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	bookController     *controller.BookController
	categoryController *controller.CategoryController
	cartController     *controller.CartController
	orderController    *controller.OrderController
	uploadController   *controller.UploadController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	bookController *controller.BookController,
	categoryController *controller.CategoryController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		bookController:     bookController,
		categoryController: categoryController,
		cartController:     cartController,
		orderController:    orderController,
		uploadController:   uploadController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Book store API is running",
		})
	})

	admin := r.authMiddleware.RequireRole(model.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		books := v1.Group("/books")
		{
			books.GET("", r.bookController.ListBooks)
			books.GET("/:id", r.bookController.GetBookByID)

			books.POST("/:id/reviews",
				r.authMiddleware.Authenticate(),
				r.bookController.AddReview,
			)

			books.POST("",
				r.authMiddleware.Authenticate(), admin,
				r.bookController.CreateBook,
			)
			books.PUT("/:id",
				r.authMiddleware.Authenticate(), admin,
				r.bookController.UpdateBook,
			)
			books.DELETE("/:id",
				r.authMiddleware.Authenticate(), admin,
				r.bookController.DeleteBook,
			)

			books.POST("/:id/categories",
				r.authMiddleware.Authenticate(), admin,
				r.categoryController.LinkBook,
			)
			books.DELETE("/:id/categories/:categoryId",
				r.authMiddleware.Authenticate(), admin,
				r.categoryController.UnlinkBook,
			)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", r.categoryController.ListCategories)
			categories.GET("/:id", r.categoryController.GetCategoryWithBooks)

			categories.POST("",
				r.authMiddleware.Authenticate(), admin,
				r.categoryController.CreateCategories,
			)
			categories.PUT("/:id",
				r.authMiddleware.Authenticate(), admin,
				r.categoryController.UpdateCategory,
			)
			categories.DELETE("/:id",
				r.authMiddleware.Authenticate(), admin,
				r.categoryController.DeleteCategory,
			)
		}

		carts := v1.Group("/carts")
		carts.Use(r.authMiddleware.Authenticate())
		{
			carts.GET("", r.cartController.GetCart)
			carts.POST("", r.cartController.AddToCart)
			carts.PUT("/:bookId", r.cartController.UpdateCartItem)
			carts.DELETE("/:bookId", r.cartController.RemoveFromCart)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.POST("/:userId", r.orderController.CreateOrder)
			orders.GET("/:userId", r.orderController.GetUserOrders)
			orders.GET("/:userId/:orderId", r.orderController.GetOrder)
			orders.PUT("/:userId/:orderId", r.orderController.UpdateOrder)
			orders.DELETE("/:userId/:orderId", r.orderController.DeleteOrder)
		}

		adminGroup := v1.Group("/admin")
		adminGroup.Use(r.authMiddleware.Authenticate(), admin)
		{
			adminGroup.GET("/orders", r.orderController.ListAllOrders)
			adminGroup.GET("/orders/export", r.orderController.ExportOrders)
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate(), admin)
		{
			upload.POST("/cover", r.uploadController.PresignCover)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
