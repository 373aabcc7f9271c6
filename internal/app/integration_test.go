package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nvak1999/book-store/config"
	"github.com/nvak1999/book-store/internal/app/controller"
	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/internal/app/repository"
	"github.com/nvak1999/book-store/internal/app/service"
	"github.com/nvak1999/book-store/internal/db"
	"github.com/nvak1999/book-store/internal/middleware"
	"github.com/nvak1999/book-store/pkg/redis"
	"github.com/nvak1999/book-store/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	jwtCfg := config.JWTConfig{
		Secret:             testJWTSecret,
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}

	userRepo := repository.NewUserRepository(testDB)
	bookRepo := repository.NewBookRepository(testDB)
	bookCategoryRepo := repository.NewBookCategoryRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	authService := service.NewAuthService(userRepo, jwtCfg)
	bookService := service.NewBookService(bookRepo, bookCategoryRepo, reviewRepo, redis.NewCache(nil, 0))
	categoryService := service.NewCategoryService(categoryRepo, bookRepo, bookCategoryRepo)
	cartService := service.NewCartService(cartRepo, bookRepo, userRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, userRepo)

	authController := controller.NewAuthController(authService)
	bookController := controller.NewBookController(bookService)
	categoryController := controller.NewCategoryController(categoryService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)
	admin := authMiddleware.RequireRole(model.RoleAdmin)

	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.Me)
	}

	books := router.Group("/api/v1/books")
	{
		books.GET("", bookController.ListBooks)
		books.GET("/:id", bookController.GetBookByID)
		books.POST("", authMiddleware.Authenticate(), admin, bookController.CreateBook)
	}

	categories := router.Group("/api/v1/categories")
	{
		categories.GET("", categoryController.ListCategories)
		categories.GET("/:id", categoryController.GetCategoryWithBooks)
		categories.POST("", authMiddleware.Authenticate(), admin, categoryController.CreateCategories)
	}

	carts := router.Group("/api/v1/carts")
	carts.Use(authMiddleware.Authenticate())
	{
		carts.GET("", cartController.GetCart)
		carts.POST("", cartController.AddToCart)
	}

	orders := router.Group("/api/v1/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.POST("/:userId", orderController.CreateOrder)
		orders.GET("/:userId", orderController.GetUserOrders)
	}

	return &TestServer{Router: router, DB: testDB}
}

func adminToken(t *testing.T, ts *TestServer) string {
	adminUser := &model.User{
		Name:         "Admin",
		Email:        "admin@bookstore.local",
		PasswordHash: "hash",
		Role:         model.RoleAdmin,
	}
	require.NoError(t, ts.DB.Create(adminUser).Error)

	tokens, err := util.GenerateTokenPair(adminUser.ID, adminUser.Email, string(model.RoleAdmin), testJWTSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

func doJSON(ts *TestServer, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCompleteUserJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	admin := adminToken(t, ts)

	// 1. Register a customer
	t.Log("Step 1: Register user")
	w := doJSON(ts, "POST", "/api/v1/auth/register", "", map[string]string{
		"name":     "Test Buyer",
		"email":    "buyer@example.com",
		"password": "password123",
		"address":  "13 Fiction Street",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := envelope(t, w)
	assert.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]interface{})
	tokens := data["tokens"].(map[string]interface{})
	accessToken := tokens["access_token"].(string)
	userID := uint(data["user"].(map[string]interface{})["id"].(float64))

	// 2. Admin creates a category and a book
	t.Log("Step 2: Create catalog")
	w = doJSON(ts, "POST", "/api/v1/categories", admin, []map[string]string{
		{"categoryName": "Science Fiction"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := envelope(t, w)["data"].([]interface{})
	categoryID := uint(created[0].(map[string]interface{})["id"].(float64))

	w = doJSON(ts, "POST", "/api/v1/books", admin, map[string]interface{}{
		"name":            "Dune",
		"author":          "Frank Herbert",
		"price":           19.99,
		"publicationDate": "1965-08-01",
		"categories":      []uint{categoryID},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	book := envelope(t, w)["data"].(map[string]interface{})
	bookID := uint(book["id"].(float64))
	assert.Equal(t, []interface{}{"Science Fiction"}, book["categories"])

	// 3. Browse the catalog
	t.Log("Step 3: Browse books")
	w = doJSON(ts, "GET", "/api/v1/books?search=dune", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := envelope(t, w)["data"].(map[string]interface{})
	assert.Len(t, page["books"], 1)
	assert.Equal(t, float64(1), page["totalPages"])

	// 4. Add the book to the cart
	t.Log("Step 4: Add to cart")
	w = doJSON(ts, "POST", "/api/v1/carts", accessToken, map[string]interface{}{
		"bookId":   bookID,
		"quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	cart := envelope(t, w)["data"].(map[string]interface{})
	assert.Len(t, cart["items"], 1)
	assert.InDelta(t, 39.98, cart["total"].(float64), 0.001)

	// 5. Place the order
	t.Log("Step 5: Place order")
	w = doJSON(ts, "POST", fmt.Sprintf("/api/v1/orders/%d", userID), accessToken, map[string]interface{}{
		"books": []map[string]interface{}{
			{"bookId": bookID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	order := envelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Processing", order["status"])
	assert.InDelta(t, 39.98, order["totalAmount"].(float64), 0.001)
	assert.Len(t, order["books"], 1)

	// 6. The ordered book is gone from the cart
	t.Log("Step 6: Verify cart was pulled")
	w = doJSON(ts, "GET", "/api/v1/carts", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart = envelope(t, w)["data"].(map[string]interface{})
	assert.Len(t, cart["items"], 0)

	// 7. Order history shows the snapshot
	t.Log("Step 7: View order history")
	w = doJSON(ts, "GET", fmt.Sprintf("/api/v1/orders/%d", userID), accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := envelope(t, w)["data"].([]interface{})
	assert.Len(t, orders, 1)
}

func TestAuthenticationFlow(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	w := doJSON(ts, "POST", "/api/v1/auth/register", "", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Login with the right password
	w = doJSON(ts, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := envelope(t, w)
	data := resp["data"].(map[string]interface{})
	accessToken := data["tokens"].(map[string]interface{})["access_token"].(string)

	// Bad credentials are a 400, not a 401
	w = doJSON(ts, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "test@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp = envelope(t, w)
	assert.Equal(t, false, resp["success"])
	errBody := resp["error"].(map[string]interface{})
	assert.Equal(t, "Login Error", errBody["name"])

	// Profile endpoint
	w = doJSON(ts, "GET", "/api/v1/auth/me", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := envelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.Nil(t, user["password"])
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	protectedRoutes := []string{
		"/api/v1/auth/me",
		"/api/v1/carts",
		"/api/v1/orders/1",
	}

	for _, route := range protectedRoutes {
		t.Run(route, func(t *testing.T) {
			req := httptest.NewRequest("GET", route, nil)
			w := httptest.NewRecorder()

			ts.Router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			resp := envelope(t, w)
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestOrderAccessIsScopedToOwner(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	w := doJSON(ts, "POST", "/api/v1/auth/register", "", map[string]string{
		"name":     "First User",
		"email":    "first@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	first := envelope(t, w)["data"].(map[string]interface{})
	firstID := uint(first["user"].(map[string]interface{})["id"].(float64))

	w = doJSON(ts, "POST", "/api/v1/auth/register", "", map[string]string{
		"name":     "Second User",
		"email":    "second@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	second := envelope(t, w)["data"].(map[string]interface{})
	secondToken := second["tokens"].(map[string]interface{})["access_token"].(string)

	// The second user cannot read the first user's orders.
	w = doJSON(ts, "GET", fmt.Sprintf("/api/v1/orders/%d", firstID), secondToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateOrderBodyUsesBooksKey(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	w := doJSON(ts, "POST", "/api/v1/auth/register", "", map[string]string{
		"name":     "Buyer",
		"email":    "books-key@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := envelope(t, w)["data"].(map[string]interface{})
	token := data["tokens"].(map[string]interface{})["access_token"].(string)
	userID := uint(data["user"].(map[string]interface{})["id"].(float64))

	book := &model.Book{Name: "Dune", Author: "Frank Herbert", Price: 19.99}
	require.NoError(t, ts.DB.Create(book).Error)

	// The order lines travel under "books", not "items".
	w = doJSON(ts, "POST", fmt.Sprintf("/api/v1/orders/%d", userID), token, map[string]interface{}{
		"books": []map[string]interface{}{
			{"bookId": book.ID, "quantity": 1},
		},
		"shippingAddress": "13 Fiction Street",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	order := envelope(t, w)["data"].(map[string]interface{})
	assert.InDelta(t, 19.99, order["totalAmount"].(float64), 0.001)

	w = doJSON(ts, "POST", fmt.Sprintf("/api/v1/orders/%d", userID), token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"bookId": book.ID, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
