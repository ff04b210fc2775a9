package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopdesk/backend/internal/application/catalog"
	identityapp "github.com/shopdesk/backend/internal/application/identity"
	"github.com/shopdesk/backend/internal/application/messaging"
	tradeapp "github.com/shopdesk/backend/internal/application/trade"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/infrastructure/auth"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/shopdesk/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.NewDatabaseFromGorm(db).AutoMigrate())
	return db
}

// as authenticates every request on the engine as the given user
func as(userID uuid.UUID, role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		setJWTContext(c, userID, string(role))
		c.Next()
	}
}

func call(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	resp := decodeResponse(t, w)
	require.True(t, resp.Success, w.Body.String())
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, w.Body.String())
	return data
}

func createStaff(t *testing.T, repo *persistence.GormUserRepository, username string, role identity.Role) *identity.User {
	t.Helper()
	identity.PasswordCost = bcrypt.MinCost
	user, err := identity.NewUser(username, username+"@shop.test", "Staff "+username, "counter123", role)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestCatalogAPI_SQLite(t *testing.T) {
	db := openSQLite(t)
	log := zap.NewNop()
	categoryRepo := persistence.NewGormCategoryRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	categories := NewCategoryHandler(catalogapp.NewCategoryService(categoryRepo, productRepo, log))
	products := NewProductHandler(catalogapp.NewProductService(
		persistence.NewGormTransactionScope(db), productRepo, categoryRepo,
		persistence.NewGormSupplierRepository(db), persistence.NewGormStockMovementRepository(db), nil, nil, nil,
		catalogapp.ProductServiceConfig{StoreName: "Corner Shop"}, log))

	engine := gin.New()
	engine.Use(as(uuid.New(), identity.RoleAdmin))
	engine.POST("/categories", categories.Create)
	engine.DELETE("/categories/:id", categories.Delete)
	engine.POST("/products", products.Create)
	engine.GET("/products/sku/:code", products.GetBySKU)

	w := call(engine, http.MethodPost, "/categories", map[string]any{"name": "Beverages"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := dataOf(t, w)["id"].(string)

	w = call(engine, http.MethodPost, "/products", map[string]any{
		"sku":           "tea-500",
		"name":          "Black tea 500g",
		"category_id":   categoryID,
		"cost_price":    "180",
		"selling_price": "250",
		"initial_stock": 12,
		"reorder_level": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("sku lookup is case-insensitive", func(t *testing.T) {
		w := call(engine, http.MethodGet, "/products/sku/TEA-500", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Black tea 500g", dataOf(t, w)["name"])
	})

	t.Run("duplicate sku is a conflict", func(t *testing.T) {
		w := call(engine, http.MethodPost, "/products", map[string]any{
			"sku":           "TEA-500",
			"name":          "Another tea",
			"cost_price":    "1",
			"selling_price": "2",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
		assert.Contains(t, resp.Error.Message, `"TEA-500"`)
	})

	t.Run("category with active products cannot be deleted", func(t *testing.T) {
		w := call(engine, http.MethodDelete, "/categories/"+categoryID, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CATEGORY_HAS_PRODUCTS", decodeResponse(t, w).Error.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		w := call(engine, http.MethodDelete, "/categories/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMessagingAPI_SQLite(t *testing.T) {
	db := openSQLite(t)
	users := persistence.NewGormUserRepository(db)
	alice := createStaff(t, users, "alice", identity.RoleAdmin)
	brian := createStaff(t, users, "brian", identity.RoleEmployee)

	messages := NewMessageHandler(messaging.NewService(
		persistence.NewGormMessageRepository(db), users, nil, messaging.Config{}, nil, zap.NewNop()))

	routes := func(userID uuid.UUID, role identity.Role) *gin.Engine {
		engine := gin.New()
		engine.Use(as(userID, role))
		engine.POST("/messages", messages.Send)
		engine.GET("/messages/unread-count", messages.UnreadCount)
		engine.POST("/messages/:id/read", messages.MarkRead)
		return engine
	}
	asAlice := routes(alice.ID, identity.RoleAdmin)
	asBrian := routes(brian.ID, identity.RoleEmployee)

	w := call(asAlice, http.MethodPost, "/messages", map[string]any{
		"recipient_id": brian.ID,
		"subject":      "Stock count",
		"body":         "Please count the tea shelf before closing.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	messageID := dataOf(t, w)["id"].(string)

	w = call(asBrian, http.MethodGet, "/messages/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), dataOf(t, w)["unread"])

	t.Run("sender cannot mark it read", func(t *testing.T) {
		w := call(asAlice, http.MethodPost, "/messages/"+messageID+"/read", nil)
		assert.GreaterOrEqual(t, w.Code, http.StatusBadRequest)
	})

	w = call(asBrian, http.MethodPost, "/messages/"+messageID+"/read", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, dataOf(t, w)["is_read"])

	w = call(asBrian, http.MethodGet, "/messages/unread-count", nil)
	assert.Equal(t, float64(0), dataOf(t, w)["unread"])

	t.Run("unknown recipient", func(t *testing.T) {
		w := call(asAlice, http.MethodPost, "/messages", map[string]any{
			"recipient_id": uuid.New(),
			"body":         "hello",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "RECIPIENT_NOT_FOUND", decodeResponse(t, w).Error.Code)
	})
}

func TestAuthAPI_SQLite(t *testing.T) {
	db := openSQLite(t)
	users := persistence.NewGormUserRepository(db)
	createStaff(t, users, "cashier1", identity.RoleEmployee)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-at-least-32-chars",
		RefreshSecret:          "handler-test-refresh-secret-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "shopdesk-test",
	})
	h := NewAuthHandler(identityapp.NewAuthService(users, jwtService, auth.NewInMemoryTokenBlacklist(), zap.NewNop()))

	engine := gin.New()
	engine.POST("/auth/login", h.Login)

	t.Run("by email", func(t *testing.T) {
		w := call(engine, http.MethodPost, "/auth/login", map[string]any{
			"login":    "cashier1@shop.test",
			"password": "counter123",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := dataOf(t, w)
		assert.NotEmpty(t, data["access_token"])
		assert.Equal(t, "employee", data["user"].(map[string]any)["role"])

		claims, err := jwtService.ValidateAccessToken(data["access_token"].(string))
		require.NoError(t, err)
		assert.Equal(t, "cashier1", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := call(engine, http.MethodPost, "/auth/login", map[string]any{
			"login":    "cashier1",
			"password": "not-the-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeResponse(t, w).Error.Code)
	})
}

func TestMpesaCallbackAPI_SQLite(t *testing.T) {
	db := openSQLite(t)
	service := tradeapp.NewMpesaService(
		persistence.NewGormMpesaRepository(db), persistence.NewGormSaleRepository(db), nil, zap.NewNop())
	h := NewMpesaHandler(service, config.MpesaConfig{CallbackEnabled: true})

	engine := gin.New()
	engine.Use(as(uuid.New(), identity.RoleAdmin))
	engine.POST("/mpesa/callback", h.Callback)
	engine.GET("/mpesa/receipt/:receipt", h.GetByReceipt)

	payload := map[string]any{
		"Body": map[string]any{
			"stkCallback": map[string]any{
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode":        0,
				"ResultDesc":        "The service request is processed successfully.",
				"CallbackMetadata": map[string]any{
					"Item": []map[string]any{
						{"Name": "Amount", "Value": 250},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "TransactionDate", "Value": 20191219102115},
						{"Name": "PhoneNumber", "Value": 254708374149},
					},
				},
			},
		},
	}

	w := call(engine, http.MethodPost, "/mpesa/callback", payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Accepted"}`, w.Body.String())

	// replays update the same record
	w = call(engine, http.MethodPost, "/mpesa/callback", payload)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(engine, http.MethodGet, "/mpesa/receipt/NLJ7RT61SV", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataOf(t, w)
	assert.Equal(t, "success", data["status"])
	assert.Equal(t, "254708374149", data["phone_number"])

	t.Run("missing checkout id", func(t *testing.T) {
		w := call(engine, http.MethodPost, "/mpesa/callback", map[string]any{
			"Body": map[string]any{"stkCallback": map[string]any{"ResultCode": 1}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
