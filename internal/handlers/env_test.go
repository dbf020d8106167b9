package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/greengrocer/produce_shop/internal/config"
	"github.com/greengrocer/produce_shop/internal/hash"
	"github.com/greengrocer/produce_shop/internal/models"
	"github.com/greengrocer/produce_shop/internal/service/order"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Auth       *AuthHandler
	Products   *ProductHandler
	Categories *CategoryHandler
	Users      *UserHandler
	Orders     *OrderHandler

	JWTSecret []byte
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	secret := []byte("test_secret")

	return &testEnv{
		T:          t,
		E:          echo.New(),
		DB:         db,
		Auth:       &AuthHandler{DB: db, JWTSecret: secret},
		Products:   &ProductHandler{DB: db},
		Categories: &CategoryHandler{DB: db},
		Users:      &UserHandler{DB: db},
		Orders:     &OrderHandler{Orders: order.NewService(db, nil)},
		JWTSecret:  secret,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) asUser(c echo.Context, user models.User) {
	c.Set("userID", user.ID)
	c.Set("userEmail", user.Email)
	c.Set("role", user.Role)
}

func (env *testEnv) seedUser(email, password, role string) models.User {
	env.T.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)
	user := models.User{Email: email, PasswordHash: pwHash, Role: role}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) seedCategory(name string) models.Category {
	env.T.Helper()
	category := models.Category{Name: name, Description: "fresh " + name}
	require.NoError(env.T, env.DB.Create(&category).Error)
	return category
}

func (env *testEnv) seedProduct(name string, price float64, stock int, categoryID uint) models.Product {
	env.T.Helper()
	product := models.Product{
		Name:       name,
		Price:      price,
		Unit:       "kg",
		Stock:      stock,
		IsActive:   true,
		CategoryID: categoryID,
	}
	require.NoError(env.T, env.DB.Create(&product).Error)
	return product
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	return he.Code
}
