package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"readrover/internal/cache"
	"readrover/internal/config"
	"readrover/internal/database"
	"readrover/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

// newTestServer wires a full server against an in-memory SQLite database
// and a miniredis instance. Rate limiting is bypassed via APP_ENV=test.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	// The cache helpers read the package-global client
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	cfg := &config.Config{
		JWTSecret:    testSecret,
		Env:          "test",
		FeatureFlags: "profile_cache=on,book_cache=on",
	}

	s := newServer(cfg, db, rdb, nil)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupRoutes(app)
	return s, app
}

func jsonRequest(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

// signupUser registers a user through the API and returns their token and ID.
func signupUser(t *testing.T, app *fiber.App, username string) (string, uint) {
	t.Helper()
	status, body := doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "Str0ng!Passw0rd",
	}))
	require.Equal(t, http.StatusCreated, status, "signup failed: %v", body)

	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	id, _ := user["id"].(float64)
	require.NotZero(t, id)
	return token, uint(id)
}

// addBook creates a catalog entry through the API and returns its ID.
func addBook(t *testing.T, app *fiber.App, token, title string, pages int) uint {
	t.Helper()
	status, body := doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/books/", token, fiber.Map{
		"google_books_id": "vol-" + strings.ReplaceAll(title, " ", "-"),
		"title":           title,
		"authors":         []string{"Test Author"},
		"page_count":      pages,
	}))
	require.Equal(t, http.StatusCreated, status, "add book failed: %v", body)
	id, _ := body["id"].(float64)
	require.NotZero(t, id)
	return uint(id)
}

func TestHealthEndpoints(t *testing.T) {
	_, app := newTestServer(t)

	status, body := doJSON(t, app, jsonRequest(t, http.MethodGet, "/health/live", "", nil))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "up", body["status"])

	status, body = doJSON(t, app, jsonRequest(t, http.MethodGet, "/health/ready", "", nil))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "healthy", body["status"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	_, app := newTestServer(t)

	paths := []string{"/api/feed", "/api/users/me", "/api/friends/", "/api/books/"}
	for _, path := range paths {
		status, _ := doJSON(t, app, jsonRequest(t, http.MethodGet, path, "", nil))
		require.Equal(t, http.StatusUnauthorized, status, "path %s", path)
	}
}
