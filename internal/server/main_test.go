package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"minigplus/internal/authz"
	"minigplus/internal/config"
	"minigplus/internal/database"
	"minigplus/internal/repository"
	"minigplus/internal/service"
)

// newTestServer wires a Server against a fresh in-memory database with the
// full route table registered. Redis-backed pieces (feed, rate limits,
// ticket auth) stay nil; rate limiting fails open without Redis so the
// routes remain usable.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	identityRepo := repository.NewIdentityRepository(db)
	circleRepo := repository.NewCircleRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	engine := authz.NewEngine(circleRepo.IsMemberOfAny)

	s := &Server{
		config:       &config.Config{JWTSecret: "test_secret_value_0123456789abcdef"},
		db:           db,
		identityRepo: identityRepo,
		circleRepo:   circleRepo,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		authz:        engine,
	}
	s.identityService = service.NewIdentityService(identityRepo, engine)
	s.circleService = service.NewCircleService(circleRepo, identityRepo, engine)
	s.postService = service.NewPostService(postRepo, circleRepo, engine, nil)
	s.commentService = service.NewCommentService(commentRepo, postRepo, engine, nil)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

// doJSON performs a request against the test app, attaching the bearer
// token when one is given, and returns the response with its decoded body.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
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

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

// doJSONList is doJSON for endpoints that respond with a JSON array.
func doJSONList(t *testing.T, app *fiber.App, method, path, token string) (*http.Response, []map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded []map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '[' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

// signupUser registers a new identity and returns its bearer token and ID.
func signupUser(t *testing.T, app *fiber.App, handle string) (string, uint) {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"handle":   handle,
		"password": "Password123!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "signup %s: %v", handle, body)

	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	identity, _ := body["identity"].(map[string]any)
	require.NotNil(t, identity)
	id, _ := identity["id"].(float64)
	require.NotZero(t, id)

	return token, uint(id)
}

func jsonID(v any) uint {
	f, _ := v.(float64)
	return uint(f)
}
