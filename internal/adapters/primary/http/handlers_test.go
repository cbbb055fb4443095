package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	mw "github.com/jobtrail/jobtrail-backend/internal/adapters/primary/http/middleware"
	"github.com/jobtrail/jobtrail-backend/internal/adapters/secondary/email"
	pgadapter "github.com/jobtrail/jobtrail-backend/internal/adapters/secondary/postgres"
	"github.com/jobtrail/jobtrail-backend/internal/auth"
	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/core/services"
	"github.com/jobtrail/jobtrail-backend/internal/events"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := pgcontainer.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		pgcontainer.WithDatabase("test-db"),
		pgcontainer.WithUsername("user"),
		pgcontainer.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("could not get connection string: %v", err)
	}

	migrationsPath, err := filepath.Abs("../../../../migrations")
	if err != nil {
		log.Fatalf("could not find migrations directory: %v", err)
	}

	mig, err := migrate.New("file://"+migrationsPath, connStr)
	if err != nil {
		log.Fatalf("could not create migrate instance: %v", err)
	}
	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("could not run migrations: %v", err)
	}

	testPool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("could not create connection pool: %v", err)
	}

	code := m.Run()

	testPool.Close()
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Fatalf("could not terminate postgres container: %v", err)
	}

	os.Exit(code)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAPI bundles the wired router with the pieces individual tests poke at.
type testAPI struct {
	router       *chi.Mux
	bus          *events.Bus
	tokenManager *auth.TokenManager
}

// newTestAPI wires the full API surface against the shared test database, the
// same way main does minus CORS and rate limiting.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := discardLogger()
	errorHandler := NewErrorHandler(logger)
	tokenManager := auth.NewTokenManager("test-secret", time.Hour)

	bus := events.NewBus(16, logger)
	t.Cleanup(bus.Shutdown)

	location, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)

	userRepo := pgadapter.NewUserRepository(testPool)
	appRepo := pgadapter.NewApplicationRepository(testPool)
	commentRepo := pgadapter.NewCommentRepository(testPool)
	visitorRepo := pgadapter.NewVisitorRepository(testPool)

	notifier := email.NewMockSMTPNotifier("noreply@test.local", logger)

	authService := services.NewAuthService(userRepo, notifier, logger)
	appService := services.NewApplicationService(appRepo, bus, logger)
	commentService := services.NewCommentService(commentRepo, appRepo, bus, logger)
	visitorService := services.NewVisitorService(visitorRepo, "test-salt", location, services.SystemClock(), logger)

	authHandler := NewAuthHandler(authService, tokenManager, errorHandler, logger)
	appHandler := NewApplicationHandler(appService, commentService, errorHandler, logger)
	commentHandler := NewCommentHandler(commentService, errorHandler, logger)
	visitorHandler := NewVisitorHandler(visitorService, errorHandler, logger)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", authHandler.RegisterRoutes)
		r.Post("/visit", visitorHandler.HandleRecordVisit)

		r.Route("/public/applications", func(r chi.Router) {
			appHandler.RegisterPublicRoutes(r)
			r.Route("/{applicationID}/comments", commentHandler.RegisterPublicRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			r.Route("/applications", appHandler.RegisterRoutes)
			r.Get("/comments/recent", commentHandler.HandleRecentComments)
		})
	})

	return &testAPI{router: router, bus: bus, tokenManager: tokenManager}
}

func (api *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	api.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

// registerVerifiedUser creates an account straight through the service layer
// and flips it to verified, returning a usable bearer token.
func registerVerifiedUser(t *testing.T, api *testAPI) (*domain.User, string) {
	t.Helper()
	ctx := context.Background()

	userRepo := pgadapter.NewUserRepository(testPool)
	authService := services.NewAuthService(userRepo, email.NewMockSMTPNotifier("noreply@test.local", discardLogger()), discardLogger())

	user, err := authService.Register(ctx, uuid.NewString()+"@example.com", "Password1")
	require.NoError(t, err)

	_, err = testPool.Exec(ctx, "UPDATE users SET is_verified = TRUE WHERE id = $1", user.ID)
	require.NoError(t, err)

	token, err := api.tokenManager.GenerateToken(user.ID)
	require.NoError(t, err)
	return user, token
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	api := newTestAPI(t)
	userEmail := uuid.NewString() + "@example.com"

	rec := api.do(t, stdhttp.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    userEmail,
		"password": "Password1",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	registered := decodeBody[RegisterResponse](t, rec)
	assert.Equal(t, userEmail, registered.Email)

	// Unverified accounts cannot log in, even with correct credentials.
	rec = api.do(t, stdhttp.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    userEmail,
		"password": "Password1",
	})
	require.Equal(t, stdhttp.StatusForbidden, rec.Code, rec.Body.String())

	var verificationToken string
	err := testPool.QueryRow(context.Background(),
		"SELECT verification_token FROM users WHERE email = $1", userEmail,
	).Scan(&verificationToken)
	require.NoError(t, err)

	rec = api.do(t, stdhttp.MethodPost, "/api/auth/verify", "", map[string]string{
		"token": verificationToken,
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, stdhttp.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    userEmail,
		"password": "Password1",
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	loggedIn := decodeBody[TokenResponse](t, rec)
	require.NotEmpty(t, loggedIn.Token)

	// The issued token opens the protected surface.
	rec = api.do(t, stdhttp.MethodGet, "/api/applications", loggedIn.Token, nil)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	// And the protected surface stays shut without one.
	rec = api.do(t, stdhttp.MethodGet, "/api/applications", "", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
}

func TestApplicationLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	_, token := registerVerifiedUser(t, api)

	// Create. Status defaults to Applied when omitted.
	rec := api.do(t, stdhttp.MethodPost, "/api/applications", token, map[string]string{
		"company": "Acme",
		"role":    "Backend Engineer",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[ApplicationDTO](t, rec)
	assert.Equal(t, "Applied", created.Status)

	// The status change must surface on the live feed.
	sub := api.bus.Subscribe()
	defer sub.Close()

	rec = api.do(t, stdhttp.MethodPut, "/api/applications/"+created.ID, token, map[string]string{
		"status": "Interview",
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[ApplicationDTO](t, rec)
	assert.Equal(t, "Interview", updated.Status)

	select {
	case event := <-sub.Events():
		statusEvent, ok := event.(domain.ApplicationStatusUpdated)
		require.True(t, ok, "unexpected event type %T", event)
		assert.Equal(t, created.ID, statusEvent.ID.String())
		assert.Equal(t, "Interview", statusEvent.Status)
	case <-time.After(time.Second):
		t.Fatal("no event published for status update")
	}

	// Visible on the public pipeline without auth.
	rec = api.do(t, stdhttp.MethodGet, "/api/public/applications/"+created.ID, "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	public := decodeBody[PublicApplicationDetailDTO](t, rec)
	assert.Equal(t, "Acme", public.Company)

	// Delete, then both views 404.
	rec = api.do(t, stdhttp.MethodDelete, "/api/applications/"+created.ID, token, nil)
	require.Equal(t, stdhttp.StatusNoContent, rec.Code)

	rec = api.do(t, stdhttp.MethodGet, "/api/applications/"+created.ID, token, nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)

	rec = api.do(t, stdhttp.MethodGet, "/api/public/applications/"+created.ID, "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestPublicCommentFlow(t *testing.T) {
	api := newTestAPI(t)
	_, token := registerVerifiedUser(t, api)

	rec := api.do(t, stdhttp.MethodPost, "/api/applications", token, map[string]string{
		"company": "Acme",
		"role":    "Backend Engineer",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code)
	app := decodeBody[ApplicationDTO](t, rec)
	commentsPath := "/api/public/applications/" + app.ID + "/comments"

	// A visitor comments anonymously.
	rec = api.do(t, stdhttp.MethodPost, commentsPath, "", map[string]string{
		"visitor_name": "Maija",
		"content":      "Good luck!",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())

	// A bot fills the honeypot: fake success, nothing stored.
	rec = api.do(t, stdhttp.MethodPost, commentsPath, "", map[string]string{
		"visitor_name": "Bot",
		"content":      "spam",
		"bot_field":    "gotcha",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code)

	rec = api.do(t, stdhttp.MethodGet, commentsPath, "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	list := decodeBody[ListResponse[CommentDTO]](t, rec)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Maija", list.Data[0].VisitorName)

	// The owner's dashboard widget sees it with company context.
	rec = api.do(t, stdhttp.MethodGet, "/api/comments/recent", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	recent := decodeBody[ListResponse[CommentWithContextDTO]](t, rec)
	require.NotEmpty(t, recent.Data)
	assert.Equal(t, "Acme", recent.Data[0].Company)

	// Comments on a nonexistent application are rejected.
	rec = api.do(t, stdhttp.MethodPost, "/api/public/applications/"+uuid.NewString()+"/comments", "", map[string]string{
		"visitor_name": "Maija",
		"content":      "hello?",
	})
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestVisitEndpoint(t *testing.T) {
	api := newTestAPI(t)
	clientIP := "203.0.113." + uuid.NewString()[:4]

	visit := func() VisitResponse {
		req := httptest.NewRequest(stdhttp.MethodPost, "/api/visit", nil)
		req.Header.Set("X-Forwarded-For", clientIP)
		recorder := httptest.NewRecorder()
		api.router.ServeHTTP(recorder, req)
		require.Equal(t, stdhttp.StatusOK, recorder.Code, recorder.Body.String())
		return decodeBody[VisitResponse](t, recorder)
	}

	first := visit()
	assert.True(t, first.IsFirstVisit)
	assert.GreaterOrEqual(t, first.TotalUniqueVisitors, int64(1))
	assert.GreaterOrEqual(t, first.TodayVisitors, int64(1))

	second := visit()
	assert.False(t, second.IsFirstVisit)
	assert.False(t, second.IsFirstOfDay)
	assert.Equal(t, first.TotalUniqueVisitors, second.TotalUniqueVisitors)
}
