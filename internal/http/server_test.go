package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/config"
	"github.com/Clark-Hu/movie-review/internal/repository/memrepo"
	"github.com/Clark-Hu/movie-review/internal/service"
)

type testServer struct {
	srv        *Server
	adminToken string
}

func buildTestServer(tb testing.TB) *testServer {
	tb.Helper()
	cfg := config.Config{
		Port:               "0",
		TokenSecret:        "secret",
		TokenTTLHours:      1,
		CORSAllowedOrigins: []string{"*"},
		ReadTimeoutSecs:    15,
		WriteTimeoutSecs:   15,
		IdleTimeoutSecs:    60,
	}
	tokens, err := auth.NewTokenManager(cfg.TokenSecret, time.Hour)
	require.NoError(tb, err)

	logger := log.New(io.Discard, "", 0)
	svc := service.New(memrepo.New().Repository(), service.Options{
		Tokens: tokens,
		Hasher: auth.NewPasswordHasher(4),
		Logger: logger,
	})
	srv := New(cfg, nil, svc, logger)
	// Replace chi router to avoid default middleware noise.
	srv.router = chi.NewRouter()
	srv.registerRoutes()

	ts := &testServer{srv: srv}
	_, err = svc.Accounts.CreateAdmin(context.Background(), service.SignupInput{
		Email: "admin@example.com", Password: "password123", Name: "admin",
	})
	require.NoError(tb, err)
	ts.adminToken = ts.signin(tb, "admin@example.com", "password123")
	return ts
}

func (ts *testServer) do(tb testing.TB, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	tb.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(tb, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) signup(tb testing.TB, name string) string {
	tb.Helper()
	email := name + "@example.com"
	rec := ts.do(tb, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": email, "password": "password123", "name": name,
	})
	require.Equal(tb, http.StatusCreated, rec.Code, rec.Body.String())
	return ts.signin(tb, email, "password123")
}

func (ts *testServer) signin(tb testing.TB, email, password string) string {
	tb.Helper()
	rec := ts.do(tb, http.MethodPost, "/auth/signin", "", map[string]string{"email": email, "password": password})
	require.Equal(tb, http.StatusOK, rec.Code, rec.Body.String())
	var resp signinResponse
	require.NoError(tb, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func (ts *testServer) createMovie(tb testing.TB, title string) movieResponse {
	tb.Helper()
	rec := ts.do(tb, http.MethodPost, "/movies", ts.adminToken, movieBody(title))
	require.Equal(tb, http.StatusCreated, rec.Code, rec.Body.String())
	var resp movieMutationResponse
	require.NoError(tb, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Movie
}

func movieBody(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":       title,
		"description": "A thief who steals corporate secrets.",
		"releaseDate": "2010-07-16",
		"genre":       "Sci-Fi",
		"director":    "Christopher Nolan",
		"cast":        []string{"Leonardo DiCaprio"},
		"posterUrl":   "https://img.example.com/p.jpg",
		"trailerUrl":  "https://video.example.com/t",
	}
}

func decode[T any](tb testing.TB, rec *httptest.ResponseRecorder) T {
	tb.Helper()
	var out T
	require.NoError(tb, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
