package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/cors"
	"github.com/stretchr/testify/assert"
)

func corsResponse(origins []string, origin string) *httptest.ResponseRecorder {
	h := cors.Handler(corsOptions(origins))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	req.Header.Set("Origin", origin)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORSWildcardDropsCredentials(t *testing.T) {
	assert.False(t, corsOptions([]string{"*"}).AllowCredentials)
	assert.False(t, corsOptions([]string{"https://app.example.com", "*"}).AllowCredentials)
	assert.False(t, corsOptions(nil).AllowCredentials)

	rec := corsResponse([]string{"*"}, "https://evil.example")
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSExplicitOriginsAllowCredentials(t *testing.T) {
	origins := []string{"https://app.example.com"}
	assert.True(t, corsOptions(origins).AllowCredentials)

	rec := corsResponse(origins, "https://app.example.com")
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = corsResponse(origins, "https://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}
