package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	ts := buildTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "Ann@Example.com", "password": "password123", "name": "Ann",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decode[userResponse](t, rec)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = ts.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "ann@example.com", "password": "password123", "name": "Ann",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "boss@example.com", "password": "password123", "name": "Boss", "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/signin", "", map[string]string{"email": "ann@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode[errorResponse](t, rec).Code)

	rec = ts.do(t, http.MethodPost, "/auth/signin", "", map[string]string{"email": "ann@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, authCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// The cookie alone authenticates.
	req := httptest.NewRequest(http.MethodPost, "/comments", nil)
	req.AddCookie(cookies[0])
	out := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)

	rec = ts.do(t, http.MethodPost, "/auth/signout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := buildTestServer(t)
	cases := []struct {
		method, target string
	}{
		{http.MethodPost, "/movies"},
		{http.MethodPut, "/movies/abc"},
		{http.MethodDelete, "/movies/by-name/abc"},
		{http.MethodPost, "/ratings"},
		{http.MethodDelete, "/ratings/abc"},
		{http.MethodPost, "/comments"},
		{http.MethodDelete, "/comments/abc"},
		{http.MethodGet, "/contacts"},
	}
	for _, c := range cases {
		rec := ts.do(t, c.method, c.target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", c.method, c.target)

		rec = ts.do(t, c.method, c.target, "forged.token.value", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s forged", c.method, c.target)
	}
}

func TestMovieEndpoints(t *testing.T) {
	ts := buildTestServer(t)
	user := ts.signup(t, "ann")

	rec := ts.do(t, http.MethodPost, "/movies", user, movieBody("Inception"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	movie := ts.createMovie(t, "Inception")
	assert.Equal(t, "2010-07-16", movie.ReleaseDate)
	assert.Zero(t, movie.NumberOfRatings)

	rec = ts.do(t, http.MethodPost, "/movies", ts.adminToken, movieBody("Inception"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	bad := movieBody("Broken")
	bad["posterUrl"] = "not a url"
	rec = ts.do(t, http.MethodPost, "/movies", ts.adminToken, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad = movieBody("Sneaky")
	bad["averageRating"] = 5
	rec = ts.do(t, http.MethodPost, "/movies", ts.adminToken, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "derived fields are not writable")

	rec = ts.do(t, http.MethodGet, "/movies/"+movie.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Inception", decode[movieResponse](t, rec).Title)

	rec = ts.do(t, http.MethodGet, "/movies/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	update := movieBody("Inception")
	update["genre"] = "Thriller"
	rec = ts.do(t, http.MethodPut, "/movies/by-name/"+url.PathEscape("Inception"), ts.adminToken, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Thriller", decode[movieMutationResponse](t, rec).Movie.Genre)

	update["title"] = "Inception 2"
	rec = ts.do(t, http.MethodPut, "/movies/"+movie.ID, ts.adminToken, update)
	require.Equal(t, http.StatusOK, rec.Code)

	ts.createMovie(t, "Arrival")
	rec = ts.do(t, http.MethodGet, "/movies?sortBy=title&sortOrder=asc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]movieResponse](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "Arrival", list[0].Title)

	rec = ts.do(t, http.MethodGet, "/movies?search=incep&genre=thr", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]movieResponse](t, rec), 1)

	rec = ts.do(t, http.MethodGet, "/movies?sortBy=budget", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/movies/by-name/"+url.PathEscape("Inception 2"), user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/movies/by-name/"+url.PathEscape("Inception 2"), ts.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/movies/by-name/"+url.PathEscape("Inception 2"), ts.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRatingScenarioOverHTTP(t *testing.T) {
	ts := buildTestServer(t)
	movie := ts.createMovie(t, "Inception")
	tokens := []string{ts.signup(t, "ann"), ts.signup(t, "ben"), ts.signup(t, "cat")}

	var ratingIDs []string
	var last ratingSubmitResponse
	for i, v := range []int{3, 4, 5} {
		rec := ts.do(t, http.MethodPost, "/ratings", tokens[i], map[string]interface{}{"movieId": movie.ID, "rating": v})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		last = decode[ratingSubmitResponse](t, rec)
		ratingIDs = append(ratingIDs, last.Rating.ID)
	}
	assert.Equal(t, 4.0, last.Movie.AverageRating)
	assert.EqualValues(t, 3, last.Movie.NumberOfRatings)

	rec := ts.do(t, http.MethodPost, "/ratings", tokens[2], map[string]interface{}{"movieId": movie.ID, "rating": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	last = decode[ratingSubmitResponse](t, rec)
	assert.Equal(t, "Rating updated successfully", last.Message)
	assert.Equal(t, 3.0, last.Movie.AverageRating)
	assert.EqualValues(t, 3, last.Movie.NumberOfRatings)

	rec = ts.do(t, http.MethodDelete, "/ratings/"+ratingIDs[0], tokens[1], nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/ratings/"+ratingIDs[0], ts.adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/ratings/"+ratingIDs[0], tokens[0], nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/movies/"+movie.ID, "", nil)
	got := decode[movieResponse](t, rec)
	assert.Equal(t, 3.0, got.AverageRating)
	assert.EqualValues(t, 2, got.NumberOfRatings)

	rec = ts.do(t, http.MethodGet, "/ratings?movieId="+movie.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ratings := decode[[]ratingResponse](t, rec)
	require.Len(t, ratings, 2)
	assert.NotEmpty(t, ratings[0].UserName)

	rec = ts.do(t, http.MethodPost, "/comments", tokens[0], map[string]string{"movieId": movie.ID, "content": "loved it"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/movies/"+movie.ID, ts.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/ratings?movieId="+movie.ID, "", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
	rec = ts.do(t, http.MethodGet, "/comments?movieId="+movie.ID, "", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRatingValidationOverHTTP(t *testing.T) {
	ts := buildTestServer(t)
	movie := ts.createMovie(t, "Inception")
	token := ts.signup(t, "ann")

	rec := ts.do(t, http.MethodPost, "/ratings", token, map[string]interface{}{"movieId": movie.ID, "rating": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, http.MethodPost, "/ratings", token, map[string]interface{}{"movieId": movie.ID, "rating": 4.5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, http.MethodPost, "/ratings", token, map[string]interface{}{"movieId": "missing", "rating": 4})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodPost, "/ratings", token, "invalid json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, http.MethodGet, "/ratings", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentEndpoints(t *testing.T) {
	ts := buildTestServer(t)
	movie := ts.createMovie(t, "Inception")
	ann, ben := ts.signup(t, "ann"), ts.signup(t, "ben")

	rec := ts.do(t, http.MethodPost, "/comments", ann, map[string]string{"movieId": movie.ID, "content": "first"})
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[commentResponse](t, rec)
	assert.Equal(t, "ann", first.Name)

	rec = ts.do(t, http.MethodPost, "/comments", ann, map[string]string{"movieId": movie.ID, "content": "second"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/comments?movieId="+movie.ID, "", nil)
	list := decode[[]commentResponse](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Content)

	rec = ts.do(t, http.MethodPost, "/comments", ann, map[string]string{"movieId": "missing", "content": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/comments/"+first.ID, ben, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/comments/"+first.ID, ts.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/comments/"+first.ID, ann, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactEndpoints(t *testing.T) {
	ts := buildTestServer(t)
	user := ts.signup(t, "ann")

	rec := ts.do(t, http.MethodPost, "/contacts", "", map[string]string{"name": "Ann", "email": "ann@example.com", "content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(t, http.MethodPost, "/contacts", "", map[string]string{"name": "Ann", "email": "ann", "content": "hello"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/contacts", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodGet, "/contacts", ts.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]contactResponse](t, rec), 1)
}

type failingHealth struct{}

func (failingHealth) HealthCheck(_ context.Context) error { return errors.New("down") }

func TestHealthz(t *testing.T) {
	ts := buildTestServer(t)
	rec := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	ts.srv.health = failingHealth{}
	rec = ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	ts := buildTestServer(t)
	ts.srv.cfg.StaticDir = dir
	ts.srv.router = chi.NewRouter()
	ts.srv.registerRoutes()

	rec := ts.do(t, http.MethodGet, "/app.js", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")

	rec = ts.do(t, http.MethodGet, "/movie/some-client-route", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app")

	rec = ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMovieByNameTitleEscaping(t *testing.T) {
	ts := buildTestServer(t)
	for _, title := range []string{"100% Wolf", "50%20off", "AC/DC Live", "Plain Title"} {
		t.Run(title, func(t *testing.T) {
			ts.createMovie(t, title)
			target := "/movies/by-name/" + url.PathEscape(title)

			update := movieBody(title)
			update["genre"] = "Documentary"
			rec := ts.do(t, http.MethodPut, target, ts.adminToken, update)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, title, decode[movieMutationResponse](t, rec).Movie.Title)

			rec = ts.do(t, http.MethodDelete, target, ts.adminToken, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			rec = ts.do(t, http.MethodDelete, target, ts.adminToken, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}
