package httpserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Clark-Hu/movie-review/internal/repository"
)

func TestBuildMovieFilters(t *testing.T) {
	values, _ := url.ParseQuery("search= Nolan &genre= Sci-Fi &sortBy=title&sortOrder=ASC&limit=50&offset=10")

	filters, err := buildMovieFilters(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filters.Search != "Nolan" {
		t.Fatalf("search not trimmed: %q", filters.Search)
	}
	if filters.Genre != "Sci-Fi" {
		t.Fatalf("genre not trimmed: %q", filters.Genre)
	}
	if filters.SortBy != repository.SortByTitle || filters.Descending {
		t.Fatalf("sort parse failed: %+v", filters)
	}
	if filters.Limit != 50 || filters.Offset != 10 {
		t.Fatalf("paging parse failed: limit=%d offset=%d", filters.Limit, filters.Offset)
	}
}

func TestBuildMovieFilters_Defaults(t *testing.T) {
	filters, err := buildMovieFilters(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filters != repository.DefaultMovieListFilters() {
		t.Fatalf("expected defaults, got %+v", filters)
	}
}

func TestBuildMovieFilters_Invalid(t *testing.T) {
	for _, raw := range []string{
		"sortBy=budget",
		"sortOrder=sideways",
		"limit=0",
		"limit=101",
		"limit=ten",
		"offset=-1",
	} {
		values, _ := url.ParseQuery(raw)
		if _, err := buildMovieFilters(values); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		cookie string
		want   string
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer abc ", want: "abc"},
		{header: "abc", want: ""},
		{header: "Basic abc", want: ""},
		{cookie: "abc", want: "abc"},
		{cookie: "Bearer abc", want: "abc"},
		{header: "Bearer fromheader", cookie: "fromcookie", want: "fromheader"},
		{want: ""},
	}
	for _, c := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		if c.cookie != "" {
			req.AddCookie(&http.Cookie{Name: authCookie, Value: c.cookie})
		}
		if got := bearerToken(req); got != c.want {
			t.Fatalf("bearerToken(header=%q cookie=%q) = %q, want %q", c.header, c.cookie, got, c.want)
		}
	}
}
