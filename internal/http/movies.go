package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
	"github.com/Clark-Hu/movie-review/internal/service"
)

type movieResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ReleaseDate     string    `json:"releaseDate"`
	Genre           string    `json:"genre"`
	Director        string    `json:"director"`
	Cast            []string  `json:"cast"`
	PosterURL       string    `json:"posterUrl"`
	TrailerURL      string    `json:"trailerUrl"`
	AverageRating   float64   `json:"averageRating"`
	NumberOfRatings int64     `json:"numberOfRatings"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type movieMutationResponse struct {
	Message string        `json:"message"`
	Movie   movieResponse `json:"movie"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filters, err := buildMovieFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movies, err := s.svc.Movies.List(r.Context(), filters)
	if err != nil {
		s.respondServiceError(w, "list movies", err)
		return
	}

	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func buildMovieFilters(query url.Values) (repository.MovieListFilters, error) {
	filters := repository.DefaultMovieListFilters()

	filters.Search = strings.TrimSpace(query.Get("search"))
	filters.Genre = strings.TrimSpace(query.Get("genre"))

	if val := strings.TrimSpace(query.Get("sortBy")); val != "" {
		if !repository.ValidSortField(val) {
			return filters, fmt.Errorf("invalid sortBy value")
		}
		filters.SortBy = val
	}
	if val := strings.TrimSpace(query.Get("sortOrder")); val != "" {
		switch strings.ToLower(val) {
		case "asc":
			filters.Descending = false
		case "desc":
			filters.Descending = true
		default:
			return filters, fmt.Errorf("invalid sortOrder value")
		}
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit < 1 || limit > repository.MaxListLimit {
			return filters, fmt.Errorf("invalid limit value")
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("offset")); val != "" {
		offset, err := strconv.Atoi(val)
		if err != nil || offset < 0 {
			return filters, fmt.Errorf("invalid offset value")
		}
		filters.Offset = offset
	}
	return filters, nil
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.svc.Movies.Get(r.Context(), service.ByID(chi.URLParam(r, "id")))
	if err != nil {
		s.respondServiceError(w, "get movie", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req service.MovieInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie, err := s.svc.Movies.Add(r.Context(), caller(r), req)
	if err != nil {
		s.respondServiceError(w, "create movie", err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/movies/%s", url.PathEscape(movie.ID)))
	s.respondJSON(w, http.StatusCreated, movieMutationResponse{
		Message: "Movie added successfully",
		Movie:   toMovieResponse(movie),
	})
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	key, err := movieKeyParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	var req service.MovieInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie, err := s.svc.Movies.Update(r.Context(), caller(r), key, req)
	if err != nil {
		s.respondServiceError(w, "update movie", err)
		return
	}
	s.respondJSON(w, http.StatusOK, movieMutationResponse{
		Message: "Movie updated successfully",
		Movie:   toMovieResponse(movie),
	})
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	key, err := movieKeyParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if err := s.svc.Movies.Delete(r.Context(), caller(r), key); err != nil {
		s.respondServiceError(w, "delete movie", err)
		return
	}
	s.respondJSON(w, http.StatusOK, messageResponse{Message: "Movie and associated data deleted successfully"})
}

// movieKeyParam resolves the {id} or {title} path parameter.
func movieKeyParam(r *http.Request) (service.MovieKey, error) {
	if title := chi.URLParam(r, "title"); title != "" {
		// chi matches on RawPath when the path holds an escaped slash, and the
		// parameter is then still escaped.
		if r.URL.RawPath != "" {
			unescaped, err := url.PathUnescape(title)
			if err != nil {
				return service.MovieKey{}, fmt.Errorf("invalid title parameter")
			}
			title = unescaped
		}
		return service.ByTitle(title), nil
	}
	if id := chi.URLParam(r, "id"); id != "" {
		return service.ByID(id), nil
	}
	return service.MovieKey{}, fmt.Errorf("missing movie identifier")
}

func toMovieResponse(movie domain.Movie) movieResponse {
	cast := movie.Cast
	if cast == nil {
		cast = []string{}
	}
	return movieResponse{
		ID:              movie.ID,
		Title:           movie.Title,
		Description:     movie.Description,
		ReleaseDate:     movie.ReleaseDate.Format(service.DateLayout),
		Genre:           movie.Genre,
		Director:        movie.Director,
		Cast:            cast,
		PosterURL:       movie.PosterURL,
		TrailerURL:      movie.TrailerURL,
		AverageRating:   movie.AverageRating,
		NumberOfRatings: movie.NumberOfRatings,
		CreatedAt:       movie.CreatedAt,
		UpdatedAt:       movie.UpdatedAt,
	}
}
