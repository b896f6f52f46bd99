package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movie-review/internal/service"
)

type ratingResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	MovieID  string `json:"movieId"`
	Rating   int    `json:"rating"`
	UserName string `json:"userName,omitempty"`
}

type movieAggregateResponse struct {
	AverageRating   float64 `json:"averageRating"`
	NumberOfRatings int64   `json:"numberOfRatings"`
}

type ratingSubmitResponse struct {
	Message string                 `json:"message"`
	Rating  ratingResponse         `json:"rating"`
	Movie   movieAggregateResponse `json:"movie"`
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	var req service.RatingInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	res, err := s.svc.Ratings.Submit(r.Context(), caller(r), req)
	if err != nil {
		s.respondServiceError(w, "submit rating", err)
		return
	}

	message := "Rating updated successfully"
	if res.Created {
		message = "Rating submitted successfully"
	}
	s.respondJSON(w, http.StatusOK, ratingSubmitResponse{
		Message: message,
		Rating: ratingResponse{
			ID:      res.Rating.ID,
			UserID:  res.Rating.UserID,
			MovieID: res.Rating.MovieID,
			Rating:  res.Rating.Value,
		},
		Movie: movieAggregateResponse{
			AverageRating:   res.Aggregate.Average,
			NumberOfRatings: res.Aggregate.Count,
		},
	})
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ratings.Delete(r.Context(), caller(r), chi.URLParam(r, "ratingId")); err != nil {
		s.respondServiceError(w, "delete rating", err)
		return
	}
	s.respondJSON(w, http.StatusOK, messageResponse{Message: "Rating deleted successfully"})
}

func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.svc.Ratings.List(r.Context(), r.URL.Query().Get("movieId"))
	if err != nil {
		s.respondServiceError(w, "list ratings", err)
		return
	}
	items := make([]ratingResponse, 0, len(ratings))
	for _, rt := range ratings {
		items = append(items, ratingResponse{
			ID:       rt.ID,
			UserID:   rt.UserID,
			MovieID:  rt.MovieID,
			Rating:   rt.Value,
			UserName: rt.OwnerName,
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}
