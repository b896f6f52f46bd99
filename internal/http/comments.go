package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/service"
)

type commentResponse struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movieId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCommentResponse(c domain.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		MovieID:   c.MovieID,
		UserID:    c.UserID,
		Content:   c.Content,
		Name:      c.AuthorName,
		CreatedAt: c.CreatedAt,
	}
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req service.CommentInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	comment, err := s.svc.Comments.Add(r.Context(), caller(r), req)
	if err != nil {
		s.respondServiceError(w, "create comment", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.svc.Comments.List(r.Context(), r.URL.Query().Get("movieId"))
	if err != nil {
		s.respondServiceError(w, "list comments", err)
		return
	}
	items := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		items = append(items, toCommentResponse(c))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Comments.Delete(r.Context(), caller(r), chi.URLParam(r, "commentId")); err != nil {
		s.respondServiceError(w, "delete comment", err)
		return
	}
	s.respondJSON(w, http.StatusOK, messageResponse{Message: "Comment deleted successfully"})
}
