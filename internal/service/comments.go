package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
)

// CommentInput is the payload of a new comment.
type CommentInput struct {
	MovieID string `json:"movieId" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// CommentService manages movie comments.
type CommentService struct {
	comments repository.Comments
	movies   repository.Movies
	logger   *log.Logger
}

// Add stores a comment by caller. The caller's display name is copied onto it.
func (s *CommentService) Add(ctx context.Context, caller auth.Identity, in CommentInput) (domain.Comment, error) {
	if err := requireAuthenticated(caller); err != nil {
		return domain.Comment{}, err
	}
	in.MovieID = strings.TrimSpace(in.MovieID)
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(in); err != nil {
		return domain.Comment{}, err
	}
	if _, err := s.movies.GetByID(ctx, in.MovieID); err != nil {
		return domain.Comment{}, notFoundOr(err, "load movie", "movie not found")
	}

	created, err := s.comments.Create(ctx, domain.Comment{
		ID:         newID(),
		UserID:     caller.UserID,
		MovieID:    in.MovieID,
		Content:    in.Content,
		AuthorName: caller.Name,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUnknownUser) {
			return domain.Comment{}, staleAccount()
		}
		return domain.Comment{}, notFoundOr(err, "create comment", "movie not found")
	}
	return created, nil
}

// List returns a movie's comments, newest first.
func (s *CommentService) List(ctx context.Context, movieID string) ([]domain.Comment, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return nil, domain.InvalidInput("movieId is required")
	}
	comments, err := s.comments.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Delete removes a comment. Its author and admins may do so.
func (s *CommentService) Delete(ctx context.Context, caller auth.Identity, commentID string) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return notFoundOr(err, "load comment", "comment not found")
	}
	if !caller.IsOwner(comment.UserID) && !caller.IsAdmin() {
		return domain.Forbidden("you can only delete your own comments")
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return notFoundOr(err, "delete comment", "comment not found")
	}
	if !caller.IsOwner(comment.UserID) {
		s.logger.Printf("comments: admin %s removed comment %s by %s", caller.UserID, comment.ID, comment.UserID)
	}
	return nil
}
