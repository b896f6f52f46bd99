package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
)

// ContactInput is a contact-form submission.
type ContactInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Content string `json:"content" validate:"required"`
}

// ContactService stores contact-form messages.
type ContactService struct {
	contacts repository.Contacts
}

func (s *ContactService) Add(ctx context.Context, in ContactInput) (domain.Contact, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = fold(in.Email)
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(in); err != nil {
		return domain.Contact{}, err
	}
	contact, err := s.contacts.Create(ctx, domain.Contact{
		ID:      newID(),
		Name:    in.Name,
		Email:   in.Email,
		Content: in.Content,
	})
	if err != nil {
		return domain.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// List returns every message, newest first. Admin only.
func (s *ContactService) List(ctx context.Context, caller auth.Identity) ([]domain.Contact, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}
