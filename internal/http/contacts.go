package httpserver

import (
	"net/http"
	"time"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/service"
)

type contactResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toContactResponse(c domain.Contact) contactResponse {
	return contactResponse{ID: c.ID, Name: c.Name, Email: c.Email, Content: c.Content, CreatedAt: c.CreatedAt}
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req service.ContactInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	contact, err := s.svc.Contacts.Add(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, "create contact", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toContactResponse(contact))
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.svc.Contacts.List(r.Context(), caller(r))
	if err != nil {
		s.respondServiceError(w, "list contacts", err)
		return
	}
	items := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, toContactResponse(c))
	}
	s.respondJSON(w, http.StatusOK, items)
}
