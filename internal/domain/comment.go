package domain

import "time"

// Comment is a user's text note on a movie. AuthorName is copied from the
// user at creation time.
type Comment struct {
	ID         string
	UserID     string
	MovieID    string
	Content    string
	AuthorName string
	CreatedAt  time.Time
}

// Contact is a message left through the public contact form.
type Contact struct {
	ID        string
	Name      string
	Email     string
	Content   string
	CreatedAt time.Time
}
