package domain

import "time"

// Movie represents the canonical movie entity in the database/service.
// AverageRating and NumberOfRatings are derived from the movie's ratings and
// are only ever written by the rating aggregation engine.
type Movie struct {
	ID              string
	Title           string
	Description     string
	ReleaseDate     time.Time
	Genre           string
	Director        string
	Cast            []string
	PosterURL       string
	TrailerURL      string
	AverageRating   float64
	NumberOfRatings int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MovieAttributes are the admin-editable fields of a movie.
type MovieAttributes struct {
	Title       string
	Description string
	ReleaseDate time.Time
	Genre       string
	Director    string
	Cast        []string
	PosterURL   string
	TrailerURL  string
}

// Attributes returns the editable subset of m.
func (m Movie) Attributes() MovieAttributes {
	return MovieAttributes{
		Title:       m.Title,
		Description: m.Description,
		ReleaseDate: m.ReleaseDate,
		Genre:       m.Genre,
		Director:    m.Director,
		Cast:        append([]string(nil), m.Cast...),
		PosterURL:   m.PosterURL,
		TrailerURL:  m.TrailerURL,
	}
}

// Apply overwrites the editable fields of m with attrs.
func (m *Movie) Apply(attrs MovieAttributes) {
	m.Title = attrs.Title
	m.Description = attrs.Description
	m.ReleaseDate = attrs.ReleaseDate
	m.Genre = attrs.Genre
	m.Director = attrs.Director
	m.Cast = append([]string(nil), attrs.Cast...)
	m.PosterURL = attrs.PosterURL
	m.TrailerURL = attrs.TrailerURL
}
