package mongorepo

import (
	"time"

	"github.com/Clark-Hu/movie-review/internal/domain"
)

type movieDoc struct {
	ID              string    `bson:"_id"`
	Title           string    `bson:"title"`
	Description     string    `bson:"description"`
	ReleaseDate     time.Time `bson:"releaseDate"`
	Genre           string    `bson:"genre"`
	Director        string    `bson:"director"`
	Cast            []string  `bson:"cast"`
	PosterURL       string    `bson:"posterUrl"`
	TrailerURL      string    `bson:"trailerUrl"`
	AverageRating   float64   `bson:"averageRating"`
	NumberOfRatings int64     `bson:"numberOfRatings"`
	CreatedAt       time.Time `bson:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt"`
}

func toMovieDoc(m domain.Movie) movieDoc {
	return movieDoc{
		ID: m.ID, Title: m.Title, Description: m.Description, ReleaseDate: m.ReleaseDate.UTC(),
		Genre: m.Genre, Director: m.Director, Cast: m.Cast, PosterURL: m.PosterURL, TrailerURL: m.TrailerURL,
		AverageRating: m.AverageRating, NumberOfRatings: m.NumberOfRatings,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func (d movieDoc) domain() domain.Movie {
	return domain.Movie{
		ID: d.ID, Title: d.Title, Description: d.Description, ReleaseDate: d.ReleaseDate.UTC(),
		Genre: d.Genre, Director: d.Director, Cast: d.Cast, PosterURL: d.PosterURL, TrailerURL: d.TrailerURL,
		AverageRating: d.AverageRating, NumberOfRatings: d.NumberOfRatings,
		CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type ratingDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	MovieID   string    `bson:"movieId"`
	Value     int       `bson:"value"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d ratingDoc) domain() domain.Rating {
	return domain.Rating{
		ID: d.ID, UserID: d.UserID, MovieID: d.MovieID, Value: d.Value,
		CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type commentDoc struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"userId"`
	MovieID    string    `bson:"movieId"`
	Content    string    `bson:"content"`
	AuthorName string    `bson:"authorName"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func (d commentDoc) domain() domain.Comment {
	return domain.Comment{
		ID: d.ID, UserID: d.UserID, MovieID: d.MovieID, Content: d.Content,
		AuthorName: d.AuthorName, CreatedAt: d.CreatedAt.UTC(),
	}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Name         string    `bson:"name"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (d userDoc) domain() domain.User {
	return domain.User{
		ID: d.ID, Email: d.Email, PasswordHash: d.PasswordHash, Name: d.Name,
		Role: domain.Role(d.Role), CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type contactDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d contactDoc) domain() domain.Contact {
	return domain.Contact{ID: d.ID, Name: d.Name, Email: d.Email, Content: d.Content, CreatedAt: d.CreatedAt.UTC()}
}
