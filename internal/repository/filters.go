package repository

// Sortable movie fields.
const (
	SortByTitle         = "title"
	SortByReleaseDate   = "releaseDate"
	SortByAverageRating = "averageRating"
)

// MaxListLimit caps an explicit page size.
const MaxListLimit = 100

// MovieListFilters encapsulates search, sort and paging options.
type MovieListFilters struct {
	// Search and Genre are case-insensitive substring matches.
	Search     string
	Genre      string
	SortBy     string
	Descending bool
	// Limit of 0 returns every match.
	Limit  int
	Offset int
}

// DefaultMovieListFilters sorts by release date, newest first.
func DefaultMovieListFilters() MovieListFilters {
	return MovieListFilters{SortBy: SortByReleaseDate, Descending: true}
}

// ValidSortField reports whether field may be used in MovieListFilters.SortBy.
func ValidSortField(field string) bool {
	switch field {
	case SortByTitle, SortByReleaseDate, SortByAverageRating:
		return true
	}
	return false
}
