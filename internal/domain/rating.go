package domain

import (
	"math"
	"time"
)

// Rating bounds accepted by both the request layer and the store.
const (
	MinRating = 1
	MaxRating = 5
)

// Rating represents a single user's rating for a movie.
type Rating struct {
	ID        string
	UserID    string
	MovieID   string
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingWithOwner pairs a rating with the display name of its author.
type RatingWithOwner struct {
	Rating
	OwnerName string
}

// RatingAggregate provides average and count for a movie's ratings.
type RatingAggregate struct {
	Average float64
	Count   int64
}

// AggregateRatings computes the average (one decimal place) and count of
// values. An empty set yields the zero aggregate.
func AggregateRatings(values []int) RatingAggregate {
	if len(values) == 0 {
		return RatingAggregate{}
	}
	var sum int64
	for _, v := range values {
		sum += int64(v)
	}
	count := int64(len(values))
	return RatingAggregate{
		Average: RoundToOneDecimal(float64(sum) / float64(count)),
		Count:   count,
	}
}

// RoundToOneDecimal rounds half away from zero to one decimal place.
func RoundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10.0
}

// ValidRating reports whether v is within the accepted rating bounds.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}
