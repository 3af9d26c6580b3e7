package biz

import (
	"context"
)

// Movie domain model
type Movie struct {
	ID          int64
	Title       string
	Year        int
	Description string
	Rating      *float64
	Ranking     *int
	Review      *string
	ImgURL      string
}

// MovieUpdate carries the fields to overwrite; nil fields are left untouched.
type MovieUpdate struct {
	Rating  *float64
	Review  *string
	Ranking *int
}

// Candidate is a search hit from the metadata provider. It is never stored.
type Candidate struct {
	ExternalID  int64
	Title       string
	PosterPath  string
	ReleaseDate string
	Overview    string
}

// MovieDetail is the provider's full record for one movie.
type MovieDetail struct {
	ExternalID  int64
	Title       string
	Overview    string
	ReleaseDate string
	PosterPath  string
}

// MovieRepo defines the repository interface for movies
type MovieRepo interface {
	CreateMovie(ctx context.Context, movie *Movie) (int64, error)
	GetMovie(ctx context.Context, id int64) (*Movie, error)
	GetMovieByTitle(ctx context.Context, title string) (*Movie, error)
	ListMoviesByRating(ctx context.Context) ([]*Movie, error)
	UpdateMovie(ctx context.Context, id int64, update *MovieUpdate) error
	DeleteMovie(ctx context.Context, id int64) error
	SaveRankings(ctx context.Context, movies []*Movie) error
}

// MetadataClient defines the interface for the movie metadata provider
type MetadataClient interface {
	SearchMovies(ctx context.Context, title string) ([]*Candidate, error)
	GetMovieDetail(ctx context.Context, externalID string) (*MovieDetail, error)
}
