package biz

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// RatingUseCase handles rating, reviewing and ranking movies
type RatingUseCase struct {
	movieRepo MovieRepo
	log       *log.Helper
}

// NewRatingUseCase creates a new RatingUseCase instance
func NewRatingUseCase(movieRepo MovieRepo, logger log.Logger) *RatingUseCase {
	return &RatingUseCase{
		movieRepo: movieRepo,
		log:       log.NewHelper(logger),
	}
}

// RankMovies loads every movie in ascending rating order, recomputes the
// rankings and persists them. The returned slice keeps the ascending order.
func (uc *RatingUseCase) RankMovies(ctx context.Context) ([]*Movie, error) {
	movies, err := uc.movieRepo.ListMoviesByRating(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	AssignRankings(movies)

	if err := uc.movieRepo.SaveRankings(ctx, movies); err != nil {
		return nil, fmt.Errorf("failed to save rankings: %w", err)
	}
	uc.log.WithContext(ctx).Debugf("ranked %d movies", len(movies))
	return movies, nil
}

// ReviewMovie overwrites the rating and review of a movie. The ranking is left
// alone until the next RankMovies.
func (uc *RatingUseCase) ReviewMovie(ctx context.Context, id int64, rating float64, review string) error {
	update := &MovieUpdate{
		Rating: &rating,
		Review: &review,
	}
	if err := uc.movieRepo.UpdateMovie(ctx, id, update); err != nil {
		return fmt.Errorf("failed to review movie: %w", err)
	}
	return nil
}
