package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"topmovies/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const movieCacheTTL = 15 * time.Minute

type movieRepo struct {
	data *Data
	log  *log.Helper
}

// NewMovieRepo creates a new movie repository
func NewMovieRepo(data *Data, logger log.Logger) biz.MovieRepo {
	return &movieRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *movieRepo) CreateMovie(ctx context.Context, movie *biz.Movie) (int64, error) {
	dbMovie := r.bizToModel(movie)
	dbMovie.ID = 0

	if err := r.data.db.WithContext(ctx).Create(dbMovie).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %q", biz.ErrDuplicateTitle, movie.Title)
		}
		return 0, fmt.Errorf("failed to create movie: %w", err)
	}

	movie.ID = dbMovie.ID
	return dbMovie.ID, nil
}

func (r *movieRepo) GetMovie(ctx context.Context, id int64) (*biz.Movie, error) {
	if r.data.rdb == nil {
		return r.loadMovie(ctx, id)
	}

	key := movieCacheKey(id)
	if cached, err := r.data.rdb.Get(ctx, key).Result(); err == nil {
		var movie biz.Movie
		if err := json.Unmarshal([]byte(cached), &movie); err == nil {
			r.log.Debugf("cache hit for movie: %d", id)
			return &movie, nil
		}
	}

	// The fill only lands if no invalidation bumped the generation while the
	// row was being read.
	var (
		movie   *biz.Movie
		loadErr error
	)
	err := r.data.rdb.Watch(ctx, func(tx *redis.Tx) error {
		movie, loadErr = r.loadMovie(ctx, id)
		if loadErr != nil {
			return loadErr
		}
		payload, err := json.Marshal(movie)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, movieCacheTTL)
			return nil
		})
		return err
	}, movieGenKey(id))

	switch {
	case loadErr != nil:
		return nil, loadErr
	case movie == nil:
		r.log.Warnf("movie cache unavailable: %v", err)
		return r.loadMovie(ctx, id)
	case err != nil && !errors.Is(err, redis.TxFailedErr):
		r.log.Warnf("failed to cache movie %d: %v", id, err)
	}
	return movie, nil
}

func (r *movieRepo) loadMovie(ctx context.Context, id int64) (*biz.Movie, error) {
	var dbMovie Movie
	if err := r.data.db.WithContext(ctx).First(&dbMovie, id).Error; err != nil {
		return nil, notFound(err, "movie %d", id)
	}
	return r.modelToBiz(&dbMovie), nil
}

func (r *movieRepo) GetMovieByTitle(ctx context.Context, title string) (*biz.Movie, error) {
	var dbMovie Movie
	if err := r.data.db.WithContext(ctx).Where("title = ?", title).First(&dbMovie).Error; err != nil {
		return nil, notFound(err, "movie %q", title)
	}
	return r.modelToBiz(&dbMovie), nil
}

func (r *movieRepo) ListMoviesByRating(ctx context.Context) ([]*biz.Movie, error) {
	var dbMovies []Movie
	err := r.data.db.WithContext(ctx).
		Order("rating ASC NULLS FIRST").
		Order("id ASC").
		Find(&dbMovies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	movies := make([]*biz.Movie, 0, len(dbMovies))
	for i := range dbMovies {
		movies = append(movies, r.modelToBiz(&dbMovies[i]))
	}
	return movies, nil
}

func (r *movieRepo) DeleteMovie(ctx context.Context, id int64) error {
	result := r.data.db.WithContext(ctx).Delete(&Movie{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete movie: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", biz.ErrMovieNotFound, id)
	}

	r.invalidate(ctx, id)
	return nil
}

// invalidate drops cached copies of the given movies and bumps their
// generation so in-flight fills are discarded.
func (r *movieRepo) invalidate(ctx context.Context, ids ...int64) {
	if r.data.rdb == nil || len(ids) == 0 {
		return
	}
	_, err := r.data.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, movieCacheKey(id))
			pipe.Incr(ctx, movieGenKey(id))
			pipe.Expire(ctx, movieGenKey(id), movieCacheTTL)
		}
		return nil
	})
	if err != nil {
		r.log.Warnf("failed to invalidate movie cache: %v", err)
	}
}

// Helper: Convert biz.Movie to data.Movie
func (r *movieRepo) bizToModel(m *biz.Movie) *Movie {
	return &Movie{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Description: m.Description,
		Rating:      m.Rating,
		Ranking:     m.Ranking,
		Review:      m.Review,
		ImgURL:      m.ImgURL,
	}
}

// Helper: Convert data.Movie to biz.Movie
func (r *movieRepo) modelToBiz(m *Movie) *biz.Movie {
	return &biz.Movie{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Description: m.Description,
		Rating:      m.Rating,
		Ranking:     m.Ranking,
		Review:      m.Review,
		ImgURL:      m.ImgURL,
	}
}

func movieCacheKey(id int64) string {
	return fmt.Sprintf("movie:%d", id)
}

func movieGenKey(id int64) string {
	return fmt.Sprintf("movie:%d:gen", id)
}

// notFound maps gorm's missing-record error onto biz.ErrMovieNotFound.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", biz.ErrMovieNotFound, fmt.Sprintf(format, args...))
	}
	return fmt.Errorf("failed to get movie: %w", err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
