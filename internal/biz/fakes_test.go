package biz

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// memoryRepo is an in-memory MovieRepo mirroring the gorm store's contract.
type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	movies map[int64]Movie

	saveRankingsCalls int
}

var _ MovieRepo = (*memoryRepo)(nil)

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{movies: make(map[int64]Movie)}
}

func (r *memoryRepo) CreateMovie(_ context.Context, movie *Movie) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movies {
		if m.Title == movie.Title {
			return 0, ErrDuplicateTitle
		}
	}
	r.nextID++
	m := *movie
	m.ID = r.nextID
	r.movies[m.ID] = m
	movie.ID = m.ID
	return m.ID, nil
}

func (r *memoryRepo) GetMovie(_ context.Context, id int64) (*Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	return &m, nil
}

func (r *memoryRepo) GetMovieByTitle(_ context.Context, title string) (*Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movies {
		if m.Title == title {
			return &m, nil
		}
	}
	return nil, ErrMovieNotFound
}

func (r *memoryRepo) ListMoviesByRating(_ context.Context) ([]*Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Movie, 0, len(r.movies))
	for _, m := range r.movies {
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Rating == nil && b.Rating == nil:
			return a.ID < b.ID
		case a.Rating == nil:
			return true
		case b.Rating == nil:
			return false
		case *a.Rating != *b.Rating:
			return *a.Rating < *b.Rating
		default:
			return a.ID < b.ID
		}
	})
	return out, nil
}

func (r *memoryRepo) UpdateMovie(_ context.Context, id int64, update *MovieUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movies[id]
	if !ok {
		return ErrMovieNotFound
	}
	if update.Rating != nil {
		m.Rating = update.Rating
	}
	if update.Review != nil {
		m.Review = update.Review
	}
	if update.Ranking != nil {
		m.Ranking = update.Ranking
	}
	r.movies[id] = m
	return nil
}

func (r *memoryRepo) DeleteMovie(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.movies[id]; !ok {
		return ErrMovieNotFound
	}
	delete(r.movies, id)
	return nil
}

func (r *memoryRepo) SaveRankings(_ context.Context, movies []*Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveRankingsCalls++
	for _, in := range movies {
		m, ok := r.movies[in.ID]
		if !ok {
			return fmt.Errorf("save ranking for %d: %w", in.ID, ErrMovieNotFound)
		}
		m.Ranking = in.Ranking
		r.movies[in.ID] = m
	}
	return nil
}

type fakeMetadata struct {
	candidates []*Candidate
	details    map[string]*MovieDetail
	err        error
	searched   []string
}

var _ MetadataClient = (*fakeMetadata)(nil)

func (f *fakeMetadata) SearchMovies(_ context.Context, title string) ([]*Candidate, error) {
	f.searched = append(f.searched, title)
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func (f *fakeMetadata) GetMovieDetail(_ context.Context, externalID string) (*MovieDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[externalID]
	if !ok {
		return nil, fmt.Errorf("%w: status 404", ErrProvider)
	}
	return d, nil
}

func ptr[T any](v T) *T { return &v }

func seed(t interface{ Fatalf(string, ...any) }, repo *memoryRepo, title string, rating *float64) int64 {
	id, err := repo.CreateMovie(context.Background(), &Movie{
		Title:       title,
		Year:        2000,
		Description: title + " description",
		Rating:      rating,
		ImgURL:      PosterBaseURL + "/" + title + ".jpg",
	})
	if err != nil {
		t.Fatalf("seed %s: %v", title, err)
	}
	return id
}
