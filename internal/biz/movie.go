package biz

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
)

// PosterBaseURL is prefixed to the provider's poster path fragment.
const PosterBaseURL = "https://image.tmdb.org/t/p/w500"

// MaxTextLength bounds description, review and img_url.
const MaxTextLength = 500

// MovieUseCase handles searching, importing and removing movies
type MovieUseCase struct {
	repo     MovieRepo
	metadata MetadataClient
	log      *log.Helper
}

// NewMovieUseCase creates a new MovieUseCase instance
func NewMovieUseCase(repo MovieRepo, metadata MetadataClient, logger log.Logger) *MovieUseCase {
	return &MovieUseCase{
		repo:     repo,
		metadata: metadata,
		log:      log.NewHelper(logger),
	}
}

// SearchCandidates asks the metadata provider for movies matching title.
// Candidates come back in provider order.
func (uc *MovieUseCase) SearchCandidates(ctx context.Context, title string) ([]*Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	candidates, err := uc.metadata.SearchMovies(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}
	return candidates, nil
}

// ImportMovie fetches the provider record for externalID and stores it as a
// new, unrated movie. The stored movie is returned with its assigned ID.
func (uc *MovieUseCase) ImportMovie(ctx context.Context, externalID string) (*Movie, error) {
	detail, err := uc.metadata.GetMovieDetail(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movie %s: %w", externalID, err)
	}

	year, err := ParseReleaseYear(detail.ReleaseDate)
	if err != nil {
		return nil, err
	}

	imgURL := PosterBaseURL + detail.PosterPath
	if len(imgURL) > MaxTextLength {
		return nil, fmt.Errorf("%w: poster_path too long", ErrMalformedResponse)
	}

	// Imports racing past this lookup are caught by the unique title index.
	existing, err := uc.repo.GetMovieByTitle(ctx, detail.Title)
	switch {
	case err == nil:
		return nil, &DuplicateTitleError{Title: detail.Title, MovieID: existing.ID}
	case !errors.Is(err, ErrMovieNotFound):
		return nil, fmt.Errorf("failed to check title: %w", err)
	}

	movie := &Movie{
		Title:       detail.Title,
		Year:        year,
		Description: truncate(detail.Overview, MaxTextLength),
		ImgURL:      imgURL,
	}
	if _, err := uc.repo.CreateMovie(ctx, movie); err != nil {
		if errors.Is(err, ErrDuplicateTitle) {
			dup := &DuplicateTitleError{Title: detail.Title}
			if m, lookupErr := uc.repo.GetMovieByTitle(ctx, detail.Title); lookupErr == nil {
				dup.MovieID = m.ID
			}
			return nil, dup
		}
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	stored, err := uc.repo.GetMovieByTitle(ctx, detail.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to reload movie: %w", err)
	}
	uc.log.WithContext(ctx).Infof("imported movie %q (tmdb %s) as id %d", stored.Title, externalID, stored.ID)
	return stored, nil
}

// GetMovie retrieves a movie by its ID
func (uc *MovieUseCase) GetMovie(ctx context.Context, id int64) (*Movie, error) {
	movie, err := uc.repo.GetMovie(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return movie, nil
}

// DeleteMovie removes a movie by its ID
func (uc *MovieUseCase) DeleteMovie(ctx context.Context, id int64) error {
	if err := uc.repo.DeleteMovie(ctx, id); err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	uc.log.WithContext(ctx).Infof("deleted movie %d", id)
	return nil
}

// ParseReleaseYear reads the year from a YYYY-MM-DD release date.
func ParseReleaseYear(releaseDate string) (int, error) {
	if len(releaseDate) < 4 {
		return 0, fmt.Errorf("%w: release_date %q", ErrMalformedResponse, releaseDate)
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0, fmt.Errorf("%w: release_date %q", ErrMalformedResponse, releaseDate)
	}
	return year, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
