package biz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
)

func inceptionDetail() *MovieDetail {
	return &MovieDetail{
		ExternalID:  27205,
		Title:       "Inception",
		Overview:    "Cobb, a skilled thief who commits corporate espionage...",
		ReleaseDate: "2010-07-16",
		PosterPath:  "/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg",
	}
}

func TestImportMovie(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	meta := &fakeMetadata{details: map[string]*MovieDetail{"27205": inceptionDetail()}}
	uc := NewMovieUseCase(repo, meta, log.DefaultLogger)

	m, err := uc.ImportMovie(ctx, "27205")
	if err != nil {
		t.Fatalf("ImportMovie returned error: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if m.Year != 2010 {
		t.Fatalf("expected year 2010, got %d", m.Year)
	}
	if m.Rating != nil || m.Review != nil || m.Ranking != nil {
		t.Fatalf("expected rating, review and ranking unset, got %+v", m)
	}
	if m.ImgURL != "https://image.tmdb.org/t/p/w500/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg" {
		t.Fatalf("unexpected img url %q", m.ImgURL)
	}
}

func TestImportMovieDuplicateTitle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	existing := seed(t, repo, "Inception", ptr(9.0))
	meta := &fakeMetadata{details: map[string]*MovieDetail{"27205": inceptionDetail()}}
	uc := NewMovieUseCase(repo, meta, log.DefaultLogger)

	_, err := uc.ImportMovie(ctx, "27205")
	if !errors.Is(err, ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}
	var dup *DuplicateTitleError
	if !errors.As(err, &dup) || dup.MovieID != existing {
		t.Fatalf("expected duplicate error pointing at %d, got %#v", existing, err)
	}
	movies, _ := repo.ListMoviesByRating(ctx)
	if len(movies) != 1 {
		t.Fatalf("expected no mutation, got %d movies", len(movies))
	}
}

// racingRepo hides the existing row from the pre-check, as a concurrent
// import committing between the lookup and the insert would.
type racingRepo struct {
	*memoryRepo
	hidden bool
}

func (r *racingRepo) GetMovieByTitle(ctx context.Context, title string) (*Movie, error) {
	if r.hidden {
		r.hidden = false
		return nil, ErrMovieNotFound
	}
	return r.memoryRepo.GetMovieByTitle(ctx, title)
}

func TestImportMovieDuplicateCaughtByInsert(t *testing.T) {
	ctx := context.Background()
	repo := &racingRepo{memoryRepo: newMemoryRepo(), hidden: true}
	existing := seed(t, repo.memoryRepo, "Inception", nil)
	meta := &fakeMetadata{details: map[string]*MovieDetail{"27205": inceptionDetail()}}
	uc := NewMovieUseCase(repo, meta, log.DefaultLogger)

	_, err := uc.ImportMovie(ctx, "27205")
	var dup *DuplicateTitleError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateTitleError, got %v", err)
	}
	if dup.MovieID != existing {
		t.Fatalf("expected existing id %d, got %d", existing, dup.MovieID)
	}
}

func TestImportMovieMalformedReleaseDate(t *testing.T) {
	for _, date := range []string{"", "20", "abcd-01-01"} {
		d := inceptionDetail()
		d.ReleaseDate = date
		repo := newMemoryRepo()
		uc := NewMovieUseCase(repo, &fakeMetadata{details: map[string]*MovieDetail{"1": d}}, log.DefaultLogger)

		_, err := uc.ImportMovie(context.Background(), "1")
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("release date %q: expected ErrMalformedResponse, got %v", date, err)
		}
		if len(repo.movies) != 0 {
			t.Fatalf("release date %q: expected nothing stored", date)
		}
	}
}

func TestImportMovieTruncatesDescription(t *testing.T) {
	d := inceptionDetail()
	d.Overview = strings.Repeat("é", MaxTextLength+20)
	repo := newMemoryRepo()
	uc := NewMovieUseCase(repo, &fakeMetadata{details: map[string]*MovieDetail{"1": d}}, log.DefaultLogger)

	m, err := uc.ImportMovie(context.Background(), "1")
	if err != nil {
		t.Fatalf("ImportMovie returned error: %v", err)
	}
	if n := len([]rune(m.Description)); n != MaxTextLength {
		t.Fatalf("expected %d runes, got %d", MaxTextLength, n)
	}
}

func TestImportMovieProviderError(t *testing.T) {
	repo := newMemoryRepo()
	uc := NewMovieUseCase(repo, &fakeMetadata{}, log.DefaultLogger)

	_, err := uc.ImportMovie(context.Background(), "404")
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestSearchCandidates(t *testing.T) {
	meta := &fakeMetadata{candidates: []*Candidate{
		{ExternalID: 27205, Title: "Inception"},
		{ExternalID: 64956, Title: "Inception: The Cobol Job"},
	}}
	uc := NewMovieUseCase(newMemoryRepo(), meta, log.DefaultLogger)

	got, err := uc.SearchCandidates(context.Background(), "  Inception ")
	if err != nil {
		t.Fatalf("SearchCandidates returned error: %v", err)
	}
	if len(got) != 2 || got[0].ExternalID != 27205 || got[1].ExternalID != 64956 {
		t.Fatalf("expected provider order preserved, got %+v", got)
	}
	if len(meta.searched) != 1 || meta.searched[0] != "Inception" {
		t.Fatalf("expected trimmed query, got %v", meta.searched)
	}
}

func TestSearchCandidatesEmptyTitle(t *testing.T) {
	meta := &fakeMetadata{}
	uc := NewMovieUseCase(newMemoryRepo(), meta, log.DefaultLogger)

	if _, err := uc.SearchCandidates(context.Background(), "   "); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if len(meta.searched) != 0 {
		t.Fatal("expected provider not to be called")
	}
}

func TestSearchCandidatesProviderError(t *testing.T) {
	uc := NewMovieUseCase(newMemoryRepo(), &fakeMetadata{err: ErrProvider}, log.DefaultLogger)

	if _, err := uc.SearchCandidates(context.Background(), "Heat"); !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestDeleteMovie(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	keep := seed(t, repo, "Heat", nil)
	drop := seed(t, repo, "Ronin", nil)
	uc := NewMovieUseCase(repo, &fakeMetadata{}, log.DefaultLogger)

	if err := uc.DeleteMovie(ctx, drop); err != nil {
		t.Fatalf("DeleteMovie returned error: %v", err)
	}
	if _, err := uc.GetMovie(ctx, drop); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("expected deleted movie to be gone, got %v", err)
	}
	if _, err := uc.GetMovie(ctx, keep); err != nil {
		t.Fatalf("expected other movie to remain: %v", err)
	}

	if err := uc.DeleteMovie(ctx, drop); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound on second delete, got %v", err)
	}
	if len(repo.movies) != 1 {
		t.Fatalf("expected 1 movie left, got %d", len(repo.movies))
	}
}

func TestParseReleaseYear(t *testing.T) {
	year, err := ParseReleaseYear("2010-07-16")
	if err != nil || year != 2010 {
		t.Fatalf("expected 2010, got %d (%v)", year, err)
	}
}
