package biz

import (
	"errors"
	"fmt"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewMovieUseCase, NewRatingUseCase)

var (
	ErrMovieNotFound     = errors.New("movie not found")
	ErrDuplicateTitle    = errors.New("movie title already exists")
	ErrEmptyTitle        = errors.New("title is required")
	ErrProvider          = errors.New("metadata provider error")
	ErrMalformedResponse = errors.New("malformed metadata response")
)

// DuplicateTitleError reports an import whose title is already on the list.
// MovieID is the existing record, or zero when it could not be determined.
type DuplicateTitleError struct {
	Title   string
	MovieID int64
}

func (e *DuplicateTitleError) Error() string {
	return fmt.Sprintf("%v: %q", ErrDuplicateTitle, e.Title)
}

func (e *DuplicateTitleError) Unwrap() error { return ErrDuplicateTitle }
