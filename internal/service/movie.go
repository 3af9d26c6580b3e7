package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"topmovies/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

const (
	maxRating = 10.0
	required  = "This field is required."
)

// MovieService serves the HTML pages of the movie list
type MovieService struct {
	movieUC  *biz.MovieUseCase
	ratingUC *biz.RatingUseCase
	sessions *SessionManager
	log      *log.Helper
}

// NewMovieService creates a new MovieService
func NewMovieService(movieUC *biz.MovieUseCase, ratingUC *biz.RatingUseCase, sessions *SessionManager, logger log.Logger) *MovieService {
	return &MovieService{
		movieUC:  movieUC,
		ratingUC: ratingUC,
		sessions: sessions,
		log:      log.NewHelper(logger),
	}
}

type addForm struct {
	Name string `json:"name"`
}

type editForm struct {
	NewRating string `json:"new_rating"`
	NewReview string `json:"new_review"`
}

// ListMovies recomputes the rankings and renders the full list
func (s *MovieService) ListMovies(ctx khttp.Context) error {
	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		return s.ratingUC.RankMovies(c)
	})
	out, err := h(ctx, nil)
	if err != nil {
		return toHTTPError(err)
	}

	w, r := ctx.Response(), ctx.Request()
	return render(w, http.StatusOK, "index", indexPage{
		Flashes: s.sessions.Flashes(w, r),
		Movies:  out.([]*biz.Movie),
	})
}

// AddMovieForm renders the empty search form
func (s *MovieService) AddMovieForm(ctx khttp.Context) error {
	w, r := ctx.Response(), ctx.Request()
	return render(w, http.StatusOK, "add", addPage{CSRFToken: CSRFToken(r)})
}

// SearchMovies looks the submitted name up at the metadata provider and
// renders the candidates
func (s *MovieService) SearchMovies(ctx khttp.Context) error {
	var form addForm
	if err := ctx.BindForm(&form); err != nil {
		return err
	}

	w, r := ctx.Response(), ctx.Request()
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return render(w, http.StatusBadRequest, "add", addPage{
			CSRFToken: CSRFToken(r),
			Error:     required,
		})
	}

	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		return s.movieUC.SearchCandidates(c, req.(string))
	})
	out, err := h(ctx, name)
	if err != nil {
		return toHTTPError(err)
	}

	return render(w, http.StatusOK, "select", selectPage{
		Query:      name,
		Candidates: out.([]*biz.Candidate),
	})
}

// FindMovie imports the chosen candidate and sends the user on to rate it.
// Without an id the request does nothing.
func (s *MovieService) FindMovie(ctx khttp.Context) error {
	externalID := strings.TrimSpace(ctx.Query().Get("id"))
	if externalID == "" {
		ctx.Response().WriteHeader(http.StatusNoContent)
		return nil
	}

	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		return s.movieUC.ImportMovie(c, req.(string))
	})
	out, err := h(ctx, externalID)
	if err != nil {
		return toHTTPError(err)
	}

	movie := out.(*biz.Movie)
	http.Redirect(ctx.Response(), ctx.Request(), fmt.Sprintf("/update/%d", movie.ID), http.StatusSeeOther)
	return nil
}

// EditMovieForm renders the rating form pre-filled from the stored movie
func (s *MovieService) EditMovieForm(ctx khttp.Context) error {
	movie, err := s.movieFromPath(ctx)
	if err != nil {
		return err
	}

	page := editPage{Movie: movie}
	if movie.Rating != nil {
		page.Rating = strconv.FormatFloat(*movie.Rating, 'f', -1, 64)
	}
	if movie.Review != nil {
		page.Review = *movie.Review
	}

	w, r := ctx.Response(), ctx.Request()
	page.CSRFToken = CSRFToken(r)
	return render(w, http.StatusOK, "edit", page)
}

// EditMovie stores the submitted rating and review
func (s *MovieService) EditMovie(ctx khttp.Context) error {
	movie, err := s.movieFromPath(ctx)
	if err != nil {
		return err
	}

	var form editForm
	if err := ctx.BindForm(&form); err != nil {
		return err
	}

	w, r := ctx.Response(), ctx.Request()
	rating, review, problems := validateEdit(form)
	if len(problems) > 0 {
		return render(w, http.StatusBadRequest, "edit", editPage{
			CSRFToken: CSRFToken(r),
			Movie:     movie,
			Rating:    form.NewRating,
			Review:    form.NewReview,
			Errors:    problems,
		})
	}

	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		return nil, s.ratingUC.ReviewMovie(c, movie.ID, rating, review)
	})
	if _, err := h(ctx, form); err != nil {
		return toHTTPError(err)
	}

	s.sessions.AddFlash(w, r, fmt.Sprintf("Updated %s.", movie.Title))
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}

// DeleteMovie removes a movie from the list
func (s *MovieService) DeleteMovie(ctx khttp.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		return nil, s.movieUC.DeleteMovie(c, req.(int64))
	})
	if _, err := h(ctx, id); err != nil {
		return toHTTPError(err)
	}

	w, r := ctx.Response(), ctx.Request()
	s.sessions.AddFlash(w, r, "Movie removed.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}

// HealthCheck implements health check
func (s *MovieService) HealthCheck(ctx khttp.Context) error {
	return ctx.String(http.StatusOK, "ok")
}

func (s *MovieService) movieFromPath(ctx khttp.Context) (*biz.Movie, error) {
	id, err := pathID(ctx)
	if err != nil {
		return nil, err
	}
	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		return s.movieUC.GetMovie(c, req.(int64))
	})
	out, err := h(ctx, id)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return out.(*biz.Movie), nil
}

// pathID parses the {id} route variable. Anything but a positive integer is
// treated as an unknown movie.
func pathID(ctx khttp.Context) (int64, error) {
	raw := ctx.Vars().Get("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NotFound("MOVIE_NOT_FOUND", fmt.Sprintf("no movie with id %q", raw))
	}
	return id, nil
}

func validateEdit(form editForm) (float64, string, map[string]string) {
	problems := map[string]string{}

	var rating float64
	raw := strings.TrimSpace(form.NewRating)
	if raw == "" {
		problems["new_rating"] = required
	} else if v, err := strconv.ParseFloat(raw, 64); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		problems["new_rating"] = "Rating must be a number, e.g. 7.5."
	} else if v < 0 || v > maxRating {
		problems["new_rating"] = fmt.Sprintf("Rating must be between 0 and %g.", maxRating)
	} else {
		rating = v
	}

	review := strings.TrimSpace(form.NewReview)
	if review == "" {
		problems["new_review"] = required
	} else if utf8.RuneCountInString(review) > biz.MaxTextLength {
		problems["new_review"] = fmt.Sprintf("Review must be at most %d characters.", biz.MaxTextLength)
	}

	return rating, review, problems
}

// toHTTPError maps biz errors onto kratos errors carrying the HTTP status.
func toHTTPError(err error) error {
	if se := new(errors.Error); errors.As(err, &se) {
		return se
	}

	var dup *biz.DuplicateTitleError
	switch {
	case errors.As(err, &dup):
		e := errors.Conflict("DUPLICATE_TITLE", fmt.Sprintf("%q is already on your list.", dup.Title))
		if dup.MovieID != 0 {
			e = e.WithMetadata(map[string]string{"movie_id": strconv.FormatInt(dup.MovieID, 10)})
		}
		return e
	case errors.Is(err, biz.ErrMovieNotFound):
		return errors.NotFound("MOVIE_NOT_FOUND", "movie not found")
	case errors.Is(err, biz.ErrEmptyTitle):
		return errors.BadRequest("EMPTY_TITLE", err.Error())
	case errors.Is(err, biz.ErrMalformedResponse):
		return errors.New(http.StatusBadGateway, "MALFORMED_RESPONSE", "The movie database returned an unexpected response.").WithCause(err)
	case errors.Is(err, biz.ErrProvider):
		return errors.New(http.StatusBadGateway, "PROVIDER_ERROR", "The movie database is unavailable, try again later.").WithCause(err)
	}
	return errors.InternalServer("INTERNAL", "internal server error").WithCause(err)
}
