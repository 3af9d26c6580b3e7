package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"topmovies/internal/biz"
	"topmovies/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

const defaultTMDBURL = "https://api.themoviedb.org/3"

type tmdbClient struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	authToken string
	log       *log.Helper
}

// NewTMDBClient creates a new TMDB metadata client
func NewTMDBClient(c *conf.TMDB, logger log.Logger) biz.MetadataClient {
	baseURL := strings.TrimRight(c.BaseUrl, "/")
	if baseURL == "" {
		baseURL = defaultTMDBURL
	}
	return &tmdbClient{
		client: &http.Client{
			Timeout: c.Timeout.AsDuration(),
		},
		baseURL:   baseURL,
		apiKey:    c.ApiKey,
		authToken: c.AuthToken,
		log:       log.NewHelper(logger),
	}
}

type tmdbSearchResponse struct {
	Results []struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		PosterPath  string `json:"poster_path"`
		ReleaseDate string `json:"release_date"`
		Overview    string `json:"overview"`
	} `json:"results"`
}

// Detail fields are pointers so absent or null values can be told apart
// from empty strings.
type tmdbMovieResponse struct {
	ID          int64   `json:"id"`
	Title       *string `json:"title"`
	Overview    *string `json:"overview"`
	ReleaseDate *string `json:"release_date"`
	PosterPath  *string `json:"poster_path"`
}

func (c *tmdbClient) SearchMovies(ctx context.Context, title string) ([]*biz.Candidate, error) {
	if strings.TrimSpace(title) == "" {
		return nil, biz.ErrEmptyTitle
	}

	q := url.Values{}
	q.Set("query", title)
	q.Set("api_key", c.apiKey)
	endpoint := fmt.Sprintf("%s/search/movie?%s", c.baseURL, q.Encode())

	var response tmdbSearchResponse
	if err := c.doRequest(ctx, endpoint, false, &response); err != nil {
		c.log.WithContext(ctx).Warnf("tmdb search for %q failed: %v", title, err)
		return nil, err
	}

	candidates := make([]*biz.Candidate, 0, len(response.Results))
	for _, r := range response.Results {
		candidates = append(candidates, &biz.Candidate{
			ExternalID:  r.ID,
			Title:       r.Title,
			PosterPath:  r.PosterPath,
			ReleaseDate: r.ReleaseDate,
			Overview:    r.Overview,
		})
	}
	return candidates, nil
}

func (c *tmdbClient) GetMovieDetail(ctx context.Context, externalID string) (*biz.MovieDetail, error) {
	endpoint := fmt.Sprintf("%s/movie/%s?language=en-US", c.baseURL, url.PathEscape(externalID))

	var response tmdbMovieResponse
	if err := c.doRequest(ctx, endpoint, true, &response); err != nil {
		c.log.WithContext(ctx).Warnf("tmdb lookup for %s failed: %v", externalID, err)
		return nil, err
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"title", response.Title},
		{"overview", response.Overview},
		{"release_date", response.ReleaseDate},
		{"poster_path", response.PosterPath},
	}
	for _, f := range fields {
		if f.value == nil {
			return nil, fmt.Errorf("%w: movie %s has no %s", biz.ErrMalformedResponse, externalID, f.name)
		}
	}
	if *response.Title == "" {
		return nil, fmt.Errorf("%w: movie %s has an empty title", biz.ErrMalformedResponse, externalID)
	}

	return &biz.MovieDetail{
		ExternalID:  response.ID,
		Title:       *response.Title,
		Overview:    *response.Overview,
		ReleaseDate: *response.ReleaseDate,
		PosterPath:  *response.PosterPath,
	}, nil
}

func (c *tmdbClient) doRequest(ctx context.Context, endpoint string, authorize bool, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if authorize {
		req.Header.Set("Authorization", bearer(c.authToken))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", biz.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status code: %d", biz.ErrProvider, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", biz.ErrMalformedResponse, err)
	}
	return nil
}

// bearer accepts the token with or without its "Bearer " scheme prefix.
func bearer(token string) string {
	if strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}
