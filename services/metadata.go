package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"Kinolog/apperr"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

// Candidate is one ranked search result from the metadata service.
type Candidate struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Year  int    `json:"year"`
}

// Details is the per-title record consumed by the classification sweep.
type Details struct {
	Genres       []string `json:"genres"`
	Director     string   `json:"director"`
	Overview     string   `json:"overview"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
}

// TMDB is a best-effort metadata client. Requests go through a rate limiter
// and a circuit breaker; every failure surfaces as an ExternalServiceError
// so callers can recover per item.
type TMDB struct {
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewTMDB(apiKey string) *TMDB {
	return &TMDB{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
		// TMDB allows ~50 req/s; stay well under it
		limiter: rate.NewLimiter(rate.Limit(4), 4),
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    "tmdb",
			Timeout: 30 * time.Second,
		}),
	}
}

func (t *TMDB) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if t.apiKey == "" {
		return nil, apperr.External("tmdb", fmt.Errorf("TMDB_API_KEY is not set"))
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, apperr.External("tmdb", err)
	}

	params.Set("api_key", t.apiKey)
	reqURL := tmdbBaseURL + path + "?" + params.Encode()

	body, err := t.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := t.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, apperr.External("tmdb", err)
	}
	return body, nil
}

// SearchMovies returns ranked candidates for a title, optionally narrowed by
// release year.
func (t *TMDB) SearchMovies(ctx context.Context, title string, year int) ([]Candidate, error) {
	params := url.Values{"query": {title}}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	body, err := t.get(ctx, "/search/movie", params)
	if err != nil {
		return nil, err
	}

	var search struct {
		Results []struct {
			ID          int    `json:"id"`
			Title       string `json:"title"`
			ReleaseDate string `json:"release_date"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, apperr.External("tmdb", err)
	}

	candidates := make([]Candidate, 0, len(search.Results))
	for _, r := range search.Results {
		c := Candidate{ID: r.ID, Title: r.Title}
		if len(r.ReleaseDate) >= 4 {
			c.Year, _ = strconv.Atoi(r.ReleaseDate[:4])
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// MovieDetails fetches the full record, including the director pulled from
// the credits crew list.
func (t *TMDB) MovieDetails(ctx context.Context, id int) (*Details, error) {
	body, err := t.get(ctx, "/movie/"+strconv.Itoa(id), url.Values{"append_to_response": {"credits"}})
	if err != nil {
		return nil, err
	}

	var details struct {
		Genres []struct {
			Name string `json:"name"`
		} `json:"genres"`
		Overview     string `json:"overview"`
		PosterPath   string `json:"poster_path"`
		BackdropPath string `json:"backdrop_path"`
		Credits      struct {
			Crew []struct {
				Name string `json:"name"`
				Job  string `json:"job"`
			} `json:"crew"`
		} `json:"credits"`
	}
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, apperr.External("tmdb", err)
	}

	d := &Details{
		Overview:     details.Overview,
		PosterPath:   details.PosterPath,
		BackdropPath: details.BackdropPath,
	}
	for _, g := range details.Genres {
		d.Genres = append(d.Genres, g.Name)
	}
	for _, c := range details.Credits.Crew {
		if c.Job == "Director" {
			d.Director = c.Name
			break
		}
	}
	return d, nil
}
