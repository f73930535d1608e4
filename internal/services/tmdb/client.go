package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/amaumene/nextup/internal/config"
	"github.com/sirupsen/logrus"
)

const baseURL = "https://api.themoviedb.org/3"

// Client handles communication with the TMDB API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new TMDB API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB API key is required")
	}

	return &Client{
		apiKey:     cfg.TMDBAPIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}, nil
}

// doRequest performs a GET request against the TMDB API
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	fullURL := c.baseURL + path + "?" + params.Encode()
	c.logger.WithField("path", path).Debug("Making TMDB API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchTV searches TV shows by title
func (c *Client) SearchTV(ctx context.Context, query string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)

	var resp searchResponse
	if err := c.doRequest(ctx, "/search/tv", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search TV shows: %w", err)
	}
	return resp.Results, nil
}

// GetShow fetches the details of a TV show
func (c *Client) GetShow(ctx context.Context, tmdbID int64) (*ShowDetails, error) {
	var details ShowDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d", tmdbID), nil, &details); err != nil {
		return nil, fmt.Errorf("failed to get show %d: %w", tmdbID, err)
	}
	return &details, nil
}

// GetSeason fetches one season of a TV show with its episode list
func (c *Client) GetSeason(ctx context.Context, tmdbID int64, seasonNumber int) (*Season, error) {
	var season Season
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d/season/%d", tmdbID, seasonNumber), nil, &season); err != nil {
		return nil, fmt.Errorf("failed to get show %d season %d: %w", tmdbID, seasonNumber, err)
	}
	return &season, nil
}

// GetShowCredits fetches the cast of a TV show
func (c *Client) GetShowCredits(ctx context.Context, tmdbID int64) (*Credits, error) {
	var credits Credits
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d/credits", tmdbID), nil, &credits); err != nil {
		return nil, fmt.Errorf("failed to get credits for show %d: %w", tmdbID, err)
	}
	return &credits, nil
}

// GetPerson fetches a person record
func (c *Client) GetPerson(ctx context.Context, personID int64) (*Person, error) {
	var person Person
	if err := c.doRequest(ctx, fmt.Sprintf("/person/%d", personID), nil, &person); err != nil {
		return nil, fmt.Errorf("failed to get person %d: %w", personID, err)
	}
	return &person, nil
}

// GetPersonCombinedCredits fetches a person's tv + movie filmography
func (c *Client) GetPersonCombinedCredits(ctx context.Context, personID int64) (*CombinedCredits, error) {
	var credits CombinedCredits
	if err := c.doRequest(ctx, fmt.Sprintf("/person/%d/combined_credits", personID), nil, &credits); err != nil {
		return nil, fmt.Errorf("failed to get combined credits for person %d: %w", personID, err)
	}
	return &credits, nil
}
