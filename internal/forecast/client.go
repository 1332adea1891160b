// Package forecast implements the OpenWeatherMap One Call client and the
// next-hour rain decision.
//
// The client requests only the hourly section of the One Call response; the
// decision logic selects the leading one or two hourly entries depending on
// how far into the current clock hour the run started, and picks the first
// entry whose condition category contains "rain".
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"rainalert/internal/types"
)

// maxErrorBodyRead limits how much of an upstream error body is included
// in error messages.
const maxErrorBodyRead = 4096

// excludedSections are the One Call sections the checker never consults.
const excludedSections = "current,minutely,daily,alerts"

// Client fetches hourly forecasts from the OpenWeatherMap One Call API.
type Client struct {
	baseURL    string
	apiKey     types.SecretString
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a forecast client. The httpClient is caller-supplied so
// tests can point it at an httptest server and production can set the
// timeout policy in one place.
func NewClient(baseURL string, apiKey types.SecretString, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// oneCallResponse is the subset of the One Call payload the checker reads.
type oneCallResponse struct {
	Hourly []HourlyEntry `json:"hourly"`
}

// Hourly fetches the hourly forecast for the given coordinates.
// Any non-2xx status or transport failure is fatal to the run and is
// returned as an AppError with ErrCodeUpstreamForecast; an empty hourly
// array is returned as ErrCodeForecastEmpty.
func (c *Client) Hourly(ctx context.Context, lat, lon float64) ([]HourlyEntry, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("exclude", excludedSections)
	params.Set("appid", c.apiKey.Unmask())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to create forecast request", err)
	}

	c.logger.Debug("fetching hourly forecast", "lat", lat, "lon", lon)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamForecast, "forecast request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyRead))
		return nil, types.NewAppError(
			types.ErrCodeUpstreamForecast,
			fmt.Sprintf("forecast endpoint returned %d: %s", resp.StatusCode, string(body)),
			nil,
		)
	}

	var payload oneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamForecast, "failed to decode forecast response", err)
	}

	if len(payload.Hourly) == 0 {
		return nil, types.NewAppError(types.ErrCodeForecastEmpty, "forecast response contains no hourly entries", nil)
	}

	c.logger.Debug("forecast fetched", "hourly_entries", len(payload.Hourly))

	return payload.Hourly, nil
}
