package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

const defaultTrackerTimeout = 5 * time.Second

// TrackerError is returned when the vehicle tracker gateway responds outside
// the 2xx range or with a payload that cannot be decoded. Callers treat it
// as non-fatal and retry on the next poll cycle.
type TrackerError struct {
	StatusCode int
	Reason     string
}

func (e *TrackerError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("vehicle tracker read failed: HTTP %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("vehicle tracker read failed: %s", e.Reason)
}

// HTTPPositionFeed implements PositionFeed against a vehicle tracker
// gateway. Used in live tracking mode, where the vehicle position comes
// from a GPS unit instead of the movement simulation.
type HTTPPositionFeed struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPPositionFeed creates a position feed against the given tracker base
// URL. A non-positive timeout falls back to the default.
func NewHTTPPositionFeed(baseURL string, timeout time.Duration) (*HTTPPositionFeed, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	if timeout <= 0 {
		timeout = defaultTrackerTimeout
	}

	return &HTTPPositionFeed{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type positionResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ReadPosition fetches the latest authoritative vehicle position.
func (f *HTTPPositionFeed) ReadPosition(ctx context.Context) (kernel.GeoPoint, error) {
	url := f.baseURL + "/vehicle/position"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return kernel.GeoPoint{}, &TrackerError{Reason: err.Error()}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return kernel.GeoPoint{}, &TrackerError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return kernel.GeoPoint{}, &TrackerError{StatusCode: resp.StatusCode, Reason: string(body)}
	}

	var decoded positionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return kernel.GeoPoint{}, &TrackerError{Reason: err.Error()}
	}

	return kernel.NewGeoPoint(decoded.Lat, decoded.Lon)
}
