// Package osrm provides the HTTP routing oracle backed by an OSRM-compatible
// routing server. Only the route endpoint is used: one origin/destination
// pair in, full driving geometry with distance and duration out.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/route"
	"coldchain/internal/pkg/errs"
)

const defaultTimeout = 5 * time.Second

// RoutingError is returned when the routing server cannot produce a leg.
// Callers treat any oracle error as non-fatal and degrade to a fallback leg.
type RoutingError struct {
	Reason string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing request failed: %s", e.Reason)
}

// Oracle is an OSRM route endpoint client implementing RoutingOracle.
// Every request is bounded by the client timeout so a slow routing server
// only delays one leg, never the whole rebuild.
type Oracle struct {
	baseURL    string
	httpClient *http.Client
}

// NewOracle creates a routing oracle against the given OSRM base URL,
// e.g. "https://router.project-osrm.org". A non-positive timeout falls back
// to the default.
func NewOracle(baseURL string, timeout time.Duration) (*Oracle, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Oracle{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route returns the driving leg from origin to destination.
func (o *Oracle) Route(
	ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint,
) (route.Leg, error) {
	if err := origin.Validate(); err != nil {
		return route.Leg{}, err
	}
	if err := destination.Validate(); err != nil {
		return route.Leg{}, err
	}

	// OSRM takes lon,lat pairs.
	queryURL := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?%s",
		o.baseURL,
		origin.Lon(), origin.Lat(),
		destination.Lon(), destination.Lat(),
		url.Values{
			"overview":   []string{"full"},
			"geometries": []string{"geojson"},
		}.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return route.Leg{}, &RoutingError{Reason: err.Error()}
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return route.Leg{}, &RoutingError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return route.Leg{}, &RoutingError{
			Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return route.Leg{}, &RoutingError{Reason: err.Error()}
	}

	if decoded.Code != "Ok" {
		return route.Leg{}, &RoutingError{Reason: fmt.Sprintf("server code: %s", decoded.Code)}
	}
	if len(decoded.Routes) == 0 {
		return route.Leg{}, &RoutingError{Reason: "no routes returned"}
	}

	best := decoded.Routes[0]
	points, err := decodeGeometry(best.Geometry.Coordinates, origin, destination)
	if err != nil {
		return route.Leg{}, err
	}

	return route.NewLeg(points, best.Distance, best.Duration)
}

// decodeGeometry converts GeoJSON lon,lat coordinate pairs into geo points.
// A degenerate single-point geometry is padded with the pair endpoints so
// the leg still satisfies the two-point minimum.
func decodeGeometry(
	coordinates [][]float64, origin kernel.GeoPoint, destination kernel.GeoPoint,
) ([]kernel.GeoPoint, error) {
	points := make([]kernel.GeoPoint, 0, len(coordinates))
	for _, pair := range coordinates {
		if len(pair) < 2 {
			return nil, &RoutingError{Reason: "malformed geometry coordinate"}
		}

		point, err := kernel.NewGeoPoint(pair[1], pair[0])
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	if len(points) < 2 {
		return []kernel.GeoPoint{origin, destination}, nil
	}

	return points, nil
}
