// Package stability provides the HTTP client for the authoritative stability
// server. The server tracks each shipment's excursion budget on its side;
// this client only starts sessions, fetches static configuration, and reports
// telemetry samples. Any alert in an update response is authoritative over
// the local countdown.
package stability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stability"
	"coldchain/internal/core/ports"
	"coldchain/internal/pkg/errs"
)

const defaultTimeout = 5 * time.Second

// ServerError is returned when the stability server responds outside the
// 2xx range or with a payload that cannot be decoded. Callers treat it as
// non-fatal and retry on the next poll cycle.
type ServerError struct {
	Operation  string
	StatusCode int
	Reason     string
}

func (e *ServerError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("stability server %s failed: HTTP %d: %s", e.Operation, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("stability server %s failed: %s", e.Operation, e.Reason)
}

// Client is the HTTP implementation of StabilityClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a stability server client against the given base URL.
// A non-positive timeout falls back to the default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type configResponse struct {
	MaxExcursionSeconds int     `json:"maxExcursionSeconds"`
	MinTemp             float64 `json:"minTemp"`
	MaxTemp             float64 `json:"maxTemp"`
}

type updateRequest struct {
	Temp float64 `json:"temp"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type updateResponse struct {
	Alert            string `json:"alert,omitempty"`
	TimerStarted     bool   `json:"timerStarted,omitempty"`
	RemainingSeconds *int   `json:"remainingSeconds,omitempty"`
}

// Start registers an active shipment for the order on the server.
func (c *Client) Start(ctx context.Context, orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/orders/%s/session/start", c.baseURL, orderID.String())
	resp, err := c.do(ctx, http.MethodPost, "start", url, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError("start", resp)
	}

	return nil
}

// GetConfig fetches the static stability configuration for an order.
// A 404 maps to errs.ObjectNotFoundError so callers can leave the order
// untracked without treating it as a server failure.
func (c *Client) GetConfig(ctx context.Context, orderID kernel.UUID) (stability.Config, error) {
	if err := orderID.Validate(); err != nil {
		return stability.Config{}, err
	}

	url := fmt.Sprintf("%s/orders/%s/stability-config", c.baseURL, orderID.String())
	resp, err := c.do(ctx, http.MethodGet, "getConfig", url, nil)
	if err != nil {
		return stability.Config{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return stability.Config{}, errs.NewObjectNotFoundError("stability config", orderID.String())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return stability.Config{}, c.statusError("getConfig", resp)
	}

	var decoded configResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return stability.Config{}, &ServerError{Operation: "getConfig", Reason: err.Error()}
	}

	return stability.NewConfig(decoded.MaxExcursionSeconds, decoded.MinTemp, decoded.MaxTemp)
}

// Update reports a temperature sample and position for an order and returns
// the server's verdict.
func (c *Client) Update(
	ctx context.Context, orderID kernel.UUID, tempC float64, position kernel.GeoPoint,
) (ports.StabilityUpdate, error) {
	if err := orderID.Validate(); err != nil {
		return ports.StabilityUpdate{}, err
	}
	if err := position.Validate(); err != nil {
		return ports.StabilityUpdate{}, err
	}

	payload, err := json.Marshal(updateRequest{
		Temp: tempC,
		Lat:  position.Lat(),
		Lon:  position.Lon(),
	})
	if err != nil {
		return ports.StabilityUpdate{}, &ServerError{Operation: "update", Reason: err.Error()}
	}

	url := fmt.Sprintf("%s/orders/%s/session/update", c.baseURL, orderID.String())
	resp, err := c.do(ctx, http.MethodPost, "update", url, payload)
	if err != nil {
		return ports.StabilityUpdate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.StabilityUpdate{}, c.statusError("update", resp)
	}

	var decoded updateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.StabilityUpdate{}, &ServerError{Operation: "update", Reason: err.Error()}
	}

	return ports.StabilityUpdate{
		Alert:            stability.Alert(decoded.Alert),
		TimerStarted:     decoded.TimerStarted,
		RemainingSeconds: decoded.RemainingSeconds,
	}, nil
}

func (c *Client) do(ctx context.Context, method, operation, url string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &ServerError{Operation: operation, Reason: err.Error()}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ServerError{Operation: operation, Reason: err.Error()}
	}

	return resp, nil
}

func (c *Client) statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &ServerError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Reason:     string(body),
	}
}
