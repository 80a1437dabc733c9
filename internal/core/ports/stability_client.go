package ports

import (
	"context"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stability"
)

// StabilityUpdate is the server's response to a telemetry update. The alert
// field, when present, is authoritative and immediately terminal for the
// session regardless of the local countdown.
type StabilityUpdate struct {
	Alert            stability.Alert
	TimerStarted     bool
	RemainingSeconds *int
}

// StabilityClient is the consumed surface of the stability server.
//
// All calls carry finite timeouts. Network and decoding failures are
// non-fatal: callers log them and retry on the next poll cycle with the
// local estimate carrying the display in the meantime.
type StabilityClient interface {
	// Start registers an active shipment for the order on the server.
	Start(ctx context.Context, orderID kernel.UUID) error

	// GetConfig fetches the static stability configuration for an order.
	// A missing configuration is reported via errs.ObjectNotFoundError;
	// such orders are left untracked but keep routing normally.
	GetConfig(ctx context.Context, orderID kernel.UUID) (stability.Config, error)

	// Update reports a temperature sample and position for an order and
	// returns the server's verdict.
	Update(ctx context.Context, orderID kernel.UUID, tempC float64, position kernel.GeoPoint) (StabilityUpdate, error)
}

// TemperatureFeed supplies the live shipment temperature for an order,
// read once per telemetry poll.
type TemperatureFeed interface {
	ReadTemperature(ctx context.Context, orderID kernel.UUID) (float64, error)
}

// PositionFeed supplies the authoritative vehicle position in live tracking
// mode. Interpolation between authoritative points is a display concern and
// never flows back through this interface.
type PositionFeed interface {
	ReadPosition(ctx context.Context) (kernel.GeoPoint, error)
}
