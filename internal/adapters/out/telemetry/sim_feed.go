// Package telemetry provides the shipment telemetry feeds: a live HTTP feed
// for the vehicle tracker gateway and a simulated temperature feed used when
// no live sensor gateway is attached. Simulated temperatures follow a
// deterministic sinusoid per order, so runs are reproducible and excursion
// boundary crossings happen on a known schedule.
package telemetry

import (
	"context"
	"math"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

// SimulatedTemperatureFeed implements TemperatureFeed with a per-order
// sinusoid: base + amplitude * sin(2π * elapsed/period + phase). The phase
// is derived from the order id, so shipments drift out of range at
// different times instead of in lockstep.
type SimulatedTemperatureFeed struct {
	baseTempC  float64
	amplitudeC float64
	period     time.Duration
	startedAt  time.Time
	now        func() time.Time
}

// NewSimulatedTemperatureFeed creates a simulated feed oscillating around
// baseTempC with the given amplitude and period.
func NewSimulatedTemperatureFeed(
	baseTempC float64, amplitudeC float64, period time.Duration,
) (*SimulatedTemperatureFeed, error) {
	if amplitudeC < 0 {
		return nil, errs.NewValueIsInvalidError("amplitudeC must not be negative")
	}
	if period <= 0 {
		return nil, errs.NewValueIsRequiredError("period must be positive")
	}

	now := time.Now
	return &SimulatedTemperatureFeed{
		baseTempC:  baseTempC,
		amplitudeC: amplitudeC,
		period:     period,
		startedAt:  now(),
		now:        now,
	}, nil
}

// ReadTemperature returns the simulated temperature for an order at the
// current moment.
func (f *SimulatedTemperatureFeed) ReadTemperature(_ context.Context, orderID kernel.UUID) (float64, error) {
	if err := orderID.Validate(); err != nil {
		return 0, err
	}

	elapsed := f.now().Sub(f.startedAt).Seconds()
	angle := 2*math.Pi*elapsed/f.period.Seconds() + phaseOf(orderID)

	return f.baseTempC + f.amplitudeC*math.Sin(angle), nil
}

// phaseOf maps an order id onto [0, 2π) so each shipment runs its own
// schedule.
func phaseOf(orderID kernel.UUID) float64 {
	raw := orderID.Bytes()
	var sum uint32
	for _, b := range raw {
		sum = sum*31 + uint32(b)
	}
	return 2 * math.Pi * float64(sum%360) / 360
}
