package stability

import (
	"errors"
	"fmt"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
	"coldchain/internal/pkg/guard"
)

// Domain errors for stability operations.
var (
	// ErrConfigIsNotConstructed is returned when using an improperly initialized Config.
	ErrConfigIsNotConstructed = errs.NewValueIsRequiredError(
		"config must be created via NewConfig constructor")
	// ErrSessionIsNotConstructed is returned when using an improperly initialized Session.
	ErrSessionIsNotConstructed = errors.New(
		"Session must be created via NewSession or RestoreSession constructor")
)

// Config holds the static stability configuration fetched once per order:
// the maximum allowed excursion time and the safe temperature interval.
// Config is an immutable value object.
type Config struct { //nolint:recvcheck //using for validation
	maxExcursion time.Duration
	minTempC     float64
	maxTempC     float64
	guard        guard.ConstructorGuard
}

// NewConfig creates a stability Config.
// maxExcursionSeconds must be positive and minTempC strictly below maxTempC.
func NewConfig(maxExcursionSeconds int, minTempC float64, maxTempC float64) (Config, error) {
	c := Config{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setMaxExcursion(maxExcursionSeconds),
		c.setTempRange(minTempC, maxTempC),
	); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate checks if the Config was properly constructed via NewConfig.
func (c Config) Validate() error {
	return c.guard.Validate(ErrConfigIsNotConstructed)
}

// MaxExcursion returns the maximum allowed cumulative excursion time.
func (c Config) MaxExcursion() time.Duration {
	return c.maxExcursion
}

// MaxExcursionSeconds returns the maximum allowed excursion time in whole seconds.
func (c Config) MaxExcursionSeconds() int {
	return int(c.maxExcursion / time.Second)
}

// MinTempC returns the lower bound of the safe temperature interval.
func (c Config) MinTempC() float64 {
	return c.minTempC
}

// MaxTempC returns the upper bound of the safe temperature interval.
func (c Config) MaxTempC() float64 {
	return c.maxTempC
}

// Contains reports whether a temperature sample lies inside the safe
// interval. The interval is closed: samples exactly at either bound are safe.
func (c Config) Contains(tempC float64) bool {
	return tempC >= c.minTempC && tempC <= c.maxTempC
}

func (c *Config) setMaxExcursion(seconds int) error {
	if seconds <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("maxExcursionSeconds",
			fmt.Errorf("%d is not greater than 0", seconds))
	}
	c.maxExcursion = time.Duration(seconds) * time.Second
	return nil
}

func (c *Config) setTempRange(minTempC, maxTempC float64) error {
	if minTempC >= maxTempC {
		return errs.NewValueIsInvalidErrorWithCause("temperature range",
			fmt.Errorf("min %.2f is not below max %.2f", minTempC, maxTempC))
	}
	c.minTempC = minTempC
	c.maxTempC = maxTempC
	return nil
}

// Session is the aggregate root tracking one order's accumulated excursion
// time against its configured maximum. The locally computed countdown is an
// optimistic display estimate; any authoritative server alert immediately
// forces the session terminal via ApplyAlert.
//
// Invariants:
//   - Remaining() == max(0, maxExcursion - elapsed) at all times
//   - elapsed is monotone non-decreasing
//   - once Expired or Exceeded, no operation mutates the session
type Session struct {
	orderID     kernel.UUID
	config      Config
	elapsed     time.Duration
	inExcursion bool
	lastTick    time.Time
	status      Status
	guard       guard.ConstructorGuard
}

// NewSession creates a fresh Active session for an order with zero
// accumulated excursion time. now anchors the excursion clock.
func NewSession(orderID kernel.UUID, config Config, now time.Time) (*Session, error) {
	s := &Session{
		status:   Active,
		lastTick: now,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setOrderID(orderID),
		s.setConfig(config),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// RestoreSession reconstructs a Session from persisted state.
//
// savedAt is the wall-clock instant the state was durably written. If the
// session was saved mid-excursion, the interval between savedAt and now —
// time during which the tracker was not running — is added to the elapsed
// excursion time before the session resumes, so a process restart never
// under-counts an ongoing excursion.
func RestoreSession(
	orderID kernel.UUID,
	config Config,
	elapsed time.Duration,
	inExcursion bool,
	savedAt time.Time,
	status Status,
	now time.Time,
) (*Session, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	if elapsed < 0 {
		return nil, errs.NewValueIsInvalidError("elapsed must not be negative")
	}

	s := &Session{
		elapsed:     elapsed,
		inExcursion: inExcursion,
		status:      status,
		lastTick:    now,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setOrderID(orderID),
		s.setConfig(config),
	); err != nil {
		return nil, err
	}

	if s.status == Active {
		if s.inExcursion {
			if gap := now.Sub(savedAt); gap > 0 {
				s.elapsed += gap
			}
		}
		s.expireIfSpent()
	}

	return s, nil
}

// Validate ensures the Session instance was properly constructed.
func (s *Session) Validate() error {
	if s == nil {
		return ErrSessionIsNotConstructed
	}
	return s.guard.Validate(ErrSessionIsNotConstructed)
}

// OrderID returns the order this session tracks.
func (s *Session) OrderID() kernel.UUID {
	return s.orderID
}

// Config returns the static stability configuration.
func (s *Session) Config() Config {
	return s.config
}

// Status returns the current session status.
func (s *Session) Status() Status {
	return s.status
}

// IsTerminal reports whether the session reached a final state.
func (s *Session) IsTerminal() bool {
	return s.status.IsTerminal()
}

// InExcursion reports whether the last classified temperature sample was
// outside the safe interval.
func (s *Session) InExcursion() bool {
	return s.inExcursion
}

// Elapsed returns the accumulated excursion time.
func (s *Session) Elapsed() time.Duration {
	return s.elapsed
}

// Remaining returns the excursion budget left: max(0, maxExcursion-elapsed).
func (s *Session) Remaining() time.Duration {
	if s.elapsed >= s.config.maxExcursion {
		return 0
	}
	return s.config.maxExcursion - s.elapsed
}

// Classify evaluates one temperature sample against the safe interval.
//
// A boundary crossing (safe to unsafe or back) toggles the excursion flag
// and returns crossed=true; the caller must persist the session immediately
// so process termination never loses a transition edge. Samples that keep
// the session on the same side of the boundary return crossed=false.
// Terminal sessions ignore all samples.
//
// Leaving an excursion folds the time since the previous clock tick into the
// elapsed total before clearing the flag, so short excursions between ticks
// still count.
func (s *Session) Classify(tempC float64, now time.Time) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	if s.status.IsTerminal() {
		return false, nil
	}

	unsafe := !s.config.Contains(tempC)
	if unsafe == s.inExcursion {
		return false, nil
	}

	if unsafe {
		s.inExcursion = true
		s.lastTick = now
		return true, nil
	}

	s.accumulate(now)
	s.inExcursion = false
	s.expireIfSpent()
	return true, nil
}

// Tick advances the excursion clock.
//
// While in excursion, the actual wall-clock delta since the previous tick —
// not an assumed fixed period — is added to the elapsed time, tolerating
// scheduler jitter and app suspension. When the remaining budget reaches
// zero the session becomes Expired and reports expired=true exactly once.
// Terminal sessions are never mutated.
func (s *Session) Tick(now time.Time) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	if s.status.IsTerminal() {
		return false, nil
	}

	if !s.inExcursion {
		s.lastTick = now
		return s.expireIfSpent(), nil
	}

	s.accumulate(now)
	return s.expireIfSpent(), nil
}

// ApplyAlert applies an authoritative server alert, forcing the session to
// the terminal state the alert names regardless of the local countdown.
// Returns whether the session transitioned; alerts on an already terminal
// session, and empty or unrecognized alerts, change nothing.
func (s *Session) ApplyAlert(alert Alert) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	if s.status.IsTerminal() {
		return false, nil
	}

	terminal, ok := alert.TerminalStatus()
	if !ok {
		return false, nil
	}

	s.status = terminal
	if s.elapsed < s.config.maxExcursion {
		s.elapsed = s.config.maxExcursion
	}
	return true, nil
}

// accumulate adds wall-clock time since the previous tick to the elapsed
// total. Negative deltas (clock adjustments) are ignored to keep elapsed
// monotone.
func (s *Session) accumulate(now time.Time) {
	if delta := now.Sub(s.lastTick); delta > 0 {
		s.elapsed += delta
	}
	s.lastTick = now
}

// expireIfSpent flips the session to Expired when the budget is exhausted.
func (s *Session) expireIfSpent() bool {
	if s.status == Active && s.Remaining() == 0 {
		s.status = Expired
		return true
	}
	return false
}

func (s *Session) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	s.orderID = orderID
	return nil
}

func (s *Session) setConfig(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	s.config = config
	return nil
}
