package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"coldchain/internal/core/application/usecases/commands"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/route"
	"coldchain/internal/core/domain/model/stability"
	"coldchain/internal/core/domain/model/stop"
	"coldchain/internal/core/domain/services"
	"coldchain/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type StopRepoMock struct{ mock.Mock }

func (m *StopRepoMock) Add(ctx context.Context, s *stop.Stop) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *StopRepoMock) Update(ctx context.Context, s *stop.Stop) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *StopRepoMock) Get(ctx context.Context, id kernel.UUID) (*stop.Stop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stop.Stop), args.Error(1)
}

func (m *StopRepoMock) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*stop.Stop, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stop.Stop), args.Error(1)
}

func (m *StopRepoMock) GetAllPending(ctx context.Context) ([]*stop.Stop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stop.Stop), args.Error(1)
}

func (m *StopRepoMock) GetAll(ctx context.Context) ([]*stop.Stop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stop.Stop), args.Error(1)
}

type SessionStoreMock struct{ mock.Mock }

func (m *SessionStoreMock) Get(ctx context.Context, orderID kernel.UUID) (ports.SessionRecord, bool, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(ports.SessionRecord), args.Bool(1), args.Error(2)
}

func (m *SessionStoreMock) Set(ctx context.Context, orderID kernel.UUID, record ports.SessionRecord) error {
	args := m.Called(ctx, orderID, record)
	return args.Error(0)
}

func (m *SessionStoreMock) Delete(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type UnitOfWorkMock struct{ mock.Mock }

func (m *UnitOfWorkMock) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *UnitOfWorkMock) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *UnitOfWorkMock) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *UnitOfWorkMock) StopRepository() ports.StopRepository {
	args := m.Called()
	return args.Get(0).(ports.StopRepository)
}

func (m *UnitOfWorkMock) SessionStore() ports.SessionStore {
	args := m.Called()
	return args.Get(0).(ports.SessionStore)
}

type UoWFactoryMock struct{ mock.Mock }

func (m *UoWFactoryMock) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type StabilityClientMock struct{ mock.Mock }

func (m *StabilityClientMock) Start(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *StabilityClientMock) GetConfig(ctx context.Context, orderID kernel.UUID) (stability.Config, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(stability.Config), args.Error(1)
}

func (m *StabilityClientMock) Update(
	ctx context.Context,
	orderID kernel.UUID,
	tempC float64,
	position kernel.GeoPoint,
) (ports.StabilityUpdate, error) {
	args := m.Called(ctx, orderID, tempC, position)
	return args.Get(0).(ports.StabilityUpdate), args.Error(1)
}

type TemperatureFeedMock struct{ mock.Mock }

func (m *TemperatureFeedMock) ReadTemperature(ctx context.Context, orderID kernel.UUID) (float64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(float64), args.Error(1)
}

type PositionFeedMock struct{ mock.Mock }

func (m *PositionFeedMock) ReadPosition(ctx context.Context) (kernel.GeoPoint, error) {
	args := m.Called(ctx)
	return args.Get(0).(kernel.GeoPoint), args.Error(1)
}

type SequenceSourceMock struct{ mock.Mock }

func (m *SequenceSourceMock) Load(ctx context.Context) ([]ports.SequenceEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.SequenceEntry), args.Error(1)
}

// straightLegProvider always fails, so the planner degrades every leg to a
// straight two-point segment. Keeps route construction deterministic in tests.
type straightLegProvider struct{}

func (straightLegProvider) Route(context.Context, kernel.GeoPoint, kernel.GeoPoint) (route.Leg, error) {
	return route.Leg{}, errors.New("no provider in tests")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPlanner() *services.RoutePlanner {
	return services.NewRoutePlanner(straightLegProvider{}, testLogger())
}

func geoPoint(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

func depotStop(t *testing.T, position kernel.GeoPoint, sequence int) *stop.Stop {
	t.Helper()
	s, err := stop.NewStop(kernel.NewUUID(), "depot", position, stop.KindDepot, nil, sequence)
	require.NoError(t, err)
	return s
}

func patientStop(t *testing.T, orderID kernel.UUID, position kernel.GeoPoint, sequence int) *stop.Stop {
	t.Helper()
	s, err := stop.NewStop(kernel.NewUUID(), "patient", position, stop.KindPatient, &orderID, sequence)
	require.NoError(t, err)
	return s
}

// publishedBoard returns a board with a straight route through the given
// points already live.
func publishedBoard(t *testing.T, points ...kernel.GeoPoint) *services.RouteBoard {
	t.Helper()
	builder := route.NewBuilder()
	for i := 0; i < len(points)-1; i++ {
		leg, err := route.NewFallbackLeg(points[i], points[i+1])
		require.NoError(t, err)
		require.NoError(t, builder.Append(leg))
	}
	r, err := builder.Build()
	require.NoError(t, err)

	board := services.NewRouteBoard()
	require.NoError(t, board.Publish(r))
	return board
}
