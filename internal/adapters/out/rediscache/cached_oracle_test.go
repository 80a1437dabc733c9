package rediscache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"coldchain/internal/adapters/out/rediscache"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/route"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// RoutingOracleMock is a mock implementation of RoutingOracle.
type RoutingOracleMock struct {
	mock.Mock
}

func (m *RoutingOracleMock) Route(
	ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint,
) (route.Leg, error) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(route.Leg), args.Error(1)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCachedOracle(t *testing.T, oracle *RoutingOracleMock) (*rediscache.CachedOracle, *miniredis.Miniredis) {
	t.Helper()

	cache, mr := newCache(t, time.Minute)
	cached, err := rediscache.NewCachedOracle(oracle, cache, quietLogger())
	require.NoError(t, err)
	return cached, mr
}

func TestNewCachedOracle_MissingDependencies_ReturnsError(t *testing.T) {
	cache, _ := newCache(t, time.Minute)

	_, err := rediscache.NewCachedOracle(nil, cache, quietLogger())
	assert.Error(t, err)

	_, err = rediscache.NewCachedOracle(new(RoutingOracleMock), nil, quietLogger())
	assert.Error(t, err)
}

func TestCachedOracle_Route_MissCallsOracleAndCachesResult(t *testing.T) {
	ctx := context.Background()
	origin := cachePoint(t, 41.40, 2.17)
	destination := cachePoint(t, 41.41, 2.18)

	leg, err := route.NewLeg([]kernel.GeoPoint{origin, destination}, 1500, 210)
	require.NoError(t, err)

	oracle := new(RoutingOracleMock)
	oracle.On("Route", ctx, origin, destination).Return(leg, nil).Once()

	cached, _ := newCachedOracle(t, oracle)

	// First call misses and hits the oracle.
	first, err := cached.Route(ctx, origin, destination)
	require.NoError(t, err)
	assert.InDelta(t, 1500, first.DistanceMeters(), 1e-9)

	// Second call is served from cache: the oracle expectation is Once.
	second, err := cached.Route(ctx, origin, destination)
	require.NoError(t, err)
	assert.InDelta(t, 1500, second.DistanceMeters(), 1e-9)

	oracle.AssertExpectations(t)
}

func TestCachedOracle_Route_OracleError_Propagates(t *testing.T) {
	ctx := context.Background()
	origin := cachePoint(t, 41.40, 2.17)
	destination := cachePoint(t, 41.41, 2.18)

	oracle := new(RoutingOracleMock)
	oracle.On("Route", ctx, origin, destination).
		Return(route.Leg{}, errors.New("provider unreachable")).Once()

	cached, _ := newCachedOracle(t, oracle)

	_, err := cached.Route(ctx, origin, destination)
	assert.ErrorContains(t, err, "provider unreachable")

	oracle.AssertExpectations(t)
}

func TestCachedOracle_Route_CacheDown_FallsThroughToOracle(t *testing.T) {
	ctx := context.Background()
	origin := cachePoint(t, 41.40, 2.17)
	destination := cachePoint(t, 41.41, 2.18)

	leg, err := route.NewLeg([]kernel.GeoPoint{origin, destination}, 900, 120)
	require.NoError(t, err)

	oracle := new(RoutingOracleMock)
	oracle.On("Route", ctx, origin, destination).Return(leg, nil).Twice()

	cache, mr := newCache(t, time.Minute)
	cached, err := rediscache.NewCachedOracle(oracle, cache, quietLogger())
	require.NoError(t, err)

	mr.Close()

	// Both calls reach the oracle because the cache read and write fail.
	for range 2 {
		result, routeErr := cached.Route(ctx, origin, destination)
		require.NoError(t, routeErr)
		assert.InDelta(t, 900, result.DistanceMeters(), 1e-9)
	}

	oracle.AssertExpectations(t)
}

func TestCachedOracle_Route_ExpiredEntry_RefreshesFromOracle(t *testing.T) {
	ctx := context.Background()
	origin := cachePoint(t, 41.40, 2.17)
	destination := cachePoint(t, 41.41, 2.18)

	leg, err := route.NewLeg([]kernel.GeoPoint{origin, destination}, 1500, 210)
	require.NoError(t, err)

	oracle := new(RoutingOracleMock)
	oracle.On("Route", ctx, origin, destination).Return(leg, nil).Twice()

	cached, mr := newCachedOracle(t, oracle)

	_, err = cached.Route(ctx, origin, destination)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cached.Route(ctx, origin, destination)
	require.NoError(t, err)

	oracle.AssertExpectations(t)
}
