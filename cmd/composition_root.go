package cmd

import (
	"fmt"
	"log/slog"
	"time"

	httpin "coldchain/internal/adapters/in/http"
	"coldchain/internal/adapters/out/manifest"
	"coldchain/internal/adapters/out/osrm"
	"coldchain/internal/adapters/out/postgres"
	"coldchain/internal/adapters/out/rediscache"
	stabilityclient "coldchain/internal/adapters/out/stability"
	"coldchain/internal/adapters/out/telemetry"
	"coldchain/internal/core/application/usecases/commands"
	"coldchain/internal/core/application/usecases/queries"
	"coldchain/internal/core/domain/services"
	"coldchain/internal/core/ports"
	"coldchain/internal/jobs"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters, domain services, and use case handlers.
// The session registry, the route board, and the planner are singletons
// shared by every handler; handlers themselves are created per call site.
type CompositionRoot struct {
	config Config
	gormDB *gorm.DB
	logger *slog.Logger

	uowFactory      postgres.GormUnitOfWorkFactory
	registry        *services.SessionRegistry
	board           *services.RouteBoard
	planner         *services.RoutePlanner
	stabilityClient ports.StabilityClient
	temperatureFeed ports.TemperatureFeed
	positionFeed    ports.PositionFeed
	manifestSource  ports.StopSequenceSource
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	clientTimeout := time.Duration(config.ClientTimeoutSeconds) * time.Second

	oracle, err := osrm.NewOracle(config.OsrmBaseURL, clientTimeout)
	if err != nil {
		return nil, fmt.Errorf("create routing oracle: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
	legCache, err := rediscache.NewRedisLegCache(
		redisClient, time.Duration(config.LegCacheTTLSeconds)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("create leg cache: %w", err)
	}

	cachedOracle, err := rediscache.NewCachedOracle(oracle, legCache, logger)
	if err != nil {
		return nil, fmt.Errorf("create cached oracle: %w", err)
	}

	stability, err := stabilityclient.NewClient(config.StabilityBaseURL, clientTimeout)
	if err != nil {
		return nil, fmt.Errorf("create stability client: %w", err)
	}

	feed, err := telemetry.NewSimulatedTemperatureFeed(
		config.SimBaseTempC,
		config.SimAmplitudeC,
		time.Duration(config.SimPeriodSeconds)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("create temperature feed: %w", err)
	}

	// In live mode the telemetry poll feeds the tracker's position into the
	// board; in simulated mode the vehicle tick walks the route instead and
	// no position feed is wired.
	var positionFeed ports.PositionFeed
	switch config.TrackingMode {
	case "", TrackingModeSimulated:
	case TrackingModeLive:
		positionFeed, err = telemetry.NewHTTPPositionFeed(config.TrackerBaseURL, clientTimeout)
		if err != nil {
			return nil, fmt.Errorf("create position feed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown tracking mode %q", config.TrackingMode)
	}

	source, err := manifest.NewFileSource(config.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("create manifest source: %w", err)
	}

	return &CompositionRoot{
		config:          config,
		gormDB:          gormDB,
		logger:          logger,
		uowFactory:      *postgres.NewGormUnitOfWorkFactory(gormDB),
		registry:        services.NewSessionRegistry(),
		board:           services.NewRouteBoard(),
		planner:         services.NewRoutePlanner(cachedOracle, logger),
		stabilityClient: stability,
		temperatureFeed: feed,
		positionFeed:    positionFeed,
		manifestSource:  source,
	}, nil
}

func (c *CompositionRoot) createUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateLoadManifestCommandHandler() commands.LoadManifestCommandHandler {
	return commands.NewLoadManifestCommandHandler(
		c.createUoWFactory(), c.manifestSource, c.stabilityClient, c.registry, c.planner, c.board,
	)
}

func (c *CompositionRoot) CreateAdvanceVehicleCommandHandler() commands.AdvanceVehicleCommandHandler {
	return commands.NewAdvanceVehicleCommandHandler(
		c.createUoWFactory(), c.registry, c.planner, c.board,
	)
}

func (c *CompositionRoot) CreateIngestTelemetryCommandHandler() commands.IngestTelemetryCommandHandler {
	return commands.NewIngestTelemetryCommandHandler(
		c.createUoWFactory(), c.temperatureFeed, c.positionFeed, c.stabilityClient,
		c.registry, c.planner, c.board, c.logger,
	)
}

func (c *CompositionRoot) CreateTickStabilityCommandHandler() commands.TickStabilityCommandHandler {
	return commands.NewTickStabilityCommandHandler(
		c.createUoWFactory(), c.registry, c.planner, c.board,
	)
}

func (c *CompositionRoot) CreateRebuildRouteCommandHandler() commands.RebuildRouteCommandHandler {
	return commands.NewRebuildRouteCommandHandler(
		c.createUoWFactory(), c.planner, c.board,
	)
}

func (c *CompositionRoot) CreateGetDeliveryStatusQueryHandler() queries.GetDeliveryStatusQueryHandler {
	return queries.NewGetDeliveryStatusQueryHandler(
		c.gormDB, c.board, c.registry, c.config.AssumedSpeedMps,
	)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(c.CreateGetDeliveryStatusQueryHandler())
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	advanceVehicle := c.CreateAdvanceVehicleCommandHandler()
	ingestTelemetry := c.CreateIngestTelemetryCommandHandler()
	tickStability := c.CreateTickStabilityCommandHandler()

	return jobs.NewJobManager(&advanceVehicle, &ingestTelemetry, &tickStability, c.logger)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
