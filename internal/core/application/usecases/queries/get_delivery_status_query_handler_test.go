package queries_test

import (
	"context"
	"testing"
	"time"

	"coldchain/internal/adapters/out/postgres/stoprepo"
	"coldchain/internal/core/application/usecases/queries"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/route"
	"coldchain/internal/core/domain/model/stability"
	"coldchain/internal/core/domain/model/stop"
	"coldchain/internal/core/domain/services"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type mockAggregateTracker struct{}

func (mockAggregateTracker) TrackAggregate(kernel.UUID, any) {}

type GetDeliveryStatusQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	board     *services.RouteBoard
	registry  *services.SessionRegistry
	handler   queries.GetDeliveryStatusQueryHandler
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&stoprepo.StopDTO{})
	suite.Require().NoError(err)
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE stops").Error
	suite.Require().NoError(err)

	suite.board = services.NewRouteBoard()
	suite.registry = services.NewSessionRegistry()
	suite.handler = queries.NewGetDeliveryStatusQueryHandler(suite.db, suite.board, suite.registry, 8.0)
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsDefaults() {
	query := queries.NewGetDeliveryStatusQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Empty(result.Stops)
	suite.Empty(result.Shipments)
	suite.Empty(result.Polyline)
	suite.Equal("unknown", result.EtaText)
	suite.Equal("unknown", result.RemainingDistanceText)
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	invalidQuery := queries.GetDeliveryStatusQuery{}

	_, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Contains(err.Error(), "must be created via NewGetDeliveryStatusQuery constructor")
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) TestHandle_WithStops_ReturnsStopsInSequenceOrder() {
	orderID := kernel.NewUUID()
	suite.saveStop(suite.createPatientStop(orderID, 1))
	suite.saveStop(suite.createDepotStop(2))
	suite.saveStop(suite.createDepotStop(0))

	query := queries.NewGetDeliveryStatusQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result.Stops, 3)
	suite.Equal(0, result.Stops[0].Sequence)
	suite.Equal(1, result.Stops[1].Sequence)
	suite.Equal(2, result.Stops[2].Sequence)

	suite.Equal("depot", result.Stops[0].Kind)
	suite.Equal("patient", result.Stops[1].Kind)
	suite.Equal("Pending", result.Stops[1].Status)
	suite.Equal(orderID.String(), result.Stops[1].OrderID)
	suite.Empty(result.Stops[0].OrderID)
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) TestHandle_UntrackedOrder_ReadsUnknown() {
	suite.saveStop(suite.createPatientStop(kernel.NewUUID(), 1))

	query := queries.NewGetDeliveryStatusQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result.Shipments, 1)
	suite.Equal("Untracked", result.Shipments[0].Status)
	suite.Equal("unknown", result.Shipments[0].RemainingText)
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) TestHandle_TrackedOrder_ReturnsCountdown() {
	orderID := kernel.NewUUID()
	suite.saveStop(suite.createPatientStop(orderID, 1))

	config, err := stability.NewConfig(600, 2.0, 8.0)
	suite.Require().NoError(err)
	session, err := stability.NewSession(orderID, config, time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.registry.Put(session))

	query := queries.NewGetDeliveryStatusQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result.Shipments, 1)
	suite.Equal(orderID.String(), result.Shipments[0].OrderID)
	suite.Equal("Active", result.Shipments[0].Status)
	suite.Equal("10:00", result.Shipments[0].RemainingText)
	suite.False(result.Shipments[0].InExcursion)
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) TestHandle_PublishedRoute_ReturnsPolylineAndMovement() {
	points := []kernel.GeoPoint{
		suite.geoPoint(41.40, 2.17),
		suite.geoPoint(41.41, 2.17),
		suite.geoPoint(41.42, 2.17),
	}
	leg, err := route.NewLeg(points, 2200, 300)
	suite.Require().NoError(err)

	builder := route.NewBuilder()
	suite.Require().NoError(builder.Append(leg))
	r, err := builder.Build()
	suite.Require().NoError(err)
	suite.Require().NoError(suite.board.Publish(r))

	query := queries.NewGetDeliveryStatusQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result.Polyline, 3)
	suite.InDelta(41.40, result.Vehicle.Lat, 0.0001)
	suite.InDelta(2.17, result.Vehicle.Lon, 0.0001)
	suite.Equal(0, result.Vehicle.PathIndex)
	suite.Equal("5 min", result.EtaText)
	suite.Equal("2.2 km", result.RemainingDistanceText)
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) createPatientStop(orderID kernel.UUID, sequence int) *stop.Stop {
	position := suite.geoPoint(41.40, 2.17)
	s, err := stop.NewStop(kernel.NewUUID(), "patient-node", position, stop.KindPatient, &orderID, sequence)
	suite.Require().NoError(err)
	return s
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) createDepotStop(sequence int) *stop.Stop {
	position := suite.geoPoint(41.39, 2.15)
	s, err := stop.NewStop(kernel.NewUUID(), "depot-node", position, stop.KindDepot, nil, sequence)
	suite.Require().NoError(err)
	return s
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) saveStop(s *stop.Stop) {
	repo := stoprepo.NewGormStopRepository(suite.db, mockAggregateTracker{})
	suite.Require().NoError(repo.Add(context.Background(), s))
}

func (suite *GetDeliveryStatusQueryHandlerTestSuite) geoPoint(lat float64, lon float64) kernel.GeoPoint {
	point, err := kernel.NewGeoPoint(lat, lon)
	suite.Require().NoError(err)
	return point
}

func TestGetDeliveryStatusQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetDeliveryStatusQueryHandlerTestSuite))
}
