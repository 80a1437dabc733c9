package postgres_test

import (
	"context"
	"testing"

	postgres_adapter "coldchain/internal/adapters/out/postgres"
	"coldchain/internal/adapters/out/postgres/sessionstore"
	"coldchain/internal/adapters/out/postgres/stoprepo"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stop"
	"coldchain/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite provides comprehensive integration testing
// for the GORM-based Unit of Work implementation with real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite initializes PostgreSQL container and database connection for all tests.
// Runs database migrations to prepare schema for unit of work operations.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	// Start PostgreSQL container
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	// Connect to database
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	// Run migrations
	err = db.AutoMigrate(&stoprepo.StopDTO{}, &sessionstore.SessionRecordDTO{})
	suite.Require().NoError(err)

	// Create factory
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest ensures clean database state before each test.
// Truncates all tables to prevent test interference.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE stops, session_records").Error
	suite.Require().NoError(err)
}

// TearDownSuite cleans up PostgreSQL container after all tests complete.
func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

// TestUnitOfWorkFactory_Create verifies factory creates unit of work instances
// with proper initialization and isolation between instances.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")

	suite.NotNil(uow1.StopRepository(), "First instance should provide stop repository")
	suite.NotNil(uow1.SessionStore(), "First instance should provide session store")
	suite.NotNil(uow2.StopRepository(), "Second instance should provide stop repository")
	suite.NotNil(uow2.SessionStore(), "Second instance should provide session store")
}

// TestUnitOfWork_TransactionLifecycle verifies proper transaction management
// including begin, commit, and rollback operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Begin(ctx)
	suite.Require().NoError(err, "Should begin transaction successfully")

	// Multiple begin calls are safe
	err = uow.Begin(ctx)
	suite.Require().NoError(err, "Multiple begin calls should be safe")

	err = uow.Commit(ctx)
	suite.Require().NoError(err, "Should commit transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err, "Should rollback transaction successfully")
}

// TestUnitOfWork_TransactionErrors verifies error handling for invalid transaction operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Commit(ctx)
	suite.Require().Error(err, "Should error when committing without active transaction")

	err = uow.Rollback(ctx)
	suite.Require().Error(err, "Should error when rolling back without active transaction")
}

// TestUnitOfWork_SingleRepositoryTransaction verifies repository operations
// within a single transaction boundary work correctly.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_SingleRepositoryTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testStop := createPatientStop(1)

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.StopRepository().Add(ctx, testStop)
	suite.Require().NoError(err)

	// Visible within the transaction
	retrieved, err := uow.StopRepository().Get(ctx, testStop.ID())
	suite.Require().NoError(err)
	suite.Equal(testStop.ID(), retrieved.ID())

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	// Persists after commit using new unit of work
	newUow := suite.factory.Create()
	retrieved, err = newUow.StopRepository().Get(ctx, testStop.ID())
	suite.Require().NoError(err)
	suite.Equal(testStop.ID(), retrieved.ID())
}

// TestUnitOfWork_StopAndSessionRecordTransaction verifies stop and session
// record writes within a single transaction land atomically.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_StopAndSessionRecordTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testStop := createPatientStop(1)
	record := ports.SessionRecord{ElapsedSeconds: 90, InExcursion: true, SavedAtEpochMillis: 1700000000000}

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.StopRepository().Add(ctx, testStop)
	suite.Require().NoError(err)

	err = uow.SessionStore().Set(ctx, *testStop.OrderID(), record)
	suite.Require().NoError(err)

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	newUow := suite.factory.Create()

	retrievedStop, err := newUow.StopRepository().Get(ctx, testStop.ID())
	suite.Require().NoError(err)
	suite.Equal(testStop.ID(), retrievedStop.ID())

	retrievedRecord, found, err := newUow.SessionStore().Get(ctx, *testStop.OrderID())
	suite.Require().NoError(err)
	suite.True(found)
	suite.Equal(record, retrievedRecord)
}

// TestUnitOfWork_TransactionRollback verifies rollback discards all changes
// made within the transaction across both stores.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testStop := createPatientStop(1)

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.StopRepository().Add(ctx, testStop)
	suite.Require().NoError(err)

	err = uow.SessionStore().Set(ctx, *testStop.OrderID(), ports.SessionRecord{ElapsedSeconds: 10})
	suite.Require().NoError(err)

	// Visible within the transaction
	_, err = uow.StopRepository().Get(ctx, testStop.ID())
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)

	// Nothing persisted after rollback
	newUow := suite.factory.Create()

	_, err = newUow.StopRepository().Get(ctx, testStop.ID())
	suite.Require().Error(err, "Stop should not exist after rollback")

	_, found, err := newUow.SessionStore().Get(ctx, *testStop.OrderID())
	suite.Require().NoError(err)
	suite.False(found, "Session record should not exist after rollback")
}

// TestUnitOfWork_RepositoryIsolation verifies that repositories obtained
// from different unit of work instances operate independently.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	stop1 := createPatientStop(1)
	stop2 := createPatientStop(2)

	err := uow1.Begin(ctx)
	suite.Require().NoError(err)

	err = uow2.Begin(ctx)
	suite.Require().NoError(err)

	err = uow1.StopRepository().Add(ctx, stop1)
	suite.Require().NoError(err)

	err = uow2.StopRepository().Add(ctx, stop2)
	suite.Require().NoError(err)

	// Each transaction should only see its own changes
	_, err = uow1.StopRepository().Get(ctx, stop1.ID())
	suite.Require().NoError(err, "UOW1 should see stop1")

	_, err = uow1.StopRepository().Get(ctx, stop2.ID())
	suite.Require().Error(err, "UOW1 should not see stop2")

	_, err = uow2.StopRepository().Get(ctx, stop2.ID())
	suite.Require().NoError(err, "UOW2 should see stop2")

	_, err = uow2.StopRepository().Get(ctx, stop1.ID())
	suite.Require().Error(err, "UOW2 should not see stop1")

	err = uow1.Commit(ctx)
	suite.Require().NoError(err)

	err = uow2.Rollback(ctx)
	suite.Require().NoError(err)

	// Only stop1 persisted
	newUow := suite.factory.Create()
	_, err = newUow.StopRepository().Get(ctx, stop1.ID())
	suite.Require().NoError(err, "Stop1 should persist after commit")

	_, err = newUow.StopRepository().Get(ctx, stop2.ID())
	suite.Require().Error(err, "Stop2 should not persist after rollback")
}

// TestUnitOfWork_WithoutTransaction verifies that repositories work correctly
// without explicit transaction boundaries for immediate operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testStop := createPatientStop(1)

	// Add without beginning transaction (auto-commit)
	err := uow.StopRepository().Add(ctx, testStop)
	suite.Require().NoError(err)

	retrieved, err := uow.StopRepository().Get(ctx, testStop.ID())
	suite.Require().NoError(err)
	suite.Equal(testStop.ID(), retrieved.ID())

	newUow := suite.factory.Create()
	retrieved, err = newUow.StopRepository().Get(ctx, testStop.ID())
	suite.Require().NoError(err)
	suite.Equal(testStop.ID(), retrieved.ID())
}

// TestUnitOfWork_DeliveryWorkflow tests the settle-on-arrival workflow:
// the stop is delivered and its session record removed in one transaction.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_DeliveryWorkflow() {
	ctx := context.Background()

	// Seed a tracked pending stop outside the transaction
	seedUow := suite.factory.Create()
	testStop := createPatientStop(1)
	err := seedUow.StopRepository().Add(ctx, testStop)
	suite.Require().NoError(err)
	err = seedUow.SessionStore().Set(ctx, *testStop.OrderID(), ports.SessionRecord{ElapsedSeconds: 30})
	suite.Require().NoError(err)

	// Settle in one transaction
	uow := suite.factory.Create()
	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	changed, err := testStop.Deliver()
	suite.Require().NoError(err)
	suite.True(changed)

	err = uow.StopRepository().Update(ctx, testStop)
	suite.Require().NoError(err)

	err = uow.SessionStore().Delete(ctx, *testStop.OrderID())
	suite.Require().NoError(err)

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	// Verify final state using a new unit of work
	newUow := suite.factory.Create()

	retrieved, err := newUow.StopRepository().Get(ctx, testStop.ID())
	suite.Require().NoError(err)
	suite.Equal(stop.Delivered, retrieved.Status())

	_, found, err := newUow.SessionStore().Get(ctx, *testStop.OrderID())
	suite.Require().NoError(err)
	suite.False(found, "Session record should be removed after delivery")
}

// createPatientStop creates a valid pending patient stop for testing purposes.
func createPatientStop(sequence int) *stop.Stop {
	position, _ := kernel.NewGeoPoint(41.40, 2.17)
	orderID := kernel.NewUUID()
	testStop, _ := stop.NewStop(kernel.NewUUID(), "patient-node", position, stop.KindPatient, &orderID, sequence)
	return testStop
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
