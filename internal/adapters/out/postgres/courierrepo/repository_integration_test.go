package courierrepo_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// CourierRepositoryIntegrationTestSuite provides integration tests for CourierRepository
// using PostgreSQL containers to verify database persistence behavior.
type CourierRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *courierrepo.GormCourierRepository
	tracker    *MockAggregateTracker
}

func (suite *CourierRepositoryIntegrationTestSuite) SetupSuite() {
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

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&courierrepo.CourierDTO{}))
}

func (suite *CourierRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE couriers").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = courierrepo.NewGormCourierRepository(suite.db, suite.tracker)
}

func (suite *CourierRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CourierRepositoryIntegrationTestSuite) TestAdd_NewCourier_PersistsWithoutLocation() {
	ctx := context.Background()

	testCourier := suite.newCourier("Alice")
	suite.tracker.On("TrackAggregate", testCourier.ID(), testCourier).Once()

	suite.Require().NoError(suite.repository.Add(ctx, testCourier))

	retrieved, err := suite.repository.Get(ctx, testCourier.ID())
	suite.Require().NoError(err)

	suite.Equal("Alice", retrieved.Name())
	suite.True(retrieved.IsAvailable())
	suite.Nil(retrieved.Location())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestUpdate_RoundTripsAvailabilityAndLocation() {
	ctx := context.Background()

	testCourier := suite.newCourier("Bob")
	suite.tracker.On("TrackAggregate", testCourier.ID(), testCourier).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, testCourier))

	location, err := kernel.NewLocation(40.7306, -73.9352)
	suite.Require().NoError(err)
	suite.Require().NoError(testCourier.UpdateLocation(location))
	testCourier.MarkBusy()

	suite.Require().NoError(suite.repository.Update(ctx, testCourier))

	retrieved, err := suite.repository.Get(ctx, testCourier.ID())
	suite.Require().NoError(err)

	suite.False(retrieved.IsAvailable())
	suite.Require().NotNil(retrieved.Location())
	suite.InDelta(40.7306, retrieved.Location().Latitude(), 1e-9)
	suite.InDelta(-73.9352, retrieved.Location().Longitude(), 1e-9)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGet_NonExistentCourier_ReturnsNotFoundError() {
	ctx := context.Background()

	retrieved, err := suite.repository.Get(ctx, kernel.NewUUID())

	suite.Nil(retrieved)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestUpdate_NonExistentCourier_ReturnsError() {
	ctx := context.Background()

	err := suite.repository.Update(ctx, suite.newCourier("Ghost"))
	suite.Require().Error(err)
	suite.Contains(strings.ToLower(err.Error()), "not found")

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGetAllAvailable_ReturnsOnlyAvailableCouriersOrderedByName() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(3)

	available1 := suite.newCourier("Charlie")
	available2 := suite.newCourier("Alice")
	busy := suite.newCourier("Bob")
	busy.MarkBusy()

	suite.Require().NoError(suite.repository.Add(ctx, available1))
	suite.Require().NoError(suite.repository.Add(ctx, available2))
	suite.Require().NoError(suite.repository.Add(ctx, busy))

	couriers, err := suite.repository.GetAllAvailable(ctx)
	suite.Require().NoError(err)

	suite.Require().Len(couriers, 2)
	suite.Equal("Alice", couriers[0].Name())
	suite.Equal("Charlie", couriers[1].Name())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGetAllAvailable_NoAvailableCouriers_ReturnsEmptySlice() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Once()

	busy := suite.newCourier("Bob")
	busy.MarkBusy()
	suite.Require().NoError(suite.repository.Add(ctx, busy))

	couriers, err := suite.repository.GetAllAvailable(ctx)
	suite.Require().NoError(err)
	suite.Empty(couriers)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) newCourier(name string) *courier.Courier {
	testCourier, err := courier.NewCourier(kernel.NewUUID(), name)
	suite.Require().NoError(err)
	return testCourier
}

func TestCourierRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(CourierRepositoryIntegrationTestSuite))
}
