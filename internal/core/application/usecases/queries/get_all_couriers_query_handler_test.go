package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockAggregateTracker implements ports.AggregateTracker for test purposes.
// It's a no-op implementation since we don't need aggregate tracking in query tests.
type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}

type GetAllCouriersQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetAllCouriersQueryHandler
}

func (suite *GetAllCouriersQueryHandlerTestSuite) SetupSuite() {
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

	err = db.AutoMigrate(&courierrepo.CourierDTO{})
	suite.Require().NoError(err)

	suite.handler = queries.NewGetAllCouriersQueryHandler(db)
}

func (suite *GetAllCouriersQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *GetAllCouriersQueryHandlerTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE couriers").Error
	suite.Require().NoError(err)
}

func (suite *GetAllCouriersQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEmptySlice() {
	query := queries.NewGetAllCouriersQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *GetAllCouriersQueryHandlerTestSuite) TestHandle_WithCouriers_ReturnsAllCouriersOrderedByName() {
	repo := courierrepo.NewGormCourierRepository(suite.db, &mockAggregateTracker{})
	ctx := context.Background()

	alice := suite.createCourier("Alice", 40.7128, -74.0060)
	bob := suite.createCourier("Bob", 40.7306, -73.9352)
	bob.MarkBusy()
	charlie, err := courier.NewCourier(kernel.NewUUID(), "Charlie")
	suite.Require().NoError(err)

	suite.Require().NoError(repo.Add(ctx, alice))
	suite.Require().NoError(repo.Add(ctx, bob))
	suite.Require().NoError(repo.Add(ctx, charlie))

	query := queries.NewGetAllCouriersQuery()

	result, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 3)

	suite.Equal("Alice", result[0].Name)
	suite.Equal(alice.ID(), result[0].ID)
	suite.True(result[0].Available)
	suite.Require().NotNil(result[0].Location)
	suite.InDelta(40.7128, result[0].Location.Latitude(), 1e-9)

	suite.Equal("Bob", result[1].Name)
	suite.False(result[1].Available)

	suite.Equal("Charlie", result[2].Name)
	suite.Nil(result[2].Location, "Courier without a reported position has no location")
}

func (suite *GetAllCouriersQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	invalidQuery := queries.GetAllCouriersQuery{}

	result, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.Contains(err.Error(), "must be created via NewGetAllCouriersQuery constructor")
}

func (suite *GetAllCouriersQueryHandlerTestSuite) createCourier(name string, latitude, longitude float64) *courier.Courier {
	c, err := courier.NewCourier(kernel.NewUUID(), name)
	suite.Require().NoError(err)

	location, err := kernel.NewLocation(latitude, longitude)
	suite.Require().NoError(err)
	suite.Require().NoError(c.UpdateLocation(location))

	return c
}

func TestGetAllCouriersQueryHandlerTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(GetAllCouriersQueryHandlerTestSuite))
}
