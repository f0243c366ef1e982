package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "CATALOG_SKIP_INTEGRATION_TESTS"

// PgStoreSuite runs PgStore against a real PostgreSQL container.
type PgStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       ProductStore
	logger      *slog.Logger
	ctx         context.Context
}

func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// 1. Start a PostgreSQL container and wait until it accepts connections.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 2. Apply the embedded migrations.
	require.NoError(s.T(), Migrate(connStr), "Failed to apply migrations")

	// 3. Connect.
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")
	require.NoError(s.T(), s.dbPool.Ping(s.ctx), "Failed to ping PostgreSQL")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for PgStoreSuite")
}

func (s *PgStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest truncates the products table before each test.
func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

func TestPgStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PgStoreSuite))
}

func (s *PgStoreSuite) createTestProduct(name string, price float64) *Product {
	s.T().Helper()
	product, err := s.store.Create(s.ctx, CreateParams{Name: name, Price: price})
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

func (s *PgStoreSuite) TestMigrateIsIdempotent() {
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)
	require.NoError(s.T(), Migrate(connStr))
}

func (s *PgStoreSuite) TestCreateAndFindFirst() {
	created := s.createTestProduct("Apple Iphone 15 Pro", 599.0)

	require.NotZero(s.T(), created.ID)
	require.Equal(s.T(), "Apple Iphone 15 Pro", created.Name)
	require.Equal(s.T(), 599.0, created.Price)
	require.True(s.T(), created.Available)
	require.False(s.T(), created.CreatedAt.IsZero())

	fetched, err := s.store.FindFirst(s.ctx, created.ID, true)
	require.NoError(s.T(), err)
	require.Equal(s.T(), created.ID, fetched.ID)
	require.WithinDuration(s.T(), created.CreatedAt, fetched.CreatedAt, time.Second)

	_, err = s.store.FindFirst(s.ctx, created.ID, false)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestCreate_DuplicateName() {
	s.createTestProduct("Samsung Galaxy S23", 699)

	_, err := s.store.Create(s.ctx, CreateParams{Name: "Samsung Galaxy S23", Price: 1})
	require.ErrorIs(s.T(), err, perrors.ErrProductConflict)
}

func (s *PgStoreSuite) TestFindFirst_NotFound() {
	_, err := s.store.FindFirst(s.ctx, 12345, true)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestFindManyAndCount() {
	for i := 1; i <= 25; i++ {
		s.createTestProduct(fmt.Sprintf("Product %02d", i), float64(i))
	}

	total, err := s.store.Count(s.ctx, true)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(25), total)

	page, err := s.store.FindMany(s.ctx, true, 20, 10)
	require.NoError(s.T(), err)
	assert.Len(s.T(), page, 5)

	empty, err := s.store.FindMany(s.ctx, true, 30, 10)
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), empty)
	assert.Empty(s.T(), empty)

	removed, err := s.store.Count(s.ctx, false)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), removed)
}

func (s *PgStoreSuite) TestUpdate_Partial() {
	created := s.createTestProduct("Google Pixel 8", 599)

	name := "Google Pixel 8 Pro"
	updated, err := s.store.Update(s.ctx, created.ID, UpdateParams{Name: &name})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), created.ID, updated.ID)
	assert.Equal(s.T(), name, updated.Name)
	assert.Equal(s.T(), created.Price, updated.Price)
	assert.True(s.T(), updated.Available)
	assert.False(s.T(), updated.UpdatedAt.Before(created.UpdatedAt))
}

func (s *PgStoreSuite) TestUpdate_SoftDelete() {
	created := s.createTestProduct("OnePlus 11", 549)

	unavailable := false
	updated, err := s.store.Update(s.ctx, created.ID, UpdateParams{Available: &unavailable})
	require.NoError(s.T(), err)
	assert.False(s.T(), updated.Available)

	_, err = s.store.FindFirst(s.ctx, created.ID, true)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
	count, err := s.store.Count(s.ctx, false)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), count)
}

func (s *PgStoreSuite) TestUpdate_NotFound() {
	name := "ghost"
	_, err := s.store.Update(s.ctx, 999, UpdateParams{Name: &name})
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestUpdate_DuplicateName() {
	s.createTestProduct("Xiaomi 13", 499)
	other := s.createTestProduct("Xiaomi 13 Pro", 749)

	name := "Xiaomi 13"
	_, err := s.store.Update(s.ctx, other.ID, UpdateParams{Name: &name})
	require.ErrorIs(s.T(), err, perrors.ErrProductConflict)
}
