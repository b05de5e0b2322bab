package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/comment-tree-api/internal/config"
	"github.com/comment-tree-api/internal/database"
	"github.com/comment-tree-api/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupMongo starts a disposable MongoDB container and ensures the indexes
func setupMongo(t *testing.T) *database.MongoDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping MongoDB integration test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("MongoDB container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err, "Failed to get container host")
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err, "Failed to get mapped port")

	db, err := database.NewMongo(&config.MongoConfig{
		URI:            fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
		Database:       "comments_test",
		ConnectTimeout: 10 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err, "Failed to connect")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.EnsureIndexes(ctx), "Failed to ensure indexes")
	return db
}

func TestMongoRepositories(t *testing.T) {
	db := setupMongo(t)

	require.NoError(t, db.HealthCheck(context.Background()), "HealthCheck failed")

	runRepositoryContract(t, repository.NewMongo(db))
}
