//go:build integration

package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestRedisStore_Integration_ClearManyKeys(t *testing.T) {
	client, cleanup := setupRedis(t)
	defer cleanup()

	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	store, err := NewRedisStore(client, "user-42", logger)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	ctx := context.Background()

	// More keys than one SCAN/DEL batch.
	for i := 0; i < 250; i++ {
		if err := store.Put(ctx, fmt.Sprintf("token-%d", i), Credential{Token: "t"}, 0); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	removed, err := store.clear(ctx)
	if err != nil {
		t.Fatalf("clear() error = %v", err)
	}
	if removed != 250 {
		t.Errorf("removed = %d, want 250", removed)
	}

	if _, err := store.Get(ctx, "token-0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after clear error = %v, want ErrNotFound", err)
	}
}

func TestRedisStore_Integration_ClearAfterShutdown(t *testing.T) {
	client, cleanup := setupRedis(t)

	store, err := NewRedisStore(client, "user-1", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	cleanup()

	if err := store.Clear(context.Background()); err == nil {
		t.Error("expected error after Redis shutdown")
	}
}
