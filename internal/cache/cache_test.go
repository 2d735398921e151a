package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fashion-shop/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type province struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port())}, zerolog.Nop())
	require.NoError(t, err)

	return client, func() {
		_ = client.Close()
		_ = container.Terminate(ctx)
	}
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	client, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	c := NewRedisCache(client, "fashion-shop")
	want := []province{{ID: 202, Name: "Ho Chi Minh"}, {ID: 201, Name: "Ha Noi"}}

	var got []province
	hit, err := c.Get(ctx, "province", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "province", want, time.Minute))

	hit, err = c.Get(ctx, "province", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)

	raw, err := client.Get(ctx, "fashion-shop:province").Result()
	require.NoError(t, err)
	assert.Contains(t, raw, "Ho Chi Minh")

	ttl, err := client.TTL(ctx, "fashion-shop:province").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Delete(ctx, "province"))
	hit, err = c.Get(ctx, "province", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_GetCorruptValue(t *testing.T) {
	client, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "fashion-shop:broken", "{not json", 0).Err())

	var got []province
	hit, err := NewRedisCache(client, "fashion-shop").Get(ctx, "broken", &got)

	require.Error(t, err)
	assert.False(t, hit)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: "127.0.0.1:1"}, zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, client)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	var v int
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Delete(ctx, "k"))
}
