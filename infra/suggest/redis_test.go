package suggest

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/tripcost/core/factory"
	coresuggest "github.com/kilianp07/tripcost/core/suggest"
)

func startRedis(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("redis container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedisSource_SeedAndRead(t *testing.T) {
	addr := startRedis(t)
	src := NewRedisSource(Config{Addr: addr, Key: "test:suggestions"})
	defer src.Close()
	ctx := context.Background()

	require.NoError(t, src.Seed(ctx, coresuggest.DefaultDestinations))
	got, err := src.Suggestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, coresuggest.DefaultDestinations, got)
	assert.Equal(t, coresuggest.DefaultDestinations[:5], coresuggest.Top(got))

	require.NoError(t, src.Seed(ctx, []string{"Oslo, Norway"}))
	got, err = src.Suggestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Oslo, Norway"}, got)
}

func TestRedisSource_Limit(t *testing.T) {
	addr := startRedis(t)
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	src := NewRedisSourceWithClient(rdb, "", 3)
	defer src.Close()
	ctx := context.Background()

	require.NoError(t, src.Seed(ctx, coresuggest.DefaultDestinations))
	got, err := src.Suggestions(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "Paris, France", got[0])
}

func TestRedisSource_Unreachable(t *testing.T) {
	src := NewRedisSource(Config{Addr: "127.0.0.1:1"})
	defer src.Close()
	_, err := src.Suggestions(context.Background())
	assert.Error(t, err)
}

func TestNewSourceRedis(t *testing.T) {
	s, err := coresuggest.NewSource(factory.ModuleConfig{Type: "redis", Conf: map[string]any{"addr": "127.0.0.1:1", "db": "2"}})
	require.NoError(t, err)
	rs, ok := s.(*RedisSource)
	require.True(t, ok)
	assert.Equal(t, DefaultKey, rs.key)
	_ = rs.Close()
}
