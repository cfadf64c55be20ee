package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/suite"
	"github.com/umalmyha/leads/internal/model"
)

const (
	connectionTimeout = 3 * time.Second
	snapshotTTL       = time.Minute
)

const (
	redisContainerName = "redis-cache-test-leads"
	redisTestPassword  = "cache-test"
	redisPort          = "6379"
	redisTestDB        = 0
)

type cacheTestSuite struct {
	suite.Suite
	dockerPool  *dockertest.Pool
	redis       *dockertest.Resource
	redisClient *redis.Client
	clientCache ClientCache
}

func (s *cacheTestSuite) SetupSuite() {
	t := s.T()
	assert := s.Require()

	t.Log("build docker pool")
	dockerPool, err := dockertest.NewPool("")
	assert.NoError(err, "failed to create pool")

	err = dockerPool.Client.Ping()
	assert.NoError(err, "failed to connect to docker")

	s.dockerPool = dockerPool

	t.Log("starting redis...")
	s.redis, err = dockerPool.RunWithOptions(&dockertest.RunOptions{
		Name:       redisContainerName,
		Repository: "redis",
		Tag:        "latest",
		Cmd:        []string{"redis-server", "--requirepass", redisTestPassword},
		PortBindings: map[docker.Port][]docker.PortBinding{
			"6379/tcp": {{HostIP: "localhost", HostPort: fmt.Sprintf("%s/tcp", redisPort)}},
		},
	})
	assert.NoError(err, "failed to start redis")

	t.Log("connecting to redis...")
	err = dockerPool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		defer cancel()

		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("localhost:%s", redisPort),
			Password: redisTestPassword,
			DB:       redisTestDB,
		})

		return s.redisClient.Ping(ctx).Err()
	})
	assert.NoError(err, "failed to establish connection to redis")

	s.clientCache = NewRedisClientCache(s.redisClient, snapshotTTL)
}

func (s *cacheTestSuite) TearDownSuite() {
	t := s.T()

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			t.Logf("failed to gracefully close connection to redis - %v", err)
		}
	}

	if s.redis != nil {
		if err := s.dockerPool.Purge(s.redis); err != nil {
			t.Logf("failed to purge redis container - %v", err)
		}
	}
}

func (s *cacheTestSuite) TestSnapshotLifecycle() {
	t := s.T()
	require := s.Require()
	ctx := context.Background()

	notes := "call after five"
	clients := []*model.Client{
		{LeadID: 1, Title: "Mr.", Name: "John", Surname: "Doe", PhoneNumber: "+27123456789", IDNumber: "1234567890123", Email: "john.doe@example.com"},
		{LeadID: 2, Title: "Ms.", Name: "Jane", Surname: "Roe", PhoneNumber: "0825551234", IDNumber: "9001015009087", Email: "jane@example.com", Notes: &notes},
	}

	var version int64

	t.Log("empty cache misses")
	{
		cached, v, err := s.clientCache.Snapshot(ctx)
		require.NoError(err, "no error must be raised")
		require.Nil(cached, "nothing must be cached yet")
		version = v
	}

	t.Log("stored snapshot is served")
	{
		require.NoError(s.clientCache.Store(ctx, version, clients), "failed to store snapshot")

		cached, v, err := s.clientCache.Snapshot(ctx)
		require.NoError(err, "no error must be raised")
		require.Equal(version, v, "version must not change")
		require.Equal(clients, cached, "stored snapshot must be returned")
	}

	t.Log("evicted snapshot is not served")
	{
		require.NoError(s.clientCache.Evict(ctx), "failed to evict snapshot")

		cached, v, err := s.clientCache.Snapshot(ctx)
		require.NoError(err, "no error must be raised")
		require.Nil(cached, "evicted snapshot must not be served")
		require.Equal(version+1, v, "version must move forward")
	}

	t.Log("snapshot stored under outdated version is never served")
	{
		require.NoError(s.clientCache.Store(ctx, version, clients), "failed to store snapshot")

		cached, _, err := s.clientCache.Snapshot(ctx)
		require.NoError(err, "no error must be raised")
		require.Nil(cached, "outdated snapshot must not be served")
	}
}

func (s *cacheTestSuite) TestDisabled() {
	require := s.Require()
	ctx := context.Background()
	disabled := Disabled()

	require.NoError(disabled.Store(ctx, 0, []*model.Client{{LeadID: 1}}))
	require.NoError(disabled.Evict(ctx))

	cached, _, err := disabled.Snapshot(ctx)
	require.NoError(err, "no error must be raised")
	require.Nil(cached, "disabled cache must never hold snapshot")
}

func TestCache(t *testing.T) {
	suite.Run(t, new(cacheTestSuite))
}
