package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/labstack/gommon/log"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	apperrors "github.com/umalmyha/leads/internal/errors"
	"github.com/umalmyha/leads/internal/model"
	"github.com/umalmyha/leads/pkg/db/transactor"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectionTimeout = 3 * time.Second
	testTimeout       = 20 * time.Second
	concurrentInserts = 10
)

const (
	pgContainerName = "pg-test-leads"
	pgPort          = "5432"
	pgTestUser      = "test"
	pgTestPassword  = "test"
	pgTestDB        = "leads"
)

const (
	mongoContainerName = "mongo-test-leads"
	mongoPort          = "27017"
	mongoTestUser      = "test"
	mongoTestPassword  = "test"
	mongoTestDB        = "leads"
)

var pgPool *pgxpool.Pool
var mongoClient *mongo.Client

//nolint:funlen // function contains a lot of boilerplate actions
func TestMain(m *testing.M) {
	// build docker pool
	dockerPool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("failed to create pool - %v", err)
	}

	if err := dockerPool.Client.Ping(); err != nil {
		log.Fatalf("failed to connect to docker - %v", err)
	}

	// create network for containers
	network, err := dockerPool.Client.CreateNetwork(docker.CreateNetworkOptions{Name: "leads-test-net"})
	if err != nil {
		log.Fatalf("failed to create network - %v", err)
	}

	// start postgres
	postgres, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Name:       pgContainerName,
		Repository: "postgres",
		Tag:        "latest",
		NetworkID:  network.ID,
		Env: []string{
			fmt.Sprintf("POSTGRES_USER=%s", pgTestUser),
			fmt.Sprintf("POSTGRES_PASSWORD=%s", pgTestPassword),
			fmt.Sprintf("POSTGRES_DB=%s", pgTestDB),
		},
		PortBindings: map[docker.Port][]docker.PortBinding{
			"5432/tcp": {{HostIP: "localhost", HostPort: fmt.Sprintf("%s/tcp", pgPort)}},
		},
	})
	if err != nil {
		log.Fatalf("failed to start postgresql - %v", err)
	}

	// run migrations
	flywayCmd := []string{
		fmt.Sprintf("-url=jdbc:postgresql://%s:%s/%s", pgContainerName, pgPort, pgTestDB),
		fmt.Sprintf("-user=%s", pgTestUser),
		fmt.Sprintf("-password=%s", pgTestPassword),
		"-connectRetries=5",
		"migrate",
	}

	migrationsPath, err := filepath.Abs("../../migrations")
	if err != nil {
		log.Fatalf("failed to find migrations path - %v", err)
	}

	flyway, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "flyway/flyway",
		Tag:        "latest",
		NetworkID:  network.ID,
		Cmd:        flywayCmd,
		Mounts:     []string{fmt.Sprintf("%s:/flyway/sql", migrationsPath)},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		log.Fatalf("failed to start flyway migrations - %v", err)
	}

	// waiting for flyway container to be destroyed
	err = dockerPool.Retry(func() error {
		if _, ok := dockerPool.ContainerByName(flyway.Container.Name); ok {
			return errors.New("flyway migrations are still in progress")
		}
		return nil
	})
	if err != nil {
		log.Fatalf("failed to await flyway migrations - %v", err)
	}

	// connect to postgres
	pgURI := fmt.Sprintf("postgres://%s:%s@localhost:%s/%s?sslmode=disable", pgTestUser, pgTestPassword, pgPort, pgTestDB)
	err = dockerPool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		defer cancel()

		var err error
		pgPool, err = pgxpool.Connect(ctx, pgURI)
		if err != nil {
			return err
		}
		return pgPool.Ping(ctx)
	})
	if err != nil {
		log.Fatalf("failed to establish connection to postgresql - %v", err)
	}

	// start mongo
	mongodb, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Name:       mongoContainerName,
		Repository: "mongo",
		Tag:        "latest",
		NetworkID:  network.ID,
		Env: []string{
			fmt.Sprintf("MONGO_INITDB_ROOT_USERNAME=%s", mongoTestUser),
			fmt.Sprintf("MONGO_INITDB_ROOT_PASSWORD=%s", mongoTestPassword),
		},
		PortBindings: map[docker.Port][]docker.PortBinding{
			"27017/tcp": {{HostIP: "localhost", HostPort: fmt.Sprintf("%s/tcp", mongoPort)}},
		},
	})
	if err != nil {
		log.Fatalf("failed to start mongodb - %v", err)
	}

	// connect to mongo
	mongoURI := fmt.Sprintf("mongodb://%s:%s@localhost:%s/?maxPoolSize=100", mongoTestUser, mongoTestPassword, mongoPort)
	err = dockerPool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		defer cancel()

		var err error
		mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
		if err != nil {
			return err
		}
		return mongoClient.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		log.Fatalf("failed to establish connection to mongodb - %v", err)
	}

	if err := EnsureMongoIndexes(context.Background(), mongoClient, mongoTestDB); err != nil {
		log.Fatalf("failed to create mongodb indexes - %v", err)
	}

	// start tests
	code := m.Run()

	pgPool.Close()
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Errorf("failed to disconnect from mongodb - %v", err)
	}

	// purge postgresql
	if err := dockerPool.Purge(postgres); err != nil {
		log.Fatalf("failed to purge postgresql - %v", err)
	}

	// purge mongodb
	if err := dockerPool.Purge(mongodb); err != nil {
		log.Fatalf("failed to purge mongodb - %v", err)
	}

	// remove network
	if err := dockerPool.Client.RemoveNetwork(network.ID); err != nil {
		log.Fatalf("failed to remove network - %v", err)
	}

	os.Exit(code)
}

func TestPostgresClientRps(t *testing.T) {
	clientRps := NewPostgresClientRepository(transactor.NewPgxWithinTransactionExecutor(pgPool))
	t.Log("running tests for postgres")
	testClientRps(t, clientRps)
}

func TestMongoClientRps(t *testing.T) {
	clientRps := NewMongoClientRepository(mongoClient, mongoTestDB)
	t.Log("running tests for mongo")
	testClientRps(t, clientRps)
}

func TestPostgresTransaction(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	trx := transactor.NewPgxTransactor(pgPool)
	clientRps := NewPostgresClientRepository(transactor.NewPgxWithinTransactionExecutor(pgPool))

	c := &model.Client{
		Title: "Dr.", Name: "Rolled", Surname: "Back", PhoneNumber: "+27820000001",
		IDNumber: "8001015009087", Email: "rolled.back@example.com",
	}

	t.Log("insert is rolled back when unit of work fails")
	{
		errAbort := errors.New("abort")
		err := trx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := clientRps.Create(ctx, c); err != nil {
				return err
			}

			exists, err := clientRps.ExistsByPhoneNumber(ctx, c.PhoneNumber)
			require.NoError(t, err, "failed to lookup phone number")
			require.True(t, exists, "lead must be visible inside transaction")
			return errAbort
		})
		require.ErrorIs(t, err, errAbort, "error of unit of work must be returned")

		exists, err := clientRps.ExistsByPhoneNumber(ctx, c.PhoneNumber)
		require.NoError(t, err, "failed to lookup phone number")
		require.False(t, exists, "lead must be rolled back")
	}

	t.Log("insert is committed when unit of work succeeds")
	{
		err := trx.WithinTransaction(ctx, func(ctx context.Context) error {
			return clientRps.Create(ctx, c)
		})
		require.NoError(t, err, "no error must be raised")

		exists, err := clientRps.ExistsByPhoneNumber(ctx, c.PhoneNumber)
		require.NoError(t, err, "failed to lookup phone number")
		require.True(t, exists, "lead must be committed")
	}
}

//nolint:funlen // function contains a lot of inlined tests
func testClientRps(t *testing.T, clientRps ClientRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	notes, optInDate, preferredTime, offerID := "prefers email", "2024-02-29", "17:45:30", "OFF-2024"

	clients := []*model.Client{
		{
			Title: "Mr.", Name: "John", Surname: "Doe", PhoneNumber: "+27123456789",
			IDNumber: "1234567890123", Email: "john.doe@example.com",
		},
		{
			Title: "Ms.", Name: "Jane", Surname: "Roe", PhoneNumber: "082 555 1234",
			IDNumber: "9001015009087", Email: "jane.roe@example.com",
			Notes: &notes, OptInDate: &optInDate, PreferredTime: &preferredTime, OfferID: &offerID,
		},
		{
			Title: "Mx.", Name: "Alex", Surname: "Poe", PhoneNumber: "+14155552671",
			IDNumber: "7001015009087", Email: "alex.poe@example.com", PreferredTime: &preferredTime,
		},
	}

	t.Log("datastore responds to ping")
	{
		require.NoError(t, clientRps.Ping(ctx), "ping must succeed")
	}

	t.Logf("create %d clients", len(clients))
	{
		for _, c := range clients {
			exists, err := clientRps.ExistsByPhoneNumber(ctx, c.PhoneNumber)
			require.NoError(t, err, "failed to lookup phone number %s", c.PhoneNumber)
			require.False(t, exists, "phone number %s must not be registered yet", c.PhoneNumber)

			err = clientRps.Create(ctx, c)
			require.NoError(t, err, "failed to create client %s", c.PhoneNumber)
			require.NotZero(t, c.LeadID, "lead id must be assigned")
		}
	}

	t.Log("registered phone numbers are found")
	{
		for _, c := range clients {
			exists, err := clientRps.ExistsByPhoneNumber(ctx, c.PhoneNumber)
			require.NoError(t, err, "failed to lookup phone number %s", c.PhoneNumber)
			require.True(t, exists, "phone number %s must be registered", c.PhoneNumber)
		}
	}

	t.Log("duplicate phone number is rejected by datastore")
	{
		dup := *clients[0]
		dup.LeadID = 0
		dup.Email = "other@example.com"

		err := clientRps.Create(ctx, &dup)
		require.ErrorIs(t, err, apperrors.ErrDuplicateLead, "duplicate error must be raised")
		require.Zero(t, dup.LeadID, "lead id must not be assigned to rejected lead")
	}

	t.Log("all clients are read in lead id order with optional fields intact")
	{
		dbClients, err := clientRps.FindAll(ctx)
		require.NoError(t, err, "failed to read clients")
		require.Len(t, dbClients, len(clients), "every created client must be read")

		for i, c := range dbClients {
			require.Equal(t, clients[i], c, "client %d must match created one", i)
			if i > 0 {
				require.Greater(t, c.LeadID, dbClients[i-1].LeadID, "clients must be ordered by lead id")
			}
		}
	}

	t.Logf("%d concurrent inserts of one phone number", concurrentInserts)
	{
		var wg sync.WaitGroup
		errs := make(chan error, concurrentInserts)

		for i := 0; i < concurrentInserts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- clientRps.Create(ctx, &model.Client{
					Title: "Mr.", Name: "Racer", Surname: fmt.Sprintf("No%d", i), PhoneNumber: "+27829999999",
					IDNumber: "6001015009087", Email: fmt.Sprintf("racer%d@example.com", i),
				})
			}(i)
		}

		wg.Wait()
		close(errs)

		created := 0
		for err := range errs {
			if err == nil {
				created++
				continue
			}
			require.ErrorIs(t, err, apperrors.ErrDuplicateLead, "only duplicate errors are expected")
		}
		require.Equal(t, 1, created, "exactly one lead must be created")

		dbClients, err := clientRps.FindAll(ctx)
		require.NoError(t, err, "failed to read clients")
		require.Len(t, dbClients, len(clients)+1, "single racer must be stored")
	}
}
