package infra

import (
	"context"
	"fmt"
	"github.com/umalmyha/leads/internal/config"
	"github.com/umalmyha/leads/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"time"
)

const mongoConnectTimeout = 5 * time.Second

func Mongodb(ctx context.Context, cfg config.MongoCfg) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI()))
	if err != nil {
		return nil, fmt.Errorf("failed to establish connection to mongodb - %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("didn't get response from mongodb after sending ping request - %w", err)
	}

	if err := repository.EnsureMongoIndexes(ctx, client, cfg.Database); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}
