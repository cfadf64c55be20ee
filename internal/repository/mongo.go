package repository

import (
	"context"
	"errors"
	"fmt"
	apperrors "github.com/umalmyha/leads/internal/errors"
	"github.com/umalmyha/leads/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	clientsCollection  = "clients"
	countersCollection = "counters"
	leadIDCounter      = "lead_id"
)

type counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

type mongoClientRepository struct {
	client   *mongo.Client
	database string
}

func NewMongoClientRepository(client *mongo.Client, database string) ClientRepository {
	return &mongoClientRepository{client: client, database: database}
}

// EnsureMongoIndexes creates unique indexes clients collection relies on
func EnsureMongoIndexes(ctx context.Context, client *mongo.Client, database string) error {
	_, err := client.Database(database).Collection(clientsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "lead_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create clients indexes - %w", err)
	}
	return nil
}

func (r *mongoClientRepository) ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error) {
	count, err := r.clients().CountDocuments(ctx, bson.M{"phone_number": phone}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoClientRepository) Create(ctx context.Context, c *model.Client) error {
	leadID, err := r.nextLeadID(ctx)
	if err != nil {
		return err
	}

	doc := *c
	doc.LeadID = leadID

	if _, err := r.clients().InsertOne(ctx, &doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrDuplicateLead
		}
		return err
	}

	c.LeadID = leadID
	return nil
}

func (r *mongoClientRepository) FindAll(ctx context.Context) ([]*model.Client, error) {
	cursor, err := r.clients().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "lead_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	clients := make([]*model.Client, 0)
	for cursor.Next(ctx) {
		var c model.Client
		if err := cursor.Decode(&c); err != nil {
			return nil, err
		}
		clients = append(clients, &c)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *mongoClientRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// nextLeadID increments lead id counter, concurrent upsert of missing counter is retried once
func (r *mongoClientRepository) nextLeadID(ctx context.Context) (int64, error) {
	seq, err := r.incrementCounter(ctx)
	if mongo.IsDuplicateKeyError(err) {
		return r.incrementCounter(ctx)
	}
	return seq, err
}

func (r *mongoClientRepository) incrementCounter(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	res := r.client.Database(r.database).Collection(countersCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": leadIDCounter},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	)

	var cnt counter
	if err := res.Decode(&cnt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, errors.New("lead id counter was not created")
		}
		return 0, err
	}
	return cnt.Seq, nil
}

func (r *mongoClientRepository) clients() *mongo.Collection {
	return r.client.Database(r.database).Collection(clientsCollection)
}
