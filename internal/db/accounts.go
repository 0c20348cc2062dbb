package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/PalavraDoDia/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoAccountRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoAccountRepository(database *mongo.Database, timeout time.Duration) *MongoAccountRepository {
	return &MongoAccountRepository{coll: database.Collection(AccountsCollection), timeout: timeout}
}

func (r *MongoAccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoAccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var account models.Account
	err := r.coll.FindOne(ctx, filter).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

func (r *MongoAccountRepository) ExistsWithRole(ctx context.Context, role string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return n > 0, nil
}

func (r *MongoAccountRepository) Create(ctx context.Context, account *models.Account) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, account)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}
