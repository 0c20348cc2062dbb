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
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

type MongoEntryRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoEntryRepository(database *mongo.Database, timeout time.Duration) *MongoEntryRepository {
	return &MongoEntryRepository{coll: database.Collection(EntriesCollection), timeout: timeout}
}

func (r *MongoEntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (r *MongoEntryRepository) FindByID(ctx context.Context, id string) (*models.Entry, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var entry models.Entry
	err = r.coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find entry: %w", err)
	}
	return &entry, nil
}

// List runs the count and the page query concurrently.
func (r *MongoEntryRepository) List(ctx context.Context, f models.EntryFilter, p models.Pagination) ([]models.Entry, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := entryFilterBSON(f)
	entries := []models.Entry{}
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.coll.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count entries: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		opts := options.Find().
			SetSort(entrySort).
			SetSkip(p.Skip()).
			SetLimit(int64(p.Limit))
		cursor, err := r.coll.Find(gctx, filter, opts)
		if err != nil {
			return fmt.Errorf("find entries: %w", err)
		}
		defer cursor.Close(gctx)
		if err := cursor.All(gctx, &entries); err != nil {
			return fmt.Errorf("decode entries: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *MongoEntryRepository) Update(ctx context.Context, id string, patch models.EntryPatch) (*models.Entry, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var entry models.Entry
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": patchSet(patch)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return &entry, nil
}

// Delete removes the entry and returns the document as it was stored.
func (r *MongoEntryRepository) Delete(ctx context.Context, id string) (*models.Entry, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var entry models.Entry
	err = r.coll.FindOneAndDelete(ctx, bson.M{"_id": objID}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete entry: %w", err)
	}
	return &entry, nil
}
