package lock_store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hmcts/fact-admin/internal/fact_errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MongoCollectionName = "court_locks"

// strength 2 compares letters without case
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type mongoCourtLock struct {
	CourtSlug  string    `bson:"_id"`
	ID         string    `bson:"lock_id"`
	UserEmail  string    `bson:"user_email"`
	AcquiredAt time.Time `bson:"lock_acquired"`
}

func (d mongoCourtLock) toCourtLock() (CourtLock, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return CourtLock{}, err
	}
	return CourtLock{
		ID:         id,
		CourtSlug:  d.CourtSlug,
		UserEmail:  d.UserEmail,
		AcquiredAt: d.AcquiredAt.UTC(),
	}, nil
}

// MongoStore keeps one document per court, keyed by the court slug in _id.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(MongoCollectionName)}
}

func NewMongoStoreFromCollection(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

func (m *MongoStore) GetCourtLocks(ctx context.Context, courtSlug string) ([]CourtLock, error) {
	var doc mongoCourtLock
	err := m.collection.FindOne(ctx, bson.M{"_id": courtSlug}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf(
			"%w, cannot fetch lock of court %s, %w",
			fact_errors.ErrInternal,
			courtSlug,
			err,
		)
	}
	lock, err := doc.toCourtLock()
	if err != nil {
		return nil, fmt.Errorf(
			"%w, corrupted lock record for court %s, %w",
			fact_errors.ErrInternal,
			courtSlug,
			err,
		)
	}
	return []CourtLock{lock}, nil
}

// Returns ErrEntityAlreadyExist if the court is already locked
func (m *MongoStore) AddCourtLock(ctx context.Context, lock CourtLock) error {
	_, err := m.collection.InsertOne(ctx, mongoCourtLock{
		CourtSlug:  lock.CourtSlug,
		ID:         lock.ID.String(),
		UserEmail:  lock.UserEmail,
		AcquiredAt: lock.AcquiredAt,
	})
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf(
			"%w, court %s already has a lock",
			fact_errors.ErrEntityAlreadyExist,
			lock.CourtSlug,
		)
	}
	return fmt.Errorf(
		"%w, cannot create lock on court %s, %w",
		fact_errors.ErrInternal,
		lock.CourtSlug,
		err,
	)
}

func (m *MongoStore) DeleteCourtLocks(ctx context.Context, courtSlug, userEmail string) error {
	_, err := m.collection.DeleteOne(
		ctx,
		bson.M{"_id": courtSlug, "user_email": userEmail},
		options.Delete().SetCollation(caseInsensitive),
	)
	if err != nil {
		return fmt.Errorf(
			"%w, cannot delete lock of %s on court %s, %w",
			fact_errors.ErrInternal,
			userEmail,
			courtSlug,
			err,
		)
	}
	return nil
}

func (m *MongoStore) DeleteCourtLocksAcquiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := m.collection.DeleteMany(ctx, bson.M{"lock_acquired": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf(
			"%w, cannot delete locks acquired before %v, %w",
			fact_errors.ErrInternal,
			cutoff,
			err,
		)
	}
	return res.DeletedCount, nil
}
