package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// mongoStore implements Store on MongoDB. Conditional mutations are
// expressed as $expr filters on UpdateOne, which MongoDB applies
// atomically per document.
type mongoStore struct {
	coll *mongo.Collection
}

type mongoAccount struct {
	ID             string     `bson:"_id"`
	Credits        int64      `bson:"credits"`
	CreditsUsed    int64      `bson:"credits_used"`
	CreditsResetAt *time.Time `bson:"credits_reset_at"`
	CreatedAt      time.Time  `bson:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at"`
}

// NewMongoStore returns a Store backed by the "credit_accounts"
// collection of the given database.
func NewMongoStore(db *mongo.Database) Store {
	if db == nil {
		panic("ledger: mongo database is required")
	}
	return &mongoStore{coll: db.Collection("credit_accounts")}
}

func (s *mongoStore) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	var doc mongoAccount
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, s.classify(err)
	}

	acc := &Account{
		ID:             id,
		Credits:        doc.Credits,
		CreditsUsed:    doc.CreditsUsed,
		CreditsResetAt: doc.CreditsResetAt,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	return acc, nil
}

func (s *mongoStore) Create(ctx context.Context, acc *Account) error {
	doc := mongoAccount{
		ID:             acc.ID.String(),
		Credits:        acc.Credits,
		CreditsUsed:    acc.CreditsUsed,
		CreditsResetAt: acc.CreditsResetAt,
		CreatedAt:      acc.CreatedAt,
		UpdatedAt:      acc.UpdatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAccountAlreadyExists
		}
		return s.classify(err)
	}
	return nil
}

func (s *mongoStore) Deduct(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	filter := bson.M{
		"_id": id.String(),
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$credits_used", amount}},
				"$credits",
			},
		},
	}
	update := bson.M{
		"$inc": bson.M{"credits_used": amount},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, s.classify(err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	exists, err := s.exists(ctx, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrAccountNotFound
	}
	return false, nil
}

func (s *mongoStore) Reset(ctx context.Context, id uuid.UUID, newTotal int64, now time.Time) error {
	update := bson.M{"$set": bson.M{
		"credits":          newTotal,
		"credits_used":     int64(0),
		"credits_reset_at": now,
		"updated_at":       now,
	}}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return s.classify(err)
	}
	if res.MatchedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *mongoStore) ResetIfElapsed(ctx context.Context, id uuid.UUID, newTotal int64, cutoff, now time.Time) (bool, error) {
	filter := bson.M{
		"_id": id.String(),
		"$or": bson.A{
			bson.M{"credits_reset_at": nil},
			bson.M{"credits_reset_at": bson.M{"$lt": cutoff}},
		},
	}
	update := bson.M{"$set": bson.M{
		"credits":          newTotal,
		"credits_used":     int64(0),
		"credits_reset_at": now,
		"updated_at":       now,
	}}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, s.classify(err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	exists, err := s.exists(ctx, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrAccountNotFound
	}
	return false, nil
}

func (s *mongoStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, s.classify(err)
	}
	defer cursor.Close(ctx)

	var ids []uuid.UUID
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, s.classify(err)
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue // skip documents with non-UUID keys
		}
		ids = append(ids, id)
	}
	if err := cursor.Err(); err != nil {
		return nil, s.classify(err)
	}
	return ids, nil
}

func (s *mongoStore) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return false, s.classify(err)
	}
	return count > 0, nil
}

func (s *mongoStore) classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return errors.Join(ErrStorageTransient, err)
	}
	return err
}
