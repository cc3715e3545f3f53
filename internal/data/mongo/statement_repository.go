package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jar-backoffice/internal/domain/ledger"
)

const (
	// StatementCollectionName holds one document per projected ledger entry
	StatementCollectionName = "customer_statements"
)

// StatementRepository implements ledger.StatementRepository for MongoDB
type StatementRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewStatementRepository(logger *slog.Logger, db *mongo.Database) *StatementRepository {
	return &StatementRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique (owner_id, entry_id) key and the listing index
func (r *StatementRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(StatementCollectionName)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "entry_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "customer_id", Value: 1}, {Key: "entry_id", Value: 1}},
		},
	})
	if err != nil {
		r.logger.Error("Failed to create statement indexes", "error", err)
		return fmt.Errorf("failed to create statement indexes: %w", err)
	}
	return nil
}

// upsertDocument builds the update for Upsert. A live line only sets is_deleted
// on insert, so a replayed recorded event never revives a deleted line.
func upsertDocument(line *ledger.StatementLine) (bson.M, error) {
	raw, err := bson.Marshal(line)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	delete(set, "is_deleted")
	delete(set, "deleted_at")

	update := bson.M{"$set": set}
	if line.IsDeleted {
		set["is_deleted"] = true
		if line.DeletedAt != nil {
			set["deleted_at"] = *line.DeletedAt
		}
	} else {
		update["$setOnInsert"] = bson.M{"is_deleted": false}
	}
	return update, nil
}

// Upsert writes the line keyed by owner and entry id, so replayed events are harmless
func (r *StatementRepository) Upsert(ctx context.Context, line *ledger.StatementLine) error {
	collection := r.db.Collection(StatementCollectionName)

	filter := bson.M{"owner_id": line.OwnerID, "entry_id": line.EntryID}
	update, err := upsertDocument(line)
	if err != nil {
		return fmt.Errorf("failed to encode statement line: %w", err)
	}

	_, err = collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to upsert statement line",
			"owner_id", line.OwnerID,
			"entry_id", line.EntryID,
			"error", err)
		return fmt.Errorf("failed to upsert statement line: %w", err)
	}

	return nil
}

// MarkDeleted flags a projected line. Returns ErrEntryNotFound when the line was never projected.
func (r *StatementRepository) MarkDeleted(ctx context.Context, ownerID, entryID int64, deletedAt time.Time) error {
	collection := r.db.Collection(StatementCollectionName)

	filter := bson.M{"owner_id": ownerID, "entry_id": entryID}
	result, err := collection.UpdateOne(ctx, filter, markDeletedDocument(deletedAt, time.Now()))
	if err != nil {
		r.logger.Error("Failed to mark statement line deleted",
			"owner_id", ownerID,
			"entry_id", entryID,
			"error", err)
		return fmt.Errorf("failed to mark statement line deleted: %w", err)
	}

	if result.MatchedCount == 0 {
		return ledger.ErrEntryNotFound{EntryID: entryID}
	}

	return nil
}

func markDeletedDocument(deletedAt, projectedAt time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"is_deleted":   true,
			"deleted_at":   deletedAt,
			"projected_at": projectedAt,
		},
	}
}

func activeLines(ownerID, customerID int64) bson.M {
	return bson.M{"owner_id": ownerID, "customer_id": customerID, "is_deleted": false}
}

// ListByCustomer returns live lines in ledger order
func (r *StatementRepository) ListByCustomer(ctx context.Context, ownerID, customerID int64, limit, offset int) ([]*ledger.StatementLine, error) {
	collection := r.db.Collection(StatementCollectionName)

	opts := options.Find().
		SetSort(bson.D{{Key: "entry_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, activeLines(ownerID, customerID), opts)
	if err != nil {
		r.logger.Error("Failed to get statement lines",
			"owner_id", ownerID,
			"customer_id", customerID,
			"error", err)
		return nil, fmt.Errorf("failed to get statement lines: %w", err)
	}
	defer cursor.Close(ctx)

	lines := make([]*ledger.StatementLine, 0)
	if err := cursor.All(ctx, &lines); err != nil {
		r.logger.Error("Failed to decode statement lines",
			"owner_id", ownerID,
			"customer_id", customerID,
			"error", err)
		return nil, fmt.Errorf("failed to decode statement lines: %w", err)
	}

	return lines, nil
}

func (r *StatementRepository) CountByCustomer(ctx context.Context, ownerID, customerID int64) (int64, error) {
	collection := r.db.Collection(StatementCollectionName)

	count, err := collection.CountDocuments(ctx, activeLines(ownerID, customerID))
	if err != nil {
		r.logger.Error("Failed to count statement lines",
			"owner_id", ownerID,
			"customer_id", customerID,
			"error", err)
		return 0, fmt.Errorf("failed to count statement lines: %w", err)
	}

	return count, nil
}
