package persistence

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"vendor-portal/domain/model"
	"vendor-portal/infrastructure/logger"
)

// PublishAuditRepository appends publish attempt records to MongoDB. When the
// client is nil the repository degrades to a no-op so a missing Mongo never
// blocks moderation.
type PublishAuditRepository struct {
	client   *mongo.Client
	database string
}

func NewPublishAuditRepository(client *mongo.Client, database string) *PublishAuditRepository {
	return &PublishAuditRepository{client: client, database: database}
}

func (r *PublishAuditRepository) collection() *mongo.Collection {
	return r.client.Database(r.database).Collection("publish_audits")
}

func (r *PublishAuditRepository) Record(ctx context.Context, audit *model.PublishAudit) error {
	if r.client == nil {
		logger.GetLogger().WithField("product_id", audit.ProductID).Debug("Mongo unavailable, publish audit skipped")
		return nil
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection().InsertOne(ctx, audit)
	return err
}

func (r *PublishAuditRepository) ListByProduct(ctx context.Context, productID int64, limit int) ([]model.PublishAudit, error) {
	if r.client == nil {
		return nil, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection().Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var audits []model.PublishAudit
	if err := cursor.All(ctx, &audits); err != nil {
		return nil, err
	}
	return audits, nil
}
