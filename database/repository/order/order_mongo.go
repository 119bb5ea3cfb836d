package orderRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"polarflow/database"
	"polarflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no order matches the lookup.
var ErrNotFound = errors.New("order not found")

// MongoOrderRepo implements OrderRepository backed by MongoDB.
type MongoOrderRepo struct {
	coll *mongo.Collection
}

// NewMongoOrderRepo returns a repository over the orders collection.
func NewMongoOrderRepo() *MongoOrderRepo {
	return &MongoOrderRepo{coll: database.Collection("orders")}
}

// Create inserts a new order document.
func (repo *MongoOrderRepo) Create(ctx context.Context, ord *models.Order) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.coll.InsertOne(ctxWithTimeout, ord)
	if err != nil {
		return fmt.Errorf("error creating order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID.
func (repo *MongoOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return repo.findOne(ctx, bson.M{"id": id})
}

// GetBySessionID retrieves an order by the provider checkout/session identifier.
func (repo *MongoOrderRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	return repo.findOne(ctx, bson.M{"session_id": sessionID})
}

// GetBySubscriptionID retrieves an order correlated to a provider subscription.
func (repo *MongoOrderRepo) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Order, error) {
	return repo.findOne(ctx, bson.M{"metadata.subscription_id": subscriptionID})
}

func (repo *MongoOrderRepo) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ord models.Order
	err := repo.coll.FindOne(ctxWithTimeout, filter).Decode(&ord)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching order: %w", err)
	}
	return &ord, nil
}

// ListByUser returns all orders owned by the given user, newest first.
func (repo *MongoOrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := repo.coll.Find(ctxWithTimeout, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("error listing orders for user %s: %w", userID, err)
	}
	defer cur.Close(ctxWithTimeout)

	var orders []models.Order
	if err := cur.All(ctxWithTimeout, &orders); err != nil {
		return nil, fmt.Errorf("error decoding orders: %w", err)
	}
	return orders, nil
}

// AttachSession stores the provider session id and marks the order processing.
func (repo *MongoOrderRepo) AttachSession(ctx context.Context, id, sessionID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"session_id": sessionID,
		"status":     models.OrderProcessing,
		"updated_at": time.Now(),
	}}
	_, err := repo.coll.UpdateOne(ctxWithTimeout, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("error attaching session to order %s: %w", id, err)
	}
	return nil
}

// MarkPaid stamps payment details on a pending/processing order. The filter
// keeps the transition idempotent under duplicate webhook delivery.
func (repo *MongoOrderRepo) MarkPaid(ctx context.Context, id, transactionID string, paidAt time.Time) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": []models.OrderStatus{models.OrderPending, models.OrderProcessing}},
	}
	update := bson.M{"$set": bson.M{
		"status":         models.OrderPaid,
		"transaction_id": transactionID,
		"paid_at":        paidAt,
		"updated_at":     time.Now(),
	}}
	_, err := repo.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error marking order %s paid: %w", id, err)
	}
	return nil
}

// UpdateStatus applies a status transition. A paid order can still be
// refunded or cancelled (subscription lifecycle); the filter silently
// drops any transition that would regress it to a pre-payment status.
func (repo *MongoOrderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	if status != models.OrderRefunded && status != models.OrderCancelled {
		filter["status"] = bson.M{"$ne": models.OrderPaid}
	}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	_, err := repo.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error updating order %s to %s: %w", id, status, err)
	}
	return nil
}

// ClaimNotification flips notified false->true in a single conditional
// update, so only one reconciliation run ever wins the right to send the
// confirmation email.
func (repo *MongoOrderRepo) ClaimNotification(ctx context.Context, id string) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "notified": false}
	update := bson.M{"$set": bson.M{"notified": true, "updated_at": time.Now()}}
	res := repo.coll.FindOneAndUpdate(ctxWithTimeout, filter, update)
	if res.Err() == mongo.ErrNoDocuments {
		return false, nil
	}
	if res.Err() != nil {
		return false, fmt.Errorf("error claiming notification for order %s: %w", id, res.Err())
	}
	return true, nil
}

// StampMetadata merges keys into the order metadata map.
func (repo *MongoOrderRepo) StampMetadata(ctx context.Context, id string, fields map[string]string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set["metadata."+k] = v
	}
	_, err := repo.coll.UpdateOne(ctxWithTimeout, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("error stamping metadata on order %s: %w", id, err)
	}
	return nil
}
