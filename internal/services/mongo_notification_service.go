package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AtanuDevOps/blood-project/internal/models"
)

// MongoNotificationService stores per-user notification feeds.
type MongoNotificationService struct {
	client            *mongo.Client
	db                *mongo.Database
	notificationsColl *mongo.Collection
	hub               *Hub
}

func NewMongoNotificationService(ctx context.Context, mongoURI, dbName string, hub *Hub) (*MongoNotificationService, error) {
	client, err := connectMongo(ctx, mongoURI)
	if err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	notifications := db.Collection("notifications")

	// Best-effort indexes.
	_, _ = notifications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "read", Value: 1}}},
	})

	return &MongoNotificationService{
		client:            client,
		db:                db,
		notificationsColl: notifications,
		hub:               hub,
	}, nil
}

func (s *MongoNotificationService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoNotificationService) Notify(ctx context.Context, n models.Notification) (*models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	n.ID = uuid.New().String()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if _, err := s.notificationsColl.InsertOne(ctx, n); err != nil {
		return nil, storeError(err)
	}

	if s.hub != nil {
		s.hub.Publish(Event{
			Topic: NotificationsTopic(n.RecipientID),
			Kind:  n.Kind,
			Data:  n,
		})
	}
	return &n, nil
}

func (s *MongoNotificationService) ListForRecipient(ctx context.Context, recipientID string) ([]*models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.notificationsColl.Find(
		ctx,
		bson.M{"recipient_id": recipientID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(200),
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer cur.Close(ctx)

	results := make([]*models.Notification, 0)
	for cur.Next(ctx) {
		var n models.Notification
		if err := cur.Decode(&n); err != nil {
			return nil, storeError(err)
		}
		results = append(results, &n)
	}
	if err := cur.Err(); err != nil {
		return nil, storeError(err)
	}
	return results, nil
}

func (s *MongoNotificationService) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	count, err := s.notificationsColl.CountDocuments(ctx, bson.M{
		"recipient_id": recipientID,
		"read":         false,
	})
	if err != nil {
		return 0, storeError(err)
	}
	return int(count), nil
}

func (s *MongoNotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := s.notificationsColl.UpdateOne(
		ctx,
		bson.M{"_id": notificationID, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return storeError(err)
	}
	if res.MatchedCount == 0 {
		// Distinguish not found vs unauthorized.
		if err2 := s.notificationsColl.FindOne(ctx, bson.M{"_id": notificationID}).Err(); err2 == mongo.ErrNoDocuments {
			return ErrNotificationNotFound
		}
		return ErrNotAuthorized
	}
	return nil
}
