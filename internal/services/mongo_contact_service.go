package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AtanuDevOps/blood-project/internal/models"
)

// MongoContactService is the Mongo-backed contact-request workflow. Requests
// live in contactRequests keyed by the composite pair id, threads in chats
// keyed by request id, messages in their own collection.
//
// The approve transition is three independent writes (status, thread,
// notification) with no cross-document transaction; the thread write is an
// upsert with $setOnInsert so a concurrent double-approve still yields exactly
// one thread.
type MongoContactService struct {
	client       *mongo.Client
	db           *mongo.Database
	requestsColl *mongo.Collection
	chatsColl    *mongo.Collection
	messagesColl *mongo.Collection
	notifier     Notifier
	hub          *Hub
}

func NewMongoContactService(ctx context.Context, mongoURI, dbName string, notifier Notifier, hub *Hub) (*MongoContactService, error) {
	client, err := connectMongo(ctx, mongoURI)
	if err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	requests := db.Collection("contactRequests")
	chats := db.Collection("chats")
	messages := db.Collection("messages")

	// Best-effort indexes.
	_, _ = requests.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "donor_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	_, _ = chats.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "donor_id", Value: 1}}},
		{Keys: bson.D{{Key: "requester_id", Value: 1}}},
	})
	_, _ = messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "thread_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})

	return &MongoContactService{
		client:       client,
		db:           db,
		requestsColl: requests,
		chatsColl:    chats,
		messagesColl: messages,
		notifier:     notifier,
		hub:          hub,
	}, nil
}

func (s *MongoContactService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoContactService) SubmitRequest(ctx context.Context, donorID, requesterID, requesterName string) (*models.ContactRequest, error) {
	if donorID == "" || requesterID == "" {
		return nil, ErrMissingParticipant
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	name := strings.TrimSpace(requesterName)
	if name == "" {
		name = "Anonymous"
	}

	req := &models.ContactRequest{
		ID:            models.RequestID(donorID, requesterID),
		DonorID:       donorID,
		RequesterID:   requesterID,
		RequesterName: name,
		Status:        models.RequestPending,
		CreatedAt:     time.Now().UTC(),
	}

	// Replace-with-upsert gives overwrite-on-resubmit: any prior approved or
	// rejected outcome for the pair resets to pending.
	if _, err := s.requestsColl.ReplaceOne(
		ctx,
		bson.M{"_id": req.ID},
		req,
		options.Replace().SetUpsert(true),
	); err != nil {
		return nil, storeError(err)
	}

	s.notify(ctx, models.Notification{
		RecipientID: donorID,
		SenderID:    requesterID,
		Kind:        models.NotificationRequest,
		Text:        fmt.Sprintf("%s requested your contact details", name),
		Link:        "/profile",
	})
	s.publishRequest(req)

	return req, nil
}

func (s *MongoContactService) Decide(ctx context.Context, callerID, requestID, decision string) (*models.ContactRequest, error) {
	if decision != models.RequestApproved && decision != models.RequestRejected {
		return nil, ErrInvalidDecision
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res := s.requestsColl.FindOneAndUpdate(
		ctx,
		bson.M{"_id": requestID, "donor_id": callerID},
		bson.M{"$set": bson.M{"status": decision}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var req models.ContactRequest
	if err := res.Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			// Distinguish not found vs unauthorized.
			if err2 := s.requestsColl.FindOne(ctx, bson.M{"_id": requestID}).Err(); err2 == mongo.ErrNoDocuments {
				return nil, ErrRequestNotFound
			}
			return nil, ErrNotAuthorized
		}
		return nil, storeError(err)
	}

	if decision == models.RequestApproved {
		// Create the thread if absent; $setOnInsert keeps this idempotent so
		// approving twice never yields a second thread.
		if _, err := s.chatsColl.UpdateOne(
			ctx,
			bson.M{"_id": requestID},
			bson.M{"$setOnInsert": bson.M{
				"donor_id":     req.DonorID,
				"requester_id": req.RequesterID,
				"created_at":   time.Now().UTC(),
			}},
			options.Update().SetUpsert(true),
		); err != nil {
			return nil, storeError(err)
		}

		s.notify(ctx, models.Notification{
			RecipientID: req.RequesterID,
			SenderID:    req.DonorID,
			Kind:        models.NotificationAccept,
			Text:        "Your contact request was approved. You can now chat with the donor.",
			Link:        "/chat/" + requestID,
		})
	} else {
		s.notify(ctx, models.Notification{
			RecipientID: req.RequesterID,
			SenderID:    req.DonorID,
			Kind:        models.NotificationReject,
			Text:        "Your contact request was rejected by the donor.",
		})
	}
	s.publishRequest(&req)

	return &req, nil
}

func (s *MongoContactService) SendMessage(ctx context.Context, threadID, senderID, text string) (*models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	thread, err := s.getThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.Participant(senderID) {
		return nil, ErrNotAuthorized
	}

	body := strings.TrimSpace(text)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	msg := &models.Message{
		ID:        uuid.New().String(),
		ThreadID:  threadID,
		SenderID:  senderID,
		Text:      body,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.messagesColl.InsertOne(ctx, msg); err != nil {
		return nil, storeError(err)
	}

	s.notify(ctx, models.Notification{
		RecipientID: thread.Other(senderID),
		SenderID:    senderID,
		Kind:        models.NotificationMessage,
		Text:        "You have a new message",
		Link:        "/chat/" + threadID,
	})
	if s.hub != nil {
		s.hub.Publish(Event{
			Topic: ChatTopic(threadID),
			Kind:  models.NotificationMessage,
			Data:  msg,
		})
	}

	return msg, nil
}

func (s *MongoContactService) GetRequest(ctx context.Context, donorID, requesterID string) (*models.ContactRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var req models.ContactRequest
	if err := s.requestsColl.FindOne(ctx, bson.M{"_id": models.RequestID(donorID, requesterID)}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRequestNotFound
		}
		return nil, storeError(err)
	}
	return &req, nil
}

func (s *MongoContactService) ListRequestsForDonor(ctx context.Context, donorID string) ([]*models.ContactRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.requestsColl.Find(
		ctx,
		bson.M{"donor_id": donorID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer cur.Close(ctx)

	results := make([]*models.ContactRequest, 0)
	for cur.Next(ctx) {
		var req models.ContactRequest
		if err := cur.Decode(&req); err != nil {
			return nil, storeError(err)
		}
		results = append(results, &req)
	}
	if err := cur.Err(); err != nil {
		return nil, storeError(err)
	}
	return results, nil
}

// Thread returns a thread by id. Only participants may see it.
func (s *MongoContactService) Thread(ctx context.Context, threadID, callerID string) (*models.ChatThread, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	thread, err := s.getThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.Participant(callerID) {
		return nil, ErrNotAuthorized
	}
	return thread, nil
}

func (s *MongoContactService) ListThreadsForUser(ctx context.Context, userID string) ([]*models.ChatThread, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.chatsColl.Find(
		ctx,
		bson.M{"$or": bson.A{
			bson.M{"donor_id": userID},
			bson.M{"requester_id": userID},
		}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer cur.Close(ctx)

	results := make([]*models.ChatThread, 0)
	for cur.Next(ctx) {
		var t models.ChatThread
		if err := cur.Decode(&t); err != nil {
			return nil, storeError(err)
		}
		results = append(results, &t)
	}
	if err := cur.Err(); err != nil {
		return nil, storeError(err)
	}
	return results, nil
}

func (s *MongoContactService) ListMessages(ctx context.Context, threadID, callerID string) ([]*models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	thread, err := s.getThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.Participant(callerID) {
		return nil, ErrNotAuthorized
	}

	cur, err := s.messagesColl.Find(
		ctx,
		bson.M{"thread_id": threadID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer cur.Close(ctx)

	results := make([]*models.Message, 0)
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, storeError(err)
		}
		results = append(results, &m)
	}
	if err := cur.Err(); err != nil {
		return nil, storeError(err)
	}
	return results, nil
}

func (s *MongoContactService) getThread(ctx context.Context, threadID string) (*models.ChatThread, error) {
	var thread models.ChatThread
	if err := s.chatsColl.FindOne(ctx, bson.M{"_id": threadID}).Decode(&thread); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrThreadNotFound
		}
		return nil, storeError(err)
	}
	return &thread, nil
}

func (s *MongoContactService) notify(ctx context.Context, n models.Notification) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf("contact: notification %s -> %s failed: %v", n.Kind, n.RecipientID, err)
	}
}

func (s *MongoContactService) publishRequest(req *models.ContactRequest) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(Event{
		Topic: RequestsTopic(req.DonorID),
		Kind:  req.Status,
		Data:  req,
	})
}
