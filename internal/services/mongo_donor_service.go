package services

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/AtanuDevOps/blood-project/internal/models"
)

// MongoDonorService stores donor accounts and profiles in the users
// collection, keyed by user_id.
type MongoDonorService struct {
	client    *mongo.Client
	db        *mongo.Database
	usersColl *mongo.Collection
}

func NewMongoDonorService(ctx context.Context, mongoURI, dbName string) (*MongoDonorService, error) {
	client, err := connectMongo(ctx, mongoURI)
	if err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	users := db.Collection("users")

	// Best-effort indexes.
	_, _ = users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "blood_group", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})

	log.Printf("MongoDB connected: db=%s", dbName)
	return &MongoDonorService{
		client:    client,
		db:        db,
		usersColl: users,
	}, nil
}

func (s *MongoDonorService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoDonorService) Register(ctx context.Context, req *models.RegisterRequest) (*models.DonorProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := s.usersColl.FindOne(ctx, bson.M{"phone": req.Phone}).Err()
	if err == nil {
		return nil, ErrPhoneExists
	}
	if err != mongo.ErrNoDocuments {
		return nil, storeError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	donor := &models.DonorProfile{
		UserID:       uuid.New().String(),
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: string(hashed),
		BloodGroup:   req.BloodGroup,
		Location:     req.Location,
		Email:        req.Phone + "@bloodlog.com",
		Status:       models.StatusAvailable,
		AvatarText:   avatarText(req.Name, req.BloodGroup),
		AvatarColor:  avatarPalette[rand.Intn(len(avatarPalette))],
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := s.usersColl.InsertOne(ctx, donor); err != nil {
		// The unique phone index closes the check-then-insert race.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrPhoneExists
		}
		return nil, storeError(err)
	}
	return donor, nil
}

func (s *MongoDonorService) Login(ctx context.Context, phone, password string) (*models.DonorProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var donor models.DonorProfile
	if err := s.usersColl.FindOne(ctx, bson.M{"phone": phone}).Decode(&donor); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrDonorNotFound
		}
		return nil, storeError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(donor.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}
	return &donor, nil
}

func (s *MongoDonorService) GetByID(ctx context.Context, id string) (*models.DonorProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var donor models.DonorProfile
	if err := s.usersColl.FindOne(ctx, bson.M{"user_id": id}).Decode(&donor); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrDonorNotFound
		}
		return nil, storeError(err)
	}
	return &donor, nil
}

func (s *MongoDonorService) Search(ctx context.Context, filter models.DonorSearchFilter) ([]*models.DonorProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if name := strings.TrimSpace(filter.Name); name != "" {
		query["name"] = bson.M{"$regex": regexQuoteMeta(name), "$options": "i"}
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		query["location"] = bson.M{"$regex": regexQuoteMeta(location), "$options": "i"}
	}
	if filter.BloodGroup != "" {
		query["blood_group"] = filter.BloodGroup
	}

	cur, err := s.usersColl.Find(
		ctx,
		query,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(500),
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer cur.Close(ctx)

	results := make([]*models.DonorProfile, 0)
	for cur.Next(ctx) {
		var d models.DonorProfile
		if err := cur.Decode(&d); err != nil {
			return nil, storeError(err)
		}
		results = append(results, &d)
	}
	if err := cur.Err(); err != nil {
		return nil, storeError(err)
	}
	return results, nil
}

// RecordDonation stamps the donation and opens the cooldown window. No
// availability re-check, matching the profile page behavior.
func (s *MongoDonorService) RecordDonation(ctx context.Context, donorID string, now time.Time) (*models.DonorProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	nextAvailable := NextAvailableAfter(now)

	res := s.usersColl.FindOneAndUpdate(
		ctx,
		bson.M{"user_id": donorID},
		bson.M{"$set": bson.M{
			"last_donation_date":  now,
			"next_available_date": nextAvailable,
			"status":              models.StatusCooldown,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var donor models.DonorProfile
	if err := res.Decode(&donor); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrDonorNotFound
		}
		return nil, storeError(err)
	}
	return &donor, nil
}

func (s *MongoDonorService) Availability(ctx context.Context, donorID string, now time.Time) (models.Availability, error) {
	donor, err := s.GetByID(ctx, donorID)
	if err != nil {
		return models.Availability{}, err
	}
	return EvaluateAvailability(donor.NextAvailableDate, now), nil
}

func (s *MongoDonorService) ReleaseExpiredCooldowns(ctx context.Context, now time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := s.usersColl.UpdateMany(
		ctx,
		bson.M{
			"status":              models.StatusCooldown,
			"next_available_date": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{"status": models.StatusAvailable}},
	)
	if err != nil {
		return 0, storeError(err)
	}
	return int(res.ModifiedCount), nil
}

// regexQuoteMeta escapes regex metacharacters so user input is matched
// literally.
func regexQuoteMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
