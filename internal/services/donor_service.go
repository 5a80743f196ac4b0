package services

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/AtanuDevOps/blood-project/internal/models"
	"github.com/AtanuDevOps/blood-project/internal/storage"
)

// avatarPalette matches the web client's card colors.
var avatarPalette = []string{
	"#CE1126", "#1E88E5", "#43A047", "#FB8C00",
	"#8E24AA", "#00ACC1", "#5D4037", "#546E7A",
}

// DonorService keeps donor accounts and profiles in memory, optionally backed
// by a JSON snapshot on disk. The Mongo-backed variant has the same behavior.
type DonorService struct {
	mu      sync.RWMutex
	donors  map[string]*models.DonorProfile // userID -> profile
	byPhone map[string]string               // phone -> userID
	store   *storage.JSONStore
}

// NewDonorService creates a donor service. If dataDir is non-empty, profiles
// are loaded from and saved to donors.json under it.
func NewDonorService(dataDir string) (*DonorService, error) {
	s := &DonorService{
		donors:  make(map[string]*models.DonorProfile),
		byPhone: make(map[string]string),
	}

	if dataDir != "" {
		store, err := storage.NewJSONStore(dataDir, "donors.json")
		if err != nil {
			return nil, err
		}
		s.store = store

		var donors []*models.DonorProfile
		if err := store.Load(&donors); err != nil {
			return nil, err
		}
		for _, d := range donors {
			s.donors[d.UserID] = d
			s.byPhone[d.Phone] = d.UserID
		}
	}

	return s, nil
}

func (s *DonorService) persist() error {
	if s.store == nil {
		return nil
	}
	donors := make([]*models.DonorProfile, 0, len(s.donors))
	for _, d := range s.donors {
		donors = append(donors, d)
	}
	return s.store.Save(donors)
}

func (s *DonorService) Register(ctx context.Context, req *models.RegisterRequest) (*models.DonorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byPhone[req.Phone]; exists {
		return nil, ErrPhoneExists
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

	s.donors[donor.UserID] = donor
	s.byPhone[donor.Phone] = donor.UserID

	if err := s.persist(); err != nil {
		return nil, err
	}
	return donor, nil
}

func (s *DonorService) Login(ctx context.Context, phone, password string) (*models.DonorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, exists := s.byPhone[phone]
	if !exists {
		return nil, ErrDonorNotFound
	}

	donor := s.donors[userID]
	if err := bcrypt.CompareHashAndPassword([]byte(donor.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}
	return donor, nil
}

func (s *DonorService) GetByID(ctx context.Context, id string) (*models.DonorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	donor, exists := s.donors[id]
	if !exists {
		return nil, ErrDonorNotFound
	}
	return donor, nil
}

// Search filters donors the way the dashboard does: substring match on name
// and location (case-insensitive), exact match on blood group. Results are
// newest first.
func (s *DonorService) Search(ctx context.Context, filter models.DonorSearchFilter) ([]*models.DonorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name := strings.ToLower(strings.TrimSpace(filter.Name))
	location := strings.ToLower(strings.TrimSpace(filter.Location))

	results := make([]*models.DonorProfile, 0)
	for _, d := range s.donors {
		if name != "" && !strings.Contains(strings.ToLower(d.Name), name) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(d.Location), location) {
			continue
		}
		if filter.BloodGroup != "" && d.BloodGroup != filter.BloodGroup {
			continue
		}
		results = append(results, d)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

// RecordDonation stamps a donation at now and opens a 180-day cooldown window.
// There is deliberately no availability re-check: a donor mid-cooldown can
// re-record and push the window further out.
func (s *DonorService) RecordDonation(ctx context.Context, donorID string, now time.Time) (*models.DonorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	donor, exists := s.donors[donorID]
	if !exists {
		return nil, ErrDonorNotFound
	}

	donatedAt := now
	nextAvailable := NextAvailableAfter(donatedAt)
	donor.LastDonationDate = &donatedAt
	donor.NextAvailableDate = &nextAvailable
	donor.Status = models.StatusCooldown

	if err := s.persist(); err != nil {
		return nil, err
	}
	return donor, nil
}

// Availability evaluates the donor's cooldown window at now.
func (s *DonorService) Availability(ctx context.Context, donorID string, now time.Time) (models.Availability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	donor, exists := s.donors[donorID]
	if !exists {
		return models.Availability{}, ErrDonorNotFound
	}
	return EvaluateAvailability(donor.NextAvailableDate, now), nil
}

// ReleaseExpiredCooldowns flips donors whose window has passed back to
// available and returns how many were updated. The web client did this lazily
// on profile load; the worker does it for everyone.
func (s *DonorService) ReleaseExpiredCooldowns(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := 0
	for _, d := range s.donors {
		if d.Status != models.StatusCooldown {
			continue
		}
		if d.NextAvailableDate != nil && d.NextAvailableDate.After(now) {
			continue
		}
		d.Status = models.StatusAvailable
		released++
	}

	if released > 0 {
		if err := s.persist(); err != nil {
			return released, err
		}
	}
	return released, nil
}

func avatarText(name, bloodGroup string) string {
	n := strings.TrimSpace(name)
	if n != "" {
		return strings.ToUpper(n[:1])
	}
	if bg := strings.TrimSpace(bloodGroup); bg != "" {
		return bg
	}
	return "?"
}
