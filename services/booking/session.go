package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bookingRepo "polarflow/database/repository/booking"
	"polarflow/models"
	"polarflow/services/pricing"
	"polarflow/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FlowService manages booking flow sessions.
type FlowService interface {
	Start(ctx context.Context, userID, email string) (*models.FlowSession, error)
	Get(ctx context.Context, sessionID string) (*models.FlowSession, error)
	Update(ctx context.Context, sessionID string, input FlowUpdateInput) (*models.FlowSession, error)
	Advance(ctx context.Context, sessionID, targetStep string) (*models.FlowSession, error)
	Cancel(ctx context.Context, sessionID string) error
}

// FlowUpdateInput carries the optional step data a single update may set.
type FlowUpdateInput struct {
	ServiceType  *string         `json:"serviceType,omitempty"`
	Address      *models.Address `json:"address,omitempty"`
	SetupFeeTier *string         `json:"setupFeeTier,omitempty"`
	ScheduledAt  *time.Time      `json:"scheduledAt,omitempty"`
	AddOns       *models.AddOns  `json:"addOns,omitempty"`
	Instructions *string         `json:"instructions,omitempty"`
}

// DefaultFlowService implements FlowService over Redis-cached sessions.
type DefaultFlowService struct {
	CacheClient *redis.Client
	BookingRepo bookingRepo.BookingRepository
	Logger      *zap.Logger
}

// Start creates a fresh flow session at the service step.
func (fs *DefaultFlowService) Start(ctx context.Context, userID, email string) (*models.FlowSession, error) {
	now := time.Now()
	session := &models.FlowSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		CustomerEmail:  email,
		CurrentStep:    models.StepService,
		CompletedSteps: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := fs.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get retrieves a flow session from the cache.
func (fs *DefaultFlowService) Get(ctx context.Context, sessionID string) (*models.FlowSession, error) {
	data, err := fs.CacheClient.Get(ctx, utils.FlowSessionPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking session: %w", err)
	}

	var session models.FlowSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to parse booking session: %w", err)
	}
	return &session, nil
}

// Update applies the provided setters to the session and re-saves it.
func (fs *DefaultFlowService) Update(ctx context.Context, sessionID string, input FlowUpdateInput) (*models.FlowSession, error) {
	session, err := fs.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if input.ServiceType != nil {
		if _, ok := models.OfferingByType(*input.ServiceType); !ok {
			return nil, ErrUnknownServiceType
		}
		SetService(session, *input.ServiceType)
	}
	if input.Address != nil {
		tier := session.SetupFeeTier
		if input.SetupFeeTier != nil {
			tier = *input.SetupFeeTier
		}
		SetAddress(session, *input.Address, tier)
	} else if input.SetupFeeTier != nil && session.Address != nil {
		SetAddress(session, *session.Address, *input.SetupFeeTier)
	}
	if input.ScheduledAt != nil {
		SetSchedule(session, *input.ScheduledAt, time.Now())
	}
	if input.AddOns != nil {
		SetAddOns(session, *input.AddOns)
	}
	if input.Instructions != nil {
		SetInstructions(session, *input.Instructions)
	}

	if err := fs.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Advance moves the flow to the target step. Reaching the payment step
// persists the Booking record (status scheduled) so checkout can
// reference it; reconciliation later confirms or cancels it.
func (fs *DefaultFlowService) Advance(ctx context.Context, sessionID, targetStep string) (*models.FlowSession, error) {
	session, err := fs.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !GoToStep(session, targetStep) {
		return nil, ErrFlowIncomplete
	}

	if session.CurrentStep == models.StepPayment && session.BookingID == "" {
		b, err := fs.createBooking(ctx, session)
		if err != nil {
			return nil, err
		}
		session.BookingID = b.ID
	}

	if err := fs.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Cancel destroys the flow session.
func (fs *DefaultFlowService) Cancel(ctx context.Context, sessionID string) error {
	return fs.CacheClient.Del(ctx, utils.FlowSessionPrefix+sessionID).Err()
}

func (fs *DefaultFlowService) createBooking(ctx context.Context, session *models.FlowSession) (*models.Booking, error) {
	offering, ok := models.OfferingByType(session.ServiceType)
	if !ok {
		return nil, ErrUnknownServiceType
	}

	duration := offering.DurationMinutes + session.AddOns.ExtendedTimeMinutes
	now := time.Now()
	b := &models.Booking{
		ID:              uuid.New().String(),
		UserID:          session.UserID,
		CustomerEmail:   session.CustomerEmail,
		ServiceType:     session.ServiceType,
		ScheduledAt:     session.ScheduledAt,
		DurationMinutes: duration,
		AddOns:          session.AddOns,
		Address:         *session.Address,
		SetupFeeTier:    session.SetupFeeTier,
		SetupFeeCents:   session.SetupFeeCents,
		TotalCents:      pricing.Total(session.ServiceType, session.AddOns, session.SetupFeeCents),
		Status:          models.BookingScheduled,
		Instructions:    session.Instructions,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := fs.BookingRepo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking from session %s: %w", session.ID, err)
	}

	fs.Logger.Info("booking created from flow session",
		zap.String("bookingID", b.ID),
		zap.String("sessionID", session.ID),
		zap.String("serviceType", b.ServiceType))
	return b, nil
}

func (fs *DefaultFlowService) save(ctx context.Context, session *models.FlowSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	key := utils.FlowSessionPrefix + session.ID
	if err := fs.CacheClient.Set(ctx, key, data, utils.FlowSessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache booking session: %w", err)
	}
	return nil
}
