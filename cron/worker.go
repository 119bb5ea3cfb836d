package cron

import (
	"context"
	"encoding/json"
	"time"

	"polarflow/config"
	bookingRepo "polarflow/database/repository/booking"
	"polarflow/models"
	"polarflow/services/notification"
	"polarflow/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeVisitReminder is the task type for pre-visit reminder emails.
const TypeVisitReminder = "reminder:visit"

// ReminderLeadTime is how far before the visit the reminder fires.
const ReminderLeadTime = 24 * time.Hour

// VisitReminderPayload is the task body for a scheduled reminder.
type VisitReminderPayload struct {
	BookingID     string `json:"bookingId"`
	CustomerEmail string `json:"customerEmail"`
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}
}

// ReminderScheduler enqueues visit reminders onto the asynq queue.
type ReminderScheduler struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewReminderScheduler builds a scheduler backed by the reminder queue.
func NewReminderScheduler(logger *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{client: asynq.NewClient(redisOpts()), logger: logger}
}

// ScheduleVisitReminder enqueues a reminder to fire before the visit.
// Visits already inside the lead-time window get no reminder.
func (s *ReminderScheduler) ScheduleVisitReminder(b *models.Booking) error {
	fireAt := b.ScheduledAt.Add(-ReminderLeadTime)
	if !fireAt.After(time.Now()) {
		s.logger.Debug("visit too soon for a reminder", zap.String("bookingID", b.ID))
		return nil
	}

	payload, err := json.Marshal(VisitReminderPayload{
		BookingID:     b.ID,
		CustomerEmail: b.CustomerEmail,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeVisitReminder, payload)
	if _, err := s.client.Enqueue(task, asynq.ProcessAt(fireAt), asynq.MaxRetry(3)); err != nil {
		return err
	}

	s.logger.Info("visit reminder scheduled",
		zap.String("bookingID", b.ID),
		zap.Time("fireAt", fireAt))
	return nil
}

// Close releases the queue client.
func (s *ReminderScheduler) Close() error {
	return s.client.Close()
}

// InitReminderWorker runs the reminder worker in the background.
func InitReminderWorker(bookings bookingRepo.BookingRepository, notifier notification.NotificationService) {
	logger := utils.GetLogger()

	srv := asynq.NewServer(redisOpts(), asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeVisitReminder, handleVisitReminder(bookings, notifier))

	go func() {
		logger.Info("starting reminder worker")
		if err := srv.Run(mux); err != nil {
			logger.Error("reminder worker stopped", zap.Error(err))
		}
	}()
}

func handleVisitReminder(bookings bookingRepo.BookingRepository, notifier notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p VisitReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return err
		}

		// The booking may have been cancelled between scheduling and firing.
		b, err := bookings.GetByID(ctx, p.BookingID)
		if err != nil {
			logger.Warn("reminder references missing booking",
				zap.String("bookingID", p.BookingID), zap.Error(err))
			return nil
		}
		if b.Status != models.BookingConfirmed {
			logger.Info("skipping reminder for non-confirmed booking",
				zap.String("bookingID", b.ID),
				zap.String("status", string(b.Status)))
			return nil
		}

		if err := notifier.SendVisitReminder(ctx, p.CustomerEmail, b); err != nil {
			logger.Error("failed to send visit reminder",
				zap.String("bookingID", b.ID), zap.Error(err))
			return err
		}
		return nil
	}
}
