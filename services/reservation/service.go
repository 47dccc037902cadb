// Package reservation is the commit point where a confirmed dialogue record
// becomes a stored booking fact.
package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	reservationRepo "cafedesk/database/repository/reservation"
	"cafedesk/models"
	"cafedesk/services/notification"
)

// ReminderScheduler enqueues a follow-up task for a committed booking.
type ReminderScheduler interface {
	ScheduleFollowUp(res models.Reservation) error
}

// Service commits confirmed reservations. The store write is the only
// operation whose failure is reported; the staff push and the reminder are
// best-effort side effects.
type Service struct {
	Repo      reservationRepo.ReservationRepository
	Notifier  *notification.StaffNotifier
	Reminders ReminderScheduler
	Logger    *zap.Logger
}

// Commit promotes a confirmed record into a stored booking. With no
// repository configured the booking is only logged — the dialogue still
// acknowledges the caller, because a call must never end in an error state.
func (s *Service) Commit(ctx context.Context, rec models.ReservationRecord, callSID string) (models.Reservation, error) {
	res := models.Reservation{
		ID:           uuid.New().String(),
		CallSID:      callSID,
		Name:         rec.Name,
		PartySize:    rec.PartySize,
		DateText:     rec.DateText,
		TimeText:     rec.TimeText,
		RawUtterance: rec.Raw,
		CreatedAt:    time.Now(),
	}

	var storeErr error
	if s.Repo != nil {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if _, err := s.Repo.Create(ctx, res); err != nil {
			storeErr = fmt.Errorf("failed to store reservation: %w", err)
			s.Logger.Error("reservation store failed", zap.String("callSid", callSID), zap.Error(err))
		}
	} else {
		s.Logger.Info("no reservation store configured, booking logged only",
			zap.String("callSid", callSID),
			zap.String("name", res.Name),
			zap.Int("partySize", res.PartySize),
		)
	}

	body := fmt.Sprintf("%d people, %s %s, under %s", res.PartySize, res.DateText, res.TimeText, res.Name)
	if err := s.Notifier.Notify(ctx, "New reservation", body, map[string]string{
		"reservationId": res.ID,
		"callSid":       callSID,
	}); err != nil {
		s.Logger.Warn("reservation push failed", zap.Error(err))
	}

	if s.Reminders != nil {
		if err := s.Reminders.ScheduleFollowUp(res); err != nil {
			s.Logger.Warn("failed to schedule reservation follow-up", zap.Error(err))
		}
	}

	return res, storeErr
}

// NotifyEscalation tells staff a caller is being transferred to them.
func (s *Service) NotifyEscalation(ctx context.Context, callSID string) {
	if err := s.Notifier.Notify(ctx, "Caller transferred to staff", "A caller is being connected to the staff line.", map[string]string{
		"callSid": callSID,
	}); err != nil {
		s.Logger.Warn("escalation push failed", zap.Error(err))
	}
}
