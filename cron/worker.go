package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cafedesk/config"
	"cafedesk/models"
	"cafedesk/services/notification"

	"github.com/hibiken/asynq"
)

const TypeReservationReminder = "reminder:reservation"

// followUpDelay is how long after a commit the staff follow-up fires, so
// the booking gets copied into the physical reservation book.
const followUpDelay = 5 * time.Minute

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	}
}

// ReminderClient enqueues reservation follow-up tasks.
type ReminderClient struct {
	client *asynq.Client
}

func NewReminderClient() *ReminderClient {
	return &ReminderClient{client: asynq.NewClient(redisOpts())}
}

// ScheduleFollowUp enqueues a staff reminder about a freshly committed
// reservation.
func (c *ReminderClient) ScheduleFollowUp(res models.Reservation) error {
	payload, err := json.Marshal(models.ReminderPayload{
		ReservationID: res.ID,
		Title:         "Reservation follow-up",
		Body: fmt.Sprintf("Copy into the book: %d people, %s %s, under %s",
			res.PartySize, res.DateText, res.TimeText, res.Name),
		FireDate: time.Now().Add(followUpDelay).Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeReservationReminder, payload)
	_, err = c.client.Enqueue(task, asynq.ProcessIn(followUpDelay))
	return err
}

// InitReminderWorker runs the async worker in background.
func InitReminderWorker(notifier *notification.StaffNotifier) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReservationReminder, handleReminderTask(notifier))

	// Start async worker with retry logic.
	go func() {
		log.Println("[ReminderWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Printf("[ReminderWorker] Max retry attempts reached; reservation follow-ups disabled.")
					return
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(notifier *notification.StaffNotifier) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] Invalid payload: %v", err)
			return err
		}

		log.Printf("[ReminderHandler] Triggering reminder for reservation %s: %s", p.ReservationID, p.Body)

		data := map[string]string{
			"reservationId": p.ReservationID,
			"fireDate":      p.FireDate,
		}
		if err := notifier.Notify(ctx, p.Title, p.Body, data); err != nil {
			log.Printf("[ReminderHandler] Failed to send notification: %v", err)
			return err
		}
		return nil
	}
}
