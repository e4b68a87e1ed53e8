package tasks

import (
	"context"
	"encoding/json"
	"time"

	"admission-api/core/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names.
const (
	TypeNotificationDeliver = "notification:deliver"
	TypeAppointmentExpire   = "appointment:expire"
)

type NotificationDeliverPayload struct {
	UserID  uuid.UUID      `json:"userId"`
	Email   string         `json:"email,omitempty"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Type    string         `json:"type"`
	Data    map[string]any `json:"data,omitempty"`
}

type AppointmentExpirePayload struct {
	AppointmentID uuid.UUID `json:"appointmentId"`
}

// Client enqueues background work. All enqueues are best-effort from the
// caller's point of view: a failed enqueue is logged, never bubbled into the
// user-facing response.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, redisPassword string, redisDB int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueNotification(ctx context.Context, payload NotificationDeliverPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Tasks:EnqueueNotification:Marshal:Error:", err)
		return
	}
	task := asynq.NewTask(TypeNotificationDeliver, data)
	if _, err := c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		logger.Error("Tasks:EnqueueNotification:Enqueue:Error:", err)
	}
}

// ScheduleAppointmentExpiry queues the pending-payment sweep for one
// appointment. If it is still unpaid when the task runs, the handler cancels
// it and re-opens the slot.
func (c *Client) ScheduleAppointmentExpiry(ctx context.Context, appointmentID uuid.UUID, delay time.Duration) {
	data, err := json.Marshal(AppointmentExpirePayload{AppointmentID: appointmentID})
	if err != nil {
		logger.Error("Tasks:ScheduleAppointmentExpiry:Marshal:Error:", err)
		return
	}
	task := asynq.NewTask(TypeAppointmentExpire, data)
	if _, err := c.client.EnqueueContext(ctx, task, asynq.ProcessIn(delay), asynq.MaxRetry(5)); err != nil {
		logger.Error("Tasks:ScheduleAppointmentExpiry:Enqueue:Error:", err)
	}
}
