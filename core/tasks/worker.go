package tasks

import (
	"context"
	"encoding/json"

	"admission-api/core/logger"

	"github.com/hibiken/asynq"
)

// Handlers are the domain callbacks the worker dispatches to. The modules
// register their implementations at bootstrap; the worker stays free of
// module imports.
type Handlers struct {
	DeliverNotification func(ctx context.Context, payload NotificationDeliverPayload) error
	ExpireAppointment   func(ctx context.Context, payload AppointmentExpirePayload) error
}

type Worker struct {
	server   *asynq.Server
	handlers Handlers
}

func NewWorker(redisAddr, redisPassword string, redisDB int, handlers Handlers) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword, DB: redisDB},
		asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{"default": 1},
		},
	)
	return &Worker{server: server, handlers: handlers}
}

// Start runs the worker loop in the background.
func (w *Worker) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TypeNotificationDeliver, func(ctx context.Context, t *asynq.Task) error {
		var payload NotificationDeliverPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Error("Worker:NotificationDeliver:Unmarshal:Error:", err)
			return nil // malformed payload, retrying will not help
		}
		if w.handlers.DeliverNotification == nil {
			return nil
		}
		return w.handlers.DeliverNotification(ctx, payload)
	})

	mux.HandleFunc(TypeAppointmentExpire, func(ctx context.Context, t *asynq.Task) error {
		var payload AppointmentExpirePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Error("Worker:AppointmentExpire:Unmarshal:Error:", err)
			return nil
		}
		if w.handlers.ExpireAppointment == nil {
			return nil
		}
		return w.handlers.ExpireAppointment(ctx, payload)
	})

	return w.server.Start(mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}
