package worker

import (
	"go.uber.org/zap"

	"github.com/civic-kit/grievance-service/internal/events"
	"github.com/civic-kit/grievance-service/internal/service"
)

// StartNotificationWorker wires the notification service to the event
// dispatcher. Delivery runs inline with event dispatch; the dispatcher
// isolates handler failures from publishers.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) {
	notifications.RegisterHandlers(dispatcher)
	logger.Info("notification worker registered")
}
