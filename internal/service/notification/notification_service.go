// internal/service/notification/notification_service.go
package notification

import (
	"context"

	"lumen-service/internal/domain/notification"

	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, n *notification.Notification) error
	ListByUser(ctx context.Context, userID int64, filters notification.ListFilters) (*notification.ListResponse, error)
	MarkRead(ctx context.Context, userID, id int64) error
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

// Pusher delivers an already-persisted notification to live connections.
type Pusher interface {
	PushNotification(userID int64, n *notification.Notification)
}

type Service struct {
	repo   Repo
	pusher Pusher
	logger *zap.Logger
}

func NewService(repo Repo, pusher Pusher, logger *zap.Logger) *Service {
	return &Service{repo: repo, pusher: pusher, logger: logger}
}

// Notify persists a notification and pushes it to connected clients. Errors
// are logged, not returned: a failed notification must never abort the
// transition that produced it.
func (s *Service) Notify(ctx context.Context, userID int64, ntype notification.Type, title, message string) {
	n := &notification.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to persist notification",
			zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	if s.pusher != nil {
		s.pusher.PushNotification(userID, n)
	}
}

func (s *Service) List(ctx context.Context, userID int64, filters notification.ListFilters) (*notification.ListResponse, error) {
	return s.repo.ListByUser(ctx, userID, filters)
}

func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}
