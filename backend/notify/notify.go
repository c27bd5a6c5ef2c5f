package notify

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Notification describes a newly unlocked achievement.
type Notification struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Notifier surfaces unlock events to the user. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, userID string, n Notification) error
}

type nop struct{}

func (nop) Notify(context.Context, string, Notification) error { return nil }

// Nop discards every notification.
func Nop() Notifier { return nop{} }

// LogNotifier writes notifications to the service log.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.With(zap.String("service", "notify"))}
}

func (n *LogNotifier) Notify(_ context.Context, userID string, note Notification) error {
	n.log.Info("achievement unlocked",
		zap.String("user_id", userID),
		zap.String("achievement_id", note.ID),
		zap.String("name", note.Name),
	)
	return nil
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, userID string, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, userID, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Delivery is one recorded notification.
type Delivery struct {
	UserID       string
	Notification Notification
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
}

func (r *Recorder) Notify(_ context.Context, userID string, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, Delivery{UserID: userID, Notification: n})
	return nil
}

func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Delivery(nil), r.deliveries...)
}
