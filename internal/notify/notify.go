package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HuyNG25/pcm-backend/internal/models"
)

// Notifier is the notification sink the core services write to.
// Record runs inside the caller's database transaction so the notification
// row commits (or rolls back) together with the operation that caused it;
// Push happens after commit so subscribers never see a notification for an
// operation that was rolled back.
type Notifier struct {
	hub *Hub
}

// NewNotifier wires a Notifier to the hub. hub may be nil in tests.
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// Record inserts a Notification row using tx. Call inside the transaction
// that performs the operation being notified about.
func (n *Notifier) Record(tx *gorm.DB, memberID uuid.UUID, message string, typ models.NotificationType) (*models.Notification, error) {
	notification := &models.Notification{
		MemberID: memberID,
		Message:  message,
		Type:     typ,
	}
	if err := tx.Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

// Push fans the notification out to the member's live clients.
// Call after the transaction that Recorded it has committed.
func (n *Notifier) Push(memberID uuid.UUID, message string, typ models.NotificationType) {
	if n.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"message":    message,
		"type":       string(typ),
		"created_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	n.hub.BroadcastToMember(memberID.String(), payload)
}
