package notification

import (
	"context"
	"fmt"

	"github.com/jacinta25/social-media-API/internal/apperror"
	"github.com/jacinta25/social-media-API/internal/db"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Ledger is the append-only record of actor to recipient events. Only the read
// flag ever changes after a row is written.
type Ledger struct {
	db db.Querier
}

func NewLedger(q db.Querier) *Ledger {
	return &Ledger{db: q}
}

func (l *Ledger) Append(ctx context.Context, recipientID, actorID, verb, targetType, targetID string) (Notification, error) {
	n := Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		ActorID:     actorID,
		Verb:        verb,
		TargetType:  targetType,
		TargetID:    targetID,
	}
	row := l.db.QueryRow(ctx, `
		INSERT INTO notifications (id, recipient_id, actor_id, verb, target_type, target_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, (SELECT username FROM users WHERE id = $3)
	`, n.ID, recipientID, actorID, verb, targetType, targetID)
	if err := row.Scan(&n.CreatedAt, &n.Actor); err != nil {
		return Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// ListFor returns the notifications of userID, newest first.
func (l *Ledger) ListFor(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := l.db.Query(ctx, `
		SELECT n.id, n.recipient_id, n.actor_id, u.username, n.verb, n.target_type, n.target_id, n.read, n.created_at
		FROM notifications n JOIN users u ON u.id = n.actor_id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ActorID, &n.Actor, &n.Verb, &n.TargetType, &n.TargetID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (l *Ledger) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := l.db.QueryRow(ctx, `
		SELECT count(*) FROM notifications WHERE recipient_id = $1 AND NOT read
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flags one notification of userID as read. A notification owned by
// someone else is reported as not found.
func (l *Ledger) MarkRead(ctx context.Context, userID, id string) error {
	tag, err := l.db.Exec(ctx, `
		UPDATE notifications SET read = true
		WHERE id = $1 AND recipient_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Notification not found")
	}
	return nil
}

// MarkAllRead flags every unread notification of userID and returns how many
// changed.
func (l *Ledger) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := l.db.Exec(ctx, `
		UPDATE notifications SET read = true
		WHERE recipient_id = $1 AND NOT read
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}
