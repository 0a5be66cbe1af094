package notification

import "time"

const (
	VerbLiked = "liked"

	TargetPost = "post"
)

type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	ActorID     string    `json:"actor_id"`
	Actor       string    `json:"actor"`
	Verb        string    `json:"verb"`
	TargetType  string    `json:"target_type"`
	TargetID    string    `json:"target_id"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
