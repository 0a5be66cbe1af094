package interaction

import (
	"github.com/jacinta25/social-media-API/internal/content"
	"github.com/jacinta25/social-media-API/internal/notification"
)

// LikeResult reports the outcome of a like. Created is false when the user had
// already liked the post; in that case nothing was written.
type LikeResult struct {
	Created      bool
	Like         content.Like
	Notification *notification.Notification
}

type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}

type NewCommentRequest struct {
	PostID  string `json:"post_id" validate:"required,uuid"`
	Content string `json:"content" validate:"required"`
}
