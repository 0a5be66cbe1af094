package interaction

import (
	"context"

	"github.com/jacinta25/social-media-API/internal/apperror"
	"github.com/jacinta25/social-media-API/internal/content"
	"github.com/jacinta25/social-media-API/internal/db"
	"github.com/jacinta25/social-media-API/internal/identity"
	"github.com/jacinta25/social-media-API/internal/metrics"
	"github.com/jacinta25/social-media-API/internal/notification"

	log "github.com/sirupsen/logrus"
)

const permissionDenied = "You do not have permission to perform this action."

// Service applies the rules that span users, content and notifications: who
// may act on what, and which writes happen together.
type Service struct {
	db      db.Querier
	users   *identity.Store
	content *content.Store
	ledger  *notification.Ledger
	metrics *metrics.Metrics
}

func NewService(q db.Querier, m *metrics.Metrics) *Service {
	return &Service{
		db:      q,
		users:   identity.NewStore(q),
		content: content.NewStore(q),
		ledger:  notification.NewLedger(q),
		metrics: m,
	}
}

// Follow makes actorID follow targetID. Following someone twice is a no-op.
func (s *Service) Follow(ctx context.Context, actorID, targetID string) (identity.User, error) {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return identity.User{}, err
	}
	if actorID == target.ID {
		return identity.User{}, apperror.SelfFollow()
	}
	added, err := s.users.AddFollow(ctx, actorID, target.ID)
	if err != nil {
		return identity.User{}, err
	}
	if added {
		s.metrics.Follow("follow")
		log.WithFields(log.Fields{"user_id": actorID, "target_id": target.ID}).Debug("follow created")
	}
	return target, nil
}

// Unfollow removes the edge actorID -> targetID if it exists.
func (s *Service) Unfollow(ctx context.Context, actorID, targetID string) (identity.User, error) {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return identity.User{}, err
	}
	removed, err := s.users.RemoveFollow(ctx, actorID, target.ID)
	if err != nil {
		return identity.User{}, err
	}
	if removed {
		s.metrics.Follow("unfollow")
		log.WithFields(log.Fields{"user_id": actorID, "target_id": target.ID}).Debug("follow removed")
	}
	return target, nil
}

// Like records actorID's like on postID and notifies the post author. The
// like row and the notification are written in one transaction; a like that
// already exists writes neither.
func (s *Service) Like(ctx context.Context, actorID, postID string) (LikeResult, error) {
	var result LikeResult
	err := db.WithTx(ctx, s.db, func(tx db.Querier) error {
		posts := content.NewStore(tx)
		post, err := posts.GetPost(ctx, postID)
		if err != nil {
			return err
		}
		like, created, err := posts.InsertLike(ctx, actorID, post.ID)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		n, err := notification.NewLedger(tx).Append(ctx, post.AuthorID, actorID, notification.VerbLiked, notification.TargetPost, post.ID)
		if err != nil {
			return err
		}
		result = LikeResult{Created: true, Like: like, Notification: &n}
		return nil
	})
	if err != nil {
		return LikeResult{}, err
	}

	if result.Created {
		s.metrics.LikeCreated()
		s.metrics.NotificationAppended(notification.VerbLiked)
		log.WithFields(log.Fields{"user_id": actorID, "post_id": postID}).Debug("like created")
	} else {
		s.metrics.LikeDuplicate()
	}
	return result, nil
}

// Unlike removes actorID's like on postID. It reports false when there was no
// like. Notifications are left as they are.
func (s *Service) Unlike(ctx context.Context, actorID, postID string) (bool, error) {
	post, err := s.content.GetPost(ctx, postID)
	if err != nil {
		return false, err
	}
	return s.content.DeleteLike(ctx, actorID, post.ID)
}

// Feed returns the posts of everyone userID follows, newest first.
func (s *Service) Feed(ctx context.Context, userID string) ([]content.Post, error) {
	following, err := s.users.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(following) == 0 {
		return []content.Post{}, nil
	}
	return s.content.PostsByAuthors(ctx, following)
}

func (s *Service) CreatePost(ctx context.Context, actorID string, req CreatePostRequest) (content.Post, error) {
	return s.content.CreatePost(ctx, content.Post{AuthorID: actorID, Title: req.Title, Content: req.Content})
}

func (s *Service) UpdatePost(ctx context.Context, actorID, postID string, patch content.PostUpdate) (content.Post, error) {
	post, err := s.content.GetPost(ctx, postID)
	if err != nil {
		return content.Post{}, err
	}
	if post.AuthorID != actorID {
		return content.Post{}, apperror.Forbidden(permissionDenied)
	}
	return s.content.UpdatePost(ctx, post.ID, patch)
}

func (s *Service) DeletePost(ctx context.Context, actorID, postID string) error {
	post, err := s.content.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return apperror.Forbidden(permissionDenied)
	}
	return s.content.DeletePost(ctx, post.ID)
}

// Comments lists the comments of an existing post.
func (s *Service) Comments(ctx context.Context, postID string) ([]content.Comment, error) {
	if _, err := s.content.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.content.ListComments(ctx, postID)
}

// Comment adds a comment by actorID. Any authenticated user may comment on
// any post.
func (s *Service) Comment(ctx context.Context, actorID, postID, text string) (content.Comment, error) {
	post, err := s.content.GetPost(ctx, postID)
	if err != nil {
		return content.Comment{}, err
	}
	return s.content.CreateComment(ctx, content.Comment{PostID: post.ID, AuthorID: actorID, Content: text})
}

func (s *Service) UpdateComment(ctx context.Context, actorID, commentID, text string) (content.Comment, error) {
	comment, err := s.content.GetComment(ctx, commentID)
	if err != nil {
		return content.Comment{}, err
	}
	if comment.AuthorID != actorID {
		return content.Comment{}, apperror.Forbidden(permissionDenied)
	}
	return s.content.UpdateComment(ctx, comment.ID, text)
}

func (s *Service) DeleteComment(ctx context.Context, actorID, commentID string) error {
	comment, err := s.content.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actorID {
		return apperror.Forbidden(permissionDenied)
	}
	return s.content.DeleteComment(ctx, comment.ID)
}
