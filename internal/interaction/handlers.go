package interaction

import (
	"fmt"

	"github.com/jacinta25/social-media-API/internal/apperror"
	"github.com/jacinta25/social-media-API/internal/content"
	"github.com/jacinta25/social-media-API/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts follow, like, feed and the post and comment
// mutations. It must run before content.RegisterRoutes so /posts/feed is not
// taken as a post id.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/users/:id/follow", authMiddleware, func(c *fiber.Ctx) error {
		userID, targetID, err := actorAndTarget(c, "User")
		if err != nil {
			return err
		}
		target, err := svc.Follow(c.Context(), userID, targetID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": fmt.Sprintf("You are now following %s.", target.Username)})
	})

	r.Post("/users/:id/unfollow", authMiddleware, func(c *fiber.Ctx) error {
		userID, targetID, err := actorAndTarget(c, "User")
		if err != nil {
			return err
		}
		target, err := svc.Unfollow(c.Context(), userID, targetID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": fmt.Sprintf("You have unfollowed %s.", target.Username)})
	})

	r.Get("/posts/feed", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := httpx.UserID(c)
		if err != nil {
			return err
		}
		posts, err := svc.Feed(c.Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(posts)
	})

	r.Post("/posts", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := httpx.UserID(c)
		if err != nil {
			return err
		}
		var req CreatePostRequest
		if err := httpx.Bind(c, &req); err != nil {
			return err
		}
		post, err := svc.CreatePost(c.Context(), userID, req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	})

	r.Put("/posts/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req CreatePostRequest
		if err := httpx.Bind(c, &req); err != nil {
			return err
		}
		return updatePost(c, svc, content.PostUpdate{Title: &req.Title, Content: &req.Content})
	})

	r.Patch("/posts/:id", authMiddleware, func(c *fiber.Ctx) error {
		var patch content.PostUpdate
		if err := httpx.Bind(c, &patch); err != nil {
			return err
		}
		return updatePost(c, svc, patch)
	})

	r.Delete("/posts/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, postID, err := actorAndTarget(c, "Post")
		if err != nil {
			return err
		}
		if err := svc.DeletePost(c.Context(), userID, postID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/posts/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		userID, postID, err := actorAndTarget(c, "Post")
		if err != nil {
			return err
		}
		result, err := svc.Like(c.Context(), userID, postID)
		if err != nil {
			return err
		}
		if !result.Created {
			return c.JSON(fiber.Map{"message": "You have already liked this post"})
		}
		return c.JSON(fiber.Map{"message": "Post liked successfully"})
	})

	r.Post("/posts/:id/unlike", authMiddleware, func(c *fiber.Ctx) error {
		userID, postID, err := actorAndTarget(c, "Post")
		if err != nil {
			return err
		}
		removed, err := svc.Unlike(c.Context(), userID, postID)
		if err != nil {
			return err
		}
		if !removed {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "You have not liked this post"})
		}
		return c.JSON(fiber.Map{"message": "Post unliked successfully"})
	})

	r.Get("/posts/:id/comments", authMiddleware, func(c *fiber.Ctx) error {
		postID, err := httpx.ParamID(c, "id", "Post")
		if err != nil {
			return err
		}
		comments, err := svc.Comments(c.Context(), postID)
		if err != nil {
			return err
		}
		return c.JSON(comments)
	})

	r.Post("/posts/:id/comments", authMiddleware, func(c *fiber.Ctx) error {
		userID, postID, err := actorAndTarget(c, "Post")
		if err != nil {
			return err
		}
		var req CommentRequest
		if err := httpx.Bind(c, &req); err != nil {
			return err
		}
		return createComment(c, svc, userID, postID, req.Content)
	})

	r.Post("/comments", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := httpx.UserID(c)
		if err != nil {
			return err
		}
		var req NewCommentRequest
		if err := httpx.Bind(c, &req); err != nil {
			return err
		}
		return createComment(c, svc, userID, req.PostID, req.Content)
	})

	editComment := func(c *fiber.Ctx) error {
		userID, commentID, err := actorAndTarget(c, "Comment")
		if err != nil {
			return err
		}
		var req CommentRequest
		if err := httpx.Bind(c, &req); err != nil {
			return err
		}
		comment, err := svc.UpdateComment(c.Context(), userID, commentID, req.Content)
		if err != nil {
			return err
		}
		return c.JSON(comment)
	}
	r.Put("/comments/:id", authMiddleware, editComment)
	r.Patch("/comments/:id", authMiddleware, editComment)

	r.Delete("/comments/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, commentID, err := actorAndTarget(c, "Comment")
		if err != nil {
			return err
		}
		if err := svc.DeleteComment(c.Context(), userID, commentID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func actorAndTarget(c *fiber.Ctx, entity string) (string, string, error) {
	userID, err := httpx.UserID(c)
	if err != nil {
		return "", "", err
	}
	id, err := httpx.ParamID(c, "id", entity)
	if err != nil {
		return "", "", err
	}
	return userID, id, nil
}

func updatePost(c *fiber.Ctx, svc *Service, patch content.PostUpdate) error {
	userID, postID, err := actorAndTarget(c, "Post")
	if err != nil {
		return err
	}
	if patch.Title == nil && patch.Content == nil {
		return apperror.Invalid("title or content is required")
	}
	post, err := svc.UpdatePost(c.Context(), userID, postID, patch)
	if err != nil {
		return err
	}
	return c.JSON(post)
}

func createComment(c *fiber.Ctx, svc *Service, userID, postID, text string) error {
	comment, err := svc.Comment(c.Context(), userID, postID, text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
