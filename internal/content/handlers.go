package content

import (
	"github.com/jacinta25/social-media-API/internal/apperror"
	"github.com/jacinta25/social-media-API/internal/httpx"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RegisterRoutes mounts the read-only post and comment routes. Mutations go
// through the interaction service, whose routes must be registered first so
// that /posts/feed wins over /posts/:id.
func RegisterRoutes(r fiber.Router, store *Store, authMiddleware fiber.Handler) {
	r.Get("/posts", authMiddleware, func(c *fiber.Ctx) error {
		posts, err := store.ListPosts(c.Context(), ListFilter{
			Title:   c.Query("title"),
			Content: c.Query("content"),
			Author:  c.Query("author"),
		})
		if err != nil {
			return err
		}
		return c.JSON(posts)
	})

	r.Get("/posts/:id", authMiddleware, func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id", "Post")
		if err != nil {
			return err
		}
		post, err := store.GetPost(c.Context(), id)
		if err != nil {
			return err
		}
		if post.Comments, err = store.ListComments(c.Context(), id); err != nil {
			return err
		}
		return c.JSON(post)
	})

	r.Get("/comments", authMiddleware, func(c *fiber.Ctx) error {
		postID := c.Query("post")
		if postID != "" {
			if _, err := uuid.Parse(postID); err != nil {
				return apperror.Invalid("post must be a valid id")
			}
		}
		comments, err := store.ListComments(c.Context(), postID)
		if err != nil {
			return err
		}
		return c.JSON(comments)
	})

	r.Get("/comments/:id", authMiddleware, func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id", "Comment")
		if err != nil {
			return err
		}
		comment, err := store.GetComment(c.Context(), id)
		if err != nil {
			return err
		}
		return c.JSON(comment)
	})
}
