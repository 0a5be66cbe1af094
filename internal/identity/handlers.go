package identity

import (
	"context"

	"github.com/jacinta25/social-media-API/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, store *Store, authMiddleware fiber.Handler) {
	r.Get("/profile", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := httpx.UserID(c)
		if err != nil {
			return err
		}
		profile, err := store.Profile(c.Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(profile)
	})

	r.Patch("/profile", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := httpx.UserID(c)
		if err != nil {
			return err
		}
		var req ProfileUpdate
		if err := httpx.Bind(c, &req); err != nil {
			return err
		}
		if _, err := store.UpdateProfile(c.Context(), userID, req); err != nil {
			return err
		}
		profile, err := store.Profile(c.Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(profile)
	})

	r.Get("/users/:id", authMiddleware, func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id", "User")
		if err != nil {
			return err
		}
		profile, err := store.Profile(c.Context(), id)
		if err != nil {
			return err
		}
		return c.JSON(profile)
	})

	r.Get("/users/:id/followers", authMiddleware, func(c *fiber.Ctx) error {
		return listFollows(c, store, store.Followers)
	})

	r.Get("/users/:id/following", authMiddleware, func(c *fiber.Ctx) error {
		return listFollows(c, store, store.Following)
	})
}

func listFollows(c *fiber.Ctx, store *Store, list func(ctx context.Context, userID string) ([]Summary, error)) error {
	id, err := httpx.ParamID(c, "id", "User")
	if err != nil {
		return err
	}
	if _, err := store.GetByID(c.Context(), id); err != nil {
		return err
	}
	users, err := list(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(users)
}
