package notification

import (
	"github.com/jacinta25/social-media-API/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, ledger *Ledger, authMiddleware fiber.Handler) {
	g := r.Group("/notifications", authMiddleware)

	g.Get("/", func(c *fiber.Ctx) error {
		userID, err := httpx.UserID(c)
		if err != nil {
			return err
		}
		notifications, err := ledger.ListFor(c.Context(), userID, c.QueryInt("limit", DefaultLimit), c.QueryInt("offset", 0))
		if err != nil {
			return err
		}
		return c.JSON(notifications)
	})

	g.Get("/unread-count", func(c *fiber.Ctx) error {
		userID, err := httpx.UserID(c)
		if err != nil {
			return err
		}
		count, err := ledger.UnreadCount(c.Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"count": count})
	})

	g.Put("/read-all", func(c *fiber.Ctx) error {
		userID, err := httpx.UserID(c)
		if err != nil {
			return err
		}
		updated, err := ledger.MarkAllRead(c.Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "All notifications marked as read", "updated": updated})
	})

	g.Put("/:id/read", func(c *fiber.Ctx) error {
		userID, err := httpx.UserID(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id", "Notification")
		if err != nil {
			return err
		}
		if err := ledger.MarkRead(c.Context(), userID, id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Notification marked as read"})
	})
}
