package auth

import (
	"github.com/jacinta25/social-media-API/internal/apperror"
	"github.com/jacinta25/social-media-API/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := httpx.Bind(c, &req); err != nil {
			return err
		}
		user, tokens, err := svc.Register(c.Context(), req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(AuthResponse{User: user, TokenResponse: tokens})
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return apperror.Invalid("invalid payload")
		}
		if req.Username == "" || req.Password == "" {
			return apperror.InvalidCredentials()
		}
		user, tokens, err := svc.Login(c.Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(AuthResponse{User: user, TokenResponse: tokens})
	})

	r.Post("/token/refresh", func(c *fiber.Ctx) error {
		var req RefreshRequest
		if err := httpx.Bind(c, &req); err != nil {
			return err
		}
		tokens, err := svc.Refresh(c.Context(), req.RefreshToken)
		if err != nil {
			return err
		}
		return c.JSON(tokens)
	})

	r.Get("/token/verify", func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return apperror.Unauthorized("Authentication credentials were not provided.")
		}
		userID, err := svc.ResolveToken(token)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"user_id": userID})
	})
}
