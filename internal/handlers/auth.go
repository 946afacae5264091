package handlers

import (
	"errors"
	"net/http"

	"photomap-backend/internal/models"
	"photomap-backend/internal/services"
	"photomap-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware verifies the JWT token and stores the caller's identity in
// locals. The token comes from the Authorization header or, for websocket
// clients, the access_token query param.
func AuthMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("access_token")
		if token == "" {
			authHeader := c.Get("Authorization")
			if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
				token = authHeader[7:]
			}
		}

		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		// claims["user_id"] comes as float64 from JSON
		if uid, ok := claims["user_id"].(float64); ok {
			c.Locals("user_id", int(uid))
		} else {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		if email, ok := claims["email"].(string); ok {
			c.Locals("email", email)
		}

		return c.Next()
	}
}

// RegisterHandler creates an account plus its default profile.
func RegisterHandler(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
		user, err := auth.Register(c.Context(), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(http.StatusCreated).JSON(user)
	}
}

// LoginHandler exchanges credentials for a session token.
func LoginHandler(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
		res, err := auth.Login(c.Context(), req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

// fail maps a service failure onto the HTTP error taxonomy. Every failure is
// user-retryable; none is retried here.
func fail(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotAuthenticated),
		errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrEmailInUse),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, store.ErrBadCursor):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrRemoteUnavailable):
		status = http.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
