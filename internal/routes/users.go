package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/z-cash/z_cash/internal/identity"
	"github.com/z-cash/z_cash/internal/middleware"
)

// RegisterUserRoutes exposes the current user's profile.
func RegisterUserRoutes(r fiber.Router, ids *identity.Service) {
	r.Get("/users/profile", func(c *fiber.Ctx) error {
		uid, _ := c.Locals(middleware.UserIDKey).(string)
		user, err := ids.Profile(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "user not found")
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"user_id":    user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		})
	})

	r.Put("/users/profile", func(c *fiber.Ctx) error {
		uid, _ := c.Locals(middleware.UserIDKey).(string)
		var req struct {
			Name            string `json:"name"`
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := ids.Update(c.UserContext(), uid, identity.UpdateInput{
			Name:            req.Name,
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
		})
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				return fiber.NewError(http.StatusBadRequest, "current password is incorrect")
			}
			if errors.Is(err, identity.ErrUserNotFound) {
				return fiber.NewError(http.StatusNotFound, "user not found")
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"message": "profile updated successfully",
			"user": fiber.Map{
				"user_id": user.ID,
				"name":    user.Name,
				"email":   user.Email,
			},
		})
	})
}
