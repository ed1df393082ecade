package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"peachme/api-gateway/internal/session"
	"peachme/api-gateway/utils"
)

// SignUpPayload defines the expected request body for sign up.
type SignUpPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignInPayload defines the expected request body for sign in.
type SignInPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUp creates a mock identity and signs it in.
// POST /api/v1/auth/signup
func (h *ApplicationHandler) SignUp(c *fiber.Ctx) error {
	var payload SignUpPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse JSON: "+err.Error())
	}
	validate := validator.New()
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, utils.FormatValidationErrors(err))
	}

	user, err := h.Session.SignUp(payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, session.ErrMissingCredentials) {
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		}
		h.Logger.Errorf("Error signing up: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not sign up")
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, user)
}

// SignIn fabricates an identity for the email and signs it in.
// POST /api/v1/auth/signin
func (h *ApplicationHandler) SignIn(c *fiber.Ctx) error {
	var payload SignInPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse JSON: "+err.Error())
	}
	validate := validator.New()
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, utils.FormatValidationErrors(err))
	}

	user, err := h.Session.SignIn(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, session.ErrMissingCredentials) {
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		}
		h.Logger.Errorf("Error signing in: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not sign in")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, user)
}

// SignOut clears the current identity.
// POST /api/v1/auth/signout
func (h *ApplicationHandler) SignOut(c *fiber.Ctx) error {
	if err := h.Session.SignOut(); err != nil {
		if errors.Is(err, session.ErrNotSignedIn) {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, err.Error())
		}
		h.Logger.Errorf("Error signing out: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not sign out")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"signed_in": false})
}

// CurrentUser returns the signed-in identity, or 401 when signed out.
// GET /api/v1/auth/me
func (h *ApplicationHandler) CurrentUser(c *fiber.Ctx) error {
	user := h.Session.User()
	if user == nil {
		return utils.RespondWithError(c, fiber.StatusUnauthorized, "not signed in")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, user)
}
