package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/auth"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/dto"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
)

// AuthHandler registro y login (público).
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register da de alta un usuario.
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeInvalidPayload, Message: "cuerpo inválido"})
	}
	user, err := h.uc.Register(c.Context(), in)
	if err != nil {
		return mapAuthError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login verifica credenciales y devuelve el JWT del actor.
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeInvalidPayload, Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Login(c.Context(), in)
	if err != nil {
		return mapAuthError(c, err)
	}
	return c.JSON(resp)
}

func mapAuthError(c *fiber.Ctx, err error) error {
	var execErr *domain.ExecutionError
	if errors.As(err, &execErr) {
		status := fiber.StatusBadRequest
		if execErr.Code == domain.CodePermissionDenied {
			status = fiber.StatusUnauthorized
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: execErr.Code, Message: execErr.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: domain.CodeInternal, Message: err.Error()})
}
