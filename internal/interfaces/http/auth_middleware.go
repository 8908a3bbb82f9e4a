package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/dto"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/pkg/jwt"
)

// LocalActor key del actor autenticado en c.Locals.
const LocalActor = "actor"

// AuthMiddleware valida el Bearer Token JWT y deja el Actor en c.Locals.
// La identidad (user_id, role, store_id, brand_id) llega al core ya
// verificada; ninguna capa posterior vuelve a autenticar.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalActor, entity.Actor{
			UserID:  claims.UserID,
			Role:    claims.Role,
			StoreID: claims.StoreID,
			BrandID: claims.BrandID,
		})
		return c.Next()
	}
}

// GetActor devuelve el actor del contexto (después del middleware de auth).
func GetActor(c *fiber.Ctx) (entity.Actor, bool) {
	v := c.Locals(LocalActor)
	if v == nil {
		return entity.Actor{}, false
	}
	actor, ok := v.(entity.Actor)
	return actor, ok && actor.UserID != ""
}
