package middleware

import (
	"github.com/Koloda55SA/RaDev-sub001/backend/config"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/Koloda55SA/RaDev-sub001/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// AuthMiddleware проверяет токен и кладёт пользователя в контекст запроса.
// Токен также уходит в UserContext, чтобы удалённое хранилище профилей
// обращалось к API от имени пользователя.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, token, err := utils.ExtractIdentityFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(identityKey, identity)
		c.SetUserContext(profile.WithBearerToken(c.UserContext(), token))
		return c.Next()
	}
}

// Identity возвращает пользователя, сохранённого AuthMiddleware.
func Identity(c *fiber.Ctx) (*utils.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*utils.Identity)
	return identity, ok && identity != nil
}

// AdminMiddleware пропускает только администраторов. Роль берётся из
// RoleResolver, так как в токене её может не быть.
func AdminMiddleware(resolve RoleResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := Identity(c)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}
		role, err := resolve(c, identity)
		if err != nil {
			return utils.AppErrorResponse(c, utils.NewInternalError("Failed to resolve role", err.Error()))
		}
		if !role.IsAdmin() {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}
		return c.Next()
	}
}

// RoleResolver определяет роль пользователя.
type RoleResolver func(c *fiber.Ctx, identity *utils.Identity) (profile.Role, error)
