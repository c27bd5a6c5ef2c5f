package controllers

import (
	"github.com/Koloda55SA/RaDev-sub001/backend/middleware"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/Koloda55SA/RaDev-sub001/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// currentUser возвращает пользователя запроса и его роль. Профиль создаётся
// при первом обращении, роль сверяется с ADMIN_EMAILS. Недоступность
// хранилища профилей запрос не ломает: роль берётся из списка админов.
func currentUser(c *fiber.Ctx, roles *profile.RoleSync) (*utils.Identity, profile.Role, error) {
	identity, ok := middleware.Identity(c)
	if !ok {
		return nil, "", utils.NewUnauthorizedError("Unauthorized")
	}
	return identity, roles.Initialize(c.UserContext(), identity.UID, identity.Email), nil
}

// RoleResolver отдаёт роль для AdminMiddleware.
func RoleResolver(roles *profile.RoleSync) middleware.RoleResolver {
	return func(c *fiber.Ctx, identity *utils.Identity) (profile.Role, error) {
		return roles.Initialize(c.UserContext(), identity.UID, identity.Email), nil
	}
}
