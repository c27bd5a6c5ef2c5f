package controllers

import (
	"github.com/Koloda55SA/RaDev-sub001/backend/activity"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/Koloda55SA/RaDev-sub001/backend/progress"
	"github.com/Koloda55SA/RaDev-sub001/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminController - операции администратора над чужими профилями.
// Доступ проверяет AdminMiddleware.
type AdminController struct {
	Profiles profile.Store
	Progress *progress.Tracker
	Unlocker *activity.Unlocker
}

func NewAdminController(profiles profile.Store, tracker *progress.Tracker, unlocker *activity.Unlocker) *AdminController {
	return &AdminController{Profiles: profiles, Progress: tracker, Unlocker: unlocker}
}

// AdminUserResponse - профиль пользователя и его прогресс по курсам.
type AdminUserResponse struct {
	Profile  *profile.Profile                    `json:"profile"`
	Progress map[string]*progress.CourseProgress `json:"progress"`
}

// GetUser godoc
// @Summary Get user (admin)
// @Description Returns another user's profile and course progress
// @Tags admin
// @Produce json
// @Param uid path string true "User ID"
// @Success 200 {object} AdminUserResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users/{uid} [get]
func (ac *AdminController) GetUser(c *fiber.Ctx) error {
	uid := c.Params("uid")
	ctx := c.UserContext()

	p, err := ac.Profiles.GetProfile(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	all, err := ac.Progress.GetUserCourseProgress(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}

	resp := AdminUserResponse{Profile: p, Progress: make(map[string]*progress.CourseProgress, len(all))}
	for lang, cp := range all {
		resp.Progress[string(lang)] = cp
	}
	return utils.Success(c, fiber.StatusOK, resp)
}

// GrantAchievement godoc
// @Summary Grant achievement (admin)
// @Description Unlocks a catalog achievement for a user and notifies them
// @Tags admin
// @Produce json
// @Param uid path string true "User ID"
// @Param id path string true "Achievement ID"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users/{uid}/achievements/{id} [post]
func (ac *AdminController) GrantAchievement(c *fiber.Ctx) error {
	a, ok := ac.Unlocker.Catalog().Get(c.Params("id"))
	if !ok {
		return utils.NotFound(c, "Achievement not found")
	}
	uid := c.Params("uid")
	ctx := c.UserContext()

	if _, err := ac.Profiles.GetProfile(ctx, uid); err != nil {
		return respondError(c, err)
	}
	added, err := ac.Unlocker.Unlock(ctx, uid, a)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"granted": added})
}
