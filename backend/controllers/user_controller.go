package controllers

import (
	"strings"

	"github.com/Koloda55SA/RaDev-sub001/backend/achievements"
	"github.com/Koloda55SA/RaDev-sub001/backend/activity"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/Koloda55SA/RaDev-sub001/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Profiles profile.Store
	Activity *activity.Tracker
	Roles    *profile.RoleSync
}

func NewUserController(profiles profile.Store, tracker *activity.Tracker, roles *profile.RoleSync) *UserController {
	return &UserController{Profiles: profiles, Activity: tracker, Roles: roles}
}

type UpdateProfileRequest struct {
	Nickname *string `json:"nickname" validate:"omitempty,min=3,max=30" example:"neo"`
	Bio      *string `json:"bio" validate:"omitempty,max=500" example:"Пишу на Go"`
	Avatar   *string `json:"avatar" validate:"omitempty,url" example:"https://example.com/me.png"`
}

// ProfileResponse - профиль вместе с достижениями, открытыми этим запросом.
type ProfileResponse struct {
	Profile  *profile.Profile           `json:"profile"`
	Unlocked []achievements.Achievement `json:"unlocked"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile, creating it on first access
// @Tags users
// @Produce json
// @Success 200 {object} profile.Profile
// @Failure 401 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	identity, _, err := currentUser(c, uc.Roles)
	if err != nil {
		return respondError(c, err)
	}

	p, err := uc.Profiles.GetProfile(c.UserContext(), identity.UID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, p)
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates nickname, bio or avatar and evaluates the profile achievements
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	identity, _, err := currentUser(c, uc.Roles)
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	trim(req.Nickname)
	trim(req.Bio)
	trim(req.Avatar)
	if errs := utils.Validate(&req); errs != nil {
		return utils.ValidationError(c, errs)
	}
	if req.Nickname == nil && req.Bio == nil && req.Avatar == nil {
		return utils.BadRequest(c, "Nothing to update")
	}

	ctx := c.UserContext()
	upd := profile.Update{Nickname: req.Nickname, Bio: req.Bio, Avatar: req.Avatar}
	if err := uc.Profiles.UpdateProfile(ctx, identity.UID, upd); err != nil {
		return respondError(c, err)
	}

	// Действия профиля: обновление, непустое био, загруженный аватар
	unlocked := uc.Activity.RecordAction(ctx, identity.UID, achievements.ActionUpdateProfile)
	if req.Bio != nil && *req.Bio != "" {
		unlocked = append(unlocked, uc.Activity.RecordAction(ctx, identity.UID, achievements.ActionAddBio)...)
	}
	if req.Avatar != nil && *req.Avatar != "" {
		unlocked = append(unlocked, uc.Activity.RecordAction(ctx, identity.UID, achievements.ActionUploadAvatar)...)
	}

	p, err := uc.Profiles.GetProfile(ctx, identity.UID)
	if err != nil {
		return respondError(c, err)
	}
	if unlocked == nil {
		unlocked = []achievements.Achievement{}
	}
	return utils.Success(c, fiber.StatusOK, ProfileResponse{Profile: p, Unlocked: unlocked})
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
