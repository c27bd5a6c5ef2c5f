package controllers

import (
	"github.com/Koloda55SA/RaDev-sub001/backend/achievements"
	"github.com/Koloda55SA/RaDev-sub001/backend/activity"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/Koloda55SA/RaDev-sub001/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// activityKinds сопоставляет событие из URL со счётчиком и действием.
var activityKinds = map[string]struct {
	stat   profile.StatName
	action achievements.Action
}{
	"project-view": {profile.ProjectsViewed, achievements.ActionNone},
	"blog-read":    {profile.BlogPostsRead, achievements.ActionNone},
	"code-run":     {profile.CodeRuns, achievements.ActionNone},
	"message-sent": {profile.MessagesSent, achievements.ActionNone},
	"login":        {profile.LoginCount, achievements.ActionLogin},
}

type ActivityController struct {
	Activity *activity.Tracker
	Roles    *profile.RoleSync
}

func NewActivityController(tracker *activity.Tracker, roles *profile.RoleSync) *ActivityController {
	return &ActivityController{Activity: tracker, Roles: roles}
}

// UnlockedResponse - достижения, открытые событием.
type UnlockedResponse struct {
	Unlocked []achievements.Achievement `json:"unlocked"`
}

// Track godoc
// @Summary Track user activity
// @Description Increments an activity counter and unlocks the achievements it reaches. Tracking is best effort and always accepted.
// @Tags activity
// @Produce json
// @Param kind path string true "project-view, blog-read, code-run, message-sent or login"
// @Success 202 {object} UnlockedResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /activity/{kind} [post]
func (ac *ActivityController) Track(c *fiber.Ctx) error {
	kind, ok := activityKinds[c.Params("kind")]
	if !ok {
		return utils.NotFound(c, "Unknown activity")
	}

	identity, _, err := currentUser(c, ac.Roles)
	if err != nil {
		return respondError(c, err)
	}

	unlocked := ac.Activity.Track(c.UserContext(), identity.UID, kind.stat, kind.action)
	return accepted(c, unlocked)
}

// RecordAction godoc
// @Summary Record a user action
// @Description Evaluates action achievements such as follow_user without touching counters
// @Tags activity
// @Produce json
// @Param action path string true "Action name"
// @Success 202 {object} UnlockedResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /activity/actions/{action} [post]
func (ac *ActivityController) RecordAction(c *fiber.Ctx) error {
	action, ok := achievements.ParseAction(c.Params("action"))
	if !ok {
		return utils.BadRequest(c, "Unknown action")
	}

	identity, _, err := currentUser(c, ac.Roles)
	if err != nil {
		return respondError(c, err)
	}

	unlocked := ac.Activity.RecordAction(c.UserContext(), identity.UID, action)
	return accepted(c, unlocked)
}

func accepted(c *fiber.Ctx, unlocked []achievements.Achievement) error {
	if unlocked == nil {
		unlocked = []achievements.Achievement{}
	}
	return utils.Accepted(c, UnlockedResponse{Unlocked: unlocked})
}
