package controllers

import (
	"context"
	"errors"

	"github.com/Koloda55SA/RaDev-sub001/backend/activity"
	"github.com/Koloda55SA/RaDev-sub001/backend/courses"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/Koloda55SA/RaDev-sub001/backend/progress"
	"github.com/Koloda55SA/RaDev-sub001/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// toAppError переводит доменные ошибки в HTTP ответ.
func toAppError(err error) *utils.AppError {
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, courses.ErrCourseNotFound):
		return utils.NewNotFoundError("Course")
	case errors.Is(err, progress.ErrChapterNotFound):
		return utils.NewNotFoundError("Chapter")
	case errors.Is(err, progress.ErrLessonNotFound):
		return utils.NewNotFoundError("Lesson")
	case errors.Is(err, progress.ErrNoProgress):
		return utils.NewNotFoundError("Course progress")
	case errors.Is(err, profile.ErrNotFound):
		return utils.NewNotFoundError("Profile")
	case errors.Is(err, progress.ErrLessonLocked):
		return utils.NewForbiddenError("Lesson is locked")
	case errors.Is(err, progress.ErrInvalidTime),
		errors.Is(err, activity.ErrUnknownStat),
		errors.Is(err, activity.ErrInvalidAmount):
		return utils.NewBadRequestError(err.Error())
	case errors.Is(err, activity.ErrNoUser):
		return utils.NewUnauthorizedError("Unauthorized")
	case errors.Is(err, profile.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return utils.NewBadGatewayError("Profile service unavailable", err.Error())
	}
	return utils.NewInternalError("Internal server error", err.Error())
}

func respondError(c *fiber.Ctx, err error) error {
	return utils.AppErrorResponse(c, toAppError(err))
}
