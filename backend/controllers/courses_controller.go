package controllers

import (
	"github.com/Koloda55SA/RaDev-sub001/backend/achievements"
	"github.com/Koloda55SA/RaDev-sub001/backend/activity"
	"github.com/Koloda55SA/RaDev-sub001/backend/courses"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/Koloda55SA/RaDev-sub001/backend/progress"
	"github.com/Koloda55SA/RaDev-sub001/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Progress *progress.Tracker
	Activity *activity.Tracker
	Roles    *profile.RoleSync
}

func NewCoursesController(tracker *progress.Tracker, activityTracker *activity.Tracker, roles *profile.RoleSync) *CoursesController {
	return &CoursesController{Progress: tracker, Activity: activityTracker, Roles: roles}
}

// CourseSummary - курс без содержимого уроков.
type CourseSummary struct {
	Language     courses.Language `json:"language"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Chapters     int              `json:"chapters"`
	TotalLessons int              `json:"totalLessons"`
}

// CourseResponse - курс вместе с дорожной картой пользователя.
type CourseResponse struct {
	Course  *courses.Course   `json:"course"`
	Roadmap *progress.Roadmap `json:"roadmap"`
}

type UpdateLessonRequest struct {
	Completed bool `json:"completed"`
	TimeSpent int  `json:"timeSpent" validate:"gte=0" example:"5"`
}

// LessonUpdateResponse - итог попытки и достижения, открытые ею.
type LessonUpdateResponse struct {
	*progress.LessonResult
	Unlocked []achievements.Achievement `json:"unlocked"`
}

// GetCourses godoc
// @Summary List courses
// @Description Returns every available course
// @Tags courses
// @Produce json
// @Success 200 {array} CourseSummary
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [get]
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	all := cc.Progress.Catalog().AllCourses()
	out := make([]CourseSummary, 0, len(all))
	for _, course := range all {
		out = append(out, CourseSummary{
			Language:     course.Language,
			Title:        course.Title,
			Description:  course.Description,
			Chapters:     len(course.Chapters),
			TotalLessons: course.TotalLessons(),
		})
	}
	return utils.Success(c, fiber.StatusOK, out)
}

// GetCourse godoc
// @Summary Get course
// @Description Returns the course content and the user's roadmap with locked and completed lessons
// @Tags courses
// @Produce json
// @Param language path string true "Course language"
// @Success 200 {object} CourseResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{language} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	lang := courses.Language(c.Params("language"))
	course, err := cc.Progress.Catalog().GetCourse(lang)
	if err != nil {
		return respondError(c, err)
	}

	identity, role, err := currentUser(c, cc.Roles)
	if err != nil {
		return respondError(c, err)
	}
	roadmap, err := cc.Progress.Roadmap(c.UserContext(), identity.UID, role, lang)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, CourseResponse{Course: course, Roadmap: roadmap})
}

// InitializeProgress godoc
// @Summary Start course
// @Description Creates the user's progress record for the course; repeated calls return the existing record
// @Tags courses
// @Produce json
// @Param language path string true "Course language"
// @Success 200 {object} progress.CourseProgress
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{language}/progress [post]
func (cc *CoursesController) InitializeProgress(c *fiber.Ctx) error {
	identity, _, err := currentUser(c, cc.Roles)
	if err != nil {
		return respondError(c, err)
	}
	cp, err := cc.Progress.InitializeCourseProgress(c.UserContext(), identity.UID, courses.Language(c.Params("language")))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, cp)
}

// GetAllProgress godoc
// @Summary Get progress in all courses
// @Description Returns the user's progress keyed by course language
// @Tags courses
// @Produce json
// @Success 200 {object} map[string]progress.CourseProgress
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/progress [get]
func (cc *CoursesController) GetAllProgress(c *fiber.Ctx) error {
	identity, _, err := currentUser(c, cc.Roles)
	if err != nil {
		return respondError(c, err)
	}
	all, err := cc.Progress.GetUserCourseProgress(c.UserContext(), identity.UID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, all)
}

// GetLessonProgress godoc
// @Summary Get lesson progress
// @Description Returns attempts, time spent and completion of one lesson
// @Tags courses
// @Produce json
// @Param language path string true "Course language"
// @Param chapterId path string true "Chapter ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} progress.LessonProgress
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{language}/chapters/{chapterId}/lessons/{lessonId}/progress [get]
func (cc *CoursesController) GetLessonProgress(c *fiber.Ctx) error {
	identity, _, err := currentUser(c, cc.Roles)
	if err != nil {
		return respondError(c, err)
	}
	lp, err := cc.Progress.GetLessonProgress(c.UserContext(), identity.UID,
		courses.Language(c.Params("language")), c.Params("chapterId"), c.Params("lessonId"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, lp)
}

// UpdateLessonProgress godoc
// @Summary Record lesson attempt
// @Description Records an attempt at a lesson. Completing a lesson unlocks the lesson achievement and, when the chapter is finished, its chapter achievement.
// @Tags courses
// @Accept json
// @Produce json
// @Param language path string true "Course language"
// @Param chapterId path string true "Chapter ID"
// @Param lessonId path string true "Lesson ID"
// @Param input body UpdateLessonRequest true "Attempt"
// @Success 200 {object} LessonUpdateResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{language}/chapters/{chapterId}/lessons/{lessonId}/progress [post]
func (cc *CoursesController) UpdateLessonProgress(c *fiber.Ctx) error {
	var req UpdateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if errs := utils.Validate(&req); errs != nil {
		return utils.ValidationError(c, errs)
	}

	identity, role, err := currentUser(c, cc.Roles)
	if err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	res, err := cc.Progress.UpdateLessonProgress(ctx, identity.UID, role,
		courses.Language(c.Params("language")), c.Params("chapterId"), c.Params("lessonId"),
		req.Completed, req.TimeSpent)
	if err != nil {
		return respondError(c, err)
	}

	unlocked := []achievements.Achievement{}
	if res.NewlyCompleted {
		var chapter *achievements.Achievement
		if res.ChapterCompleted {
			a := achievements.ChapterAchievement(string(res.Course.Language), res.Chapter.ID, res.Chapter.Title)
			chapter = &a
		}
		unlocked = append(unlocked, cc.Activity.TrackLessonCompletion(ctx, identity.UID, chapter)...)
	}
	return utils.Success(c, fiber.StatusOK, LessonUpdateResponse{LessonResult: res, Unlocked: unlocked})
}
