package controllers

import (
	"github.com/Koloda55SA/RaDev-sub001/backend/achievements"
	"github.com/Koloda55SA/RaDev-sub001/backend/courses"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/Koloda55SA/RaDev-sub001/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AchievementsController struct {
	Catalog  *achievements.Catalog
	Courses  *courses.Catalog
	Profiles profile.Store
	Roles    *profile.RoleSync
}

func NewAchievementsController(catalog *achievements.Catalog, courseCatalog *courses.Catalog, profiles profile.Store, roles *profile.RoleSync) *AchievementsController {
	return &AchievementsController{Catalog: catalog, Courses: courseCatalog, Profiles: profiles, Roles: roles}
}

// AchievementView - достижение с отметкой, открыто ли оно пользователем.
type AchievementView struct {
	Achievement achievements.Achievement `json:"achievement"`
	Unlocked    bool                     `json:"unlocked"`
}

// AchievementsResponse содержит каталог и достижения глав, уже полученные
// пользователем.
type AchievementsResponse struct {
	Achievements []AchievementView `json:"achievements"`
	Chapters     []AchievementView `json:"chapters"`
	Total        int               `json:"total"`
	Unlocked     int               `json:"unlocked"`
}

// GetAchievements godoc
// @Summary List achievements
// @Description Returns the achievement catalog with the user's unlocked flags
// @Tags achievements
// @Produce json
// @Success 200 {object} AchievementsResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /achievements [get]
func (ac *AchievementsController) GetAchievements(c *fiber.Ctx) error {
	p, err := ac.loadProfile(c)
	if err != nil {
		return respondError(c, err)
	}

	resp := AchievementsResponse{
		Achievements: make([]AchievementView, 0, ac.Catalog.Len()),
		Chapters:     []AchievementView{},
		Total:        ac.Catalog.Len(),
	}
	for _, a := range ac.Catalog.All() {
		view := AchievementView{Achievement: a, Unlocked: p.HasAchievement(a.ID)}
		if view.Unlocked {
			resp.Unlocked++
		}
		resp.Achievements = append(resp.Achievements, view)
	}
	for _, id := range p.Achievements {
		if a, ok := ac.chapterAchievement(id); ok {
			resp.Chapters = append(resp.Chapters, AchievementView{Achievement: a, Unlocked: true})
		}
	}
	return utils.Success(c, fiber.StatusOK, resp)
}

// GetAchievement godoc
// @Summary Get achievement
// @Description Returns one catalog or chapter achievement with the user's unlocked flag
// @Tags achievements
// @Produce json
// @Param id path string true "Achievement ID"
// @Success 200 {object} AchievementView
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /achievements/{id} [get]
func (ac *AchievementsController) GetAchievement(c *fiber.Ctx) error {
	id := c.Params("id")
	a, ok := ac.Catalog.Get(id)
	if !ok {
		a, ok = ac.chapterAchievement(id)
	}
	if !ok {
		return utils.NotFound(c, "Achievement not found")
	}

	p, err := ac.loadProfile(c)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, AchievementView{Achievement: a, Unlocked: p.HasAchievement(a.ID)})
}

func (ac *AchievementsController) loadProfile(c *fiber.Ctx) (*profile.Profile, error) {
	identity, _, err := currentUser(c, ac.Roles)
	if err != nil {
		return nil, err
	}
	return ac.Profiles.GetProfile(c.UserContext(), identity.UID)
}

// chapterAchievement восстанавливает достижение главы по его id.
func (ac *AchievementsController) chapterAchievement(id string) (achievements.Achievement, bool) {
	lang, chapterID, ok := achievements.ParseChapterAchievementID(id)
	if !ok {
		return achievements.Achievement{}, false
	}
	course, err := ac.Courses.GetCourse(courses.Language(lang))
	if err != nil {
		return achievements.Achievement{}, false
	}
	chapter, ok := course.Chapter(chapterID)
	if !ok {
		return achievements.Achievement{}, false
	}
	return achievements.ChapterAchievement(string(course.Language), chapter.ID, chapter.Title), true
}
