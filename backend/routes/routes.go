package routes

import (
	"github.com/Koloda55SA/RaDev-sub001/backend/achievements"
	"github.com/Koloda55SA/RaDev-sub001/backend/activity"
	"github.com/Koloda55SA/RaDev-sub001/backend/config"
	"github.com/Koloda55SA/RaDev-sub001/backend/controllers"
	"github.com/Koloda55SA/RaDev-sub001/backend/courses"
	"github.com/Koloda55SA/RaDev-sub001/backend/middleware"
	"github.com/Koloda55SA/RaDev-sub001/backend/notify"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/Koloda55SA/RaDev-sub001/backend/progress"
	"github.com/Koloda55SA/RaDev-sub001/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps - всё, что нужно маршрутам. Пустые поля заполняются значениями
// по умолчанию в SetupRoutes.
type Deps struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Log      *zap.Logger
	Profiles profile.Store
	Notifier notify.Notifier
	Courses  *courses.Catalog
}

func SetupRoutes(app *fiber.App, deps Deps) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	profiles := deps.Profiles
	if profiles == nil {
		profiles = profile.NewDBStore(deps.DB)
	}
	catalog := deps.Courses
	if catalog == nil {
		catalog = courses.DefaultCatalog()
	}

	// Сервисы
	progressTracker := progress.NewTracker(progress.NewDBStore(deps.DB), catalog)
	unlocker := activity.NewUnlocker(profiles, achievements.DefaultCatalog(), progressTracker, deps.Notifier, log)
	activityTracker := activity.NewTracker(activity.NewAccumulator(profiles), unlocker, log)
	roles := profile.NewRoleSync(profiles, deps.Cfg.AdminEmails, log)

	app.Get("/health", func(c *fiber.Ctx) error {
		return utils.Success(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})

	// Middleware
	authMiddleware := middleware.AuthMiddleware(deps.Cfg)
	adminMiddleware := middleware.AdminMiddleware(controllers.RoleResolver(roles))

	// User routes
	userController := controllers.NewUserController(profiles, activityTracker, roles)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Activity routes
	activityController := controllers.NewActivityController(activityTracker, roles)
	activityGroup := app.Group("/api/activity", authMiddleware)
	activityGroup.Post("/actions/:action", activityController.RecordAction)
	activityGroup.Post("/:kind", activityController.Track)

	// Achievements routes
	achievementsController := controllers.NewAchievementsController(unlocker.Catalog(), progressTracker.Catalog(), profiles, roles)
	achievementsGroup := app.Group("/api/achievements", authMiddleware)
	achievementsGroup.Get("/", achievementsController.GetAchievements)
	achievementsGroup.Get("/:id", achievementsController.GetAchievement)

	// Courses routes
	coursesController := controllers.NewCoursesController(progressTracker, activityTracker, roles)
	coursesGroup := app.Group("/api/courses", authMiddleware)
	coursesGroup.Get("/", coursesController.GetCourses)
	coursesGroup.Get("/progress", coursesController.GetAllProgress)
	coursesGroup.Get("/:language", coursesController.GetCourse)
	coursesGroup.Post("/:language/progress", coursesController.InitializeProgress)
	coursesGroup.Get("/:language/chapters/:chapterId/lessons/:lessonId/progress", coursesController.GetLessonProgress)
	coursesGroup.Post("/:language/chapters/:chapterId/lessons/:lessonId/progress", coursesController.UpdateLessonProgress)

	// Admin routes
	adminController := controllers.NewAdminController(profiles, progressTracker, unlocker)
	adminGroup := app.Group("/api/admin", authMiddleware, adminMiddleware)
	adminGroup.Get("/users/:uid", adminController.GetUser)
	// Profile API пишет только в профиль владельца токена
	if deps.Cfg.ProfileStore != config.ProfileStoreRemote {
		adminGroup.Post("/users/:uid/achievements/:id", adminController.GrantAchievement)
	}
}
