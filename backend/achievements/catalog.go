package achievements

import (
	"fmt"
	"time"

	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
)

// EarlyUserCutoff is the registration date before which accounts earn early_user.
var EarlyUserCutoff = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// Catalog is an immutable, ordered set of achievement definitions.
type Catalog struct {
	list []Achievement
	byID map[string]int
}

// NewCatalog validates the definitions and freezes them. IDs must be unique
// and every requirement must be usable by the evaluator.
func NewCatalog(defs ...Achievement) (*Catalog, error) {
	c := &Catalog{
		list: make([]Achievement, 0, len(defs)),
		byID: make(map[string]int, len(defs)),
	}
	for _, a := range defs {
		if a.ID == "" {
			return nil, fmt.Errorf("achievement without id")
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("achievement %s: duplicate id", a.ID)
		}
		if err := validateRequirement(a.Requirement); err != nil {
			return nil, fmt.Errorf("achievement %s: %w", a.ID, err)
		}
		c.byID[a.ID] = len(c.list)
		c.list = append(c.list, a)
	}
	return c, nil
}

func validateRequirement(r Requirement) error {
	switch req := r.(type) {
	case StatRequirement:
		if _, ok := profile.ParseStatName(string(req.Stat)); !ok {
			return fmt.Errorf("unknown stat %q", req.Stat)
		}
		if req.Threshold <= 0 {
			return fmt.Errorf("stat threshold must be positive, got %d", req.Threshold)
		}
	case ActionRequirement:
		if req.Action == ActionNone {
			return fmt.Errorf("empty action")
		}
	case CourseRequirement:
		if req.Language == "" || req.ChapterID == "" {
			return fmt.Errorf("course requirement needs language and chapter")
		}
	case CustomRequirement:
		if req.Predicate == nil {
			return fmt.Errorf("custom requirement without predicate")
		}
	case nil:
		return fmt.Errorf("missing requirement")
	default:
		return fmt.Errorf("unsupported requirement %T", r)
	}
	return nil
}

// All returns the definitions in catalog order. The slice is a copy.
func (c *Catalog) All() []Achievement {
	return append([]Achievement(nil), c.list...)
}

func (c *Catalog) Get(id string) (Achievement, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Achievement{}, false
	}
	return c.list[i], true
}

func (c *Catalog) Len() int { return len(c.list) }

// DefaultCatalog returns the built-in achievement set.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultDefinitions()...)
	if err != nil {
		panic(err)
	}
	return c
}

func defaultDefinitions() []Achievement {
	stat := func(name profile.StatName, n int) Requirement { return StatRequirement{Stat: name, Threshold: n} }
	action := func(a Action) Requirement { return ActionRequirement{Action: a} }
	custom := func(p Predicate) Requirement { return CustomRequirement{Predicate: p} }

	return []Achievement{
		// активность
		{"first_login", "Первый шаг", "Войдите в систему", "👋", CategoryActivity, action(ActionLogin)},
		{"view_10_projects", "Любознательный", "Просмотрите 10 проектов", "👀", CategoryActivity, stat(profile.ProjectsViewed, 10)},
		{"view_50_projects", "Исследователь", "Просмотрите 50 проектов", "🔍", CategoryActivity, stat(profile.ProjectsViewed, 50)},
		{"read_10_posts", "Читатель", "Прочитайте 10 статей в блоге", "📖", CategoryActivity, stat(profile.BlogPostsRead, 10)},
		{"read_50_posts", "Книжный червь", "Прочитайте 50 статей в блоге", "📚", CategoryActivity, stat(profile.BlogPostsRead, 50)},
		{"run_code_10", "Программист", "Запустите код 10 раз", "💻", CategoryActivity, stat(profile.CodeRuns, 10)},
		{"run_code_100", "Мастер кода", "Запустите код 100 раз", "🚀", CategoryActivity, stat(profile.CodeRuns, 100)},
		{"send_message", "Общительный", "Отправьте первое сообщение", "💬", CategoryActivity, stat(profile.MessagesSent, 1)},
		{"send_50_messages", "Болтун", "Отправьте 50 сообщений", "🗣️", CategoryActivity, stat(profile.MessagesSent, 50)},

		// вехи
		{"login_10", "Постоянный посетитель", "Войдите 10 раз", "⭐", CategoryMilestone, stat(profile.LoginCount, 10)},
		{"login_100", "Верный пользователь", "Войдите 100 раз", "🌟", CategoryMilestone, stat(profile.LoginCount, 100)},

		// курсы; достижения за главы строятся через ChapterAchievement
		{"first_course_lesson_complete", "Первый урок", "Завершите первый урок курса", "🎯", CategoryCourse, action(ActionCompleteLesson)},

		// специальные
		{"early_user", "Пионер", "Один из первых пользователей", "🎖️", CategorySpecial, custom(RegisteredBefore{Cutoff: EarlyUserCutoff})},
		{"profile_complete", "Завершенный профиль", "Настройте свой профиль", "✅", CategorySpecial, action(ActionUpdateProfile)},
		{"first_follow", "Социальный", "Подпишитесь на первого пользователя", "👥", CategoryActivity, action(ActionFollowUser)},
		{"get_10_followers", "Популярный", "Получите 10 подписчиков", "⭐", CategoryMilestone, custom(FollowerCountAtLeast(10))},
		{"send_100_messages", "Активный собеседник", "Отправьте 100 сообщений", "💬", CategoryActivity, stat(profile.MessagesSent, 100)},
		{"complete_5_courses", "Ученик", "Завершите 5 курсов", "📚", CategoryCourse, custom(CoursesCompletedAtLeast(5))},
		{"like_10_profiles", "Дружелюбный", "Поставьте лайки 10 профилям", "❤️", CategoryActivity, custom(ProfilesLikedAtLeast(10))},
		{"bio_added", "Рассказчик", "Добавьте биографию в профиль", "📝", CategorySpecial, action(ActionAddBio)},
		{"avatar_uploaded", "С фотографией", "Загрузите аватарку", "📷", CategorySpecial, action(ActionUploadAvatar)},
	}
}
