package achievements

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, 21, c.Len())

	a, ok := c.Get("run_code_10")
	require.True(t, ok)
	assert.Equal(t, StatRequirement{Stat: profile.CodeRuns, Threshold: 10}, a.Requirement)

	_, ok = c.Get("nope")
	assert.False(t, ok)
}

func TestCatalogAllIsACopy(t *testing.T) {
	c := DefaultCatalog()
	all := c.All()
	all[0].ID = "changed"

	a, ok := c.Get("first_login")
	require.True(t, ok)
	assert.Equal(t, "first_login", a.ID)
	assert.Equal(t, "first_login", c.All()[0].ID)
}

func TestNewCatalogValidation(t *testing.T) {
	ok := Achievement{ID: "a", Requirement: ActionRequirement{Action: ActionLogin}}

	_, err := NewCatalog(ok, ok)
	assert.Error(t, err, "duplicate id")

	_, err = NewCatalog(Achievement{ID: "b", Requirement: StatRequirement{Stat: "likes", Threshold: 1}})
	assert.Error(t, err, "unknown stat")

	_, err = NewCatalog(Achievement{ID: "c", Requirement: StatRequirement{Stat: profile.CodeRuns}})
	assert.Error(t, err, "zero threshold")

	_, err = NewCatalog(Achievement{ID: "d"})
	assert.Error(t, err, "missing requirement")

	_, err = NewCatalog(Achievement{ID: "e", Requirement: CustomRequirement{}})
	assert.Error(t, err, "missing predicate")

	_, err = NewCatalog(ok)
	assert.NoError(t, err)
}

func TestCheckAchievementsThresholdBoundary(t *testing.T) {
	c := DefaultCatalog()

	ids := CheckAchievements(c, profile.Stats{CodeRuns: 9}, ActionNone)
	assert.NotContains(t, ids, "run_code_10")

	ids = CheckAchievements(c, profile.Stats{CodeRuns: 10}, ActionNone)
	assert.Contains(t, ids, "run_code_10")
	assert.NotContains(t, ids, "run_code_100")
}

func TestCheckAchievementsCodeRunsProgression(t *testing.T) {
	c := DefaultCatalog()

	assert.Empty(t, CheckAchievements(c, profile.Stats{CodeRuns: 9}, ActionNone))
	assert.Equal(t, []string{"run_code_10"}, CheckAchievements(c, profile.Stats{CodeRuns: 10}, ActionNone))
	assert.Equal(t, []string{"run_code_10", "run_code_100"}, CheckAchievements(c, profile.Stats{CodeRuns: 100}, ActionNone))
}

func TestCheckAchievementsActions(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, []string{"first_login"}, CheckAchievements(c, profile.Stats{}, ActionLogin))
	assert.Equal(t, []string{"first_course_lesson_complete"}, CheckAchievements(c, profile.Stats{}, ActionCompleteLesson))
	assert.Equal(t, []string{"first_follow"}, CheckAchievements(c, profile.Stats{}, ActionFollowUser))
	assert.Empty(t, CheckAchievements(c, profile.Stats{}, "dance"))
}

func TestCheckAchievementsIsIdempotent(t *testing.T) {
	c := DefaultCatalog()
	stats := profile.Stats{ProjectsViewed: 55, MessagesSent: 1, LoginCount: 10}

	first := CheckAchievements(c, stats, ActionLogin)
	second := CheckAchievements(c, stats, ActionLogin)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"first_login", "view_10_projects", "view_50_projects", "send_message", "login_10"}, first)
}

func TestCheckAchievementsSkipsCustomAndCourse(t *testing.T) {
	c, err := NewCatalog(
		Achievement{ID: "custom", Requirement: CustomRequirement{Predicate: FollowerCountAtLeast(0)}},
		Achievement{ID: "course", Requirement: CourseRequirement{Language: "python", ChapterID: "basics"}},
	)
	require.NoError(t, err)

	assert.Empty(t, CheckAchievements(c, profile.Stats{CodeRuns: 1000}, ActionLogin))
}

func TestCheckCustom(t *testing.T) {
	c := DefaultCatalog()

	assert.Empty(t, CheckCustom(c, Facts{Followers: 9, CoursesCompleted: 4, ProfilesLiked: 9}))

	ids := CheckCustom(c, Facts{
		Followers:        10,
		CoursesCompleted: 5,
		ProfilesLiked:    10,
		RegisteredAt:     EarlyUserCutoff.Add(-time.Hour),
	})
	assert.Equal(t, []string{"early_user", "get_10_followers", "complete_5_courses", "like_10_profiles"}, ids)
}

func TestRegisteredBefore(t *testing.T) {
	p := RegisteredBefore{Cutoff: EarlyUserCutoff}
	assert.False(t, p.Holds(Facts{}))
	assert.False(t, p.Holds(Facts{RegisteredAt: EarlyUserCutoff}))
	assert.True(t, p.Holds(Facts{RegisteredAt: EarlyUserCutoff.Add(-time.Second)}))
}

func TestChapterAchievement(t *testing.T) {
	a := ChapterAchievement("python", "basics", "Основы")
	assert.Equal(t, "chapter_complete_python_basics", a.ID)
	assert.Equal(t, "🐍", a.Icon)
	assert.Equal(t, CategoryCourse, a.Category)
	assert.Equal(t, CourseRequirement{Language: "python", ChapterID: "basics"}, a.Requirement)

	assert.Equal(t, "🏆", ChapterAchievement("go", "x", "X").Icon)
}

func TestParseChapterAchievementID(t *testing.T) {
	lang, chapter, ok := ParseChapterAchievementID("chapter_complete_cpp_smart_pointers")
	require.True(t, ok)
	assert.Equal(t, "cpp", lang)
	assert.Equal(t, "smart_pointers", chapter)

	_, _, ok = ParseChapterAchievementID("first_login")
	assert.False(t, ok)
	_, _, ok = ParseChapterAchievementID("chapter_complete_python")
	assert.False(t, ok)
}

func TestAchievementMarshalJSON(t *testing.T) {
	a, ok := DefaultCatalog().Get("view_10_projects")
	require.True(t, ok)

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "view_10_projects", decoded["id"])
	req := decoded["requirement"].(map[string]interface{})
	assert.Equal(t, "stat", req["type"])
	assert.Equal(t, "projectsViewed", req["statName"])
	assert.Equal(t, float64(10), req["value"])
}
