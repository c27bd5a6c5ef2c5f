package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Koloda55SA/RaDev-sub001/backend/config"
	"github.com/Koloda55SA/RaDev-sub001/backend/middleware"
	"github.com/Koloda55SA/RaDev-sub001/backend/notify"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/Koloda55SA/RaDev-sub001/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

type testServer struct {
	app      *fiber.App
	cfg      *config.Config
	recorder *notify.Recorder
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

type unlockedBody struct {
	Unlocked []struct {
		ID string `json:"id"`
	} `json:"unlocked"`
}

func (b unlockedBody) ids() []string {
	out := make([]string, 0, len(b.Unlocked))
	for _, a := range b.Unlocked {
		out = append(out, a.ID)
	}
	return out
}

// failingStore behaves like an unreachable Profile API.
type failingStore struct{}

func (failingStore) GetProfile(context.Context, string) (*profile.Profile, error) {
	return nil, fmt.Errorf("%w: connection refused", profile.ErrUnavailable)
}

func (failingStore) UpdateProfile(context.Context, string, profile.Update) error {
	return fmt.Errorf("%w: connection refused", profile.ErrUnavailable)
}

func (failingStore) CreateProfile(context.Context, *profile.Profile) error {
	return fmt.Errorf("%w: connection refused", profile.ErrUnavailable)
}

func newTestServer(t *testing.T, profiles profile.Store) *testServer {
	t.Helper()
	db, err := utils.OpenDB("sqlite", ":memory:", logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = utils.CloseDB(db) })

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		ProfileStore: config.ProfileStoreDatabase,
		AdminEmails:  []string{"admin@radev.dev"},
	}
	rec := &notify.Recorder{}

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(zap.NewNop())})
	app.Use(middleware.RequestIDMiddleware())
	SetupRoutes(app, Deps{DB: db, Cfg: cfg, Log: zap.NewNop(), Profiles: profiles, Notifier: rec})

	return &testServer{app: app, cfg: cfg, recorder: rec}
}

func (s *testServer) token(t *testing.T, uid, email string) string {
	t.Helper()
	token, err := utils.GenerateJWTToken(utils.Identity{UID: uid, Email: email}, s.cfg)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v), string(env.Data))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	status, env := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodGet, "/api/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = s.do(t, http.MethodPost, "/api/activity/code-run", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProfileCreatedOnFirstAccess(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodGet, "/api/user/profile", s.token(t, "u1", "Neo@Example.com"), nil)
	require.Equal(t, http.StatusOK, status)
	var p profile.Profile
	decode(t, env, &p)
	assert.Equal(t, "u1", p.UID)
	assert.Equal(t, "neo", p.Nickname)
	assert.Equal(t, profile.RoleUser, p.Role)
	assert.Empty(t, p.Achievements)

	status, env = s.do(t, http.MethodGet, "/api/user/profile", s.token(t, "a1", "admin@radev.dev"), nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, env, &p)
	assert.Equal(t, profile.RoleAdmin, p.Role)
}

func TestUpdateProfileUnlocksProfileAchievements(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, "u1", "neo@example.com")

	status, env := s.do(t, http.MethodPut, "/api/user/profile", token, map[string]string{
		"nickname": "the_one",
		"bio":      "Пишу на Go",
		"avatar":   "https://example.com/neo.png",
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	var resp struct {
		Profile profile.Profile `json:"profile"`
		unlockedBody
	}
	decode(t, env, &resp)
	assert.Equal(t, "the_one", resp.Profile.Nickname)
	assert.Equal(t, "Пишу на Go", resp.Profile.Bio)
	assert.Subset(t, resp.ids(), []string{"profile_complete", "bio_added", "avatar_uploaded"})
	assert.Subset(t, resp.Profile.Achievements, []string{"profile_complete", "bio_added", "avatar_uploaded"})

	status, env = s.do(t, http.MethodPut, "/api/user/profile", token, map[string]string{"bio": "ещё раз"})
	require.Equal(t, http.StatusOK, status)
	decode(t, env, &resp)
	assert.Empty(t, resp.ids())
}

func TestUpdateProfileValidation(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, "u1", "neo@example.com")

	status, env := s.do(t, http.MethodPut, "/api/user/profile", token, map[string]string{"nickname": "ab"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(env.Details), "nickname")

	status, _ = s.do(t, http.MethodPut, "/api/user/profile", token, map[string]string{"avatar": "not a url"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = s.do(t, http.MethodPut, "/api/user/profile", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTrackCodeRuns(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, "u1", "neo@example.com")

	for i := 1; i < 10; i++ {
		status, env := s.do(t, http.MethodPost, "/api/activity/code-run", token, nil)
		require.Equal(t, http.StatusAccepted, status)
		var body unlockedBody
		decode(t, env, &body)
		assert.NotContains(t, body.ids(), "run_code_10", "run %d", i)
	}

	status, env := s.do(t, http.MethodPost, "/api/activity/code-run", token, nil)
	require.Equal(t, http.StatusAccepted, status)
	var body unlockedBody
	decode(t, env, &body)
	assert.Contains(t, body.ids(), "run_code_10")

	status, env = s.do(t, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	var p profile.Profile
	decode(t, env, &p)
	assert.Equal(t, 10, p.Stats.CodeRuns)
	assert.Contains(t, p.Achievements, "run_code_10")

	var delivered []string
	for _, d := range s.recorder.Deliveries() {
		assert.Equal(t, "u1", d.UserID)
		delivered = append(delivered, d.Notification.ID)
	}
	assert.Contains(t, delivered, "run_code_10")
}

func TestTrackLoginAndActions(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, "u1", "neo@example.com")

	status, env := s.do(t, http.MethodPost, "/api/activity/login", token, nil)
	require.Equal(t, http.StatusAccepted, status)
	var body unlockedBody
	decode(t, env, &body)
	assert.Contains(t, body.ids(), "first_login")

	status, env = s.do(t, http.MethodPost, "/api/activity/actions/follow_user", token, nil)
	require.Equal(t, http.StatusAccepted, status)
	decode(t, env, &body)
	assert.Equal(t, []string{"first_follow"}, body.ids())

	status, _ = s.do(t, http.MethodPost, "/api/activity/actions/dance", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = s.do(t, http.MethodPost, "/api/activity/teleport", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTrackingSurvivesProfileStoreFailure(t *testing.T) {
	s := newTestServer(t, failingStore{})
	status, env := s.do(t, http.MethodPost, "/api/activity/code-run", s.token(t, "u1", "neo@example.com"), nil)
	assert.Equal(t, http.StatusAccepted, status)
	var body unlockedBody
	decode(t, env, &body)
	assert.Empty(t, body.ids())

	status, _ = s.do(t, http.MethodGet, "/api/user/profile", s.token(t, "u1", "neo@example.com"), nil)
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestCourseProgressSurvivesProfileStoreFailure(t *testing.T) {
	s := newTestServer(t, failingStore{})
	token := s.token(t, "u1", "neo@example.com")

	status, _ := s.do(t, http.MethodGet, "/api/courses/python", token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/courses/python/progress", token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/courses/progress", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := s.do(t, http.MethodPost, "/api/courses/python/chapters/basics/lessons/hello-world/progress", token,
		map[string]interface{}{"completed": true, "timeSpent": 2})
	require.Equal(t, http.StatusOK, status)
	var res struct {
		NewlyCompleted bool `json:"newlyCompleted"`
		unlockedBody
	}
	decode(t, env, &res)
	assert.True(t, res.NewlyCompleted)
	assert.Empty(t, res.ids())

	// the admin list still decides the role while profiles are unreachable
	status, env = s.do(t, http.MethodGet, "/api/courses/python", s.token(t, "a1", "admin@radev.dev"), nil)
	require.Equal(t, http.StatusOK, status)
	var course struct {
		Roadmap struct {
			Chapters []struct {
				Unlocked bool `json:"unlocked"`
			} `json:"chapters"`
		} `json:"roadmap"`
	}
	decode(t, env, &course)
	assert.True(t, course.Roadmap.Chapters[2].Unlocked)
}

func TestAchievements(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, "u1", "neo@example.com")
	s.do(t, http.MethodPost, "/api/activity/login", token, nil)

	status, env := s.do(t, http.MethodGet, "/api/achievements", token, nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Achievements []struct {
			Achievement struct {
				ID          string `json:"id"`
				Requirement struct {
					Type string `json:"type"`
				} `json:"requirement"`
			} `json:"achievement"`
			Unlocked bool `json:"unlocked"`
		} `json:"achievements"`
		Total    int `json:"total"`
		Unlocked int `json:"unlocked"`
	}
	decode(t, env, &list)
	assert.Equal(t, 21, list.Total)
	require.Len(t, list.Achievements, 21)
	assert.Equal(t, "first_login", list.Achievements[0].Achievement.ID)
	assert.Equal(t, "action", list.Achievements[0].Achievement.Requirement.Type)
	assert.True(t, list.Achievements[0].Unlocked)
	assert.False(t, list.Achievements[1].Unlocked)
	assert.GreaterOrEqual(t, list.Unlocked, 1)

	status, _ = s.do(t, http.MethodGet, "/api/achievements/run_code_10", token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/achievements/chapter_complete_python_control-flow", token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/achievements/chapter_complete_python_missing", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.do(t, http.MethodGet, "/api/achievements/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCourses(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, "u1", "neo@example.com")

	status, env := s.do(t, http.MethodGet, "/api/courses", token, nil)
	require.Equal(t, http.StatusOK, status)
	var list []struct {
		Language     string `json:"language"`
		TotalLessons int    `json:"totalLessons"`
	}
	decode(t, env, &list)
	require.Len(t, list, 5)
	assert.Equal(t, "python", list[0].Language)
	assert.Equal(t, 7, list[0].TotalLessons)

	status, env = s.do(t, http.MethodGet, "/api/courses/Python", token, nil)
	require.Equal(t, http.StatusOK, status)
	var course struct {
		Roadmap struct {
			Started  bool `json:"started"`
			Chapters []struct {
				Unlocked bool `json:"unlocked"`
				Lessons  []struct {
					State string `json:"state"`
				} `json:"lessons"`
			} `json:"chapters"`
		} `json:"roadmap"`
	}
	decode(t, env, &course)
	assert.False(t, course.Roadmap.Started)
	assert.Equal(t, "unlocked", course.Roadmap.Chapters[0].Lessons[0].State)
	assert.Equal(t, "locked", course.Roadmap.Chapters[0].Lessons[1].State)
	assert.False(t, course.Roadmap.Chapters[1].Unlocked)

	status, _ = s.do(t, http.MethodGet, "/api/courses/cobol", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLessonProgressFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, "u1", "neo@example.com")
	lesson := func(chapter, id string) string {
		return "/api/courses/python/chapters/" + chapter + "/lessons/" + id + "/progress"
	}
	type result struct {
		Lesson struct {
			Completed bool `json:"completed"`
			Attempts  int  `json:"attempts"`
			TimeSpent int  `json:"timeSpent"`
		} `json:"lesson"`
		NewlyCompleted   bool `json:"newlyCompleted"`
		ChapterCompleted bool `json:"chapterCompleted"`
		unlockedBody
	}

	status, _ := s.do(t, http.MethodGet, lesson("basics", "hello-world"), token, nil)
	assert.Equal(t, http.StatusNotFound, status, "course not started yet")

	status, _ = s.do(t, http.MethodPost, lesson("basics", "variables"), token, map[string]interface{}{"completed": true})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPost, lesson("basics", "hello-world"), token, map[string]interface{}{"timeSpent": -3})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env := s.do(t, http.MethodPost, lesson("basics", "hello-world"), token, map[string]interface{}{"completed": false, "timeSpent": 4})
	require.Equal(t, http.StatusOK, status)
	var res result
	decode(t, env, &res)
	assert.Equal(t, 1, res.Lesson.Attempts)
	assert.False(t, res.NewlyCompleted)
	assert.Empty(t, res.ids())

	status, env = s.do(t, http.MethodPost, lesson("basics", "hello-world"), token, map[string]interface{}{"completed": true, "timeSpent": 6})
	require.Equal(t, http.StatusOK, status)
	decode(t, env, &res)
	assert.True(t, res.NewlyCompleted)
	assert.Equal(t, 2, res.Lesson.Attempts)
	assert.Equal(t, 10, res.Lesson.TimeSpent)
	assert.Contains(t, res.ids(), "first_course_lesson_complete")

	for _, id := range []string{"variables", "types"} {
		status, env = s.do(t, http.MethodPost, lesson("basics", id), token, map[string]interface{}{"completed": true, "timeSpent": 1})
		require.Equal(t, http.StatusOK, status, id)
	}
	decode(t, env, &res)
	assert.True(t, res.ChapterCompleted)
	assert.Contains(t, res.ids(), "chapter_complete_python_basics")

	status, env = s.do(t, http.MethodGet, lesson("basics", "hello-world"), token, nil)
	require.Equal(t, http.StatusOK, status)
	var lp struct {
		Completed bool `json:"completed"`
		Attempts  int  `json:"attempts"`
	}
	decode(t, env, &lp)
	assert.True(t, lp.Completed)
	assert.Equal(t, 2, lp.Attempts)

	status, env = s.do(t, http.MethodGet, "/api/courses/progress", token, nil)
	require.Equal(t, http.StatusOK, status)
	var all map[string]struct {
		TotalCompleted int `json:"totalCompleted"`
	}
	decode(t, env, &all)
	assert.Equal(t, 3, all["python"].TotalCompleted)

	status, env = s.do(t, http.MethodGet, "/api/achievements", token, nil)
	require.Equal(t, http.StatusOK, status)
	var achievementsResp struct {
		Chapters []struct {
			Achievement struct {
				ID string `json:"id"`
			} `json:"achievement"`
		} `json:"chapters"`
	}
	decode(t, env, &achievementsResp)
	require.Len(t, achievementsResp.Chapters, 1)
	assert.Equal(t, "chapter_complete_python_basics", achievementsResp.Chapters[0].Achievement.ID)
}

func TestInitializeProgress(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, "u1", "neo@example.com")

	status, env := s.do(t, http.MethodPost, "/api/courses/java/progress", token, nil)
	require.Equal(t, http.StatusOK, status)
	var cp struct {
		Language     string `json:"language"`
		TotalLessons int    `json:"totalLessons"`
		Chapters     []struct {
			ChapterID string `json:"chapterId"`
		} `json:"chapters"`
	}
	decode(t, env, &cp)
	assert.Equal(t, "java", cp.Language)
	assert.Equal(t, 5, cp.TotalLessons)
	assert.Len(t, cp.Chapters, 2)

	status, _ = s.do(t, http.MethodPost, "/api/courses/java/progress", token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	user := s.token(t, "u1", "neo@example.com")
	admin := s.token(t, "a1", "admin@radev.dev")

	s.do(t, http.MethodGet, "/api/user/profile", user, nil)

	status, _ := s.do(t, http.MethodGet, "/api/admin/users/u1", user, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := s.do(t, http.MethodGet, "/api/admin/users/u1", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var resp struct {
		Profile profile.Profile `json:"profile"`
	}
	decode(t, env, &resp)
	assert.Equal(t, "u1", resp.Profile.UID)

	status, env = s.do(t, http.MethodPost, "/api/admin/users/u1/achievements/login_100", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var granted struct {
		Granted bool `json:"granted"`
	}
	decode(t, env, &granted)
	assert.True(t, granted.Granted)

	status, env = s.do(t, http.MethodPost, "/api/admin/users/u1/achievements/login_100", admin, nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, env, &granted)
	assert.False(t, granted.Granted)

	status, _ = s.do(t, http.MethodPost, "/api/admin/users/ghost/achievements/login_100", admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.do(t, http.MethodGet, "/api/admin/users/ghost", admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
