package progress

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Koloda55SA/RaDev-sub001/backend/courses"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCourse() *courses.Course {
	return &courses.Course{
		Language: "go",
		Title:    "Go",
		Chapters: []courses.Chapter{
			{ID: "intro", Title: "Intro", Lessons: []courses.Lesson{{ID: "A"}, {ID: "B"}, {ID: "C"}}},
			{ID: "types", Title: "Types", Lessons: []courses.Lesson{{ID: "D"}}},
			{ID: "funcs", Title: "Funcs", Lessons: []courses.Lesson{{ID: "E"}}},
			{ID: "soon", Title: "Soon"},
		},
	}
}

func complete(cp *CourseProgress, chapterID string, lessonIDs ...string) {
	ch := cp.Chapter(chapterID)
	for _, id := range lessonIDs {
		ch.Lesson(id).Completed = true
	}
}

func TestNewCourseProgress(t *testing.T) {
	course := testCourse()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	cp := NewCourseProgress(course, now)

	require.Len(t, cp.Chapters, 4)
	assert.Equal(t, "intro", cp.Chapters[0].ChapterID)
	assert.Len(t, cp.Chapters[0].Lessons, 3)
	assert.Equal(t, 5, cp.TotalLessons)
	assert.Equal(t, 0, cp.TotalCompleted)
	assert.Equal(t, now, cp.StartedAt)
	for _, ch := range cp.Chapters {
		assert.False(t, ch.Completed, ch.ChapterID)
	}
}

func TestLessonGatingWithinChapter(t *testing.T) {
	course := testCourse()
	cp := NewCourseProgress(course, time.Now())

	assert.True(t, LessonUnlocked(course, cp, 0, 0, profile.RoleUser))
	assert.False(t, LessonUnlocked(course, cp, 0, 1, profile.RoleUser))
	assert.False(t, LessonUnlocked(course, cp, 0, 2, profile.RoleUser))

	complete(cp, "intro", "A")
	assert.True(t, LessonUnlocked(course, cp, 0, 1, profile.RoleUser))
	assert.False(t, LessonUnlocked(course, cp, 0, 2, profile.RoleUser))

	complete(cp, "intro", "B")
	assert.True(t, LessonUnlocked(course, cp, 0, 2, profile.RoleUser))
}

func TestAdminBypassesGating(t *testing.T) {
	course := testCourse()

	for ci, ch := range course.Chapters {
		assert.True(t, ChapterUnlocked(course, nil, ci, profile.RoleAdmin))
		for li := range ch.Lessons {
			assert.True(t, LessonUnlocked(course, nil, ci, li, profile.RoleAdmin))
		}
	}
}

func TestChapterGatingReadsStoredFlag(t *testing.T) {
	course := testCourse()
	cp := NewCourseProgress(course, time.Now())

	// every lesson done but the chapter flag was not refreshed
	complete(cp, "intro", "A", "B", "C")
	assert.False(t, cp.Chapter("intro").Completed)
	assert.False(t, ChapterUnlocked(course, cp, 1, profile.RoleUser))

	Recompute(course, cp)
	assert.True(t, cp.Chapter("intro").Completed)
	assert.True(t, ChapterUnlocked(course, cp, 1, profile.RoleUser))
	assert.True(t, LessonUnlocked(course, cp, 1, 0, profile.RoleUser))
	assert.False(t, ChapterUnlocked(course, cp, 2, profile.RoleUser))
}

func TestNoProgressRecordLocksEverythingButFirst(t *testing.T) {
	course := testCourse()

	assert.True(t, ChapterUnlocked(course, nil, 0, profile.RoleUser))
	assert.True(t, LessonUnlocked(course, nil, 0, 0, profile.RoleUser))
	assert.False(t, LessonUnlocked(course, nil, 0, 1, profile.RoleUser))
	assert.False(t, ChapterUnlocked(course, nil, 1, profile.RoleUser))
	assert.False(t, ChapterUnlocked(course, nil, 2, profile.RoleUser))
	assert.False(t, ChapterUnlocked(course, nil, 3, profile.RoleUser))
}

func TestZeroLessonChapterNeverCompletes(t *testing.T) {
	course := testCourse()
	cp := NewCourseProgress(course, time.Now())
	complete(cp, "intro", "A", "B", "C")
	complete(cp, "types", "D")
	complete(cp, "funcs", "E")
	Recompute(course, cp)

	assert.False(t, cp.Chapter("soon").Completed)
	assert.True(t, ChapterUnlocked(course, cp, 3, profile.RoleUser))
	assert.Equal(t, 5, cp.TotalCompleted)
	assert.True(t, cp.IsComplete())
}

func TestChapterOrderFollowsCourseNotStorage(t *testing.T) {
	course := testCourse()
	done := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	cp := &CourseProgress{
		Language: "go",
		Chapters: []ChapterProgress{
			{ChapterID: "types", Lessons: []LessonProgress{{LessonID: "D"}}},
			{ChapterID: "removed", Lessons: []LessonProgress{{LessonID: "Z", Completed: true}}},
			{ChapterID: "intro", Lessons: []LessonProgress{
				{LessonID: "C", Completed: true, CompletedAt: &done},
				{LessonID: "A", Completed: true},
				{LessonID: "B", Completed: true},
			}},
		},
	}
	Recompute(course, cp)

	ids := []string{}
	for _, ch := range cp.Chapters {
		ids = append(ids, ch.ChapterID)
	}
	assert.Equal(t, []string{"intro", "types", "funcs", "soon"}, ids)
	assert.Equal(t, "A", cp.Chapters[0].Lessons[0].LessonID)
	assert.True(t, cp.Chapters[0].Completed)
	assert.Equal(t, &done, cp.Chapters[0].CompletedAt)
	assert.Equal(t, 3, cp.TotalCompleted, "entries outside the course do not count")

	// the second chapter of the course is "types", whatever the stored order was
	assert.True(t, ChapterUnlocked(course, cp, 1, profile.RoleUser))
	assert.False(t, ChapterUnlocked(course, cp, 2, profile.RoleUser))
}

func TestOutOfRangeIndexesAreLocked(t *testing.T) {
	course := testCourse()
	assert.False(t, ChapterUnlocked(course, nil, -1, profile.RoleAdmin))
	assert.False(t, ChapterUnlocked(course, nil, 9, profile.RoleAdmin))
	assert.False(t, LessonUnlocked(course, nil, 0, 7, profile.RoleAdmin))
}

func TestBuildRoadmap(t *testing.T) {
	course := testCourse()
	cp := NewCourseProgress(course, time.Now())
	complete(cp, "intro", "A")
	cp.Chapter("intro").Lesson("A").Attempts = 2
	Recompute(course, cp)

	rm := BuildRoadmap(course, cp, profile.RoleUser)
	assert.True(t, rm.Started)
	assert.Equal(t, 5, rm.TotalLessons)
	assert.Equal(t, 1, rm.TotalCompleted)

	intro := rm.Chapters[0]
	assert.True(t, intro.Unlocked)
	assert.Equal(t, 1, intro.CompletedLessons)
	assert.Equal(t, []LessonState{LessonCompleted, LessonOpen, LessonLocked},
		[]LessonState{intro.Lessons[0].State, intro.Lessons[1].State, intro.Lessons[2].State})
	assert.Equal(t, 2, intro.Lessons[0].Attempts)
	assert.False(t, rm.Chapters[1].Unlocked)
	assert.Equal(t, LessonLocked, rm.Chapters[1].Lessons[0].State)

	data, err := json.Marshal(intro.Lessons[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state":"completed"`)
}

func TestBuildRoadmapWithoutProgress(t *testing.T) {
	course := testCourse()
	rm := BuildRoadmap(course, nil, profile.RoleUser)

	assert.False(t, rm.Started)
	assert.Equal(t, LessonOpen, rm.Chapters[0].Lessons[0].State)
	assert.Equal(t, LessonLocked, rm.Chapters[0].Lessons[1].State)
	assert.False(t, rm.Chapters[1].Unlocked)

	admin := BuildRoadmap(course, nil, profile.RoleAdmin)
	assert.Equal(t, LessonOpen, admin.Chapters[2].Lessons[0].State)
}

func TestLessonStateString(t *testing.T) {
	assert.Equal(t, "locked", LessonLocked.String())
	assert.Equal(t, "unlocked", LessonOpen.String())
	assert.Equal(t, "LessonState(7)", LessonState(7).String())
}
