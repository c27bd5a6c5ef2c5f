package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Koloda55SA/RaDev-sub001/backend/courses"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
)

var (
	ErrCourseNotFound  = courses.ErrCourseNotFound
	ErrChapterNotFound = errors.New("chapter not found")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrLessonLocked    = errors.New("lesson is locked")
	ErrNoProgress      = errors.New("course not started")
	ErrInvalidTime     = errors.New("time spent must not be negative")
)

// LessonResult describes the outcome of a lesson update.
type LessonResult struct {
	Lesson           LessonProgress   `json:"lesson"`
	NewlyCompleted   bool             `json:"newlyCompleted"`
	ChapterCompleted bool             `json:"chapterCompleted"`
	Chapter          *courses.Chapter `json:"-"`
	Course           *CourseProgress  `json:"-"`
}

// Tracker owns the course progress rules on top of a Store.
type Tracker struct {
	store   Store
	catalog *courses.Catalog
	now     func() time.Time
}

func NewTracker(store Store, catalog *courses.Catalog) *Tracker {
	return &Tracker{store: store, catalog: catalog, now: func() time.Time { return time.Now().UTC() }}
}

func (t *Tracker) Catalog() *courses.Catalog { return t.catalog }

// InitializeCourseProgress creates the user's record for language if it does
// not exist yet and returns the current record either way.
func (t *Tracker) InitializeCourseProgress(ctx context.Context, uid string, language courses.Language) (*CourseProgress, error) {
	course, err := t.catalog.GetCourse(language)
	if err != nil {
		return nil, err
	}

	cp, err := t.load(ctx, uid, course)
	if err == nil {
		return cp, nil
	}
	if !errors.Is(err, ErrNoProgress) {
		return nil, err
	}

	cp = NewCourseProgress(course, t.now())
	if _, err := t.store.CreateCourseProgress(ctx, uid, cp); err != nil {
		return nil, err
	}
	// a concurrent initializer may have won; read back what is stored
	return t.load(ctx, uid, course)
}

// GetUserCourseProgress returns every started course of the user keyed by
// language. Records for languages missing from the catalog are skipped.
func (t *Tracker) GetUserCourseProgress(ctx context.Context, uid string) (map[courses.Language]*CourseProgress, error) {
	list, err := t.store.ListCourseProgress(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make(map[courses.Language]*CourseProgress, len(list))
	for _, cp := range list {
		course, err := t.catalog.GetCourse(cp.Language)
		if err != nil {
			continue
		}
		Recompute(course, cp)
		out[course.Language] = cp
	}
	return out, nil
}

// GetCourseProgress returns ErrNoProgress when the course was never started.
func (t *Tracker) GetCourseProgress(ctx context.Context, uid string, language courses.Language) (*CourseProgress, error) {
	course, err := t.catalog.GetCourse(language)
	if err != nil {
		return nil, err
	}
	return t.load(ctx, uid, course)
}

// UpdateLessonProgress records an attempt at a lesson. Attempts grow unless
// an already completed lesson is completed again, time accumulates, and
// completion happens once and is never undone. Locked lessons are rejected
// for non-admins. A course that was never started is initialized first.
func (t *Tracker) UpdateLessonProgress(ctx context.Context, uid string, role profile.Role, language courses.Language, chapterID, lessonID string, completed bool, timeSpent int) (*LessonResult, error) {
	if timeSpent < 0 {
		return nil, ErrInvalidTime
	}
	course, ci, li, err := t.locate(language, chapterID, lessonID)
	if err != nil {
		return nil, err
	}

	cp, err := t.InitializeCourseProgress(ctx, uid, course.Language)
	if err != nil {
		return nil, err
	}
	if !LessonUnlocked(course, cp, ci, li, role) {
		return nil, fmt.Errorf("%w: %s/%s/%s", ErrLessonLocked, course.Language, chapterID, lessonID)
	}

	chp := &cp.Chapters[ci]
	lp := &chp.Lessons[li]
	chapterWasComplete := chp.Completed
	now := t.now()

	if !completed || !lp.Completed {
		lp.Attempts++
	}
	lp.TimeSpent += timeSpent

	result := &LessonResult{Chapter: &course.Chapters[ci], Course: cp}
	if completed && !lp.Completed {
		lp.Completed = true
		lp.CompletedAt = &now
		result.NewlyCompleted = true
	}

	cp.CurrentChapterID = chapterID
	cp.CurrentLessonID = lessonID
	cp.LastAccessedAt = now
	Recompute(course, cp)

	result.Lesson = cp.Chapters[ci].Lessons[li]
	result.ChapterCompleted = !chapterWasComplete && cp.Chapters[ci].Completed

	if err := t.store.SaveLesson(ctx, uid, cp, chapterID, result.Lesson); err != nil {
		return nil, err
	}
	return result, nil
}

// GetLessonProgress returns the lesson entry; untouched lessons come back
// zeroed. ErrNoProgress means the course was never started.
func (t *Tracker) GetLessonProgress(ctx context.Context, uid string, language courses.Language, chapterID, lessonID string) (*LessonProgress, error) {
	course, ci, li, err := t.locate(language, chapterID, lessonID)
	if err != nil {
		return nil, err
	}
	cp, err := t.load(ctx, uid, course)
	if err != nil {
		return nil, err
	}
	lp := cp.Chapters[ci].Lessons[li]
	return &lp, nil
}

// CompletedCourses counts courses whose every lesson is completed.
func (t *Tracker) CompletedCourses(ctx context.Context, uid string) (int, error) {
	all, err := t.GetUserCourseProgress(ctx, uid)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, cp := range all {
		if cp.IsComplete() {
			n++
		}
	}
	return n, nil
}

// Roadmap returns the gated course view for the user. A course the user has
// not started is shown with only its first chapter and lesson open.
func (t *Tracker) Roadmap(ctx context.Context, uid string, role profile.Role, language courses.Language) (*Roadmap, error) {
	course, err := t.catalog.GetCourse(language)
	if err != nil {
		return nil, err
	}
	cp, err := t.load(ctx, uid, course)
	if err != nil && !errors.Is(err, ErrNoProgress) {
		return nil, err
	}
	rm := BuildRoadmap(course, cp, role)
	return &rm, nil
}

func (t *Tracker) load(ctx context.Context, uid string, course *courses.Course) (*CourseProgress, error) {
	cp, err := t.store.GetCourseProgress(ctx, uid, course.Language)
	if err != nil {
		return nil, err
	}
	Recompute(course, cp)
	return cp, nil
}

func (t *Tracker) locate(language courses.Language, chapterID, lessonID string) (*courses.Course, int, int, error) {
	course, err := t.catalog.GetCourse(language)
	if err != nil {
		return nil, 0, 0, err
	}
	ci := course.ChapterIndex(chapterID)
	if ci < 0 {
		return nil, 0, 0, fmt.Errorf("%w: %s/%s", ErrChapterNotFound, course.Language, chapterID)
	}
	li := course.Chapters[ci].LessonIndex(lessonID)
	if li < 0 {
		return nil, 0, 0, fmt.Errorf("%w: %s/%s/%s", ErrLessonNotFound, course.Language, chapterID, lessonID)
	}
	return course, ci, li, nil
}
