package progress

import (
	"fmt"

	"github.com/Koloda55SA/RaDev-sub001/backend/courses"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
)

type LessonState int

const (
	LessonLocked LessonState = iota
	LessonOpen
	LessonCompleted
)

func (s LessonState) String() string {
	switch s {
	case LessonLocked:
		return "locked"
	case LessonOpen:
		return "unlocked"
	case LessonCompleted:
		return "completed"
	}
	return fmt.Sprintf("LessonState(%d)", int(s))
}

func (s LessonState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StateOf classifies a lesson. A completed lesson stays completed even if an
// earlier lesson is somehow incomplete.
func StateOf(course *courses.Course, cp *CourseProgress, chapterIdx, lessonIdx int, role profile.Role) LessonState {
	if chapterIdx >= 0 && chapterIdx < len(course.Chapters) {
		ch := course.Chapters[chapterIdx]
		if lessonIdx >= 0 && lessonIdx < len(ch.Lessons) {
			if chp := cp.Chapter(ch.ID); chp != nil {
				if lp := chp.Lesson(ch.Lessons[lessonIdx].ID); lp != nil && lp.Completed {
					return LessonCompleted
				}
			}
		}
	}
	if LessonUnlocked(course, cp, chapterIdx, lessonIdx, role) {
		return LessonOpen
	}
	return LessonLocked
}

type LessonView struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	State     LessonState `json:"state"`
	Attempts  int         `json:"attempts"`
	TimeSpent int         `json:"timeSpent"`
}

type ChapterView struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Unlocked         bool         `json:"unlocked"`
	Completed        bool         `json:"completed"`
	CompletedLessons int          `json:"completedLessons"`
	TotalLessons     int          `json:"totalLessons"`
	Lessons          []LessonView `json:"lessons"`
}

// Roadmap is the per-user view of a course with gating applied.
type Roadmap struct {
	Language         courses.Language `json:"language"`
	Title            string           `json:"title"`
	Started          bool             `json:"started"`
	TotalLessons     int              `json:"totalLessons"`
	TotalCompleted   int              `json:"totalCompleted"`
	CurrentChapterID string           `json:"currentChapterId,omitempty"`
	CurrentLessonID  string           `json:"currentLessonId,omitempty"`
	Chapters         []ChapterView    `json:"chapters"`
}

// BuildRoadmap derives the roadmap from course and cp, which may be nil for a
// user who has not started the course. cp is expected to be recomputed.
func BuildRoadmap(course *courses.Course, cp *CourseProgress, role profile.Role) Roadmap {
	rm := Roadmap{
		Language:     course.Language,
		Title:        course.Title,
		Started:      cp != nil,
		TotalLessons: course.TotalLessons(),
		Chapters:     make([]ChapterView, 0, len(course.Chapters)),
	}
	if cp != nil {
		rm.TotalCompleted = cp.TotalCompleted
		rm.CurrentChapterID = cp.CurrentChapterID
		rm.CurrentLessonID = cp.CurrentLessonID
	}

	for ci, ch := range course.Chapters {
		view := ChapterView{
			ID:           ch.ID,
			Title:        ch.Title,
			Description:  ch.Description,
			Unlocked:     ChapterUnlocked(course, cp, ci, role),
			TotalLessons: len(ch.Lessons),
			Lessons:      make([]LessonView, 0, len(ch.Lessons)),
		}
		chp := cp.Chapter(ch.ID)
		if chp != nil {
			view.Completed = chp.Completed
		}
		for li, l := range ch.Lessons {
			lv := LessonView{ID: l.ID, Title: l.Title, State: StateOf(course, cp, ci, li, role)}
			if chp != nil {
				if lp := chp.Lesson(l.ID); lp != nil {
					lv.Attempts = lp.Attempts
					lv.TimeSpent = lp.TimeSpent
				}
			}
			if lv.State == LessonCompleted {
				view.CompletedLessons++
			}
			view.Lessons = append(view.Lessons, lv)
		}
		rm.Chapters = append(rm.Chapters, view)
	}
	return rm
}
