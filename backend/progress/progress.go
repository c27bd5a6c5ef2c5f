package progress

import (
	"time"

	"github.com/Koloda55SA/RaDev-sub001/backend/courses"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
)

type LessonProgress struct {
	LessonID    string     `json:"lessonId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Attempts    int        `json:"attempts"`
	TimeSpent   int        `json:"timeSpent"` // minutes
}

type ChapterProgress struct {
	ChapterID   string           `json:"chapterId"`
	Lessons     []LessonProgress `json:"lessons"`
	Completed   bool             `json:"completed"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
}

func (ch *ChapterProgress) Lesson(lessonID string) *LessonProgress {
	for i := range ch.Lessons {
		if ch.Lessons[i].LessonID == lessonID {
			return &ch.Lessons[i]
		}
	}
	return nil
}

// CourseProgress is one user's state in one course.
type CourseProgress struct {
	Language         courses.Language  `json:"language"`
	Chapters         []ChapterProgress `json:"chapters"`
	CurrentChapterID string            `json:"currentChapterId,omitempty"`
	CurrentLessonID  string            `json:"currentLessonId,omitempty"`
	TotalCompleted   int               `json:"totalCompleted"`
	TotalLessons     int               `json:"totalLessons"`
	StartedAt        time.Time         `json:"startedAt"`
	LastAccessedAt   time.Time         `json:"lastAccessedAt"`
}

func (cp *CourseProgress) Chapter(chapterID string) *ChapterProgress {
	if cp == nil {
		return nil
	}
	for i := range cp.Chapters {
		if cp.Chapters[i].ChapterID == chapterID {
			return &cp.Chapters[i]
		}
	}
	return nil
}

// IsComplete reports whether every lesson of a non-empty course is done.
func (cp *CourseProgress) IsComplete() bool {
	return cp != nil && cp.TotalLessons > 0 && cp.TotalCompleted >= cp.TotalLessons
}

// NewCourseProgress returns an untouched record for course.
func NewCourseProgress(course *courses.Course, now time.Time) *CourseProgress {
	cp := &CourseProgress{
		Language:       course.Language,
		StartedAt:      now,
		LastAccessedAt: now,
	}
	Recompute(course, cp)
	return cp
}

// Recompute rebuilds cp against the course definition: chapters and lessons
// follow course order, untouched lessons appear as incomplete, entries for
// lessons no longer in the course are dropped, and the chapter completion
// flags and totals are derived from lesson state.
func Recompute(course *courses.Course, cp *CourseProgress) {
	chapters := make([]ChapterProgress, 0, len(course.Chapters))
	totalCompleted := 0

	for _, ch := range course.Chapters {
		stored := cp.Chapter(ch.ID)
		next := ChapterProgress{ChapterID: ch.ID, Lessons: make([]LessonProgress, 0, len(ch.Lessons))}

		completed := 0
		var last *time.Time
		for _, l := range ch.Lessons {
			entry := LessonProgress{LessonID: l.ID}
			if stored != nil {
				if lp := stored.Lesson(l.ID); lp != nil {
					entry = *lp
				}
			}
			if entry.Completed {
				completed++
				if entry.CompletedAt != nil && (last == nil || entry.CompletedAt.After(*last)) {
					last = entry.CompletedAt
				}
			}
			next.Lessons = append(next.Lessons, entry)
		}

		next.Completed = chapterComplete(completed, len(ch.Lessons))
		if next.Completed {
			next.CompletedAt = last
		}
		totalCompleted += completed
		chapters = append(chapters, next)
	}

	cp.Chapters = chapters
	cp.TotalCompleted = totalCompleted
	cp.TotalLessons = course.TotalLessons()
}

// A chapter without lessons is never complete.
func chapterComplete(completed, total int) bool {
	return total > 0 && completed >= total
}

// ChapterUnlocked reports whether the chapter at index idx of course is open
// to the user. It reads the stored Completed flags of cp; call Recompute first
// when those may be stale.
func ChapterUnlocked(course *courses.Course, cp *CourseProgress, idx int, role profile.Role) bool {
	if idx < 0 || idx >= len(course.Chapters) {
		return false
	}
	if role.IsAdmin() || idx == 0 {
		return true
	}
	prev := cp.Chapter(course.Chapters[idx-1].ID)
	return prev != nil && prev.Completed
}

// LessonUnlocked reports whether lesson lessonIdx of chapter chapterIdx is
// open to the user: the chapter must be unlocked and the previous lesson in
// the chapter completed.
func LessonUnlocked(course *courses.Course, cp *CourseProgress, chapterIdx, lessonIdx int, role profile.Role) bool {
	if chapterIdx < 0 || chapterIdx >= len(course.Chapters) {
		return false
	}
	ch := course.Chapters[chapterIdx]
	if lessonIdx < 0 || lessonIdx >= len(ch.Lessons) {
		return false
	}
	if role.IsAdmin() {
		return true
	}
	if !ChapterUnlocked(course, cp, chapterIdx, role) {
		return false
	}
	if lessonIdx == 0 {
		return true
	}
	chp := cp.Chapter(ch.ID)
	if chp == nil {
		return false
	}
	prev := chp.Lesson(ch.Lessons[lessonIdx-1].ID)
	return prev != nil && prev.Completed
}
