package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/Koloda55SA/RaDev-sub001/backend/courses"
	"github.com/Koloda55SA/RaDev-sub001/backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists course progress. Chapter completion is never stored; readers
// rebuild it with Recompute.
type Store interface {
	GetCourseProgress(ctx context.Context, uid string, language courses.Language) (*CourseProgress, error)
	ListCourseProgress(ctx context.Context, uid string) ([]*CourseProgress, error)
	// CreateCourseProgress stores cp unless a record already exists and
	// reports whether it did.
	CreateCourseProgress(ctx context.Context, uid string, cp *CourseProgress) (bool, error)
	// SaveLesson writes one lesson entry together with the course position
	// and totals of cp.
	SaveLesson(ctx context.Context, uid string, cp *CourseProgress, chapterID string, lp LessonProgress) error
}

type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) GetCourseProgress(ctx context.Context, uid string, language courses.Language) (*CourseProgress, error) {
	var row models.CourseProgress
	err := s.db.WithContext(ctx).
		Preload("Lessons").
		First(&row, "user_id = ? AND language = ?", uid, string(language)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoProgress
	}
	if err != nil {
		return nil, fmt.Errorf("load %s progress of %s: %w", language, uid, err)
	}
	return fromModel(&row), nil
}

func (s *DBStore) ListCourseProgress(ctx context.Context, uid string) ([]*CourseProgress, error) {
	var rows []models.CourseProgress
	err := s.db.WithContext(ctx).
		Preload("Lessons").
		Where("user_id = ?", uid).
		Order("started_at, language").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list progress of %s: %w", uid, err)
	}

	out := make([]*CourseProgress, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}
	return out, nil
}

func (s *DBStore) CreateCourseProgress(ctx context.Context, uid string, cp *CourseProgress) (bool, error) {
	row := models.CourseProgress{
		UserID:           uid,
		Language:         string(cp.Language),
		CurrentChapterID: cp.CurrentChapterID,
		CurrentLessonID:  cp.CurrentLessonID,
		TotalCompleted:   cp.TotalCompleted,
		StartedAt:        cp.StartedAt,
		LastAccessedAt:   cp.LastAccessedAt,
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("Lessons").
		Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("create %s progress of %s: %w", cp.Language, uid, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *DBStore) SaveLesson(ctx context.Context, uid string, cp *CourseProgress, chapterID string, lp LessonProgress) error {
	lang := string(cp.Language)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CourseProgress{}).
			Where("user_id = ? AND language = ?", uid, lang).
			Updates(map[string]interface{}{
				"current_chapter_id": cp.CurrentChapterID,
				"current_lesson_id":  cp.CurrentLessonID,
				"total_completed":    cp.TotalCompleted,
				"last_accessed_at":   cp.LastAccessedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoProgress
		}

		row := models.LessonProgress{
			UserID:      uid,
			Language:    lang,
			ChapterID:   chapterID,
			LessonID:    lp.LessonID,
			Completed:   lp.Completed,
			CompletedAt: lp.CompletedAt,
			Attempts:    lp.Attempts,
			TimeSpent:   lp.TimeSpent,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "language"}, {Name: "chapter_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "attempts", "time_spent"}),
		}).Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, ErrNoProgress) {
			return err
		}
		return fmt.Errorf("save lesson %s/%s/%s of %s: %w", lang, chapterID, lp.LessonID, uid, err)
	}
	return nil
}

// fromModel groups lesson rows by chapter in storage order. The result is
// not yet aligned with the course definition.
func fromModel(row *models.CourseProgress) *CourseProgress {
	cp := &CourseProgress{
		Language:         courses.Language(row.Language),
		CurrentChapterID: row.CurrentChapterID,
		CurrentLessonID:  row.CurrentLessonID,
		TotalCompleted:   row.TotalCompleted,
		StartedAt:        row.StartedAt,
		LastAccessedAt:   row.LastAccessedAt,
	}
	for _, l := range row.Lessons {
		ch := cp.Chapter(l.ChapterID)
		if ch == nil {
			cp.Chapters = append(cp.Chapters, ChapterProgress{ChapterID: l.ChapterID})
			ch = &cp.Chapters[len(cp.Chapters)-1]
		}
		ch.Lessons = append(ch.Lessons, LessonProgress{
			LessonID:    l.LessonID,
			Completed:   l.Completed,
			CompletedAt: l.CompletedAt,
			Attempts:    l.Attempts,
			TimeSpent:   l.TimeSpent,
		})
	}
	return cp
}
