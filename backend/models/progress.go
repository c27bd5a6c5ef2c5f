package models

import "time"

// CourseProgress - прогресс пользователя по курсу одного языка.
type CourseProgress struct {
	UserID           string `gorm:"primaryKey;size:128"`
	Language         string `gorm:"primaryKey;size:32"`
	CurrentChapterID string
	CurrentLessonID  string
	TotalCompleted   int `gorm:"not null;default:0"`
	StartedAt        time.Time
	LastAccessedAt   time.Time
	Lessons          []LessonProgress `gorm:"foreignKey:UserID,Language;references:UserID,Language"`
}

func (CourseProgress) TableName() string { return "course_progress" }

type LessonProgress struct {
	UserID      string `gorm:"primaryKey;size:128"`
	Language    string `gorm:"primaryKey;size:32"`
	ChapterID   string `gorm:"primaryKey;size:64"`
	LessonID    string `gorm:"primaryKey;size:64"`
	Completed   bool   `gorm:"not null;default:false"`
	CompletedAt *time.Time
	Attempts    int `gorm:"not null;default:0"`
	TimeSpent   int `gorm:"not null;default:0"` // минуты
}

func (LessonProgress) TableName() string { return "lesson_progress" }

// All возвращает модели для AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&ProfileAchievement{},
		&CourseProgress{},
		&LessonProgress{},
	}
}
