package models

import (
	"time"
)

// Profile хранит профиль пользователя в режиме собственной базы данных.
// Счётчики активности лежат отдельными колонками, чтобы их можно было
// увеличивать атомарно.
type Profile struct {
	UID         string `gorm:"primaryKey;size:128"`
	Email       string `gorm:"index;size:255"`
	Nickname    string `gorm:"size:64"`
	DisplayName string `gorm:"size:128"`
	Role        string `gorm:"size:16;default:user"` // user, admin
	Avatar      string
	Bio         string

	ProjectsViewed int `gorm:"not null;default:0"`
	BlogPostsRead  int `gorm:"not null;default:0"`
	CodeRuns       int `gorm:"not null;default:0"`
	MessagesSent   int `gorm:"not null;default:0"`
	LoginCount     int `gorm:"not null;default:0"`
	FollowersCount int `gorm:"not null;default:0"`
	ProfilesLiked  int `gorm:"not null;default:0"`

	Achievements []ProfileAchievement `gorm:"foreignKey:UserID;references:UID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileAchievement - одно разблокированное достижение. Составной ключ
// не даёт записать одно и то же достижение дважды.
type ProfileAchievement struct {
	UserID        string `gorm:"primaryKey;size:128"`
	AchievementID string `gorm:"primaryKey;size:128"`
	UnlockedAt    time.Time
}
