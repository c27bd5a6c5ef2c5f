package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Koloda55SA/RaDev-sub001/backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var statColumns = map[StatName]string{
	ProjectsViewed: "projects_viewed",
	BlogPostsRead:  "blog_posts_read",
	CodeRuns:       "code_runs",
	MessagesSent:   "messages_sent",
	LoginCount:     "login_count",
}

// DBStore keeps profiles in the service's own database. Counters and the
// achievement set are updated in place, so concurrent writers do not lose
// increments.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	var row models.Profile
	err := s.db.WithContext(ctx).
		Preload("Achievements", func(db *gorm.DB) *gorm.DB {
			return db.Order("unlocked_at, achievement_id")
		}).
		First(&row, "uid = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", uid, err)
	}
	return fromModel(&row), nil
}

func (s *DBStore) CreateProfile(ctx context.Context, p *Profile) error {
	row := toModel(p)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit("Achievements").Create(row).Error; err != nil {
			return err
		}
		return insertAchievements(tx, p.UID, p.Achievements)
	})
	if err != nil {
		return fmt.Errorf("create profile %s: %w", p.UID, err)
	}
	return nil
}

func (s *DBStore) UpdateProfile(ctx context.Context, uid string, upd Update) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, uid); err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if upd.Email != nil {
			fields["email"] = *upd.Email
		}
		if upd.Role != nil {
			fields["role"] = string(*upd.Role)
		}
		if upd.Nickname != nil {
			fields["nickname"] = *upd.Nickname
		}
		if upd.Bio != nil {
			fields["bio"] = *upd.Bio
		}
		if upd.Avatar != nil {
			fields["avatar"] = *upd.Avatar
		}
		if upd.Stats != nil {
			for _, name := range StatNames {
				fields[statColumns[name]] = upd.Stats.Get(name)
			}
		}
		if len(fields) > 0 {
			if err := tx.Model(&models.Profile{}).Where("uid = ?", uid).Updates(fields).Error; err != nil {
				return fmt.Errorf("update profile %s: %w", uid, err)
			}
		}

		if upd.Achievements != nil {
			del := tx.Where("user_id = ?", uid)
			if len(upd.Achievements) > 0 {
				del = del.Where("achievement_id NOT IN ?", upd.Achievements)
			}
			if err := del.Delete(&models.ProfileAchievement{}).Error; err != nil {
				return fmt.Errorf("replace achievements of %s: %w", uid, err)
			}
			if err := insertAchievements(tx, uid, upd.Achievements); err != nil {
				return fmt.Errorf("replace achievements of %s: %w", uid, err)
			}
		}
		return nil
	})
}

// IncrementStat adds amount to a single counter column and returns the
// counters as they are after the write.
func (s *DBStore) IncrementStat(ctx context.Context, uid string, stat StatName, amount int) (Stats, error) {
	col, ok := statColumns[stat]
	if !ok {
		return Stats{}, fmt.Errorf("unknown stat %q", stat)
	}

	var row models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Profile{}).
			Where("uid = ?", uid).
			UpdateColumn(col, gorm.Expr(col+" + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&row, "uid = ?", uid).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Stats{}, err
		}
		return Stats{}, fmt.Errorf("increment %s for %s: %w", stat, uid, err)
	}
	return statsFromModel(&row), nil
}

// AddAchievement inserts the id unless it is already present.
func (s *DBStore) AddAchievement(ctx context.Context, uid, achievementID string) (bool, error) {
	var added bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, uid); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ProfileAchievement{
			UserID:        uid,
			AchievementID: achievementID,
			UnlockedAt:    time.Now().UTC(),
		})
		if res.Error != nil {
			return res.Error
		}
		added = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, err
		}
		return false, fmt.Errorf("add achievement %s for %s: %w", achievementID, uid, err)
	}
	return added, nil
}

func ensureExists(tx *gorm.DB, uid string) error {
	var count int64
	if err := tx.Model(&models.Profile{}).Where("uid = ?", uid).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func insertAchievements(tx *gorm.DB, uid string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]models.ProfileAchievement, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.ProfileAchievement{UserID: uid, AchievementID: id, UnlockedAt: now})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func toModel(p *Profile) *models.Profile {
	return &models.Profile{
		UID:            p.UID,
		Email:          p.Email,
		Nickname:       p.Nickname,
		DisplayName:    p.DisplayName,
		Role:           string(p.Role),
		Avatar:         p.Avatar,
		Bio:            p.Bio,
		ProjectsViewed: p.Stats.ProjectsViewed,
		BlogPostsRead:  p.Stats.BlogPostsRead,
		CodeRuns:       p.Stats.CodeRuns,
		MessagesSent:   p.Stats.MessagesSent,
		LoginCount:     p.Stats.LoginCount,
		FollowersCount: p.Followers,
		ProfilesLiked:  p.ProfilesLiked,
	}
}

func fromModel(row *models.Profile) *Profile {
	p := &Profile{
		UID:           row.UID,
		Email:         row.Email,
		Nickname:      row.Nickname,
		DisplayName:   row.DisplayName,
		Role:          ParseRole(row.Role),
		Avatar:        row.Avatar,
		Bio:           row.Bio,
		Achievements:  make([]string, 0, len(row.Achievements)),
		Stats:         statsFromModel(row),
		Followers:     row.FollowersCount,
		ProfilesLiked: row.ProfilesLiked,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	for _, a := range row.Achievements {
		p.Achievements = append(p.Achievements, a.AchievementID)
	}
	return p
}

func statsFromModel(row *models.Profile) Stats {
	return Stats{
		ProjectsViewed: row.ProjectsViewed,
		BlogPostsRead:  row.BlogPostsRead,
		CodeRuns:       row.CodeRuns,
		MessagesSent:   row.MessagesSent,
		LoginCount:     row.LoginCount,
	}
}
