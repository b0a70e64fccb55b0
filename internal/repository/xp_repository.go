package repository

import (
	"errors"

	"learnsphere_backend/internal/model"

	"gorm.io/gorm"
)

type XPRepository struct {
	DB *gorm.DB
}

func NewXPRepository(db *gorm.DB) *XPRepository {
	return &XPRepository{DB: db}
}

// FindOrCreateByUser returns the user's profile, creating a zeroed one on
// first contact.
func (r *XPRepository) FindOrCreateByUser(userID uint) (*model.XPProfile, error) {
	return r.findOrCreate(r.DB, userID)
}

func (r *XPRepository) findOrCreate(tx *gorm.DB, userID uint) (*model.XPProfile, error) {
	var profile model.XPProfile
	err := tx.Preload("Achievements").
		Where("user_id = ?", userID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = model.XPProfile{
			UserID:        userID,
			CurrentLevel:  1,
			XPToNextLevel: 100,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *XPRepository) Save(profile *model.XPProfile) error {
	return r.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(profile).Error
}

// HasEvent reports whether an award with this correlation key was already
// recorded for the profile. Used as the idempotency guard for retried
// requests.
func (r *XPRepository) HasEvent(profileID uint, source, sourceID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.XPEvent{}).
		Where("profile_id = ? AND source = ? AND source_id = ?", profileID, source, sourceID).
		Count(&count).Error
	return count > 0, err
}

// FindTopByXP returns profiles ordered by total XP descending.
func (r *XPRepository) FindTopByXP(limit int) ([]model.XPProfile, error) {
	var profiles []model.XPProfile
	err := r.DB.Order("total_xp DESC").Limit(limit).Find(&profiles).Error
	return profiles, err
}

// Rank computes the user's 1-based leaderboard position: one more than
// the number of profiles with strictly more XP.
func (r *XPRepository) Rank(userID uint) (int, error) {
	var profile model.XPProfile
	if err := r.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return 0, err
	}

	var ahead int64
	err := r.DB.Model(&model.XPProfile{}).
		Where("total_xp > ?", profile.TotalXP).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *XPRepository) WithTx(tx *gorm.DB) *XPRepository {
	return &XPRepository{DB: tx}
}
