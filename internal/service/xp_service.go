package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"learnsphere_backend/internal/model"
	"learnsphere_backend/internal/repository"
	"learnsphere_backend/internal/util"
	"learnsphere_backend/pkg/logger"
	"learnsphere_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	leaderboardCacheKey = "learnsphere:leaderboard"
	leaderboardCacheTTL = time.Minute
	defaultLeaderboard  = 10

	// Streak bonus caps differ between the lesson-completion path and
	// the dedicated streak endpoint.
	lessonStreakCap   = 20
	endpointStreakCap = 50
)

type XPService struct {
	XPRepo   *repository.XPRepository
	UserRepo *repository.UserRepository
	Redis    *redis.Client
}

func NewXPService(xpRepo *repository.XPRepository, userRepo *repository.UserRepository, rdb *redis.Client) *XPService {
	return &XPService{
		XPRepo:   xpRepo,
		UserRepo: userRepo,
		Redis:    rdb,
	}
}

// GetProfile returns the user's XP profile, creating a zeroed one on
// first contact.
func (s *XPService) GetProfile(userID uint) (*model.XPProfile, error) {
	return s.XPRepo.FindOrCreateByUser(userID)
}

// AddXPOutcome is the award result surfaced to clients.
type AddXPOutcome struct {
	LeveledUp     bool `json:"leveledUp"`
	NewLevel      int  `json:"newLevel"`
	TotalXP       int  `json:"totalXP"`
	CurrentLevel  int  `json:"currentLevel"`
	XPToNextLevel int  `json:"xpToNextLevel"`
	XPEarned      int  `json:"xpEarned"`
	// Duplicate marks a retried award that was suppressed by the
	// idempotency guard.
	Duplicate bool `json:"duplicate,omitempty"`
}

// AddXP awards XP to the user. When sourceID is set and an award with the
// same (source, sourceID) was already recorded, the call is a no-op that
// reports the current totals instead of double-awarding.
func (s *XPService) AddXP(userID uint, amount int, source, sourceID string) (*AddXPOutcome, error) {
	profile, err := s.XPRepo.FindOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}

	if sourceID != "" {
		seen, err := s.XPRepo.HasEvent(profile.ID, source, sourceID)
		if err != nil {
			return nil, err
		}
		if seen {
			return &AddXPOutcome{
				NewLevel:      profile.CurrentLevel,
				TotalXP:       profile.TotalXP,
				CurrentLevel:  profile.CurrentLevel,
				XPToNextLevel: profile.XPToNextLevel,
				Duplicate:     true,
			}, nil
		}
	}

	result := profile.AddXP(amount, source, sourceID)
	if err := s.XPRepo.Save(profile); err != nil {
		return nil, err
	}
	monitoring.XPAwarded.WithLabelValues(source).Add(float64(result.Awarded))

	return &AddXPOutcome{
		LeveledUp:     result.LeveledUp,
		NewLevel:      result.NewLevel,
		TotalXP:       profile.TotalXP,
		CurrentLevel:  profile.CurrentLevel,
		XPToNextLevel: profile.XPToNextLevel,
		XPEarned:      result.Awarded,
	}, nil
}

// AddAchievement awards a named one-time achievement. The boolean is
// false when the user already earned it; no XP is granted twice.
func (s *XPService) AddAchievement(userID uint, name, description string, xpReward int) (*model.XPProfile, bool, error) {
	profile, err := s.XPRepo.FindOrCreateByUser(userID)
	if err != nil {
		return nil, false, err
	}

	if !profile.AddAchievement(name, description, xpReward) {
		return profile, false, nil
	}

	if err := s.XPRepo.Save(profile); err != nil {
		return nil, false, err
	}
	if xpReward > 0 {
		monitoring.XPAwarded.WithLabelValues(model.SourceAchievement).Add(float64(xpReward))
	}
	return profile, true, nil
}

// StreakOutcome reports a streak update and any bonus it earned.
type StreakOutcome struct {
	Continued     bool `json:"streakContinued"`
	CurrentStreak int  `json:"currentStreak"`
	LongestStreak int  `json:"longestStreak"`
	BonusXP       int  `json:"bonusXP"`
}

// UpdateStreak advances the user's daily streak and pays the endpoint
// bonus (current*5 capped at 50) when the streak continued past day one.
func (s *XPService) UpdateStreak(userID uint) (*StreakOutcome, error) {
	profile, err := s.XPRepo.FindOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}

	continued := profile.UpdateStreak(time.Now())
	bonus := 0
	if continued && profile.StreakCurrent > 1 {
		bonus = streakBonus(profile.StreakCurrent, 5, endpointStreakCap)
		profile.AddXP(bonus, model.SourceStreakBonus, "")
	}

	if err := s.XPRepo.Save(profile); err != nil {
		return nil, err
	}
	if bonus > 0 {
		monitoring.XPAwarded.WithLabelValues(model.SourceStreakBonus).Add(float64(bonus))
	}

	return &StreakOutcome{
		Continued:     continued,
		CurrentStreak: profile.StreakCurrent,
		LongestStreak: profile.StreakLongest,
		BonusXP:       bonus,
	}, nil
}

// LessonOutcome is returned by CompleteLesson.
type LessonOutcome struct {
	XPEarned     int  `json:"xpEarned"`
	LeveledUp    bool `json:"leveledUp"`
	NewLevel     int  `json:"newLevel"`
	TotalXP      int  `json:"totalXP"`
	CurrentLevel int  `json:"currentLevel"`
	Streak       int  `json:"streak"`
	Duplicate    bool `json:"duplicate,omitempty"`
}

// CompleteLesson awards XP for a non-quiz lesson completion and advances
// the streak, paying the smaller lesson-path bonus (current*2 capped at
// 20). The lesson's completed flag on the course tree is the caller's
// concern; this path only moves the ledger.
func (s *XPService) CompleteLesson(userID uint, lessonID string, xpReward int) (*LessonOutcome, error) {
	if xpReward <= 0 {
		xpReward = 10
	}

	profile, err := s.XPRepo.FindOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}

	if lessonID != "" {
		seen, err := s.XPRepo.HasEvent(profile.ID, model.SourceLessonCompletion, lessonID)
		if err != nil {
			return nil, err
		}
		if seen {
			return &LessonOutcome{
				NewLevel:     profile.CurrentLevel,
				TotalXP:      profile.TotalXP,
				CurrentLevel: profile.CurrentLevel,
				Streak:       profile.StreakCurrent,
				Duplicate:    true,
			}, nil
		}
	}

	result := profile.AddXP(xpReward, model.SourceLessonCompletion, lessonID)

	earned := result.Awarded
	if profile.UpdateStreak(time.Now()) && profile.StreakCurrent > 1 {
		bonus := streakBonus(profile.StreakCurrent, 2, lessonStreakCap)
		profile.AddXP(bonus, model.SourceStreakBonus, "")
		earned += bonus
	}

	if err := s.XPRepo.Save(profile); err != nil {
		return nil, err
	}
	monitoring.XPAwarded.WithLabelValues(model.SourceLessonCompletion).Add(float64(result.Awarded))

	return &LessonOutcome{
		XPEarned:     earned,
		LeveledUp:    result.LeveledUp,
		NewLevel:     result.NewLevel,
		TotalXP:      profile.TotalXP,
		CurrentLevel: profile.CurrentLevel,
		Streak:       profile.StreakCurrent,
	}, nil
}

func streakBonus(current, perDay, maxBonus int) int {
	bonus := current * perDay
	if bonus > maxBonus {
		bonus = maxBonus
	}
	return bonus
}

// LeaderboardEntry is one row of the top-N ranking.
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       uint   `json:"userId"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar,omitempty"`
	TotalXP      int    `json:"totalXP"`
	CurrentLevel int    `json:"currentLevel"`
}

// Leaderboard returns the top users by total XP, served from a short
// redis cache when available.
func (s *XPService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboard
	}

	if s.Redis != nil && limit == defaultLeaderboard {
		if cached, err := s.Redis.Get(ctx, leaderboardCacheKey).Result(); err == nil {
			var entries []LeaderboardEntry
			if json.Unmarshal([]byte(cached), &entries) == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.computeLeaderboard(limit)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil && limit == defaultLeaderboard {
		if payload, err := json.Marshal(entries); err == nil {
			s.Redis.Set(ctx, leaderboardCacheKey, payload, leaderboardCacheTTL)
		}
	}
	return entries, nil
}

func (s *XPService) computeLeaderboard(limit int) ([]LeaderboardEntry, error) {
	profiles, err := s.XPRepo.FindTopByXP(limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(profiles))
	for i, p := range profiles {
		ids[i] = p.UserID
	}
	users, err := s.UserRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(profiles))
	for i, p := range profiles {
		entry := LeaderboardEntry{
			Rank:         i + 1,
			UserID:       p.UserID,
			TotalXP:      p.TotalXP,
			CurrentLevel: p.CurrentLevel,
		}
		if u, ok := users[p.UserID]; ok {
			entry.Name = u.Name
			entry.Avatar = u.Avatar
		}
		entries[i] = entry
	}
	return entries, nil
}

// RefreshLeaderboardCache recomputes the default leaderboard and stores
// it in redis. Driven by the app's background ticker.
func (s *XPService) RefreshLeaderboardCache(ctx context.Context) error {
	if s.Redis == nil {
		return nil
	}
	entries, err := s.computeLeaderboard(defaultLeaderboard)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := s.Redis.Set(ctx, leaderboardCacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
		logger.Log.Warn("leaderboard cache refresh failed", zap.Error(err))
		return err
	}
	return nil
}

// Rank returns the user's 1-based position by total XP.
func (s *XPService) Rank(userID uint) (int, error) {
	rank, err := s.XPRepo.Rank(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, util.ErrUserNotFound
	}
	return rank, err
}
