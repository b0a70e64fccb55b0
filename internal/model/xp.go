package model

import (
	"math"
	"time"
)

// XP sources recorded in the audit log.
const (
	SourceLessonCompletion = "lesson_completion"
	SourceQuizCompletion   = "quiz_completion"
	SourceStreakBonus      = "streak_bonus"
	SourceAchievement      = "achievement"
	SourceManual           = "manual"
)

// XPProfile is the per-user progression aggregate: total XP, derived
// level, daily streak, earned achievements and the append-only award log.
// Created lazily on the first XP-related request for a user.
// swagger:model XPProfile
type XPProfile struct {
	BaseModel
	UserID        uint       `gorm:"uniqueIndex;not null" json:"userId"`
	TotalXP       int        `gorm:"default:0" json:"totalXP"`
	CurrentLevel  int        `gorm:"default:1" json:"currentLevel"`
	XPToNextLevel int        `gorm:"default:100" json:"xpToNextLevel"`
	StreakCurrent int        `gorm:"default:0" json:"streakCurrent"`
	StreakLongest int        `gorm:"default:0" json:"streakLongest"`
	LastActivity  *time.Time `json:"lastActivity,omitempty"`

	Achievements []XPAchievement `gorm:"foreignKey:ProfileID" json:"achievements"`
	Events       []XPEvent       `gorm:"foreignKey:ProfileID" json:"-"`
}

func (XPProfile) TableName() string {
	return "xp_profiles"
}

// XPAchievement is a one-time named bonus. Name is unique per profile.
type XPAchievement struct {
	BaseModel
	ProfileID   uint      `gorm:"index:idx_profile_achievement,unique;not null" json:"-"`
	Name        string    `gorm:"size:100;index:idx_profile_achievement,unique;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	XPReward    int       `gorm:"default:0" json:"xpReward"`
	EarnedAt    time.Time `json:"earnedAt"`
}

func (XPAchievement) TableName() string {
	return "xp_achievements"
}

// XPEvent is one entry of the append-only award log. SourceID is nullable
// so that events without a correlation key (streak bonuses) never collide
// on the uniqueness guard.
type XPEvent struct {
	BaseModel
	ProfileID uint    `gorm:"index:idx_profile_source,unique;not null" json:"-"`
	Amount    int     `gorm:"not null" json:"amount"`
	Source    string  `gorm:"size:50;index:idx_profile_source,unique;not null" json:"source"`
	SourceID  *string `gorm:"size:191;index:idx_profile_source,unique" json:"sourceId,omitempty"`
}

func (XPEvent) TableName() string {
	return "xp_events"
}

// LevelForXP maps cumulative XP to the current level and the XP still
// missing to reach the next one. The step from level L to L+1 costs
// floor(100 * 1.5^(L-1)); level 1 starts at 0.
func LevelForXP(totalXP int) (level, xpToNext int) {
	if totalXP < 0 {
		totalXP = 0
	}

	level = 1
	threshold := 0
	step := levelStep(level)
	for totalXP >= threshold+step {
		threshold += step
		level++
		step = levelStep(level)
	}
	return level, threshold + step - totalXP
}

// levelStep is the XP cost of going from level L to L+1.
func levelStep(level int) int {
	return int(math.Floor(100 * math.Pow(1.5, float64(level-1))))
}

// AddXPResult reports whether an award crossed a level threshold.
type AddXPResult struct {
	LeveledUp bool `json:"leveledUp"`
	NewLevel  int  `json:"newLevel"`
	Awarded   int  `json:"awarded"`
}

// AddXP applies a positive award to the profile, recomputes the level and
// appends an audit event. Non-positive amounts are a no-op.
func (p *XPProfile) AddXP(amount int, source string, sourceID string) AddXPResult {
	if p.CurrentLevel == 0 {
		p.CurrentLevel, p.XPToNextLevel = LevelForXP(p.TotalXP)
	}
	if amount <= 0 {
		return AddXPResult{LeveledUp: false, NewLevel: p.CurrentLevel}
	}

	before := p.CurrentLevel
	p.TotalXP += amount
	p.CurrentLevel, p.XPToNextLevel = LevelForXP(p.TotalXP)

	event := XPEvent{ProfileID: p.ID, Amount: amount, Source: source}
	if sourceID != "" {
		event.SourceID = &sourceID
	}
	p.Events = append(p.Events, event)

	return AddXPResult{
		LeveledUp: p.CurrentLevel > before,
		NewLevel:  p.CurrentLevel,
		Awarded:   amount,
	}
}

// UpdateStreak advances the consecutive-day counter for "now". A repeat
// call on the same calendar day is a no-op and returns false. A call on
// the day after the last activity extends the streak; a longer gap (or no
// prior activity) restarts it at 1. Both of the latter return true, so a
// fresh start qualifies for the continuation bonus, matching the
// progression rules clients were built against.
func (p *XPProfile) UpdateStreak(now time.Time) bool {
	today := startOfDay(now)

	if p.LastActivity != nil {
		last := startOfDay(*p.LastActivity)
		switch int(today.Sub(last).Hours() / 24) {
		case 0:
			return false
		case 1:
			p.StreakCurrent++
		default:
			p.StreakCurrent = 1
		}
	} else {
		p.StreakCurrent = 1
	}

	if p.StreakCurrent > p.StreakLongest {
		p.StreakLongest = p.StreakCurrent
	}
	p.LastActivity = &now
	return true
}

// AddAchievement records a named one-time award. Returns false without
// mutation when the name was already earned. A positive reward is applied
// through AddXP.
func (p *XPProfile) AddAchievement(name, description string, xpReward int) bool {
	for _, a := range p.Achievements {
		if a.Name == name {
			return false
		}
	}

	p.Achievements = append(p.Achievements, XPAchievement{
		ProfileID:   p.ID,
		Name:        name,
		Description: description,
		XPReward:    xpReward,
		EarnedAt:    time.Now(),
	})

	if xpReward > 0 {
		p.AddXP(xpReward, SourceAchievement, "")
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
