// Package progression owns the learner profile: level, XP, coins, and the
// rank derivation. All Profile mutation goes through the Ledger.
package progression

import "errors"

// MaxLevel is the level cap. XP awarded at the cap is discarded.
const MaxLevel = 114

// XP requirement schedule: a strictly increasing linear curve so each
// level costs deterministically more than the last.
const (
	xpBase = 100
	xpStep = 50
)

// ErrInvalidAmount is returned when an XP or coin award is not positive.
var ErrInvalidAmount = errors.New("award amount must be positive")

// Profile is the learner's progression state.
type Profile struct {
	Level int
	XP    int
	Coins int
}

// NewProfile returns a fresh level-1 profile.
func NewProfile() Profile {
	return Profile{Level: 1}
}

// Requirement returns the XP needed to advance from the given level.
func Requirement(level int) int {
	return xpBase + (level-1)*xpStep
}

// AwardResult describes the outcome of an XP award.
type AwardResult struct {
	Level        int
	XP           int
	LeveledUp    bool
	LevelsGained int
}

// Ledger serializes all mutations of a Profile. Callers hold the profile
// only through the ledger; the engine provides the locking discipline.
type Ledger struct {
	profile Profile
}

// NewLedger creates a ledger around an existing profile. A zero-valued
// profile is normalized to level 1.
func NewLedger(p Profile) *Ledger {
	if p.Level < 1 {
		p.Level = 1
	}
	return &Ledger{profile: p}
}

// Profile returns a copy of the current profile state.
func (l *Ledger) Profile() Profile {
	return l.profile
}

// AwardXP adds XP to the profile, cascading level-ups while the running
// total covers the current level's requirement. A single large award and
// an equivalent sequence of smaller awards produce the same final state.
// At MaxLevel, excess XP is discarded.
func (l *Ledger) AwardXP(amount int) (AwardResult, error) {
	if amount <= 0 {
		return AwardResult{}, ErrInvalidAmount
	}

	p := &l.profile
	p.XP += amount

	gained := 0
	for p.Level < MaxLevel && p.XP >= Requirement(p.Level) {
		p.XP -= Requirement(p.Level)
		p.Level++
		gained++
	}

	if p.Level >= MaxLevel {
		p.Level = MaxLevel
		p.XP = 0
	}

	return AwardResult{
		Level:        p.Level,
		XP:           p.XP,
		LeveledUp:    gained > 0,
		LevelsGained: gained,
	}, nil
}

// AwardCoins adds coins to the profile balance.
func (l *Ledger) AwardCoins(amount int) (int, error) {
	if amount <= 0 {
		return l.profile.Coins, ErrInvalidAmount
	}
	l.profile.Coins += amount
	return l.profile.Coins, nil
}

// Rank returns the rank label for the current level.
func (l *Ledger) Rank() string {
	return RankForLevel(l.profile.Level)
}

// RankColor returns the interpolated display color for the current level.
func (l *Ledger) RankColor() RGB {
	return RankColorForLevel(l.profile.Level)
}
