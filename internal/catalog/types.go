// Package catalog holds the static content the engine reads: quest
// definitions, concept definitions with their stages and question banks,
// and the tiered daily-quest pools.
package catalog

// Tier buckets quests by learner level.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
)

// Level thresholds for tier selection.
const (
	beginnerMaxLevel     = 20
	intermediateMaxLevel = 60
)

// TierForLevel returns the quest pool tier for a learner level.
func TierForLevel(level int) Tier {
	switch {
	case level <= beginnerMaxLevel:
		return TierBeginner
	case level <= intermediateMaxLevel:
		return TierIntermediate
	default:
		return TierAdvanced
	}
}

// QuestDefinition is a repeatable practical exercise. Immutable content.
type QuestDefinition struct {
	ID          string
	Title       string
	Description string
	Tier        Tier

	// Criteria are the named checks the validator scores a submission
	// against, in display order.
	Criteria []string

	// RequiredReps is the number of successful validations that complete
	// the quest.
	RequiredReps int

	// MinAccuracy is the percentage score a submission needs to pass.
	MinAccuracy int

	// TimeLimitSecs is advisory metadata for the presentation layer; the
	// session state machine does not enforce it.
	TimeLimitSecs int

	ConceptID string

	RewardXP    int
	RewardCoins int
}

// MCQQuestion is a single multiple-choice question.
type MCQQuestion struct {
	Text        string
	Options     []string
	Correct     int // index into Options
	Explanation string
}

// PracticalTest is a chart-marking assessment scored by the validator.
type PracticalTest struct {
	ID            string
	Title         string
	Description   string
	TimeLimitSecs int
	Criteria      []string
}

// Stage is one step of a concept. Completing its required quests unlocks
// the stage's knowledge checks.
type Stage struct {
	ID             string
	Title          string
	RequiredQuests []string
	HasMCQ         bool
	HasPractical   bool

	// PracticalID names the practical test this stage unlocks. Empty
	// means the concept's first practical.
	PracticalID string
}

// ConceptDefinition is a topic with ordered stages and question banks.
// Immutable content.
type ConceptDefinition struct {
	ID            string
	Title         string
	Description   string
	Prerequisites []string
	Stages        []Stage
	MCQBank       []MCQQuestion
	Practical     []PracticalTest
}

// PracticalFor resolves the practical test a stage unlocks. Content
// validation guarantees a practical-bearing stage resolves, so a false
// return means the stage has no practical check at all.
func (cd ConceptDefinition) PracticalFor(st Stage) (PracticalTest, bool) {
	if !st.HasPractical || len(cd.Practical) == 0 {
		return PracticalTest{}, false
	}
	if st.PracticalID == "" {
		return cd.Practical[0], true
	}
	for _, p := range cd.Practical {
		if p.ID == st.PracticalID {
			return p, true
		}
	}
	return PracticalTest{}, false
}
