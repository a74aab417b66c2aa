package catalog

import "time"

// DailyQuestCount is the number of quests offered each day.
const DailyQuestCount = 3

// DailyQuests selects the day's quests for a learner level: the tier pool
// for the level, windowed by an epoch day index. The selection is
// deterministic for a given (level tier, date), and consecutive days shift
// the window by one position. Pools smaller than DailyQuestCount repeat.
func (c *Catalog) DailyQuests(level int, today time.Time) []QuestDefinition {
	pool := c.poolByTier[TierForLevel(level)]
	if len(pool) == 0 {
		return nil
	}

	dayIndex := int(today.UTC().Unix() / 86400)

	out := make([]QuestDefinition, 0, DailyQuestCount)
	for i := 0; i < DailyQuestCount; i++ {
		idx := (dayIndex + i) % len(pool)
		if idx < 0 {
			idx += len(pool)
		}
		out = append(out, pool[idx])
	}
	return out
}
