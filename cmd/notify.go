package cmd

import (
	"fmt"
	"io"

	"github.com/solotrader/tradecraft/internal/events"
	"github.com/solotrader/tradecraft/internal/ui"
)

// announceMilestones prints reward events as they fire, so a level-up
// earned mid-quest shows up in the moment rather than on the next
// status call.
func announceMilestones(bus *events.Bus, out io.Writer) error {
	if err := bus.Subscribe(events.EventLevelUp, func(e events.Event) error {
		up := e.(events.LevelUp)
		fmt.Fprintln(out, ui.Good.Render(fmt.Sprintf("▲ Level up! You are now level %d.", up.NewLevel)))
		return nil
	}); err != nil {
		return err
	}

	if err := bus.Subscribe(events.EventAchievementUnlocked, func(e events.Event) error {
		unlocked := e.(events.AchievementUnlocked)
		fmt.Fprintln(out, ui.Good.Render(fmt.Sprintf("★ Achievement unlocked: %s", unlocked.Title)))
		return nil
	}); err != nil {
		return err
	}

	return bus.Subscribe(events.EventCoinsAwarded, func(e events.Event) error {
		coins := e.(events.CoinsAwarded)
		fmt.Fprintln(out, ui.Hint.Render(fmt.Sprintf("+%d coins (%s)", coins.Amount, coins.Reason)))
		return nil
	})
}
