package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/solotrader/tradecraft/internal/catalog"
	"github.com/solotrader/tradecraft/internal/events"
	"github.com/solotrader/tradecraft/internal/validator"
)

func TestResolveValidatorFallsBackToSimulated(t *testing.T) {
	for _, key := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(key, "")
	}

	v := resolveValidator(context.Background(), newLogger())
	sim, ok := v.(*validator.Simulated)
	if !ok {
		t.Fatalf("expected *validator.Simulated without credentials, got %T", v)
	}

	// The fallback must actually grade, which drives the seeded source.
	out, err := sim.Validate(context.Background(), catalog.QuestDefinition{
		ID:          "fallback_check",
		Criteria:    []string{"entry", "stop_loss"},
		MinAccuracy: 0,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.PerCriterion) != 2 {
		t.Fatalf("graded %d criteria, want 2", len(out.PerCriterion))
	}
}

func TestAnnounceMilestonesPrintsRewards(t *testing.T) {
	bus := events.NewBus(newLogger())
	var buf bytes.Buffer
	if err := announceMilestones(bus, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Now()
	bus.Publish(events.LevelUp{At: now, NewLevel: 3})
	bus.Publish(events.AchievementUnlocked{At: now, ID: "first_quest", Title: "First Steps"})
	bus.Publish(events.CoinsAwarded{At: now, Amount: 25, Reason: "quest:support_resistance_basics"})
	bus.Publish(events.XPAwarded{At: now, Amount: 20, Reason: "rep"})

	out := buf.String()
	if !strings.Contains(out, "level 3") {
		t.Errorf("missing level-up line in output:\n%s", out)
	}
	if !strings.Contains(out, "First Steps") {
		t.Errorf("missing achievement line in output:\n%s", out)
	}
	if !strings.Contains(out, "+25 coins") {
		t.Errorf("missing coins line in output:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got != 3 {
		t.Errorf("printed %d lines, want 3 (XP awards stay quiet)", got)
	}
}
