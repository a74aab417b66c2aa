package concept

import (
	"testing"

	"github.com/solotrader/tradecraft/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	quests := []catalog.QuestDefinition{
		{ID: "qa", Title: "A", Tier: catalog.TierBeginner, Criteria: []string{"c"}, RequiredReps: 1, MinAccuracy: 80, ConceptID: "structure"},
		{ID: "qb", Title: "B", Tier: catalog.TierBeginner, Criteria: []string{"c"}, RequiredReps: 1, MinAccuracy: 80, ConceptID: "structure"},
		{ID: "qc", Title: "C", Tier: catalog.TierBeginner, Criteria: []string{"c"}, RequiredReps: 1, MinAccuracy: 80, ConceptID: "structure"},
		{ID: "qd", Title: "D", Tier: catalog.TierIntermediate, Criteria: []string{"c"}, RequiredReps: 1, MinAccuracy: 80, ConceptID: "blocks"},
	}
	concepts := []catalog.ConceptDefinition{
		{
			ID:    "structure",
			Title: "Market Structure",
			Stages: []catalog.Stage{
				{ID: "basics", Title: "Basics", RequiredQuests: []string{"qa", "qb"}, HasMCQ: true},
				{ID: "applied", Title: "Applied", RequiredQuests: []string{"qc"}, HasMCQ: true, HasPractical: true},
			},
			MCQBank:   []catalog.MCQQuestion{{Text: "?", Options: []string{"x", "y"}, Correct: 0}},
			Practical: []catalog.PracticalTest{{ID: "p1", Title: "Mark structure", Criteria: []string{"c"}}},
		},
		{
			ID:            "blocks",
			Title:         "Order Blocks",
			Prerequisites: []string{"structure"},
			Stages: []catalog.Stage{
				{ID: "spotting", Title: "Spotting", RequiredQuests: []string{"qd"}},
			},
		},
	}
	cat, err := catalog.New(quests, concepts)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

func TestStageRequiresAllQuests(t *testing.T) {
	g := NewGraph(testCatalog(t))

	done, err := g.OnQuestCompleted("qa", "structure")
	if err != nil {
		t.Fatalf("OnQuestCompleted(qa): %v", err)
	}
	if len(done) != 0 {
		t.Fatalf("completing only qa should finish no stage, got %v", done)
	}

	done, err = g.OnQuestCompleted("qb", "structure")
	if err != nil {
		t.Fatalf("OnQuestCompleted(qb): %v", err)
	}
	if len(done) != 1 || done[0].StageID != "basics" {
		t.Fatalf("completing qa+qb should finish stage basics, got %v", done)
	}
	if len(done[0].Tests) != 1 || done[0].Tests[0].Type != TestMCQ {
		t.Errorf("basics should request one MCQ test, got %v", done[0].Tests)
	}
}

func TestStageCompletesInEitherOrder(t *testing.T) {
	g := NewGraph(testCatalog(t))
	g.OnQuestCompleted("qb", "structure")
	done, err := g.OnQuestCompleted("qa", "structure")
	if err != nil {
		t.Fatalf("OnQuestCompleted: %v", err)
	}
	if len(done) != 1 || done[0].StageID != "basics" {
		t.Fatalf("reversed order should still finish basics, got %v", done)
	}
}

func TestStageCompletionIsIdempotent(t *testing.T) {
	g := NewGraph(testCatalog(t))
	g.OnQuestCompleted("qa", "structure")
	g.OnQuestCompleted("qb", "structure")

	// A later unrelated completion must not re-fire the basics stage.
	done, err := g.OnQuestCompleted("qc", "structure")
	if err != nil {
		t.Fatalf("OnQuestCompleted(qc): %v", err)
	}
	if len(done) != 1 || done[0].StageID != "applied" {
		t.Fatalf("qc should finish only the applied stage, got %v", done)
	}
	if len(done[0].Tests) != 2 {
		t.Errorf("applied should request MCQ and practical tests, got %v", done[0].Tests)
	}

	// Re-reporting a finished quest completes nothing.
	done, err = g.OnQuestCompleted("qa", "structure")
	if err != nil {
		t.Fatalf("repeat OnQuestCompleted(qa): %v", err)
	}
	if len(done) != 0 {
		t.Errorf("repeat completion should finish no stage, got %v", done)
	}
}

func TestMastery(t *testing.T) {
	g := NewGraph(testCatalog(t))
	if g.IsMastered("structure") {
		t.Error("fresh concept should not be mastered")
	}

	g.OnQuestCompleted("qa", "structure")
	g.OnQuestCompleted("qb", "structure")
	if g.IsMastered("structure") {
		t.Error("one of two stages done should not be mastery")
	}

	g.OnQuestCompleted("qc", "structure")
	if !g.IsMastered("structure") {
		t.Error("all stages done should be mastery")
	}
}

func TestIsConceptUnlocked(t *testing.T) {
	g := NewGraph(testCatalog(t))

	unlocked, err := g.IsConceptUnlocked("structure")
	if err != nil {
		t.Fatalf("IsConceptUnlocked: %v", err)
	}
	if !unlocked {
		t.Error("concept without prerequisites should be unlocked")
	}

	unlocked, err = g.IsConceptUnlocked("blocks")
	if err != nil {
		t.Fatalf("IsConceptUnlocked: %v", err)
	}
	if unlocked {
		t.Error("blocks should be locked until structure is mastered")
	}

	g.OnQuestCompleted("qa", "structure")
	g.OnQuestCompleted("qb", "structure")
	g.OnQuestCompleted("qc", "structure")

	unlocked, _ = g.IsConceptUnlocked("blocks")
	if !unlocked {
		t.Error("blocks should unlock once structure is mastered")
	}
}

func TestOnQuestCompletedRejectsMismatch(t *testing.T) {
	g := NewGraph(testCatalog(t))
	if _, err := g.OnQuestCompleted("qd", "structure"); err == nil {
		t.Error("quest from another concept should be rejected")
	}
	if _, err := g.OnQuestCompleted("nope", "structure"); err == nil {
		t.Error("unknown quest should be rejected")
	}
	if _, err := g.OnQuestCompleted("qa", "nope"); err == nil {
		t.Error("unknown concept should be rejected")
	}
}

func TestRestoreAndSnapshot(t *testing.T) {
	g := NewGraph(testCatalog(t))
	g.Restore(&Progress{
		ConceptID:       "structure",
		CompletedQuests: map[string]bool{"qa": true, "qb": true},
		CompletedStages: map[string]bool{"basics": true},
	})

	snap := g.Snapshot("structure")
	if !snap.CompletedQuests["qa"] || !snap.CompletedStages["basics"] {
		t.Errorf("snapshot missing restored state: %+v", snap)
	}

	// Restored stage must not re-fire on the next completion.
	done, err := g.OnQuestCompleted("qc", "structure")
	if err != nil {
		t.Fatalf("OnQuestCompleted: %v", err)
	}
	if len(done) != 1 || done[0].StageID != "applied" {
		t.Fatalf("only applied should fire after restore, got %v", done)
	}
	if !g.IsMastered("structure") {
		t.Error("restore plus qc should master structure")
	}
}
