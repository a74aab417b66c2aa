// Package concept tracks per-concept quest and stage completion. Quests
// feed stages, stages feed knowledge tests, and a concept is mastered
// once every stage is complete.
package concept

import (
	"fmt"

	"github.com/solotrader/tradecraft/internal/catalog"
)

// TestType distinguishes the two knowledge-check formats a stage can
// require.
type TestType string

const (
	TestMCQ       TestType = "mcq"
	TestPractical TestType = "practical"
)

// TestRequest asks the caller to present a knowledge test. The graph
// never runs tests itself; it only reports that a stage has earned one.
type TestRequest struct {
	ConceptID string
	StageID   string
	Type      TestType
}

// StageCompletion reports one stage that just completed, with any tests
// it unlocked.
type StageCompletion struct {
	ConceptID string
	StageID   string
	Tests     []TestRequest
}

// Progress is the mutable per-concept state. Created lazily on the first
// quest completion for a concept, never deleted.
type Progress struct {
	ConceptID       string
	CompletedQuests map[string]bool
	CompletedStages map[string]bool
}

func newProgress(conceptID string) *Progress {
	return &Progress{
		ConceptID:       conceptID,
		CompletedQuests: make(map[string]bool),
		CompletedStages: make(map[string]bool),
	}
}

// Graph holds progress for every concept the learner has touched.
type Graph struct {
	cat      *catalog.Catalog
	progress map[string]*Progress
}

// NewGraph builds an empty graph over the given catalog.
func NewGraph(cat *catalog.Catalog) *Graph {
	return &Graph{
		cat:      cat,
		progress: make(map[string]*Progress),
	}
}

// Restore seeds the graph from persisted progress, replacing any state
// already held for that concept.
func (g *Graph) Restore(p *Progress) {
	cp := newProgress(p.ConceptID)
	for q := range p.CompletedQuests {
		cp.CompletedQuests[q] = true
	}
	for s := range p.CompletedStages {
		cp.CompletedStages[s] = true
	}
	g.progress[p.ConceptID] = cp
}

// Snapshot returns a copy of the progress for a concept, or an empty
// progress if the learner has not completed anything there yet.
func (g *Graph) Snapshot(conceptID string) Progress {
	p, ok := g.progress[conceptID]
	if !ok {
		p = newProgress(conceptID)
	}
	out := Progress{
		ConceptID:       conceptID,
		CompletedQuests: make(map[string]bool, len(p.CompletedQuests)),
		CompletedStages: make(map[string]bool, len(p.CompletedStages)),
	}
	for q := range p.CompletedQuests {
		out.CompletedQuests[q] = true
	}
	for s := range p.CompletedStages {
		out.CompletedStages[s] = true
	}
	return out
}

// OnQuestCompleted records a finished quest and returns the stages that
// completed as a result, in catalog order. Re-reporting an already
// completed quest is harmless and completes nothing new; stage completion
// is monotonic.
func (g *Graph) OnQuestCompleted(questID, conceptID string) ([]StageCompletion, error) {
	def, err := g.cat.Concept(conceptID)
	if err != nil {
		return nil, err
	}
	q, err := g.cat.Quest(questID)
	if err != nil {
		return nil, err
	}
	if q.ConceptID != conceptID {
		return nil, fmt.Errorf("quest %q belongs to concept %q, not %q", questID, q.ConceptID, conceptID)
	}

	p, ok := g.progress[conceptID]
	if !ok {
		p = newProgress(conceptID)
		g.progress[conceptID] = p
	}
	p.CompletedQuests[questID] = true

	var done []StageCompletion
	for _, st := range def.Stages {
		if p.CompletedStages[st.ID] {
			continue
		}
		if !allCompleted(st.RequiredQuests, p.CompletedQuests) {
			continue
		}
		p.CompletedStages[st.ID] = true
		sc := StageCompletion{ConceptID: conceptID, StageID: st.ID}
		if st.HasMCQ {
			sc.Tests = append(sc.Tests, TestRequest{ConceptID: conceptID, StageID: st.ID, Type: TestMCQ})
		}
		if st.HasPractical {
			sc.Tests = append(sc.Tests, TestRequest{ConceptID: conceptID, StageID: st.ID, Type: TestPractical})
		}
		done = append(done, sc)
	}
	return done, nil
}

func allCompleted(required []string, completed map[string]bool) bool {
	for _, q := range required {
		if !completed[q] {
			return false
		}
	}
	return true
}

// IsMastered reports whether every stage of the concept is complete.
func (g *Graph) IsMastered(conceptID string) bool {
	def, err := g.cat.Concept(conceptID)
	if err != nil {
		return false
	}
	p, ok := g.progress[conceptID]
	if !ok {
		return len(def.Stages) == 0
	}
	for _, st := range def.Stages {
		if !p.CompletedStages[st.ID] {
			return false
		}
	}
	return true
}

// IsConceptUnlocked reports whether every prerequisite concept is
// mastered. A concept with no prerequisites is always unlocked. This is
// a query only; nothing here blocks quest starts.
func (g *Graph) IsConceptUnlocked(conceptID string) (bool, error) {
	def, err := g.cat.Concept(conceptID)
	if err != nil {
		return false, err
	}
	for _, pre := range def.Prerequisites {
		if !g.IsMastered(pre) {
			return false, nil
		}
	}
	return true, nil
}
