package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// validateContent performs all structural checks on a content set.
// Returns a combined error describing every problem found, or nil.
func validateContent(quests []QuestDefinition, concepts []ConceptDefinition) error {
	var errs []string

	questIDs := make(map[string]bool, len(quests))
	for _, q := range quests {
		if questIDs[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate quest ID: %q", q.ID))
		}
		questIDs[q.ID] = true

		if q.RequiredReps < 1 {
			errs = append(errs, fmt.Sprintf("quest %q: requiredReps must be >= 1", q.ID))
		}
		if q.MinAccuracy < 0 || q.MinAccuracy > 100 {
			errs = append(errs, fmt.Sprintf("quest %q: minAccuracy %d out of range", q.ID, q.MinAccuracy))
		}
		if len(q.Criteria) == 0 {
			errs = append(errs, fmt.Sprintf("quest %q: no validation criteria", q.ID))
		}
	}

	conceptIDs := make(map[string]bool, len(concepts))
	for _, cd := range concepts {
		if conceptIDs[cd.ID] {
			errs = append(errs, fmt.Sprintf("duplicate concept ID: %q", cd.ID))
		}
		conceptIDs[cd.ID] = true
	}

	// Quests must point at known concepts.
	for _, q := range quests {
		if q.ConceptID != "" && !conceptIDs[q.ConceptID] {
			errs = append(errs, fmt.Sprintf("quest %q references nonexistent concept %q", q.ID, q.ConceptID))
		}
	}

	for _, cd := range concepts {
		for _, prereqID := range cd.Prerequisites {
			if !conceptIDs[prereqID] {
				errs = append(errs, fmt.Sprintf("concept %q references nonexistent prerequisite %q", cd.ID, prereqID))
			}
		}

		practicalIDs := make(map[string]bool, len(cd.Practical))
		for _, p := range cd.Practical {
			if practicalIDs[p.ID] {
				errs = append(errs, fmt.Sprintf("concept %q: duplicate practical test ID %q", cd.ID, p.ID))
			}
			practicalIDs[p.ID] = true
		}

		stageIDs := make(map[string]bool, len(cd.Stages))
		for _, st := range cd.Stages {
			if stageIDs[st.ID] {
				errs = append(errs, fmt.Sprintf("concept %q: duplicate stage ID %q", cd.ID, st.ID))
			}
			stageIDs[st.ID] = true
			if len(st.RequiredQuests) == 0 {
				errs = append(errs, fmt.Sprintf("concept %q stage %q: no required quests", cd.ID, st.ID))
			}
			for _, questID := range st.RequiredQuests {
				if !questIDs[questID] {
					errs = append(errs, fmt.Sprintf("concept %q stage %q references nonexistent quest %q", cd.ID, st.ID, questID))
				}
			}
			if st.HasPractical {
				if len(cd.Practical) == 0 {
					errs = append(errs, fmt.Sprintf("concept %q stage %q declares a practical check but the concept has no practical_tests", cd.ID, st.ID))
				} else if st.PracticalID != "" && !practicalIDs[st.PracticalID] {
					errs = append(errs, fmt.Sprintf("concept %q stage %q references nonexistent practical test %q", cd.ID, st.ID, st.PracticalID))
				}
			}
		}

		for i, mcq := range cd.MCQBank {
			if mcq.Correct < 0 || mcq.Correct >= len(mcq.Options) {
				errs = append(errs, fmt.Sprintf("concept %q MCQ %d: correct index %d out of range", cd.ID, i, mcq.Correct))
			}
		}
	}

	if err := checkPrerequisiteCycles(concepts); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New("invalid catalog content:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}

// checkPrerequisiteCycles detects cycles in the concept prerequisite graph
// using Kahn's algorithm.
func checkPrerequisiteCycles(concepts []ConceptDefinition) error {
	inDegree := make(map[string]int, len(concepts))
	adjList := make(map[string][]string)
	known := make(map[string]bool, len(concepts))

	for _, cd := range concepts {
		known[cd.ID] = true
	}
	for _, cd := range concepts {
		for _, prereqID := range cd.Prerequisites {
			if !known[prereqID] {
				continue // dangling refs reported separately
			}
			inDegree[cd.ID]++
			adjList[prereqID] = append(adjList[prereqID], cd.ID)
		}
	}

	var queue []string
	for _, cd := range concepts {
		if inDegree[cd.ID] == 0 {
			queue = append(queue, cd.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, depID := range adjList[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if visited != len(concepts) {
		return fmt.Errorf("prerequisite cycle detected among concepts")
	}
	return nil
}
