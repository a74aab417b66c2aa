package catalog

import (
	"strings"
	"testing"
)

const minimalPack = `{
  "quests": [
    {
      "id": "q1",
      "title": "Quest",
      "tier": "beginner",
      "criteria": ["check one"],
      "required_reps": 2,
      "min_accuracy": 70,
      "concept": "c1"
    }
  ],
  "concepts": [
    {
      "id": "c1",
      "title": "Concept",
      "stages": [
        {"id": "s1", "quests": ["q1"], "mcq": true}
      ]
    }
  ]
}`

func TestLoad_MinimalPack(t *testing.T) {
	c, err := Load([]byte(minimalPack))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	q, err := c.Quest("q1")
	if err != nil {
		t.Fatalf("Quest: %v", err)
	}
	if q.RequiredReps != 2 || q.MinAccuracy != 70 || q.ConceptID != "c1" {
		t.Errorf("loaded quest = %+v", q)
	}

	cd, err := c.Concept("c1")
	if err != nil {
		t.Fatalf("Concept: %v", err)
	}
	if len(cd.Stages) != 1 || !cd.Stages[0].HasMCQ {
		t.Errorf("loaded concept stages = %+v", cd.Stages)
	}
}

func TestLoad_RejectsMalformedJSON(t *testing.T) {
	if _, err := Load([]byte("{not json")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_SchemaRejections(t *testing.T) {
	tests := []struct {
		name string
		pack string
	}{
		{
			name: "missing required quest field",
			pack: `{"quests": [{"id": "q", "title": "t", "tier": "beginner", "criteria": ["a"]}], "concepts": []}`,
		},
		{
			name: "bad tier value",
			pack: `{"quests": [{"id": "q", "title": "t", "tier": "expert", "criteria": ["a"], "required_reps": 1, "min_accuracy": 50}], "concepts": []}`,
		},
		{
			name: "empty criteria",
			pack: `{"quests": [{"id": "q", "title": "t", "tier": "beginner", "criteria": [], "required_reps": 1, "min_accuracy": 50}], "concepts": []}`,
		},
		{
			name: "unknown field",
			pack: `{"quests": [], "concepts": [], "extras": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.pack))
			if err == nil {
				t.Fatal("expected schema validation error")
			}
			if !strings.Contains(err.Error(), "schema") {
				t.Errorf("error %q is not a schema rejection", err)
			}
		})
	}
}

func TestLoad_StructuralValidationStillRuns(t *testing.T) {
	// Schema-valid but structurally broken: stage references an unknown
	// quest.
	pack := `{
	  "quests": [],
	  "concepts": [
	    {"id": "c1", "title": "C", "stages": [{"id": "s1", "quests": ["ghost"]}]}
	  ]
	}`

	_, err := Load([]byte(pack))
	if err == nil {
		t.Fatal("expected structural validation error")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error %q does not name the dangling quest", err)
	}
}
