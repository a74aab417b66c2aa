package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// JSON wire types for content packs.
type packFile struct {
	Quests   []packQuest   `json:"quests"`
	Concepts []packConcept `json:"concepts"`
}

type packQuest struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tier          string   `json:"tier"`
	Criteria      []string `json:"criteria"`
	RequiredReps  int      `json:"required_reps"`
	MinAccuracy   int      `json:"min_accuracy"`
	TimeLimitSecs int      `json:"time_limit_secs"`
	Concept       string   `json:"concept"`
	RewardXP      int      `json:"reward_xp"`
	RewardCoins   int      `json:"reward_coins"`
}

type packConcept struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Prerequisites []string        `json:"prerequisites"`
	Stages        []packStage     `json:"stages"`
	MCQBank       []packMCQ       `json:"mcq_bank"`
	Practical     []packPractical `json:"practical_tests"`
}

type packStage struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Quests      []string `json:"quests"`
	MCQ         bool     `json:"mcq"`
	Practical   bool     `json:"practical"`
	PracticalID string   `json:"practical_id"`
}

type packMCQ struct {
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

type packPractical struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	TimeLimitSecs int      `json:"time_limit_secs"`
	Criteria      []string `json:"criteria"`
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// compileSchema compiles the content pack schema once.
func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value, not raw
		// bytes or a typed map. Round-trip through encoding/json.
		defBytes, err := json.Marshal(contentPackSchema)
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			schemaErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://content-pack.json"
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Load parses, schema-validates, and structurally validates a JSON content
// pack, returning the resulting Catalog.
func Load(data []byte) (*Catalog, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile content schema: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse content pack: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("content pack schema validation: %w", err)
	}

	var pack packFile
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("decode content pack: %w", err)
	}

	quests := make([]QuestDefinition, 0, len(pack.Quests))
	for _, pq := range pack.Quests {
		quests = append(quests, QuestDefinition{
			ID:            pq.ID,
			Title:         pq.Title,
			Description:   pq.Description,
			Tier:          Tier(pq.Tier),
			Criteria:      pq.Criteria,
			RequiredReps:  pq.RequiredReps,
			MinAccuracy:   pq.MinAccuracy,
			TimeLimitSecs: pq.TimeLimitSecs,
			ConceptID:     pq.Concept,
			RewardXP:      pq.RewardXP,
			RewardCoins:   pq.RewardCoins,
		})
	}

	concepts := make([]ConceptDefinition, 0, len(pack.Concepts))
	for _, pc := range pack.Concepts {
		cd := ConceptDefinition{
			ID:            pc.ID,
			Title:         pc.Title,
			Description:   pc.Description,
			Prerequisites: pc.Prerequisites,
		}
		for _, ps := range pc.Stages {
			cd.Stages = append(cd.Stages, Stage{
				ID:             ps.ID,
				Title:          ps.Title,
				RequiredQuests: ps.Quests,
				HasMCQ:         ps.MCQ,
				HasPractical:   ps.Practical,
				PracticalID:    ps.PracticalID,
			})
		}
		for _, pm := range pc.MCQBank {
			cd.MCQBank = append(cd.MCQBank, MCQQuestion{
				Text:        pm.Text,
				Options:     pm.Options,
				Correct:     pm.Correct,
				Explanation: pm.Explanation,
			})
		}
		for _, pp := range pc.Practical {
			cd.Practical = append(cd.Practical, PracticalTest{
				ID:            pp.ID,
				Title:         pp.Title,
				Description:   pp.Description,
				TimeLimitSecs: pp.TimeLimitSecs,
				Criteria:      pp.Criteria,
			})
		}
		concepts = append(concepts, cd)
	}

	return New(quests, concepts)
}

// LoadFile loads a content pack from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content pack: %w", err)
	}
	return Load(data)
}
