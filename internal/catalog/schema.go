package catalog

// contentPackSchema is the JSON Schema external content packs are
// validated against before loading.
var contentPackSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"quests": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":          map[string]any{"type": "string", "minLength": 1},
					"title":       map[string]any{"type": "string", "minLength": 1},
					"description": map[string]any{"type": "string"},
					"tier": map[string]any{
						"type": "string",
						"enum": []any{"beginner", "intermediate", "advanced"},
					},
					"criteria": map[string]any{
						"type":     "array",
						"items":    map[string]any{"type": "string"},
						"minItems": 1,
					},
					"required_reps":   map[string]any{"type": "integer", "minimum": 1},
					"min_accuracy":    map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
					"time_limit_secs": map[string]any{"type": "integer", "minimum": 0},
					"concept":         map[string]any{"type": "string"},
					"reward_xp":       map[string]any{"type": "integer", "minimum": 0},
					"reward_coins":    map[string]any{"type": "integer", "minimum": 0},
				},
				"required":             []any{"id", "title", "tier", "criteria", "required_reps", "min_accuracy"},
				"additionalProperties": false,
			},
		},
		"concepts": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":          map[string]any{"type": "string", "minLength": 1},
					"title":       map[string]any{"type": "string", "minLength": 1},
					"description": map[string]any{"type": "string"},
					"prerequisites": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"stages": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id":    map[string]any{"type": "string", "minLength": 1},
								"title": map[string]any{"type": "string"},
								"quests": map[string]any{
									"type":     "array",
									"items":    map[string]any{"type": "string"},
									"minItems": 1,
								},
								"mcq":          map[string]any{"type": "boolean"},
								"practical":    map[string]any{"type": "boolean"},
								"practical_id": map[string]any{"type": "string"},
							},
							"required":             []any{"id", "quests"},
							"additionalProperties": false,
						},
					},
					"mcq_bank": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"text": map[string]any{"type": "string", "minLength": 1},
								"options": map[string]any{
									"type":     "array",
									"items":    map[string]any{"type": "string"},
									"minItems": 2,
								},
								"correct":     map[string]any{"type": "integer", "minimum": 0},
								"explanation": map[string]any{"type": "string"},
							},
							"required":             []any{"text", "options", "correct"},
							"additionalProperties": false,
						},
					},
					"practical_tests": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id":              map[string]any{"type": "string", "minLength": 1},
								"title":           map[string]any{"type": "string"},
								"description":     map[string]any{"type": "string"},
								"time_limit_secs": map[string]any{"type": "integer", "minimum": 0},
								"criteria": map[string]any{
									"type":     "array",
									"items":    map[string]any{"type": "string"},
									"minItems": 1,
								},
							},
							"required":             []any{"id", "criteria"},
							"additionalProperties": false,
						},
					},
				},
				"required":             []any{"id", "title", "stages"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"quests", "concepts"},
	"additionalProperties": false,
}
