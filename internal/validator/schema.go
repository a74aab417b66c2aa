package validator

import "github.com/solotrader/tradecraft/internal/llm"

// GradeSchema defines the JSON schema for LLM marking-grade responses.
var GradeSchema = &llm.Schema{
	Name:        "marking-grade",
	Description: "A per-criterion grade of the learner's chart markings",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"criteria": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"criterion": map[string]any{
							"type":        "string",
							"description": "The criterion name exactly as given in the prompt",
						},
						"passed": map[string]any{
							"type":        "boolean",
							"description": "Whether the markings satisfy this criterion",
						},
						"message": map[string]any{
							"type":        "string",
							"description": "One sentence of feedback for the learner",
						},
						"suggestion": map[string]any{
							"type":        "string",
							"description": "One concrete improvement, empty when passed",
						},
					},
					"required":             []any{"criterion", "passed", "message", "suggestion"},
					"additionalProperties": false,
				},
				"description": "One entry per criterion, in the order given",
			},
		},
		"required":             []any{"criteria"},
		"additionalProperties": false,
	},
}
