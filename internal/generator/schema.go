package generator

import "github.com/probuddy/api/internal/llm"

var planSchema = &llm.Schema{
	Name: "journey-plan",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ai_notes": map[string]any{
				"type":        "string",
				"description": "Brief encouraging overview of the journey (1-2 sentences)",
			},
			"steps": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":          map[string]any{"type": "string"},
						"description":    map[string]any{"type": "string"},
						"estimated_days": map[string]any{"type": "integer"},
						"path_type":      map[string]any{"type": "string", "enum": []any{"main", "alternative"}},
						"prerequisites": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"tips": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required": []any{"title"},
				},
			},
		},
		"required": []any{"steps"},
	},
}

var adjustmentSchema = &llm.Schema{
	Name: "journey-adjustment",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"changes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": map[string]any{
							"type": "string",
							"enum": []any{ChangeUpdateTitle, ChangeCompleteStep, ChangeSkipStep, ChangeUpdateStatus},
						},
						"step_index":  map[string]any{"type": "integer"},
						"new_title":   map[string]any{"type": "string"},
						"new_status":  map[string]any{"type": "string"},
						"reason":      map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
					},
					"required": []any{"type", "step_index"},
				},
			},
			"ai_message":             map[string]any{"type": "string"},
			"new_current_step_index": map[string]any{"type": "integer"},
		},
		"required": []any{"changes"},
	},
}
