package llm

// BuildLabReplySchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is embedded in the prompt and used locally to validate the reply.
func BuildLabReplySchema() map[string]any {
	row := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":      map[string]any{"type": "string", "minLength": 1},
			"result":    map[string]any{"type": []string{"string", "number"}},
			"unit":      nullableString(),
			"reference": nullableString(),
		},
		"required": []string{"name", "result"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"rows": map[string]any{"type": "array", "items": row},
			"date": nullableString(),
		},
		"required": []string{"rows"},
	}
}

// models emit null for blank cells often enough to allow it
func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}
