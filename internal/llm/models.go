package llm

// Friendly model names keep config files and env vars stable while the
// pinned provider IDs move underneath them. Anything not in a map is
// passed to the provider verbatim, so exact model IDs still work.

var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-5-20250929",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
}

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
}

// resolveModel translates a friendly name into a pinned model ID,
// passing unrecognized values through unchanged.
func resolveModel(name string, pinned map[string]string) string {
	if id, ok := pinned[name]; ok {
		return id
	}
	return name
}
