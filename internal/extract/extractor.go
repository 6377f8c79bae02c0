package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/gemini"
)

const (
	// maxPromptChars bounds the text embedded in the model prompt.
	maxPromptChars = 15000

	// Extraction wants determinism, not creativity.
	temperature     = 0.1
	maxOutputTokens = 2048
)

// Extractor runs the model half of the pipeline: prompt, call, parse,
// normalize, with a single corrective retry on malformed JSON. Stateless
// between calls.
type Extractor struct {
	llm    *gemini.Client
	logger *slog.Logger
}

func New(llm *gemini.Client, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// Extract derives structured job fields from text. Model-side failures
// degrade into an empty result with warnings; the one exception is rate
// limiting, which is returned as *gemini.RateLimitError so the caller can
// open a cooldown window. The returned result is always structurally
// valid.
func (e *Extractor) Extract(ctx context.Context, text string, source Source, hints Hints) (*Result, error) {
	text = truncateText(text, maxPromptChars)
	prompt := BuildPrompt(text, source, hints)

	e.logger.Info("extracting job fields",
		"source", source,
		"text_len", len(text),
	)

	raw, err := e.llm.Generate(ctx, prompt, temperature, maxOutputTokens)
	if err != nil {
		var rle *gemini.RateLimitError
		if errors.As(err, &rle) {
			return nil, rle
		}
		return EmptyResult(fmt.Sprintf("Gemini API error: %v", err)), nil
	}

	if result, ok := parseResponse(raw); ok {
		return result, nil
	}

	// Exactly one retry with a corrective instruction, never a loop.
	e.logger.Warn("model response was not valid JSON, retrying once", "source", source)

	raw, err = e.llm.Generate(ctx, prompt+"\n\n"+retryPrompt, temperature, maxOutputTokens)
	if err != nil {
		var rle *gemini.RateLimitError
		if errors.As(err, &rle) {
			return nil, rle
		}
		return EmptyResult(fmt.Sprintf("Gemini retry error: %v", err)), nil
	}

	if result, ok := parseResponse(raw); ok {
		return result, nil
	}

	return EmptyResult("Gemini returned invalid JSON after retry"), nil
}

// parseResponse strips optional markdown code fences, parses the model
// output as a JSON object and normalizes it. ok is false when the output
// is not a JSON object.
func parseResponse(raw string) (*Result, bool) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, false
	}
	if parsed == nil {
		// "null" parses fine but is not an object.
		return nil, false
	}
	return Normalize(parsed), true
}
