package extract

import (
	"context"
	"fmt"
	"strings"
)

const (
	// Pasted text shorter than this is treated as absent.
	minPastedTextChars = 50
	// Fetched pages must yield more than this much plain text to count.
	minFetchedTextChars = 100
)

// AcquireInput is the per-request extraction input.
type AcquireInput struct {
	PastedText string
	JobPostURL string
	ApplyURL   string
}

// ExistingURLs are the URLs already stored on the job record, used as
// fallbacks when the request doesn't supply its own.
type ExistingURLs struct {
	JobPostURL string
	ApplyURL   string
}

// AcquiredText is the outcome of text acquisition. An empty Text means no
// usable input was found; Warnings explain why. That is a normal outcome,
// not an error.
type AcquiredText struct {
	Text     string
	Source   Source
	Warnings []string
}

// AcquireText picks the extraction input by priority: pasted text first,
// then the job post page, then the apply page. Fetch failures and
// too-short pages append a warning and fall through to the next source.
func (f *Fetcher) AcquireText(ctx context.Context, in AcquireInput, existing ExistingURLs) AcquiredText {
	if trimmed := strings.TrimSpace(in.PastedText); len(trimmed) > minPastedTextChars {
		return AcquiredText{Text: trimmed, Source: SourcePastedText, Warnings: []string{}}
	}

	var warnings []string

	if url := firstNonEmpty(in.JobPostURL, existing.JobPostURL); url != "" {
		text, err := f.FetchPageText(ctx, url)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("Failed to fetch job post URL: %v", err))
		case len(text) > minFetchedTextChars:
			return AcquiredText{Text: text, Source: SourceJobPage, Warnings: warnings}
		default:
			warnings = append(warnings, "Job post URL returned insufficient content")
		}
	}

	if url := firstNonEmpty(in.ApplyURL, existing.ApplyURL); url != "" {
		text, err := f.FetchPageText(ctx, url)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("Failed to fetch apply URL: %v", err))
		case len(text) > minFetchedTextChars:
			return AcquiredText{Text: text, Source: SourceApplyPage, Warnings: warnings}
		default:
			warnings = append(warnings, "Apply URL returned insufficient content")
		}
	}

	all := append(
		[]string{"No text available. Paste a job description or provide a working URL."},
		warnings...,
	)
	return AcquiredText{Warnings: all}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
