package extract

import (
	"regexp"
	"strings"
)

// maxSkills caps the normalized skill list.
const maxSkills = 10

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validSourceTags = map[string]bool{
	string(SourcePastedText): true,
	string(SourceJobPage):    true,
	string(SourceApplyPage):  true,
	TagInferred:              true,
	TagUserInput:             true,
}

// Normalize validates and cleans a raw parsed model response field by
// field. It is total (malformed values degrade to null or empty, never an
// error) and idempotent: normalizing an already-normalized result is a
// no-op.
func Normalize(raw map[string]any) *Result {
	emails := dedup(filterEmails(stringSlice(raw["recruiterEmails"])))
	skills := dedup(stringSlice(raw["skills"]))
	if len(skills) > maxSkills {
		skills = skills[:maxSkills]
	}

	return &Result{
		Title:           stringOrNil(raw["title"]),
		CompanyName:     stringOrNil(raw["companyName"]),
		ReqID:           stringOrNil(raw["reqId"]),
		JobPostURL:      stringOrNil(raw["jobPostUrl"]),
		ApplyURL:        stringOrNil(raw["applyUrl"]),
		RecruiterEmails: emails,
		Location:        stringOrNil(raw["location"]),
		WorkMode:        normalizeWorkMode(stringOrNil(raw["workMode"])),
		Skills:          skills,
		Summary:         stringOrNil(raw["summary"]),
		Confidence:      clampConfidence(raw["confidence"]),
		Sources:         filterSources(raw["sources"]),
		Warnings:        stringSlice(raw["warnings"]),
	}
}

// normalizeWorkMode maps free text onto the Remote/Hybrid/Onsite
// vocabulary by substring. Non-empty text that matches nothing is passed
// through unchanged so the original phrasing survives.
func normalizeWorkMode(raw *string) *string {
	if raw == nil {
		return nil
	}
	lower := strings.ToLower(*raw)
	var mode string
	switch {
	case strings.Contains(lower, "remote"):
		mode = WorkModeRemote
	case strings.Contains(lower, "hybrid"):
		mode = WorkModeHybrid
	case strings.Contains(lower, "onsite"), strings.Contains(lower, "on-site"), strings.Contains(lower, "office"):
		mode = WorkModeOnsite
	default:
		return raw
	}
	return &mode
}

func stringOrNil(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func stringSlice(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		// Already-normalized results round-trip as []string.
		if ss, ok := v.([]string); ok {
			items = make([]any, len(ss))
			for i, s := range ss {
				items[i] = s
			}
		} else {
			return out
		}
	}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func filterEmails(in []string) []string {
	out := []string{}
	for _, e := range in {
		if emailRe.MatchString(e) {
			out = append(out, e)
		}
	}
	return out
}

// dedup removes duplicates preserving first-occurrence order.
func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := []string{}
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func clampConfidence(v any) map[string]float64 {
	out := map[string]float64{}
	switch m := v.(type) {
	case map[string]any:
		for key, val := range m {
			if f, ok := val.(float64); ok {
				out[key] = clamp01(f)
			}
		}
	case map[string]float64:
		for key, f := range m {
			out[key] = clamp01(f)
		}
	}
	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func filterSources(v any) map[string]string {
	out := map[string]string{}
	switch m := v.(type) {
	case map[string]any:
		for key, val := range m {
			if s, ok := val.(string); ok && validSourceTags[s] {
				out[key] = s
			}
		}
	case map[string]string:
		for key, s := range m {
			if validSourceTags[s] {
				out[key] = s
			}
		}
	}
	return out
}
