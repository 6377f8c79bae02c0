package extract

import (
	"strings"
)

// Canonical work-mode labels. Anything else is kept out of the work_mode
// column.
const (
	WorkModeRemote = "Remote"
	WorkModeHybrid = "Hybrid"
	WorkModeOnsite = "Onsite"
)

// Skill split applied to the job record's two skill columns.
const (
	maxPrimarySkills = 6
	maxTotalSkills   = 20
)

// notesLabel marks AI-derived text appended to a job's notes.
const notesLabel = "AI Extract:"

// FieldKey names a suggested field the caller can choose to apply.
type FieldKey string

const (
	FieldTitle           FieldKey = "title"
	FieldCompanyName     FieldKey = "companyName"
	FieldReqID           FieldKey = "reqId"
	FieldJobPostURL      FieldKey = "jobPostUrl"
	FieldApplyURL        FieldKey = "applyUrl"
	FieldRecruiterEmails FieldKey = "recruiterEmails"
	FieldLocation        FieldKey = "location"
	FieldWorkMode        FieldKey = "workMode"
	FieldSkills          FieldKey = "skills"
	FieldSummary         FieldKey = "summary"
)

// FieldSelection is the set of suggested fields the caller chose to apply.
type FieldSelection map[FieldKey]bool

// Current is the snapshot of the job record a patch is computed against.
// Only the fields that merge (rather than overwrite) are needed.
type Current struct {
	RecruiterEmails []string
	Notes           string
}

// Patch is a sparse set of job-record changes. Nil means the column is
// untouched.
type Patch struct {
	Title           *string
	CompanyName     *string
	ReqID           *string
	JobPostURL      *string
	ApplyURL        *string
	Location        *string
	WorkMode        *string
	RecruiterEmails []string
	PrimarySkills   []string
	SecondarySkills []string
	Notes           *string
}

// IsEmpty reports whether applying the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.CompanyName == nil && p.ReqID == nil &&
		p.JobPostURL == nil && p.ApplyURL == nil && p.Location == nil &&
		p.WorkMode == nil && p.RecruiterEmails == nil &&
		p.PrimarySkills == nil && p.SecondarySkills == nil && p.Notes == nil
}

// ComputePatch turns a field selection over suggested values into the
// sparse update to persist. Scalar fields overwrite, recruiter emails
// union-merge with the existing list, skills replace both skill columns
// split primary-first, and the summary is routed into a notes append. The
// function never mutates current and never fails; an empty selection
// yields an empty patch.
func ComputePatch(current Current, selection FieldSelection, suggested *Result, notesAppend string) Patch {
	var p Patch
	if suggested == nil {
		suggested = EmptyResult()
	}

	pick := func(key FieldKey, v *string) *string {
		if selection[key] && v != nil {
			val := *v
			return &val
		}
		return nil
	}

	p.Title = pick(FieldTitle, suggested.Title)
	p.CompanyName = pick(FieldCompanyName, suggested.CompanyName)
	p.ReqID = pick(FieldReqID, suggested.ReqID)
	p.JobPostURL = pick(FieldJobPostURL, suggested.JobPostURL)
	p.ApplyURL = pick(FieldApplyURL, suggested.ApplyURL)
	p.Location = pick(FieldLocation, suggested.Location)

	if selection[FieldWorkMode] && suggested.WorkMode != nil {
		if mode, ok := canonicalWorkMode(*suggested.WorkMode); ok {
			p.WorkMode = &mode
		}
		// Unrecognized modes are skipped, not an error.
	}

	if selection[FieldRecruiterEmails] && len(suggested.RecruiterEmails) > 0 {
		merged := make([]string, 0, len(current.RecruiterEmails)+len(suggested.RecruiterEmails))
		merged = append(merged, current.RecruiterEmails...)
		merged = append(merged, suggested.RecruiterEmails...)
		p.RecruiterEmails = dedup(merged)
	}

	if selection[FieldSkills] && len(suggested.Skills) > 0 {
		unique := dedup(stringSliceFrom(suggested.Skills))
		if len(unique) > maxTotalSkills {
			unique = unique[:maxTotalSkills]
		}
		split := len(unique)
		if split > maxPrimarySkills {
			split = maxPrimarySkills
		}
		p.PrimarySkills = unique[:split]
		p.SecondarySkills = unique[split:]
	}

	var notesParts []string
	if selection[FieldSummary] && suggested.Summary != nil {
		notesParts = append(notesParts, "Summary: "+*suggested.Summary)
	}
	if t := strings.TrimSpace(notesAppend); t != "" {
		notesParts = append(notesParts, t)
	}
	if appendText := strings.TrimSpace(strings.Join(notesParts, "\n")); appendText != "" {
		sep := notesLabel + "\n"
		if current.Notes != "" {
			sep = "\n\n---\n" + sep
		}
		notes := current.Notes + sep + appendText
		p.Notes = &notes
	}

	return p
}

// canonicalWorkMode matches a suggested mode against the accepted labels,
// case-insensitively.
func canonicalWorkMode(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "remote":
		return WorkModeRemote, true
	case "hybrid":
		return WorkModeHybrid, true
	case "onsite":
		return WorkModeOnsite, true
	}
	return "", false
}

func stringSliceFrom(in []string) []string {
	out := []string{}
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
