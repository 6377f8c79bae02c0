package extract

// Source labels where extraction input text came from.
type Source string

const (
	SourcePastedText Source = "pasted_text"
	SourceJobPage    Source = "job_page"
	SourceApplyPage  Source = "apply_page"
)

// Provenance tags a field's value can carry in Result.Sources. The three
// Source values above plus the two model-side tags.
const (
	TagInferred  = "inferred"
	TagUserInput = "user_input"
)

// Hints are caller-supplied seed values that bias extraction toward an
// expected answer. All optional; empty means no hint.
type Hints struct {
	Title          string
	CompanyName    string
	ReqID          string
	RecruiterEmail string
	JobPostURL     string
	ApplyURL       string
}

// Result is the normalized output of one extraction attempt. Nullable
// fields are pointers; slice and map fields are always non-nil.
type Result struct {
	Title           *string            `json:"title"`
	CompanyName     *string            `json:"companyName"`
	ReqID           *string            `json:"reqId"`
	JobPostURL      *string            `json:"jobPostUrl"`
	ApplyURL        *string            `json:"applyUrl"`
	RecruiterEmails []string           `json:"recruiterEmails"`
	Location        *string            `json:"location"`
	WorkMode        *string            `json:"workMode"`
	Skills          []string           `json:"skills"`
	Summary         *string            `json:"summary"`
	Confidence      map[string]float64 `json:"confidence"`
	Sources         map[string]string  `json:"sources"`
	Warnings        []string           `json:"warnings"`
}

// EmptyResult returns an all-null result carrying the given warnings.
// Every collection field is allocated so callers never see nil.
func EmptyResult(warnings ...string) *Result {
	w := make([]string, 0, len(warnings))
	w = append(w, warnings...)
	return &Result{
		RecruiterEmails: []string{},
		Skills:          []string{},
		Confidence:      map[string]float64{},
		Sources:         map[string]string{},
		Warnings:        w,
	}
}
