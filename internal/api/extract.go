package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/events"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/extract"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/gemini"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/store"
)

// Audit rows keep only the head of the input text.
const maxExcerptChars = 500

type extractRequest struct {
	PastedText string        `json:"pastedText"`
	JobPostURL string        `json:"jobPostUrl"`
	ApplyURL   string        `json:"applyUrl"`
	Hints      *hintsPayload `json:"hints"`
}

type hintsPayload struct {
	Title          string `json:"title"`
	CompanyName    string `json:"companyName"`
	ReqID          string `json:"reqId"`
	RecruiterEmail string `json:"recruiterEmail"`
	JobPostURL     string `json:"jobPostUrl"`
	ApplyURL       string `json:"applyUrl"`
}

func (h *hintsPayload) toHints() extract.Hints {
	if h == nil {
		return extract.Hints{}
	}
	return extract.Hints{
		Title:          h.Title,
		CompanyName:    h.CompanyName,
		ReqID:          h.ReqID,
		RecruiterEmail: h.RecruiterEmail,
		JobPostURL:     h.JobPostURL,
		ApplyURL:       h.ApplyURL,
	}
}

// mergeOver overlays the request hints onto base field by field, so a
// caller hinting only one field still gets the rest seeded from the job
// record.
func (h *hintsPayload) mergeOver(base extract.Hints) extract.Hints {
	if h == nil {
		return base
	}
	pick := func(req, fallback string) string {
		if req != "" {
			return req
		}
		return fallback
	}
	return extract.Hints{
		Title:          pick(h.Title, base.Title),
		CompanyName:    pick(h.CompanyName, base.CompanyName),
		ReqID:          pick(h.ReqID, base.ReqID),
		RecruiterEmail: pick(h.RecruiterEmail, base.RecruiterEmail),
		JobPostURL:     pick(h.JobPostURL, base.JobPostURL),
		ApplyURL:       pick(h.ApplyURL, base.ApplyURL),
	}
}

type extractResponse struct {
	Suggested  map[string]any     `json:"suggested"`
	Confidence map[string]float64 `json:"confidence"`
	Sources    map[string]string  `json:"sources"`
	Warnings   []string           `json:"warnings"`
	RunID      string             `json:"runId,omitempty"`
}

type rateLimitResponse struct {
	RateLimited       bool `json:"rateLimited"`
	RetryAfterSeconds int  `json:"retryAfterSeconds"`
}

// suggestedFields flattens just the extracted field values; confidence,
// sources and warnings travel beside them in the response.
func suggestedFields(res *extract.Result) map[string]any {
	return map[string]any{
		"title":           res.Title,
		"companyName":     res.CompanyName,
		"reqId":           res.ReqID,
		"jobPostUrl":      res.JobPostURL,
		"applyUrl":        res.ApplyURL,
		"recruiterEmails": res.RecruiterEmails,
		"location":        res.Location,
		"workMode":        res.WorkMode,
		"skills":          res.Skills,
		"summary":         res.Summary,
	}
}

func decodeExtractRequest(r *http.Request) (extractRequest, error) {
	var req extractRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

func (s *Server) extractForJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	job, err := s.store.GetJob(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		s.logger.Error("get job", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	req, err := decodeExtractRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	if remaining, active := s.cooldownActive(r.Context()); active {
		writeJSON(w, http.StatusTooManyRequests, rateLimitResponse{RateLimited: true, RetryAfterSeconds: remaining})
		return
	}

	hasInput := strings.TrimSpace(req.PastedText) != "" ||
		req.JobPostURL != "" || req.ApplyURL != "" ||
		job.JobPostURL != "" || job.ApplyURL != ""
	if !hasInput {
		writeError(w, http.StatusBadRequest, "Add JD text or a URL to extract from.")
		return
	}

	acquired := s.fetcher.AcquireText(r.Context(),
		extract.AcquireInput{PastedText: req.PastedText, JobPostURL: req.JobPostURL, ApplyURL: req.ApplyURL},
		extract.ExistingURLs{JobPostURL: job.JobPostURL, ApplyURL: job.ApplyURL},
	)
	if acquired.Text == "" {
		res := extract.EmptyResult(acquired.Warnings...)
		writeJSON(w, http.StatusOK, extractResponse{
			Suggested:  suggestedFields(res),
			Confidence: res.Confidence,
			Sources:    res.Sources,
			Warnings:   res.Warnings,
		})
		return
	}

	recordHints := extract.Hints{
		Title:       job.Title,
		CompanyName: job.CompanyName,
		ReqID:       job.ReqID,
		JobPostURL:  job.JobPostURL,
		ApplyURL:    job.ApplyURL,
	}
	if len(job.RecruiterEmails) > 0 {
		recordHints.RecruiterEmail = job.RecruiterEmails[0]
	}
	hints := req.Hints.mergeOver(recordHints)

	res, err := s.extractor.Extract(r.Context(), acquired.Text, acquired.Source, hints)
	if err != nil {
		var rle *gemini.RateLimitError
		if errors.As(err, &rle) {
			s.armCooldown(r.Context(), rle.RetryAfterSeconds)
			writeJSON(w, http.StatusTooManyRequests, rateLimitResponse{RateLimited: true, RetryAfterSeconds: rle.RetryAfterSeconds})
			return
		}
		s.logger.Error("extraction failed", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}
	res.Warnings = append(append([]string{}, acquired.Warnings...), res.Warnings...)

	excerpt := fmt.Sprintf("[Source: %s]\n%s", acquired.Source, headOfText(acquired.Text, maxExcerptChars))
	runID := ""
	if rid, auditErr := s.store.InsertExtractionRun(r.Context(), id, excerpt, res); auditErr != nil {
		s.logger.Error("failed to record extraction run", "job_id", id, "error", auditErr)
	} else {
		runID = rid.String()
	}

	s.events.Publish(events.SubjectExtractionSuggested, events.ExtractionSuggested{
		JobID:    id.String(),
		RunID:    runID,
		Source:   string(acquired.Source),
		Warnings: res.Warnings,
	})

	writeJSON(w, http.StatusOK, extractResponse{
		Suggested:  suggestedFields(res),
		Confidence: res.Confidence,
		Sources:    res.Sources,
		Warnings:   res.Warnings,
		RunID:      runID,
	})
}

// extractFreeform runs the same pipeline without a job record: no seeded
// hints, no audit row, no event.
func (s *Server) extractFreeform(w http.ResponseWriter, r *http.Request) {
	req, err := decodeExtractRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	if remaining, active := s.cooldownActive(r.Context()); active {
		writeJSON(w, http.StatusTooManyRequests, rateLimitResponse{RateLimited: true, RetryAfterSeconds: remaining})
		return
	}

	if strings.TrimSpace(req.PastedText) == "" && req.JobPostURL == "" && req.ApplyURL == "" {
		writeError(w, http.StatusBadRequest, "Add JD text or a URL to extract from.")
		return
	}

	acquired := s.fetcher.AcquireText(r.Context(),
		extract.AcquireInput{PastedText: req.PastedText, JobPostURL: req.JobPostURL, ApplyURL: req.ApplyURL},
		extract.ExistingURLs{},
	)
	if acquired.Text == "" {
		res := extract.EmptyResult(acquired.Warnings...)
		writeJSON(w, http.StatusOK, extractResponse{
			Suggested:  suggestedFields(res),
			Confidence: res.Confidence,
			Sources:    res.Sources,
			Warnings:   res.Warnings,
		})
		return
	}

	res, err := s.extractor.Extract(r.Context(), acquired.Text, acquired.Source, req.Hints.toHints())
	if err != nil {
		var rle *gemini.RateLimitError
		if errors.As(err, &rle) {
			s.armCooldown(r.Context(), rle.RetryAfterSeconds)
			writeJSON(w, http.StatusTooManyRequests, rateLimitResponse{RateLimited: true, RetryAfterSeconds: rle.RetryAfterSeconds})
			return
		}
		s.logger.Error("extraction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}
	res.Warnings = append(append([]string{}, acquired.Warnings...), res.Warnings...)

	writeJSON(w, http.StatusOK, extractResponse{
		Suggested:  suggestedFields(res),
		Confidence: res.Confidence,
		Sources:    res.Sources,
		Warnings:   res.Warnings,
	})
}

func headOfText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
