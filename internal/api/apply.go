package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/events"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/extract"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/store"
)

// applyFields carries the suggested values the caller chose to apply.
// Nil pointers and empty slices mean the field was not selected.
type applyFields struct {
	Title           *string  `json:"title"`
	CompanyName     *string  `json:"companyName"`
	ReqID           *string  `json:"reqId"`
	JobPostURL      *string  `json:"jobPostUrl"`
	ApplyURL        *string  `json:"applyUrl"`
	Location        *string  `json:"location"`
	WorkMode        *string  `json:"workMode"`
	RecruiterEmails []string `json:"recruiterEmails"`
	Skills          []string `json:"skills"`
	Summary         *string  `json:"summary"`
}

type applyRequest struct {
	Fields      *applyFields `json:"fields"`
	NotesAppend string       `json:"notesAppend"`
}

// selection converts the sparse payload into the field selection plus the
// suggested values the merge runs over.
func (f *applyFields) selection() (extract.FieldSelection, *extract.Result) {
	sel := extract.FieldSelection{}
	res := extract.EmptyResult()
	if f == nil {
		return sel, res
	}

	if f.Title != nil {
		sel[extract.FieldTitle] = true
		res.Title = f.Title
	}
	if f.CompanyName != nil {
		sel[extract.FieldCompanyName] = true
		res.CompanyName = f.CompanyName
	}
	if f.ReqID != nil {
		sel[extract.FieldReqID] = true
		res.ReqID = f.ReqID
	}
	if f.JobPostURL != nil {
		sel[extract.FieldJobPostURL] = true
		res.JobPostURL = f.JobPostURL
	}
	if f.ApplyURL != nil {
		sel[extract.FieldApplyURL] = true
		res.ApplyURL = f.ApplyURL
	}
	if f.Location != nil {
		sel[extract.FieldLocation] = true
		res.Location = f.Location
	}
	if f.WorkMode != nil {
		sel[extract.FieldWorkMode] = true
		res.WorkMode = f.WorkMode
	}
	if len(f.RecruiterEmails) > 0 {
		sel[extract.FieldRecruiterEmails] = true
		res.RecruiterEmails = f.RecruiterEmails
	}
	if len(f.Skills) > 0 {
		sel[extract.FieldSkills] = true
		res.Skills = f.Skills
	}
	if f.Summary != nil {
		sel[extract.FieldSummary] = true
		res.Summary = f.Summary
	}
	return sel, res
}

func (s *Server) applyToJob(w http.ResponseWriter, r *http.Request) {
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

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	sel, suggested := req.Fields.selection()
	if len(sel) == 0 && strings.TrimSpace(req.NotesAppend) == "" {
		writeError(w, http.StatusBadRequest, "No fields or notes to apply")
		return
	}

	current := extract.Current{RecruiterEmails: job.RecruiterEmails, Notes: job.Notes}
	patch := extract.ComputePatch(current, sel, suggested, req.NotesAppend)
	if patch.IsEmpty() {
		writeJSON(w, http.StatusOK, map[string]any{"job": job})
		return
	}

	updated, err := s.store.ApplyPatch(r.Context(), id, patch)
	if err != nil {
		s.logger.Error("apply patch", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to apply suggestions")
		return
	}

	s.events.Publish(events.SubjectExtractionApplied, events.ExtractionApplied{
		JobID:  id.String(),
		Fields: appliedFieldNames(patch),
	})

	writeJSON(w, http.StatusOK, map[string]any{"job": updated})
}

func appliedFieldNames(p extract.Patch) []string {
	fields := []string{}
	add := func(name string, set bool) {
		if set {
			fields = append(fields, name)
		}
	}
	add("title", p.Title != nil)
	add("companyName", p.CompanyName != nil)
	add("reqId", p.ReqID != nil)
	add("jobPostUrl", p.JobPostURL != nil)
	add("applyUrl", p.ApplyURL != nil)
	add("location", p.Location != nil)
	add("workMode", p.WorkMode != nil)
	add("recruiterEmails", p.RecruiterEmails != nil)
	add("skills", p.PrimarySkills != nil || p.SecondarySkills != nil)
	add("notes", p.Notes != nil)
	return fields
}
