package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/extract"
)

// ExtractionRun is the audit record of one extraction attempt against a job.
type ExtractionRun struct {
	ID         uuid.UUID          `json:"id"`
	JobID      uuid.UUID          `json:"jobId"`
	InputText  string             `json:"inputText"`
	Extracted  json.RawMessage    `json:"extracted"`
	Confidence map[string]float64 `json:"confidence"`
	Sources    map[string]string  `json:"sources"`
	Warnings   []string           `json:"warnings"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// InsertExtractionRun records one extraction attempt: the (already
// excerpted) input, the suggested fields, and the confidence/source/warning
// metadata.
func (s *Store) InsertExtractionRun(ctx context.Context, jobID uuid.UUID, inputText string, res *extract.Result) (uuid.UUID, error) {
	extracted, err := json.Marshal(map[string]any{
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
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal extracted: %w", err)
	}
	confidence, err := json.Marshal(res.Confidence)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal confidence: %w", err)
	}
	sources, err := json.Marshal(res.Sources)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal sources: %w", err)
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO extraction_runs (id, job_id, input_text, extracted, confidence, sources, warnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		id, jobID, inputText, extracted, confidence, sources, res.Warnings,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert extraction run: %w", err)
	}
	return id, nil
}

// ListExtractionRuns returns a job's extraction history, newest first.
func (s *Store) ListExtractionRuns(ctx context.Context, jobID uuid.UUID) ([]ExtractionRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, job_id, input_text, extracted, confidence, sources,
			COALESCE(warnings, '{}'), created_at
		FROM extraction_runs
		WHERE job_id = $1
		ORDER BY created_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("list extraction runs: %w", err)
	}
	defer rows.Close()

	runs := make([]ExtractionRun, 0)
	for rows.Next() {
		var (
			run        ExtractionRun
			confidence []byte
			sources    []byte
		)
		if err := rows.Scan(&run.ID, &run.JobID, &run.InputText, &run.Extracted, &confidence, &sources, &run.Warnings, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan extraction run: %w", err)
		}
		run.Confidence = map[string]float64{}
		run.Sources = map[string]string{}
		if len(confidence) > 0 {
			if err := json.Unmarshal(confidence, &run.Confidence); err != nil {
				return nil, fmt.Errorf("decode confidence: %w", err)
			}
		}
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &run.Sources); err != nil {
				return nil, fmt.Errorf("decode sources: %w", err)
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
