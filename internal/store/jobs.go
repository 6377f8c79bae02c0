package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/extract"
)

// JobStatuses is the application's pipeline vocabulary, in board order.
var JobStatuses = []string{
	"Saved", "Applied", "Recruiter Screen", "Technical",
	"Final", "Offer", "Rejected", "Ghosted",
}

// Job is one tracked application row.
type Job struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	CompanyName      string     `json:"companyName"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	WorkMode         string     `json:"workMode"`
	Location         string     `json:"location"`
	ReqID            string     `json:"reqId"`
	JobPostURL       string     `json:"jobPostUrl"`
	ApplyURL         string     `json:"applyUrl"`
	RecruiterName    string     `json:"recruiterName"`
	RecruiterEmails  []string   `json:"recruiterEmails"`
	PrimarySkills    []string   `json:"primarySkills"`
	SecondarySkills  []string   `json:"secondarySkills"`
	CompensationText string     `json:"compensationText"`
	NextFollowupAt   *time.Time `json:"nextFollowupAt"`
	Notes            string     `json:"notes"`
	Source           string     `json:"source"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

const jobColumns = `id, COALESCE(title, ''), COALESCE(company_name, ''), status,
	COALESCE(priority, ''), COALESCE(work_mode, ''), COALESCE(location, ''),
	COALESCE(req_id, ''), COALESCE(job_post_url, ''), COALESCE(apply_url, ''),
	COALESCE(recruiter_name, ''), COALESCE(recruiter_emails, '{}'),
	COALESCE(primary_skills, '{}'), COALESCE(secondary_skills, '{}'),
	COALESCE(compensation_text, ''), next_followup_at, COALESCE(notes, ''),
	COALESCE(source, ''), created_at, updated_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.Title, &j.CompanyName, &j.Status,
		&j.Priority, &j.WorkMode, &j.Location,
		&j.ReqID, &j.JobPostURL, &j.ApplyURL,
		&j.RecruiterName, &j.RecruiterEmails,
		&j.PrimarySkills, &j.SecondarySkills,
		&j.CompensationText, &j.NextFollowupAt, &j.Notes,
		&j.Source, &j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return &j, nil
}

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (s *Store) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// CreateJob inserts j with a fresh id and returns the stored row. Empty
// strings become NULL columns.
func (s *Store) CreateJob(ctx context.Context, j *Job) (*Job, error) {
	id := uuid.New()
	status := j.Status
	if status == "" {
		status = "Saved"
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO jobs (id, title, company_name, status, priority, work_mode,
			location, req_id, job_post_url, apply_url, recruiter_name,
			recruiter_emails, primary_skills, secondary_skills,
			compensation_text, next_followup_at, notes, source,
			created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''),
			NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''),
			$12, $13, $14,
			NULLIF($15, ''), $16, NULLIF($17, ''), NULLIF($18, ''),
			now(), now())`,
		id, j.Title, j.CompanyName, status, j.Priority, j.WorkMode,
		j.Location, j.ReqID, j.JobPostURL, j.ApplyURL, j.RecruiterName,
		j.RecruiterEmails, j.PrimarySkills, j.SecondarySkills,
		j.CompensationText, j.NextFollowupAt, j.Notes, j.Source,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.GetJob(ctx, id)
}

// UpdateJob overwrites every mutable column of the row with j's values.
func (s *Store) UpdateJob(ctx context.Context, j *Job) (*Job, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs SET
			title = NULLIF($2, ''), company_name = NULLIF($3, ''), status = $4,
			priority = NULLIF($5, ''), work_mode = NULLIF($6, ''), location = NULLIF($7, ''),
			req_id = NULLIF($8, ''), job_post_url = NULLIF($9, ''), apply_url = NULLIF($10, ''),
			recruiter_name = NULLIF($11, ''), recruiter_emails = $12,
			primary_skills = $13, secondary_skills = $14,
			compensation_text = NULLIF($15, ''), next_followup_at = $16,
			notes = NULLIF($17, ''), source = NULLIF($18, ''), updated_at = now()
		WHERE id = $1`,
		j.ID, j.Title, j.CompanyName, j.Status, j.Priority, j.WorkMode,
		j.Location, j.ReqID, j.JobPostURL, j.ApplyURL, j.RecruiterName,
		j.RecruiterEmails, j.PrimarySkills, j.SecondarySkills,
		j.CompensationText, j.NextFollowupAt, j.Notes, j.Source,
	)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetJob(ctx, j.ID)
}

func (s *Store) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyPatch writes only the columns the patch names and returns the
// updated row. An empty patch reads the row back unchanged.
func (s *Store) ApplyPatch(ctx context.Context, id uuid.UUID, p extract.Patch) (*Job, error) {
	var sets []string
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.CompanyName != nil {
		add("company_name", *p.CompanyName)
	}
	if p.ReqID != nil {
		add("req_id", *p.ReqID)
	}
	if p.JobPostURL != nil {
		add("job_post_url", *p.JobPostURL)
	}
	if p.ApplyURL != nil {
		add("apply_url", *p.ApplyURL)
	}
	if p.Location != nil {
		add("location", *p.Location)
	}
	if p.WorkMode != nil {
		add("work_mode", *p.WorkMode)
	}
	if p.RecruiterEmails != nil {
		add("recruiter_emails", p.RecruiterEmails)
	}
	if p.PrimarySkills != nil {
		add("primary_skills", p.PrimarySkills)
	}
	if p.SecondarySkills != nil {
		add("secondary_skills", p.SecondarySkills)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}

	if len(sets) == 0 {
		return s.GetJob(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	query := fmt.Sprintf(`UPDATE jobs SET %s WHERE id = $1`, strings.Join(sets, ", "))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetJob(ctx, id)
}
