//go:build integration

package store

import (
	"context"
	"os"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/extract"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_JobLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreateJob(ctx, &Job{
		Title:           "Integration Engineer",
		CompanyName:     "Acme",
		RecruiterEmails: []string{"r@acme.example"},
	})
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	t.Cleanup(func() { _ = s.DeleteJob(ctx, created.ID) })

	if created.Status != "Saved" {
		t.Errorf("expected default status Saved, got %q", created.Status)
	}

	got, err := s.GetJob(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Title != "Integration Engineer" {
		t.Errorf("unexpected title %q", got.Title)
	}

	got.Status = "Applied"
	got.Notes = "sent application"
	updated, err := s.UpdateJob(ctx, got)
	if err != nil {
		t.Fatalf("UpdateJob failed: %v", err)
	}
	if updated.Status != "Applied" || updated.Notes != "sent application" {
		t.Errorf("update not persisted: %+v", updated)
	}
}

func TestIntegration_ApplyPatch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreateJob(ctx, &Job{
		Title:           "Before",
		RecruiterEmails: []string{"old@acme.example"},
		Notes:           "existing",
	})
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	t.Cleanup(func() { _ = s.DeleteJob(ctx, created.ID) })

	title := "After"
	notes := "existing\n\n---\nAI Extract:\nSummary: A role."
	patch := extract.Patch{
		Title:           &title,
		RecruiterEmails: []string{"old@acme.example", "new@acme.example"},
		PrimarySkills:   []string{"Go", "SQL"},
		SecondarySkills: []string{"Docker"},
		Notes:           &notes,
	}

	updated, err := s.ApplyPatch(ctx, created.ID, patch)
	if err != nil {
		t.Fatalf("ApplyPatch failed: %v", err)
	}
	if updated.Title != "After" {
		t.Errorf("expected title After, got %q", updated.Title)
	}
	if !reflect.DeepEqual(updated.RecruiterEmails, patch.RecruiterEmails) {
		t.Errorf("unexpected emails: %v", updated.RecruiterEmails)
	}
	if !reflect.DeepEqual(updated.PrimarySkills, []string{"Go", "SQL"}) {
		t.Errorf("unexpected primary skills: %v", updated.PrimarySkills)
	}
	if updated.Notes != notes {
		t.Errorf("unexpected notes: %q", updated.Notes)
	}

	// Empty patch is a readback, not an error.
	same, err := s.ApplyPatch(ctx, created.ID, extract.Patch{})
	if err != nil {
		t.Fatalf("empty ApplyPatch failed: %v", err)
	}
	if same.Title != "After" {
		t.Errorf("empty patch changed the row: %+v", same)
	}
}

func TestIntegration_ExtractionRuns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreateJob(ctx, &Job{Title: "Run Target"})
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	t.Cleanup(func() { _ = s.DeleteJob(ctx, created.ID) })

	res := extract.EmptyResult("one warning")
	title := "Suggested Title"
	res.Title = &title
	res.Confidence["title"] = 0.9
	res.Sources["title"] = "pasted_text"

	runID, err := s.InsertExtractionRun(ctx, created.ID, "[Source: pasted_text]\nsome excerpt", res)
	if err != nil {
		t.Fatalf("InsertExtractionRun failed: %v", err)
	}

	runs, err := s.ListExtractionRuns(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListExtractionRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Fatalf("expected the inserted run, got %+v", runs)
	}
	if runs[0].Confidence["title"] != 0.9 {
		t.Errorf("confidence not round-tripped: %v", runs[0].Confidence)
	}
	if runs[0].Sources["title"] != "pasted_text" {
		t.Errorf("sources not round-tripped: %v", runs[0].Sources)
	}
	if len(runs[0].Warnings) != 1 || runs[0].Warnings[0] != "one warning" {
		t.Errorf("warnings not round-tripped: %v", runs[0].Warnings)
	}
}

func TestIntegration_NotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.GetJob(ctx, uuid.New())
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
