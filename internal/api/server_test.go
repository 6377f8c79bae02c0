package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"

	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/cooldown"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/extract"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/gemini"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/store"
)

// The redis-backed gate must keep satisfying the handler-facing interface.
var _ Gate = (*cooldown.Gate)(nil)

// fakeStore is an in-memory JobStore for handler tests.
type fakeStore struct {
	jobs map[uuid.UUID]*store.Job
	runs []store.ExtractionRun
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: map[uuid.UUID]*store.Job{}}
}

func (f *fakeStore) ListJobs(ctx context.Context) ([]store.Job, error) {
	out := []store.Job{}
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (f *fakeStore) GetJob(ctx context.Context, id uuid.UUID) (*store.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeStore) CreateJob(ctx context.Context, j *store.Job) (*store.Job, error) {
	cp := *j
	cp.ID = uuid.New()
	if cp.Status == "" {
		cp.Status = "Saved"
	}
	f.jobs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) UpdateJob(ctx context.Context, j *store.Job) (*store.Job, error) {
	if _, ok := f.jobs[j.ID]; !ok {
		return nil, store.ErrNotFound
	}
	cp := *j
	f.jobs[j.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) DeleteJob(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.jobs[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeStore) ApplyPatch(ctx context.Context, id uuid.UUID, p extract.Patch) (*store.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&j.Title, p.Title)
	set(&j.CompanyName, p.CompanyName)
	set(&j.ReqID, p.ReqID)
	set(&j.JobPostURL, p.JobPostURL)
	set(&j.ApplyURL, p.ApplyURL)
	set(&j.Location, p.Location)
	set(&j.WorkMode, p.WorkMode)
	set(&j.Notes, p.Notes)
	if p.RecruiterEmails != nil {
		j.RecruiterEmails = p.RecruiterEmails
	}
	if p.PrimarySkills != nil {
		j.PrimarySkills = p.PrimarySkills
	}
	if p.SecondarySkills != nil {
		j.SecondarySkills = p.SecondarySkills
	}
	cp := *j
	return &cp, nil
}

func (f *fakeStore) InsertExtractionRun(ctx context.Context, jobID uuid.UUID, inputText string, res *extract.Result) (uuid.UUID, error) {
	run := store.ExtractionRun{
		ID:         uuid.New(),
		JobID:      jobID,
		InputText:  inputText,
		Confidence: res.Confidence,
		Sources:    res.Sources,
		Warnings:   res.Warnings,
		CreatedAt:  time.Now(),
	}
	f.runs = append(f.runs, run)
	return run.ID, nil
}

func (f *fakeStore) ListExtractionRuns(ctx context.Context, jobID uuid.UUID) ([]store.ExtractionRun, error) {
	out := []store.ExtractionRun{}
	for i := len(f.runs) - 1; i >= 0; i-- {
		if f.runs[i].JobID == jobID {
			out = append(out, f.runs[i])
		}
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// geminiText wraps text in the generateContent response envelope.
func geminiText(text string) string {
	env := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	b, _ := json.Marshal(env)
	return string(b)
}

// newTestServer wires a server around the fake store and a stub Gemini
// backend. The returned counter tracks model calls.
func newTestServer(fs *fakeStore, geminiHandler http.HandlerFunc) (*Server, *httptest.Server) {
	backend := httptest.NewServer(geminiHandler)

	llm := gemini.NewClient(backend.URL, "test-key", "test-model")
	ext := extract.New(llm, discardLogger())

	s := NewServer(0, "", Deps{
		Store:     fs,
		Extractor: ext,
		Fetcher:   extract.NewFetcher(5 * time.Second),
		Logger:    discardLogger(),
	})
	return s, backend
}

func doJSON(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(rec *httptest.ResponseRecorder, v any) error {
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
