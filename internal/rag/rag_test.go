package rag

import (
	"context"
	"fmt"
	"sync"

	"caregiver-rag/internal/models"
)

// fakeEmbedder returns a fixed vector and records how often it was called.
type fakeEmbedder struct {
	mu    sync.Mutex
	vec   []float32
	err   error
	calls int

	// failOn makes Embed fail only for this exact text.
	failOn string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.failOn != "" && text == f.failOn {
		return nil, fmt.Errorf("embedding rejected")
	}
	if f.vec != nil {
		return f.vec, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// fakeStore is an in-memory Store.
type fakeStore struct {
	records  map[string]models.Record
	results  []models.Context
	listErr  error
	queryErr error

	lastTopK int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]models.Record)}
}

func (s *fakeStore) ListIDs(_ context.Context, _ string) (map[string]struct{}, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	ids := make(map[string]struct{}, len(s.records))
	for id := range s.records {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *fakeStore) Insert(_ context.Context, _ string, record models.Record) error {
	if _, ok := s.records[record.ID]; !ok {
		s.records[record.ID] = record
	}
	return nil
}

func (s *fakeStore) Query(_ context.Context, _ string, _ []float32, topK int) ([]models.Context, error) {
	s.lastTopK = topK
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.results, nil
}

// fakeCompleter returns a canned response and records the last request.
type fakeCompleter struct {
	response string
	err      error

	calls      int
	lastSystem string
	lastUser   string
	lastTemp   float64
}

func (c *fakeCompleter) Complete(_ context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	c.calls++
	c.lastSystem = systemPrompt
	c.lastUser = userPrompt
	c.lastTemp = temperature
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

// fakeRetriever feeds the composer fixed contexts.
type fakeRetriever struct {
	contexts []models.Context
	err      error
}

func (r *fakeRetriever) Retrieve(_ context.Context, _ string, _ int) ([]models.Context, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.contexts, nil
}
