package profile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process store for local/dev use.
type InMemoryStore struct {
	mu            sync.RWMutex
	patients      map[string]Patient
	consultations map[string][]Consultation
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		patients:      make(map[string]Patient),
		consultations: make(map[string][]Consultation),
	}
}

func (s *InMemoryStore) GetPatient(_ context.Context, patientID string) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[patientID]
	if !ok {
		return nil, ErrNotFound
	}
	out := p
	out.Allergies = append([]string(nil), p.Allergies...)
	out.Conditions = append([]string(nil), p.Conditions...)
	out.Medications = append([]string(nil), p.Medications...)
	return &out, nil
}

func (s *InMemoryStore) UpsertPatient(_ context.Context, p Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	s.patients[p.ID] = p
	return nil
}

func (s *InMemoryStore) RecordConsultation(_ context.Context, c Consultation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.consultations[c.PatientID] = append(s.consultations[c.PatientID], c)
	return nil
}

func (s *InMemoryStore) History(_ context.Context, patientID string, limit int) ([]Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.consultations[patientID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]Consultation, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
