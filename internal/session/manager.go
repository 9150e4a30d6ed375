package session

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emastro/vitalia/internal/symptoms"
)

// Manager holds all live conversations. Reads hand out deep copies so callers
// never share mutable state with the janitor or other turns.
type Manager struct {
	mu                    sync.RWMutex
	conversations         map[string]*Conversation
	conversationByPatient map[string]string
	inactivityTimeout     time.Duration
	onExpire              func(*Conversation)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	return &Manager{
		conversations:         make(map[string]*Conversation),
		conversationByPatient: make(map[string]string),
		inactivityTimeout:     inactivityTimeout,
	}
}

// SetExpireHook registers a callback invoked (outside the lock) for each
// conversation the janitor ends.
func (m *Manager) SetExpireHook(hook func(*Conversation)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

func (m *Manager) Create(patientID, language string) *Conversation {
	now := time.Now().UTC()
	c := &Conversation{
		ID:             uuid.NewString(),
		PatientID:      patientID,
		Status:         StatusActive,
		Language:       language,
		StartedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[c.ID] = c
	if patientID != "" {
		m.conversationByPatient[patientID] = c.ID
	}
	return clone(c)
}

func (m *Manager) Get(conversationID string) (*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(c), nil
}

// BeginTurn claims the conversation for one turn. Turns are strictly serial
// per conversation: a second message while one is being processed is refused
// rather than interleaved.
func (m *Manager) BeginTurn(conversationID, turnID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[conversationID]
	if !ok {
		return ErrNotFound
	}
	if c.Status != StatusActive {
		return ErrEnded
	}
	if c.ActiveTurnID != "" {
		return ErrTurnInProgress
	}
	c.ActiveTurnID = turnID
	c.LastActivityAt = time.Now().UTC()
	return nil
}

// FinishTurn releases the turn claim. A mismatched turnID is a no-op: the
// janitor may have expired the conversation mid-turn.
func (m *Manager) FinishTurn(conversationID, turnID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[conversationID]
	if !ok || c.ActiveTurnID != turnID {
		return
	}
	c.ActiveTurnID = ""
	c.LastActivityAt = time.Now().UTC()
}

// AppendTurn adds one entry to the ordered log.
func (m *Manager) AppendTurn(conversationID string, turn Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[conversationID]
	if !ok {
		return ErrNotFound
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	c.Turns = append(c.Turns, turn)
	c.LastActivityAt = time.Now().UTC()
	return nil
}

// AddSymptoms unions newly extracted symptoms into the conversation's set and
// returns the full accumulated set. The set never shrinks. Implements
// symptoms.Accumulator.
func (m *Manager) AddSymptoms(conversationID string, found []symptoms.Symptom) ([]symptoms.Symptom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[conversationID]
	if !ok {
		return nil, ErrNotFound
	}

	have := make(map[symptoms.Symptom]struct{}, len(c.Symptoms))
	for _, s := range c.Symptoms {
		have[s] = struct{}{}
	}
	for _, s := range found {
		if _, dup := have[s]; dup {
			continue
		}
		have[s] = struct{}{}
		c.Symptoms = append(c.Symptoms, s)
	}
	sort.Slice(c.Symptoms, func(i, j int) bool { return c.Symptoms[i] < c.Symptoms[j] })

	out := make([]symptoms.Symptom, len(c.Symptoms))
	copy(out, c.Symptoms)
	return out, nil
}

// MarkEscalated records the first emergency escalation time. Later calls keep
// the original timestamp.
func (m *Manager) MarkEscalated(conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[conversationID]
	if !ok {
		return ErrNotFound
	}
	if c.EscalatedAt.IsZero() {
		c.EscalatedAt = time.Now().UTC()
	}
	return nil
}

// UserText returns every user turn's text joined with newlines, for checks
// that look across the whole conversation rather than one message.
func (m *Manager) UserText(conversationID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations[conversationID]
	if !ok {
		return "", ErrNotFound
	}
	parts := make([]string, 0, len(c.Turns))
	for _, t := range c.Turns {
		if t.Role == RoleUser {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (m *Manager) End(conversationID string) (*Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Status = StatusEnded
	c.ActiveTurnID = ""
	c.LastActivityAt = time.Now().UTC()
	if c.PatientID != "" {
		delete(m.conversationByPatient, c.PatientID)
	}
	return clone(c), nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, c := range m.conversations {
		if c.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Conversation

	m.mu.Lock()
	for _, c := range m.conversations {
		if c.Status != StatusActive {
			continue
		}
		if now.Sub(c.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		c.Status = StatusEnded
		c.ActiveTurnID = ""
		c.LastActivityAt = now
		expired = append(expired, clone(c))
		if c.PatientID != "" {
			delete(m.conversationByPatient, c.PatientID)
		}
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, c := range expired {
			hook(c)
		}
	}
}

func clone(c *Conversation) *Conversation {
	out := *c
	out.Turns = make([]Turn, len(c.Turns))
	copy(out.Turns, c.Turns)
	out.Symptoms = make([]symptoms.Symptom, len(c.Symptoms))
	copy(out.Symptoms, c.Symptoms)
	return &out
}
