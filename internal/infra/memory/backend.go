package memory

import (
	"context"
	"sync"

	"github.com/unilater/galeaz/internal/domain"
	transport "github.com/unilater/galeaz/internal/transport/http"
)

// Backend is the in-memory dev-server store, used by tests and by the dev
// server when no Postgres is configured.
type Backend struct {
	mu          sync.RWMutex
	nextID      int
	accounts    map[int]transport.Account
	byEmail     map[string]int
	questions   []domain.QuestionDefinition
	answers     map[int]map[string]string
	completions map[int]map[string]bool
	contents    map[int]map[string]string
}

func NewBackend() *Backend {
	return &Backend{
		nextID:      1,
		accounts:    make(map[int]transport.Account),
		byEmail:     make(map[string]int),
		questions:   transport.DefaultQuestions(),
		answers:     make(map[int]map[string]string),
		completions: make(map[int]map[string]bool),
		contents:    make(map[int]map[string]string),
	}
}

func (b *Backend) CreateAccount(_ context.Context, email, passwordHash string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.accounts[id] = transport.Account{ID: id, Email: email, PasswordHash: passwordHash}
	b.byEmail[email] = id
	return id, nil
}

func (b *Backend) AccountByEmail(_ context.Context, email string) (transport.Account, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id, ok := b.byEmail[email]
	if !ok {
		return transport.Account{}, false, nil
	}
	return b.accounts[id], true, nil
}

func (b *Backend) AccountByID(_ context.Context, id int) (transport.Account, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	account, ok := b.accounts[id]
	return account, ok, nil
}

func (b *Backend) UpdateNames(_ context.Context, id int, first, last string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	account, ok := b.accounts[id]
	if !ok {
		return nil
	}
	account.NameFirst = first
	account.NameLast = last
	b.accounts[id] = account
	return nil
}

func (b *Backend) Questions(context.Context) ([]domain.QuestionDefinition, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.QuestionDefinition, len(b.questions))
	copy(out, b.questions)
	return out, nil
}

func (b *Backend) Answers(_ context.Context, userID int) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return copyStringMap(b.answers[userID]), nil
}

func (b *Backend) SaveAnswers(_ context.Context, userID int, answers map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answers[userID] = copyStringMap(answers)
	return nil
}

func (b *Backend) Completions(_ context.Context, userID int) (map[string]bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]bool, len(b.completions[userID]))
	for key, value := range b.completions[userID] {
		out[key] = value
	}
	return out, nil
}

func (b *Backend) SetCompletion(_ context.Context, userID int, column string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.completions[userID] == nil {
		b.completions[userID] = make(map[string]bool)
	}
	b.completions[userID][column] = true
	return nil
}

func (b *Backend) Contents(_ context.Context, userID int) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return copyStringMap(b.contents[userID]), nil
}

func (b *Backend) SetContent(_ context.Context, userID int, column, content string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.contents[userID] == nil {
		b.contents[userID] = make(map[string]string)
	}
	b.contents[userID][column] = content
	return nil
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
