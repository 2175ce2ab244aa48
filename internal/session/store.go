// Package session defines the process-wide key/value store that survives
// across screens: user identifier, auth token, cached profile snapshot.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/unilater/galeaz/internal/domain"
)

// Recognized keys. The store itself is schemaless; these are the keys the
// workflows read and write.
const (
	KeyUserID            = "user_id"
	KeyAuthToken         = "auth_token"
	KeyUserProfile       = "user_profile"
	KeyQuestionnaireDone = "questionario_completo"
)

// Store abstracts how session state is persisted (in-memory, Redis, etc).
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// UserID resolves the signed-in user id. A missing or malformed id maps to
// ErrUnauthenticated: workflows fail fast on it without touching the network.
func UserID(ctx context.Context, s Store) (int, error) {
	raw, ok, err := s.Get(ctx, KeyUserID)
	if err != nil {
		return 0, fmt.Errorf("read user id: %w", err)
	}
	if !ok || raw == "" {
		return 0, domain.ErrUnauthenticated
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, domain.ErrUnauthenticated
	}
	return id, nil
}

// SaveCredentials persists the sign-in result.
func SaveCredentials(ctx context.Context, s Store, creds domain.Credentials) error {
	if err := s.Set(ctx, KeyUserID, strconv.Itoa(creds.UserID)); err != nil {
		return err
	}
	return s.Set(ctx, KeyAuthToken, creds.Token)
}

// ProfileSnapshot reads the locally cached profile, if any.
func ProfileSnapshot(ctx context.Context, s Store) (domain.ProfileSnapshot, bool) {
	raw, ok, err := s.Get(ctx, KeyUserProfile)
	if err != nil || !ok || raw == "" {
		return domain.ProfileSnapshot{}, false
	}
	var snap domain.ProfileSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return domain.ProfileSnapshot{}, false
	}
	return snap, true
}

// SaveProfileSnapshot caches the profile subset locally. Best-effort: callers
// treat a failed write as a cache miss next time, not an error.
func SaveProfileSnapshot(ctx context.Context, s Store, snap domain.ProfileSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyUserProfile, string(data))
}
