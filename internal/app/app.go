// Package app holds the screen workflows: questionnaire, section unlocking,
// profile editing, auth bootstrap and the AI actions. Each workflow owns its
// state for the lifetime of one screen visit and reports only through the
// presentation shell; no gateway failure escapes a workflow boundary.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/unilater/galeaz/internal/domain"
)

// Gateway interfaces are declared here, on the consumer side; the gateway
// client satisfies all of them.

// QuestionnaireGateway is the remote surface the questionnaire workflow uses.
type QuestionnaireGateway interface {
	QuestionCatalog(ctx context.Context) ([]domain.QuestionDefinition, error)
	PriorAnswers(ctx context.Context, userID int) (map[string]string, error)
	SubmitAnswers(ctx context.Context, userID int, answers map[string]string) error
	WriteProtections(ctx context.Context, userID int) error
}

// SectionGateway is the remote surface the section-unlock workflow uses.
type SectionGateway interface {
	Profile(ctx context.Context, userID int) (domain.Profile, error)
	CompletionMap(ctx context.Context, userID int) (map[string]bool, error)
	SectionContents(ctx context.Context, userID int) (map[string]string, error)
	UpdateSectionColumn(ctx context.Context, userID int, column string) (domain.SectionUpdate, error)
	MarkSectionCompleted(ctx context.Context, userID int, column string) error
}

// ProfileGateway is the remote surface of the profile editor.
type ProfileGateway interface {
	Profile(ctx context.Context, userID int) (domain.Profile, error)
	UpdateProfile(ctx context.Context, userID int, first, last string) error
}

// AuthGateway is the remote surface of the sign-in/sign-up flow.
type AuthGateway interface {
	SignIn(ctx context.Context, email, password string) (domain.Credentials, error)
	SignUp(ctx context.Context, email, password string) (domain.Credentials, error)
}

// AIGateway is the remote surface of the AI actions.
type AIGateway interface {
	InitializeAI(ctx context.Context, userID int) (map[string]string, error)
	ActivateProtections(ctx context.Context, userID int) (map[string]string, error)
}

const (
	toastShort = 2 * time.Second
	toastLong  = 3 * time.Second
)

// failureMessage prefers the server-supplied envelope message over the
// generic fallback.
func failureMessage(err error, fallback string) string {
	var envErr *domain.EnvelopeError
	if errors.As(err, &envErr) {
		return envErr.ServerMessage(fallback)
	}
	return fallback
}
