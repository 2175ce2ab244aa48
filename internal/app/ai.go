package app

import (
	"context"

	"github.com/unilater/galeaz/internal/session"
	"github.com/unilater/galeaz/internal/shell"
)

// AI triggers the backend's AI-assisted content actions. Both operations are
// read-style calls returning an opaque key/value payload for display.
type AI struct {
	gw    AIGateway
	store session.Store
	ui    shell.Shell
}

func NewAI(gw AIGateway, store session.Store, ui shell.Shell) *AI {
	return &AI{gw: gw, store: store, ui: ui}
}

// Initialize runs the AI initialization for the signed-in user.
func (a *AI) Initialize(ctx context.Context) (map[string]string, error) {
	return a.run(ctx, "Inizializzazione in corso...",
		"Inizializzazione completata con successo!",
		"Problema durante l'inizializzazione.",
		a.gw.InitializeAI)
}

// ActivateProtections runs the AI protections activation.
func (a *AI) ActivateProtections(ctx context.Context) (map[string]string, error) {
	return a.run(ctx, "Attivazione tutele in corso...",
		"Tutele attivate con successo!",
		"Problema durante l'attivazione tutele.",
		a.gw.ActivateProtections)
}

func (a *AI) run(ctx context.Context, progress, okMsg, failMsg string, call func(context.Context, int) (map[string]string, error)) (map[string]string, error) {
	userID, err := session.UserID(ctx, a.store)
	if err != nil {
		a.ui.Notify("Errore", "user_id non trovato", shell.Top, shell.Danger, toastLong)
		return nil, err
	}

	dismiss := a.ui.Progress(progress)
	defer dismiss()

	data, err := call(ctx, userID)
	if err != nil {
		a.ui.Notify("Errore", failureMessage(err, failMsg), shell.Top, shell.Danger, toastLong)
		return nil, err
	}
	a.ui.Notify("Successo", okMsg, shell.Top, shell.Success, toastLong)
	return data, nil
}
