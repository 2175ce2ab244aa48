package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unilater/galeaz/internal/domain"
	"github.com/unilater/galeaz/internal/form"
	"github.com/unilater/galeaz/internal/nav"
	"github.com/unilater/galeaz/internal/session"
	"github.com/unilater/galeaz/internal/shell"
)

// QuestionnaireState is the explicit workflow state; illegal transitions are
// rejected rather than guessed from loose flags.
type QuestionnaireState int

const (
	StateIdle QuestionnaireState = iota
	StateLoadingQuestions
	StateLoadingAnswers
	StateReady
	StateSubmitting
)

func (s QuestionnaireState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingQuestions:
		return "loading-questions"
	case StateLoadingAnswers:
		return "loading-answers"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	}
	return "unknown"
}

// CompletionGate decides whether a form with the given prior answers counts
// as already recorded server-side, blocking resubmission. The backend has no
// such notion today, so the default gate always answers false.
type CompletionGate func(prior map[string]string) bool

// QuestionnaireOption configures optional collaborators.
type QuestionnaireOption func(*Questionnaire)

// WithNavBus makes the workflow reload prior answers whenever its route
// regains focus, and lets it redirect to sign-in.
func WithNavBus(bus *nav.Bus) QuestionnaireOption {
	return func(q *Questionnaire) { q.bus = bus }
}

// WithCompletionGate overrides the default never-complete gate.
func WithCompletionGate(gate CompletionGate) QuestionnaireOption {
	return func(q *Questionnaire) { q.completeGate = gate }
}

// Questionnaire drives the dynamic questionnaire screen: load the question
// catalog, rebuild the answer form, patch in prior answers, then accept
// guarded submits.
type Questionnaire struct {
	gw           QuestionnaireGateway
	store        session.Store
	ui           shell.Shell
	log          *zap.Logger
	bus          *nav.Bus
	completeGate CompletionGate

	mu          sync.Mutex
	state       QuestionnaireState
	userID      int
	form        *form.Form
	complete    bool
	closed      bool
	unsubscribe func()
}

func NewQuestionnaire(gw QuestionnaireGateway, store session.Store, ui shell.Shell, log *zap.Logger, opts ...QuestionnaireOption) *Questionnaire {
	if log == nil {
		log = zap.NewNop()
	}
	q := &Questionnaire{
		gw:           gw,
		store:        store,
		ui:           ui,
		log:          log,
		completeGate: func(map[string]string) bool { return false },
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start resolves the user, loads the question catalog, rebuilds the form and
// patches prior answers. Without a resolvable user id it fails fast with no
// network activity.
func (q *Questionnaire) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrWorkflowClosed
	}
	q.mu.Unlock()

	userID, err := session.UserID(ctx, q.store)
	if err != nil {
		q.ui.Notify("Errore", "Utente non autenticato, esegui il login", shell.Top, shell.Danger, toastLong)
		if q.bus != nil {
			q.bus.Publish(nav.RouteSignIn)
		}
		return err
	}

	q.mu.Lock()
	q.userID = userID
	q.state = StateLoadingQuestions
	q.mu.Unlock()

	catalog, err := q.gw.QuestionCatalog(ctx)
	if err != nil {
		q.ui.Notify("Errore", failureMessage(err, "Errore nel caricamento delle domande"), shell.Top, shell.Danger, toastLong)
		q.mu.Lock()
		q.state = StateIdle
		q.mu.Unlock()
		return err
	}

	built := form.Build(catalog)
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrWorkflowClosed
	}
	// The previous form instance, if any, is discarded wholesale so no stale
	// field survives a catalog change.
	q.form = built
	q.complete = false
	q.state = StateLoadingAnswers
	q.mu.Unlock()

	q.loadAnswers(ctx)

	q.mu.Lock()
	if q.bus != nil && q.unsubscribe == nil && !q.closed {
		ch, cancel := q.bus.Subscribe()
		q.unsubscribe = cancel
		go q.watchReturns(ch)
	}
	q.mu.Unlock()
	return nil
}

// loadAnswers patches prior answers into the current form. It always leaves
// the workflow in Ready, success or failure; answer loss is non-fatal.
func (q *Questionnaire) loadAnswers(ctx context.Context) {
	dismiss := q.ui.Progress("Caricamento dati...")
	defer dismiss()
	defer func() {
		q.mu.Lock()
		if !q.closed {
			q.state = StateReady
		}
		q.mu.Unlock()
	}()

	answers, err := q.gw.PriorAnswers(ctx, q.userID)
	if err != nil {
		q.ui.Notify("Errore", "Errore nel caricamento dei dati", shell.Top, shell.Danger, toastLong)
		return
	}
	if len(answers) == 0 {
		q.ui.Notify("Attenzione", "Nessun dato trovato o errore nel caricamento", shell.Top, shell.Warning, toastLong)
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.form.Patch(answers)
	q.complete = q.completeGate(answers)
}

// watchReturns re-runs only the answer-load step when the questionnaire
// route regains focus. Field identity stays stable across revisits.
func (q *Questionnaire) watchReturns(ch <-chan nav.Route) {
	for route := range ch {
		if route != nav.RouteQuestionnaire {
			continue
		}
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return
		}
		if q.state != StateReady {
			q.mu.Unlock()
			continue
		}
		q.state = StateLoadingAnswers
		q.mu.Unlock()

		q.loadAnswers(context.Background())
	}
}

// Set assigns an answer value. Only valid once the form exists.
func (q *Questionnaire) Set(key, value string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return domain.ErrWorkflowClosed
	}
	if q.form == nil {
		return fmt.Errorf("form not loaded (state %s)", q.state)
	}
	return q.form.Set(key, value)
}

// Fields returns the current fields in rendering order, or nil before the
// catalog loads.
func (q *Questionnaire) Fields() []*form.Field {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.form == nil {
		return nil
	}
	return q.form.Fields()
}

// State returns the current workflow state.
func (q *Questionnaire) State() QuestionnaireState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Submit validates and sends the current answers, then triggers the
// protections write. A submit while one is in flight, or on a completed
// form, is an observable no-op. Cleanup (progress dismissal, reentrancy
// reset) runs on every exit path.
func (q *Questionnaire) Submit(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrWorkflowClosed
	}
	if q.state == StateSubmitting || q.complete {
		q.mu.Unlock()
		return nil
	}
	if q.state != StateReady {
		q.mu.Unlock()
		return fmt.Errorf("cannot submit from state %s", q.state)
	}
	if !q.form.Valid() {
		q.mu.Unlock()
		q.ui.Notify("Errore", "Compila tutti i campi obbligatori correttamente", shell.Top, shell.Danger, toastLong)
		return domain.ErrValidation
	}
	q.state = StateSubmitting
	userID := q.userID
	payload := q.form.Values()
	q.mu.Unlock()

	dismiss := q.ui.Progress("Invio dati...")
	defer func() {
		dismiss()
		q.mu.Lock()
		if !q.closed {
			q.state = StateReady
		}
		q.mu.Unlock()
	}()

	if err := q.gw.SubmitAnswers(ctx, userID, payload); err != nil {
		q.ui.Notify("Errore", failureMessage(err, "Errore di rete, riprova più tardi"), shell.Top, shell.Danger, toastLong)
		return err
	}

	dismissTutele := q.ui.Progress("Salvataggio tutele...")
	err := q.gw.WriteProtections(ctx, userID)
	dismissTutele()
	if err != nil {
		q.ui.Notify("Errore", failureMessage(err, "Errore nel salvataggio delle tutele"), shell.Top, shell.Danger, 4*time.Second)
		return err
	}

	if err := q.store.Set(ctx, session.KeyQuestionnaireDone, "true"); err != nil {
		q.log.Warn("persist questionnaire-done flag", zap.Error(err))
	}
	q.ui.Notify("Successo", "Questionario e tutele salvati con successo!", shell.Top, shell.Success, toastLong)
	if q.bus != nil {
		q.bus.Publish(nav.RouteHome)
	}
	return nil
}

// Close tears the workflow down. Pending callbacks resolving afterwards
// become no-ops instead of mutating disposed state.
func (q *Questionnaire) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	unsubscribe := q.unsubscribe
	q.unsubscribe = nil
	q.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}
