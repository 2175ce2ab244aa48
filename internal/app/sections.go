package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/unilater/galeaz/internal/domain"
	"github.com/unilater/galeaz/internal/nav"
	"github.com/unilater/galeaz/internal/session"
	"github.com/unilater/galeaz/internal/shell"
)

// Sections drives the home screen's protections blocks. Each section unlocks
// lazily on first expand: content is fetched once, the completion flag is
// persisted best-effort, and later toggles are pure display flips.
type Sections struct {
	gw    SectionGateway
	store session.Store
	ui    shell.Shell
	log   *zap.Logger
	bus   *nav.Bus

	mu          sync.Mutex
	closed      bool
	userID      int
	profile     domain.Profile
	loaded      bool
	sections    []domain.Section
	unsubscribe func()
}

func NewSections(gw SectionGateway, store session.Store, ui shell.Shell, log *zap.Logger, bus *nav.Bus) *Sections {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sections{
		gw:       gw,
		store:    store,
		ui:       ui,
		log:      log,
		bus:      bus,
		sections: domain.SectionCatalog(),
	}
}

// Start resolves the user and profile, checks the unlock preconditions, and
// seeds the completion map and stored contents. When a precondition fails the
// screen only shows guidance; no section content is fetched.
func (s *Sections) Start(ctx context.Context) error {
	userID, err := session.UserID(ctx, s.store)
	if err != nil {
		s.ui.Notify("Errore", "Utente non autenticato", shell.Top, shell.Danger, toastLong)
		if s.bus != nil {
			s.bus.Publish(nav.RouteSignIn)
		}
		return err
	}
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if s.bus != nil && s.unsubscribe == nil && !s.closed {
		ch, cancel := s.bus.Subscribe()
		s.unsubscribe = cancel
		go s.watchReturns(ch)
	}
	s.mu.Unlock()
	return nil
}

// refresh reloads the profile and, when the gates pass, the completion map and
// stored contents.
func (s *Sections) refresh(ctx context.Context) error {
	profile, err := s.gw.Profile(ctx, s.userID)
	if err != nil {
		s.ui.Notify("Errore", failureMessage(err, "Impossibile caricare il profilo"), shell.Top, shell.Danger, toastLong)
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrWorkflowClosed
	}
	s.profile = profile
	s.mu.Unlock()

	if !profile.Complete() {
		s.ui.Notify("Profilo incompleto", "Completa nome e cognome nel tuo profilo per sbloccare le tutele", shell.Top, shell.Warning, toastLong)
		return nil
	}
	if !profile.QuestionnaireDone() {
		s.ui.Notify("Questionario", "Completa il questionario per sbloccare le tutele", shell.Top, shell.Warning, toastLong)
		return nil
	}

	completed, err := s.gw.CompletionMap(ctx, s.userID)
	if err != nil {
		s.ui.Notify("Errore", failureMessage(err, "Errore nel caricamento delle tutele"), shell.Top, shell.Danger, toastLong)
		return err
	}
	contents, err := s.gw.SectionContents(ctx, s.userID)
	if err != nil {
		s.log.Warn("load stored section contents", zap.Error(err))
		contents = map[string]string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrWorkflowClosed
	}
	for i := range s.sections {
		key := s.sections[i].Key
		// Completion is one-way within a session: a server map missing a key
		// never resets a flag already raised locally.
		if completed[key] {
			s.sections[i].Completed = true
		}
		if content, ok := contents[key]; ok && content != "" {
			s.sections[i].Content = content
		}
	}
	s.loaded = true
	return nil
}

// watchReturns refreshes the profile gates when the home route regains focus.
func (s *Sections) watchReturns(ch <-chan nav.Route) {
	for route := range ch {
		if route != nav.RouteHome {
			continue
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		_ = s.refresh(context.Background())
	}
}

// NeedsProfileCompletion reports whether the profile gate blocks the screen.
func (s *Sections) NeedsProfileCompletion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.profile.Complete()
}

// NeedsQuestionnaireCompletion reports whether the questionnaire gate blocks
// the screen. Profile completion is checked first, so only one guidance
// applies at a time.
func (s *Sections) NeedsQuestionnaireCompletion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Complete() && !s.profile.QuestionnaireDone()
}

// Sections returns a snapshot of the current catalog state.
func (s *Sections) Sections() []domain.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Section, len(s.sections))
	copy(out, s.sections)
	return out
}

// ToggleKey finds the section by key and toggles it.
func (s *Sections) ToggleKey(ctx context.Context, key string) error {
	s.mu.Lock()
	index := -1
	for i := range s.sections {
		if s.sections[i].Key == key {
			index = i
			break
		}
	}
	s.mu.Unlock()
	if index < 0 {
		return domain.ErrSectionNotFound
	}
	return s.Toggle(ctx, index)
}

// Toggle flips a section's expanded state. The first expand of a
// not-yet-completed section fetches its content and persists completion;
// every other toggle is display-only.
func (s *Sections) Toggle(ctx context.Context, index int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrWorkflowClosed
	}
	if index < 0 || index >= len(s.sections) {
		s.mu.Unlock()
		return domain.ErrSectionNotFound
	}
	s.sections[index].Expanded = !s.sections[index].Expanded
	expanded := s.sections[index].Expanded
	completed := s.sections[index].Completed
	key := s.sections[index].Key
	title := s.sections[index].Title
	userID := s.userID
	s.mu.Unlock()

	if !expanded || completed {
		return nil
	}

	dismiss := s.ui.Progress("Aggiornamento " + title + "...")
	defer dismiss()

	update, err := s.gw.UpdateSectionColumn(ctx, userID, key)
	if err != nil || update.Message == "" {
		// Completed stays false so a later expand retries; prior content is
		// left untouched.
		s.ui.Notify(title, failureMessage(err, "Errore nell'aggiornamento della sezione"), shell.Top, shell.Danger, toastLong)
		if err != nil {
			return err
		}
		return &domain.EnvelopeError{Op: "update section column", Message: ""}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrWorkflowClosed
	}
	s.sections[index].Completed = true
	if update.Content != "" {
		s.sections[index].Content = update.Content
	} else {
		s.sections[index].Content = update.Message
	}
	s.mu.Unlock()

	// Best-effort: content is already on screen, so this failure is logged
	// but never surfaced as a second notification.
	if err := s.gw.MarkSectionCompleted(ctx, userID, key); err != nil {
		s.log.Warn("mark section completed", zap.String("column", key), zap.Error(err))
	}

	s.ui.Notify(title, "Sezione aggiornata con successo", shell.Top, shell.Success, toastShort)
	return nil
}

// Profile returns the last loaded profile.
func (s *Sections) Profile() domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Close tears the workflow down; late callbacks become no-ops.
func (s *Sections) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}
