package app

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/unilater/galeaz/internal/domain"
	"github.com/unilater/galeaz/internal/session"
	"github.com/unilater/galeaz/internal/shell"
)

// ProfileEditor drives the profile edit screen: prefill from the local
// snapshot, refresh from the backend, then save with required names.
type ProfileEditor struct {
	gw    ProfileGateway
	store session.Store
	ui    shell.Shell
	log   *zap.Logger

	mu        sync.Mutex
	userID    int
	nameFirst string
	nameLast  string
	email     string
}

func NewProfileEditor(gw ProfileGateway, store session.Store, ui shell.Shell, log *zap.Logger) *ProfileEditor {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileEditor{gw: gw, store: store, ui: ui, log: log}
}

// Start prefills the form from the cached snapshot, then overwrites it with
// fresh backend data and re-caches the result. The cached prefill means the
// screen is never blank while the refresh is in flight.
func (p *ProfileEditor) Start(ctx context.Context) error {
	userID, err := session.UserID(ctx, p.store)
	if err != nil {
		p.ui.Notify("Error", "User ID not found. Please login again.", shell.Top, shell.Danger, toastLong)
		return err
	}
	p.mu.Lock()
	p.userID = userID
	p.mu.Unlock()

	if snap, ok := session.ProfileSnapshot(ctx, p.store); ok {
		p.mu.Lock()
		p.nameFirst = snap.NameFirst
		p.nameLast = snap.NameLast
		p.mu.Unlock()
	}

	profile, err := p.gw.Profile(ctx, userID)
	if err != nil {
		p.ui.Notify("Error", failureMessage(err, "Unable to load profile"), shell.Top, shell.Danger, toastShort)
		return err
	}

	p.mu.Lock()
	p.nameFirst = profile.NameFirst
	p.nameLast = profile.NameLast
	p.email = profile.Email
	p.mu.Unlock()

	if err := session.SaveProfileSnapshot(ctx, p.store, domain.ProfileSnapshot{
		NameFirst: profile.NameFirst,
		NameLast:  profile.NameLast,
	}); err != nil {
		p.log.Warn("cache profile snapshot", zap.Error(err))
	}
	return nil
}

// Names returns the current form values.
func (p *ProfileEditor) Names() (first, last string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nameFirst, p.nameLast
}

// Email returns the read-only email shown on the screen.
func (p *ProfileEditor) Email() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.email
}

// Save validates and writes the names, then refreshes the local snapshot.
func (p *ProfileEditor) Save(ctx context.Context, first, last string) error {
	if strings.TrimSpace(first) == "" || strings.TrimSpace(last) == "" {
		p.ui.Notify("Error", "Please fill in all required fields", shell.Top, shell.Danger, toastShort)
		return domain.ErrValidation
	}

	p.mu.Lock()
	userID := p.userID
	p.mu.Unlock()
	if userID == 0 {
		p.ui.Notify("Error", "User ID not found. Please login again.", shell.Top, shell.Danger, toastLong)
		return domain.ErrUnauthenticated
	}

	if err := p.gw.UpdateProfile(ctx, userID, first, last); err != nil {
		p.ui.Notify("Error", failureMessage(err, "Network error"), shell.Top, shell.Danger, toastShort)
		return err
	}

	p.mu.Lock()
	p.nameFirst = first
	p.nameLast = last
	p.mu.Unlock()

	if err := session.SaveProfileSnapshot(ctx, p.store, domain.ProfileSnapshot{
		NameFirst: first,
		NameLast:  last,
	}); err != nil {
		p.log.Warn("cache profile snapshot", zap.Error(err))
	}
	p.ui.Notify("Success", "Profile saved", shell.Top, shell.Success, toastShort)
	return nil
}
