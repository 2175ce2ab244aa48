package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/unilater/galeaz/internal/nav"
	"github.com/unilater/galeaz/internal/session"
	"github.com/unilater/galeaz/internal/shell"
)

var errInvalidSignup = errors.New("invalid signup form")

// Auth bootstraps and tears down the session: sign-in, sign-up, sign-out.
type Auth struct {
	gw    AuthGateway
	store session.Store
	ui    shell.Shell
	log   *zap.Logger
	bus   *nav.Bus
}

func NewAuth(gw AuthGateway, store session.Store, ui shell.Shell, log *zap.Logger, bus *nav.Bus) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{gw: gw, store: store, ui: ui, log: log, bus: bus}
}

// SignIn exchanges credentials for a session and persists it.
func (a *Auth) SignIn(ctx context.Context, email, password string) error {
	dismiss := a.ui.Progress("Accesso in corso...")
	defer dismiss()

	creds, err := a.gw.SignIn(ctx, email, password)
	if err != nil {
		a.ui.Notify("Errore", failureMessage(err, "Credenziali non valide"), shell.Top, shell.Danger, toastLong)
		return err
	}
	if err := session.SaveCredentials(ctx, a.store, creds); err != nil {
		a.ui.Notify("Errore", "Impossibile salvare la sessione", shell.Top, shell.Danger, toastLong)
		return err
	}
	if a.bus != nil {
		a.bus.Publish(nav.RouteHome)
	}
	return nil
}

// SignUp registers an account, then persists the returned session.
func (a *Auth) SignUp(ctx context.Context, email, password, passwordRepeat string) error {
	if len(password) < 6 {
		a.ui.Notify("Errore", "Please fill in all fields correctly", shell.Top, shell.Danger, 4*toastShort)
		return errInvalidSignup
	}
	if password != passwordRepeat {
		a.ui.Notify("Errore", "Passwords must match", shell.Top, shell.Danger, 4*toastShort)
		return errInvalidSignup
	}

	dismiss := a.ui.Progress("Signing up...")
	defer dismiss()

	creds, err := a.gw.SignUp(ctx, email, password)
	if err != nil {
		a.ui.Notify("Errore", failureMessage(err, "Signup failed"), shell.Top, shell.Danger, toastLong)
		return err
	}
	if err := session.SaveCredentials(ctx, a.store, creds); err != nil {
		a.ui.Notify("Errore", "Impossibile salvare la sessione", shell.Top, shell.Danger, toastLong)
		return err
	}
	a.ui.Notify("Welcome!", "Account created successfully", shell.Top, shell.Success, toastShort)
	if a.bus != nil {
		a.bus.Publish(nav.RouteHome)
	}
	return nil
}

// HasSession reports whether an auth token is stored.
func (a *Auth) HasSession(ctx context.Context) bool {
	token, ok, err := a.store.Get(ctx, session.KeyAuthToken)
	return err == nil && ok && token != ""
}

// SignOut clears the auth token and routes back to sign-in. Other session
// keys (profile snapshot) are kept, matching the app's sign-out behavior.
func (a *Auth) SignOut(ctx context.Context) error {
	if err := a.store.Remove(ctx, session.KeyAuthToken); err != nil {
		return err
	}
	if a.bus != nil {
		a.bus.Publish(nav.RouteSignIn)
	}
	return nil
}
