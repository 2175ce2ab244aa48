package cli

import (
	"github.com/spf13/cobra"

	"github.com/unilater/galeaz/internal/app"
)

// NewLoginCmd signs in against the API and stores the session.
func NewLoginCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Sign in and store the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()
			auth := app.NewAuth(env.gw, env.store, env.ui, env.log, env.bus)
			return auth.SignIn(cmd.Context(), args[0], args[1])
		},
	}
}

// NewSignupCmd registers a new account.
func NewSignupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "signup <email> <password> <password-repeat>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()
			auth := app.NewAuth(env.gw, env.store, env.ui, env.log, env.bus)
			return auth.SignUp(cmd.Context(), args[0], args[1], args[2])
		},
	}
}

// NewLogoutCmd drops the stored auth token.
func NewLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()
			auth := app.NewAuth(env.gw, env.store, env.ui, env.log, env.bus)
			return auth.SignOut(cmd.Context())
		},
	}
}
