package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unilater/galeaz/internal/app"
)

// NewProfileCmd groups the profile subcommands.
func NewProfileCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the account profile",
	}
	cmd.AddCommand(newProfileShowCmd(configPath))
	cmd.AddCommand(newProfileEditCmd(configPath))
	return cmd
}

func newProfileShowCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()
			editor := app.NewProfileEditor(env.gw, env.store, env.ui, env.log)
			if err := editor.Start(cmd.Context()); err != nil {
				return err
			}
			first, last := editor.Names()
			fmt.Fprintf(cmd.OutOrStdout(), "Nome:    %s\nCognome: %s\nEmail:   %s\n", first, last, editor.Email())
			return nil
		},
	}
}

func newProfileEditCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <first-name> <last-name>",
		Short: "Update first and last name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()
			editor := app.NewProfileEditor(env.gw, env.store, env.ui, env.log)
			if err := editor.Start(cmd.Context()); err != nil {
				return err
			}
			return editor.Save(cmd.Context(), args[0], args[1])
		},
	}
}
