package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unilater/galeaz/internal/app"
)

// NewHomeCmd renders the protections overview and optionally expands sections.
func NewHomeCmd(configPath *string) *cobra.Command {
	var expand []string
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show the protection sections, expanding the ones requested",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()
			home := app.NewSections(env.gw, env.store, env.ui, env.log, env.bus)
			defer home.Close()
			if err := home.Start(cmd.Context()); err != nil {
				return err
			}
			if home.NeedsProfileCompletion() {
				fmt.Fprintln(cmd.OutOrStdout(), "Completa il profilo per sbloccare le tutele (galeaz profile edit).")
				return nil
			}
			if home.NeedsQuestionnaireCompletion() {
				fmt.Fprintln(cmd.OutOrStdout(), "Compila il questionario per sbloccare le tutele (galeaz questionario submit).")
				return nil
			}
			for _, key := range expand {
				if err := home.ToggleKey(cmd.Context(), key); err != nil {
					return err
				}
			}
			for _, section := range home.Sections() {
				marker := " "
				if section.Completed {
					marker = "x"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s (%s)\n", marker, section.Title, section.Key)
				if section.Expanded && section.Content != "" {
					fmt.Fprintln(cmd.OutOrStdout(), section.Content)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&expand, "expand", nil, "section key to expand, repeatable")
	return cmd
}
