package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unilater/galeaz/internal/app"
)

// NewQuestionnaireCmd groups the questionnaire subcommands.
func NewQuestionnaireCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questionario",
		Short: "Fill in and submit the eligibility questionnaire",
	}
	cmd.AddCommand(newQuestionnaireShowCmd(configPath))
	cmd.AddCommand(newQuestionnaireSubmitCmd(configPath))
	return cmd
}

func newQuestionnaireShowCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the question catalog with the saved answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()
			q := app.NewQuestionnaire(env.gw, env.store, env.ui, env.log, app.WithNavBus(env.bus))
			defer q.Close()
			if err := q.Start(cmd.Context()); err != nil {
				return err
			}
			for _, field := range q.Fields() {
				line := fmt.Sprintf("[%s] %s", field.Key, field.Label)
				if field.Required {
					line += " *"
				}
				if len(field.Options) > 0 {
					line += " (" + strings.Join(field.Options, ", ") + ")"
				}
				if field.Value != "" {
					line += " = " + field.Value
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newQuestionnaireSubmitCmd(configPath *string) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "submit --set <id>=<value> ...",
		Short: "Answer questions and submit the questionnaire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()
			q := app.NewQuestionnaire(env.gw, env.store, env.ui, env.log, app.WithNavBus(env.bus))
			defer q.Close()
			if err := q.Start(cmd.Context()); err != nil {
				return err
			}
			for _, set := range sets {
				key, value, ok := strings.Cut(set, "=")
				if !ok {
					return fmt.Errorf("malformed --set %q, want <id>=<value>", set)
				}
				if err := q.Set(key, value); err != nil {
					return fmt.Errorf("set %q: %w", key, err)
				}
			}
			return q.Submit(cmd.Context())
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "answer as <question-id>=<value>, repeatable")
	return cmd
}
