package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/unilater/galeaz/internal/app"
)

// NewAICmd groups the AI content subcommands.
func NewAICmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Generate and activate AI protection content",
	}
	cmd.AddCommand(newAIRunCmd(configPath, "init", "Generate protection content for every section",
		func(ctx context.Context, ai *app.AI) (map[string]string, error) { return ai.Initialize(ctx) }))
	cmd.AddCommand(newAIRunCmd(configPath, "activate", "Activate the generated protections",
		func(ctx context.Context, ai *app.AI) (map[string]string, error) { return ai.ActivateProtections(ctx) }))
	return cmd
}

func newAIRunCmd(configPath *string, use, short string, run func(context.Context, *app.AI) (map[string]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()
			contents, err := run(cmd.Context(), app.NewAI(env.gw, env.store, env.ui))
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(contents))
			for key := range contents {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d byte di contenuto\n", key, len(contents[key]))
			}
			return nil
		},
	}
}
