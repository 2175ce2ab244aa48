package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	if envPort == "" {
		envPort = "8080"
	}
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "galeaz",
		Short: "Welfare eligibility companion: questionnaire, protections and profile",
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port for the dev server")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewServeCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewLoginCmd(&configPath))
	cmd.AddCommand(NewSignupCmd(&configPath))
	cmd.AddCommand(NewLogoutCmd(&configPath))
	cmd.AddCommand(NewProfileCmd(&configPath))
	cmd.AddCommand(NewQuestionnaireCmd(&configPath))
	cmd.AddCommand(NewHomeCmd(&configPath))
	cmd.AddCommand(NewAICmd(&configPath))
	return cmd
}
