package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/servconnect/mlservices/config"
)

func newRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "mlserve",
		Short:         "ServConnect ML microservices",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is normal outside development.
			_ = godotenv.Load(envFile)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before configuration")

	rootCmd.AddCommand(newServiceCommand(config.ServiceModeration, "Serve the content moderation classifier", buildModeration))
	rootCmd.AddCommand(newServiceCommand(config.ServiceWellness, "Serve elder diet and heart-risk predictions", buildWellness))
	rootCmd.AddCommand(newServiceCommand(config.ServiceVerification, "Serve ID card name verification", buildVerification))
	rootCmd.AddCommand(newServiceCommand(config.ServiceItemMatch, "Serve lost and found item matching", buildItemMatch))

	return rootCmd
}
