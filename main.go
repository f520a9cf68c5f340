package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"carrete-admin/internal/config"
	"carrete-admin/internal/logging"
)

var (
	logger    *zap.Logger
	logLevel  string
	storeFlag string
)

var rootCmd = &cobra.Command{
	Use:   "carrete-admin",
	Short: "Admin backend for Carrete Cervecero",
	Long: `carrete-admin serves the administration API of Carrete Cervecero:
admin sign-in, order listing and filtering, customer reservation counts,
profile and admin management.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		if logLevel != "" {
			config.AppEnv.LogLevel = logLevel
		}
		if storeFlag != "" {
			config.AppEnv.StoreDriver = storeFlag
		}

		var err error
		logger, err = logging.New(config.AppEnv.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return config.AppEnv.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "store driver: mongo or memory (overrides STORE_DRIVER)")

	rootCmd.AddCommand(serveCmd, ordersCmd, reservationsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
