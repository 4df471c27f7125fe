package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Veraticus/spendscore/internal/cli"
	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "spendscore",
		Short: "📊 Score the financial health of your spending",
		Long: `spendscore ingests bank and accounting exports (CSV, OFX/QFX, Plaid or SimpleFIN) and rates
the spending behind them with a 0-100 SpendScore and a Green/Amber/Red tier.

Scores are built from six heuristics: transaction frequency, category diversity,
budget adherence, duplicate charges, spending spikes and discretionary waste.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/spendscore/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("db", "", "database path (default: $HOME/.local/share/spendscore/spendscore.db)")

	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyDatabasePath, rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(importPlaidCmd())
	rootCmd.AddCommand(importSimpleFINCmd())
	rootCmd.AddCommand(reportsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	handler := cli.NewInterruptHandler(os.Stderr, "Interrupted")
	ctx, stop := handler.HandleInterrupts(context.Background())

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(common.Message(err)))
		common.LogDebug("Command failed", common.Fields{"error": err, "interrupted": handler.WasInterrupted()})
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	v := viper.GetViper()
	config.SetDefaults(v)
	config.BindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		v.AddConfigPath(fmt.Sprintf("%s/.config/spendscore", home))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return setupLogging()
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString(config.KeyLogLevel))
	if err != nil {
		return err
	}

	var format string
	switch f := viper.GetString(config.KeyLogFormat); f {
	case "console", "text":
		format = "text"
	case "json":
		format = "json"
	default:
		return fmt.Errorf("invalid log format: %s", f)
	}

	common.SetupLogger(level, format)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spendscore %s\n", version)
		},
	}
}
