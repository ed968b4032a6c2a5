// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the quizpdf CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/quizpdf/internal/config"
	"github.com/pdiddy/quizpdf/internal/logger"
	"github.com/pdiddy/quizpdf/internal/report"
	"github.com/pdiddy/quizpdf/internal/secrets"
	"github.com/pdiddy/quizpdf/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is loaded before every command runs.
	cfg types.Config

	// loadedSecrets holds the .secrets/ files read at startup.
	loadedSecrets secrets.Secrets

	// configErr holds a failure to read an explicitly given config file.
	configErr error
)

// reportedError marks a failure whose result was already printed to stdout.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// inputError marks err as a problem with the command line.
func inputError(err error) error {
	return fmt.Errorf("%w: %v", report.ErrInput, err)
}

// exactArgs and minArgs wrap cobra's validators so that argument errors
// exit with the input error code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return inputError(err)
		}
		return nil
	}
}

func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(lo, hi)(cmd, args); err != nil {
			return inputError(err)
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return inputError(err)
		}
		return nil
	}
}

// rootCmd is the base command for the quizpdf CLI.
var rootCmd = &cobra.Command{
	Use:   "quizpdf",
	Short: "Turn multiple-choice exam PDFs into structured quiz JSON",
	Long: `quizpdf extracts the text of multiple-choice exam PDFs, parses the
numbered questions with their lettered options and answers, and splits them
into fixed-size sets ("reeks-1", "reeks-2", ...).

Parsed files can be imported into a local question bank, where missing
answers are filled in by hand and categories exported again.

Results are printed to stdout as JSON; logs go to stderr.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return inputError(configErr)
		}
		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			var verr *config.ValidationError
			if errors.As(err, &verr) {
				return inputError(err)
			}
			return err
		}
		cfg = loaded

		if err := logger.Initialize(cfg.Log); err != nil {
			return err
		}
		log := logger.Get()
		if used := viper.ConfigFileUsed(); used != "" {
			log.Debug("using config file", zap.String("path", used))
		}

		s, err := secrets.Load(secrets.DefaultDir, log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		cfg.Extract.Password = loadedSecrets.Get(secrets.PDFPassword)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./quizpdf.yaml or ~/.config/quizpdf/config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "PDF text extraction backend: native or pdftotext")
	rootCmd.PersistentFlags().Int("max-pages", 0, "read at most this many PDF pages (0 = all)")
	rootCmd.PersistentFlags().Bool("no-validate", false, "skip the structural PDF check before extraction")
	rootCmd.PersistentFlags().String("bank", "", "question bank database file")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	viper.BindPFlag(config.KeyExtractBackend, rootCmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag(config.KeyExtractMaxPages, rootCmd.PersistentFlags().Lookup("max-pages"))
	viper.BindPFlag(config.KeyBankPath, rootCmd.PersistentFlags().Lookup("bank"))
	viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return inputError(err)
	})
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("quizpdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "quizpdf"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config: %w", err)
		}
	}

	// --no-validate inverts extract.validate.
	if noValidate, _ := rootCmd.PersistentFlags().GetBool("no-validate"); noValidate {
		viper.Set(config.KeyExtractValidate, false)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err == nil {
		return
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		report.WriteJSON(os.Stdout, report.NewError(err))
	}
	os.Exit(report.ExitCode(err))
}
