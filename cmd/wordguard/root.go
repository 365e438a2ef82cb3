package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"quillpress/wordguard/pkg/cli"
)

var (
	// Global flags
	cfgFile      string
	envFile      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "wordguard",
	Short: "Wordguard - banned-word moderation for Quillpress",
	Long: `Wordguard screens reader comments and other user-submitted text for
prohibited words and phrases before they are saved.

Terms are matched as whole words, case-insensitively, after HTML tags and
entities are stripped. Rejected submissions get a fixed message that never
reveals which term matched.

Configuration comes from an optional YAML file (--config) with WORDGUARD_*
environment variables applied on top. A .env file in the working directory
is loaded first when present.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
}

// Execute runs the root command and exits with the command's status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *cli.ExitError
		if !errors.As(err, &exit) || exit.Message != "" {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults plus environment when empty)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json, csv")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// prepare loads the dotenv file and installs a quiet stderr logger for
// one-shot commands. `run` replaces the logger from configuration.
func prepare(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !(errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file")) {
			return cli.NewConfigError("env-file", err.Error())
		}
	}

	if _, err := cli.ParseFormat(outputFormat); err != nil {
		return cli.NewConfigError("output", err.Error())
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	return nil
}

func formatter() cli.Formatter {
	format, _ := cli.ParseFormat(outputFormat)
	return cli.NewFormatter(format)
}
