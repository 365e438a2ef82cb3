package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quillpress/wordguard/pkg/cli"
	"quillpress/wordguard/pkg/moderation"
)

var checkFlags struct {
	file        string
	showMatches bool
}

var checkCmd = &cobra.Command{
	Use:   "check [text...]",
	Short: "Check text against the prohibited term list",
	Long: `Check text against the prohibited term list.

Text is taken from the arguments, from --file, or from stdin. The command
exits 0 when the text is allowed, 1 when it is rejected and 2 when
moderation is unavailable (fail-closed mode with no term list).

Examples:
  wordguard check "great article"
  wordguard check --file draft.html --show-matches
  cat comment.txt | wordguard check -o json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.file, "file", "f", "", "read text from a file")
	checkCmd.Flags().BoolVar(&checkFlags.showMatches, "show-matches", false, "print the terms that matched")
}

type checkOutput struct {
	Allowed bool     `json:"allowed"`
	Message string   `json:"message,omitempty"`
	Matched []string `json:"matched,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, err := checkInput(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openTermStore(&cfg.Terms)
	if err != nil {
		return cli.NewCommandError("check", err)
	}
	defer store.Close()

	filter := moderation.New(store, moderationConfig(&cfg.Moderation))

	out := checkOutput{Allowed: true}
	exit := 0
	ferr := filter.FilterError(cmd.Context(), text)
	switch {
	case ferr == nil:
	case errors.Is(ferr, moderation.ErrModerationUnavailable):
		out = checkOutput{Message: moderation.UnavailableMessage}
		exit = 2
	default:
		out = checkOutput{Message: moderation.ViolationMessage}
		if v, ok := moderation.IsViolation(ferr); ok && checkFlags.showMatches {
			out.Matched = v.Matched()
		}
		exit = 1
	}

	if err := writeCheckOutput(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if exit != 0 {
		return &cli.ExitError{Code: exit}
	}
	return nil
}

func checkInput(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case checkFlags.file != "" && len(args) > 0:
		return "", fmt.Errorf("pass text as arguments or --file, not both")
	case checkFlags.file != "":
		data, err := os.ReadFile(checkFlags.file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", checkFlags.file, err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

func writeCheckOutput(w io.Writer, out checkOutput) error {
	format, _ := cli.ParseFormat(outputFormat)
	if format == cli.FormatJSON {
		return formatter().FormatTo(w, out)
	}

	if out.Allowed {
		_, err := fmt.Fprintln(w, "allowed")
		return err
	}
	if _, err := fmt.Fprintf(w, "rejected: %s\n", out.Message); err != nil {
		return err
	}
	if len(out.Matched) > 0 {
		_, err := fmt.Fprintf(w, "matched: %s\n", strings.Join(out.Matched, ", "))
		return err
	}
	return nil
}
