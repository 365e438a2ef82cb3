package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quillpress/wordguard/pkg/cli"
	"quillpress/wordguard/pkg/moderation/termstore"
)

var termsFlags struct {
	query string
}

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Manage the prohibited term list",
	Long: `Manage the prohibited term list in the configured term store.

A running server picks up edits made here when its term cache expires
(moderation.cache_ttl, 60s by default). Use POST /api/v1/terms/refresh to
apply them immediately.`,
}

var termsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored terms",
	Args:  cobra.NoArgs,
	RunE:  runTermsList,
}

var termsAddCmd = &cobra.Command{
	Use:   "add WORD...",
	Short: "Add one or more terms",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTermsAdd,
}

var termsRemoveCmd = &cobra.Command{
	Use:   "remove ID...",
	Short: "Remove terms by ID",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTermsRemove,
}

var termsImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Add every term from a YAML seed file",
	Long: `Add every term from a YAML seed file. Terms already stored are skipped
and nothing is removed.

Seed file format:

  terms:
    - buy now
    - click here`,
	Args: cobra.ExactArgs(1),
	RunE: runTermsImport,
}

func init() {
	rootCmd.AddCommand(termsCmd)
	termsCmd.AddCommand(termsListCmd, termsAddCmd, termsRemoveCmd, termsImportCmd)

	termsListCmd.Flags().StringVarP(&termsFlags.query, "query", "q", "", "only list terms containing this text")
}

func openManager() (*termstore.Manager, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := openTermStore(&cfg.Terms)
	if err != nil {
		return nil, nil, cli.NewCommandError("terms", err)
	}
	return termstore.NewManager(store, nil), store.Close, nil
}

func runTermsList(cmd *cobra.Command, args []string) error {
	manager, closeStore, err := openManager()
	if err != nil {
		return err
	}
	defer closeStore()

	terms, err := manager.List(cmd.Context(), termsFlags.query)
	if err != nil {
		return cli.NewCommandError("terms list", err)
	}

	if format, _ := cli.ParseFormat(outputFormat); format == cli.FormatJSON {
		return formatter().FormatTo(cmd.OutOrStdout(), terms)
	}
	table := &cli.Table{Headers: []string{"ID", "WORD", "CREATED"}}
	for _, t := range terms {
		table.Append(t.ID, t.Word, t.CreatedAt.Format(time.RFC3339))
	}
	return formatter().FormatTo(cmd.OutOrStdout(), table)
}

func runTermsAdd(cmd *cobra.Command, args []string) error {
	manager, closeStore, err := openManager()
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	var failed int
	for _, word := range args {
		t, err := manager.Add(cmd.Context(), word)
		switch {
		case err == nil:
			fmt.Fprintf(out, "added %q (%s)\n", t.Word, t.ID)
		case errors.Is(err, termstore.ErrTermExists):
			fmt.Fprintf(out, "skipped %q: already in the list\n", termstore.Normalize(word))
		default:
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "failed to add %q: %v\n", word, err)
		}
	}
	if failed > 0 {
		return &cli.ExitError{Code: 1, Message: fmt.Sprintf("%d of %d terms could not be added", failed, len(args))}
	}
	return nil
}

func runTermsRemove(cmd *cobra.Command, args []string) error {
	manager, closeStore, err := openManager()
	if err != nil {
		return err
	}
	defer closeStore()

	var failed int
	for _, id := range args {
		if err := manager.Remove(cmd.Context(), id); err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "failed to remove %s: %v\n", id, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
	}
	if failed > 0 {
		return &cli.ExitError{Code: 1, Message: fmt.Sprintf("%d of %d terms could not be removed", failed, len(args))}
	}
	return nil
}

func runTermsImport(cmd *cobra.Command, args []string) error {
	words, err := termstore.LoadSeedFile(args[0])
	if err != nil {
		return err
	}

	manager, closeStore, err := openManager()
	if err != nil {
		return err
	}
	defer closeStore()

	progress := cli.NewProgressReporter(cmd.ErrOrStderr(), "terms")
	progress.Start(int64(len(words)))

	added := 0
	for i, word := range words {
		n, err := manager.Sync(cmd.Context(), []string{word})
		if err != nil {
			progress.Error(err)
			return cli.NewCommandError("terms import", err)
		}
		added += n
		progress.Update(int64(i + 1))
	}
	progress.Finish()

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d new terms (%d in file)\n", added, len(words))
	return nil
}
