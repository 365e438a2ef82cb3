/*
Package cli provides command-line helpers for the wordguard command.

Output Formatting:

Commands render results as text tables, JSON or CSV:

	table := &cli.Table{Headers: []string{"ID", "WORD"}}
	table.Append(term.ID, term.Word)
	if err := cli.NewFormatter(cli.FormatText).FormatTo(os.Stdout, table); err != nil {
		return err
	}

JSON output encodes the value it is given; pass the domain value rather
than a Table when the structure matters.

Exit Codes:

Return an *ExitError to end the process with a specific status and no
extra error output, for example when `wordguard check` rejects content.

Progress Reporting:

Bulk operations such as `wordguard terms import` report progress:

	progress := cli.NewProgressReporter(os.Stderr, "terms")
	progress.Start(int64(len(words)))
	...
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
