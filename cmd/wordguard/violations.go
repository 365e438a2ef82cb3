package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quillpress/wordguard/pkg/audit"
	"quillpress/wordguard/pkg/audit/retention"
	"quillpress/wordguard/pkg/cli"
)

var violationsFlags struct {
	source string
	user   string
	since  string
	limit  int
	days   int
}

var violationsCmd = &cobra.Command{
	Use:   "violations",
	Short: "Inspect and prune the violation log",
}

var violationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rejected submissions, newest first",
	Long: `List rejected submissions, newest first.

Matched terms are shown here for moderators; they are never returned to
the person whose content was rejected.

Examples:
  wordguard violations list --since 24h
  wordguard violations list --source comment --user u-123 -o csv`,
	Args: cobra.NoArgs,
	RunE: runViolationsList,
}

var violationsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete violations older than the retention period",
	Args:  cobra.NoArgs,
	RunE:  runViolationsPrune,
}

func init() {
	rootCmd.AddCommand(violationsCmd)
	violationsCmd.AddCommand(violationsListCmd, violationsPruneCmd)

	violationsListCmd.Flags().StringVar(&violationsFlags.source, "source", "", "filter by source: comment, check")
	violationsListCmd.Flags().StringVar(&violationsFlags.user, "user", "", "filter by user ID")
	violationsListCmd.Flags().StringVar(&violationsFlags.since, "since", "", "only newer violations: a duration (24h) or RFC 3339 time")
	violationsListCmd.Flags().IntVar(&violationsFlags.limit, "limit", audit.DefaultQueryLimit, "maximum number of results")

	violationsPruneCmd.Flags().IntVar(&violationsFlags.days, "days", 0, "override audit.retention_days")
}

func openViolations() (audit.Storage, int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, 0, err
	}
	if cfg.Audit.Backend == "memory" {
		return nil, 0, cli.NewConfigError("audit.backend", "the memory backend is not persistent; nothing to inspect")
	}
	storage, err := openAuditStorage(&cfg.Audit)
	if err != nil {
		return nil, 0, cli.NewCommandError("violations", err)
	}
	return storage, cfg.Audit.RetentionDays, nil
}

func runViolationsList(cmd *cobra.Command, args []string) error {
	since, err := parseSince(violationsFlags.since, time.Now())
	if err != nil {
		return err
	}
	q := &audit.Query{
		Source: violationsFlags.source,
		UserID: violationsFlags.user,
		Since:  since,
		Limit:  violationsFlags.limit,
	}
	if err := q.Validate(); err != nil {
		return err
	}

	storage, _, err := openViolations()
	if err != nil {
		return err
	}
	defer storage.Close()

	list, err := storage.Query(cmd.Context(), q)
	if err != nil {
		return cli.NewCommandError("violations list", err)
	}

	if format, _ := cli.ParseFormat(outputFormat); format == cli.FormatJSON {
		return formatter().FormatTo(cmd.OutOrStdout(), list)
	}
	table := &cli.Table{Headers: []string{"CREATED", "SOURCE", "SUBJECT", "USER", "MATCHED"}}
	for _, v := range list {
		table.Append(v.CreatedAt.Format(time.RFC3339), v.Source, v.SubjectID, v.UserID, strings.Join(v.Matched, ", "))
	}
	return formatter().FormatTo(cmd.OutOrStdout(), table)
}

func runViolationsPrune(cmd *cobra.Command, args []string) error {
	storage, days, err := openViolations()
	if err != nil {
		return err
	}
	defer storage.Close()

	if violationsFlags.days > 0 {
		days = violationsFlags.days
	}
	if days <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "retention is unlimited; nothing pruned")
		return nil
	}
	pruner := retention.NewPruner(storage, &retention.Config{RetentionDays: days})
	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("violations prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d violations older than %d days\n", deleted, days)
	return nil
}

// parseSince accepts a duration relative to now or an RFC 3339 time.
func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: use a duration such as 24h or an RFC 3339 time", s)
	}
	return t, nil
}
