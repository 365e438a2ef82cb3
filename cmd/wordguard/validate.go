package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quillpress/wordguard/pkg/cli"
	"quillpress/wordguard/pkg/moderation/termstore"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and seed file",
	Long: `Load the configuration with environment overrides and report every
problem found. The term seed file, when configured, is parsed as well.

Examples:
  wordguard validate --config config.yaml
  WORDGUARD_MODERATION_FAIL_MODE=fail-closed wordguard validate`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "configuration valid")

	if cfg.Terms.SeedFile != "" {
		words, err := termstore.LoadSeedFile(cfg.Terms.SeedFile)
		if err != nil {
			return cli.NewConfigError("terms.seed_file", err.Error())
		}
		fmt.Fprintf(out, "seed file %s: %d terms\n", cfg.Terms.SeedFile, len(words))
	}
	return nil
}
