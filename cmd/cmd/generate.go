package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	generateUser   string
	generateDryRun bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and send newsletters for all active users",
	Long: `Generate curates a newsletter for every active user with preferences,
persists it, and sends it by email. Use --user to target a single user,
or --dry-run to generate and persist without sending.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		runner, st, err := newBatchRunner(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := runner.Run(context.Background(), generateUser, generateDryRun)
		if err != nil {
			return err
		}

		fmt.Printf("Processed %d users: %d sent, %d generated, %d skipped, %d errors\n",
			summary.Processed, summary.Sent, summary.Generated, summary.Skipped, summary.Errors)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generateUser, "user", "", "generate for a single user email only")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "curate and persist but do not send email")
}
