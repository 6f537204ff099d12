package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seanmtli/personalnewsletter/internal/curator"
	"github.com/seanmtli/personalnewsletter/internal/screenshot"
)

var debugInterests string

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Run every content provider and report per-provider results",
	Long: `Debug exercises all content providers for the given interests,
including ones that would normally be skipped by fallback, and prints a
JSON report with item counts, sample items, and errors per provider.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		interests := splitInterests(debugInterests)
		if len(interests) == 0 {
			return fmt.Errorf("no interests given, use --interests \"Lakers, NFL\"")
		}

		shots := screenshot.NewService(cfg.Screenshot)
		cur := curator.New(*cfg, shots)

		results := cur.Debug(context.Background(), interests)

		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.Flags().StringVar(&debugInterests, "interests", "", "comma-separated interests to curate for")
}

func splitInterests(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
