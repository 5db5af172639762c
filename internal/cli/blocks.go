package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"venuedash/internal/domain/availability"
	"venuedash/internal/domain/venues"
)

// NewBlocksCmd works on a venue metadata document offline:
// {"blockedDates": [...], ...}.
func NewBlocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Apply or check blocked date ranges of a venue metadata file",
	}
	cmd.AddCommand(newBlocksApplyCmd())
	cmd.AddCommand(newBlocksCheckCmd())
	return cmd
}

func newBlocksApplyCmd() *cobra.Command {
	var file, mode string
	var dates []string
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Block or unblock dates and print the resulting metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			metadata, err := readMetadata(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			m, err := availability.ParseMode(mode)
			if err != nil {
				return err
			}
			selection, err := availability.ParseSelection(dates)
			if err != nil {
				return err
			}
			existing := metadata.BlockedDates
			if err := availability.CheckSelection(existing, selection, m); err != nil {
				return err
			}
			next, err := availability.Apply(existing, selection, m)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(metadata.WithBlockedDates(next))
		},
	}
	cmd.Flags().StringVar(&file, "venue", "-", "metadata JSON file, - for stdin")
	cmd.Flags().StringVar(&mode, "mode", string(availability.ModeBlock), "block or unblock")
	cmd.Flags().StringSliceVar(&dates, "dates", nil, "comma separated YYYY-MM-DD days")
	_ = cmd.MarkFlagRequired("dates")
	return cmd
}

func newBlocksCheckCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate blocked ranges and report adjacent ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			metadata, err := readMetadata(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			ranges := metadata.BlockedDates
			if err := ranges.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ok: %d ranges, %d days\n", len(ranges), ranges.Days())
			for _, pair := range ranges.AdjacentPairs() {
				a, b := ranges[pair[0]], ranges[pair[1]]
				fmt.Fprintf(out, "adjacent: %s and %s\n", a.Span(), b.Span())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "venue", "-", "metadata JSON file, - for stdin")
	return cmd
}

func readMetadata(stdin io.Reader, file string) (venues.Metadata, error) {
	var r io.Reader = stdin
	if file = strings.TrimSpace(file); file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return venues.Metadata{}, err
		}
		defer f.Close()
		r = f
	}
	var metadata venues.Metadata
	if err := json.NewDecoder(r).Decode(&metadata); err != nil {
		return venues.Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return metadata, nil
}
