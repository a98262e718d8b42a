package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bulksend/internal/orchestrator"
	"github.com/roach88/bulksend/internal/phone"
)

// DefaultPreviewLimit is how many numbers preview lists without --all.
const DefaultPreviewLimit = 5

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	All   bool
	Limit int
	Sheet string
}

// PreviewResult is the JSON payload of the preview command.
type PreviewResult struct {
	Column    string          `json:"column"`
	HeaderRow int             `json:"header_row"`
	Index     int             `json:"column_index"`
	Total     int             `json:"total"`
	Unique    int             `json:"unique"`
	Numbers   []phone.Verdict `json:"numbers"`
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Show the phone column and the numbers a send would use",
		Long: `Load a spreadsheet, locate its phone-number column, and list the normalized
numbers with an advisory validity check. Nothing is sent.

Validity is informational only: send dispatches every number regardless.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "list every number")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", DefaultPreviewLimit, "how many numbers to list without --all")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "worksheet name (default first sheet)")

	return cmd
}

func runPreview(opts *PreviewOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	setupLogging(opts.RootOptions, cfg, cmd.ErrOrStderr())

	col, batch, err := loadBatch(formatter, cfg, path, opts.Sheet)
	if err != nil {
		return err
	}

	shown := []phone.Number(batch)
	if !opts.All && opts.Limit >= 0 && len(shown) > opts.Limit {
		shown = shown[:opts.Limit]
	}
	verdicts := make([]phone.Verdict, len(shown))
	for i, n := range shown {
		verdicts[i] = phone.Check(n)
	}

	result := PreviewResult{
		Column:    col.Header,
		HeaderRow: col.HeaderRow + 1,
		Index:     col.Index + 1,
		Total:     len(batch),
		Unique:    len(orchestrator.Dedupe(batch)),
		Numbers:   verdicts,
	}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	formatter.Line("Phone column: %q (row %d, column %d)", result.Column, result.HeaderRow, result.Index)
	formatter.Line("Numbers: %d (%d unique)", result.Total, result.Unique)
	for _, v := range verdicts {
		formatter.Line("  %s", describeVerdict(v))
	}
	if hidden := len(batch) - len(shown); hidden > 0 {
		formatter.Line("  ... and %d more (use --all to list every number)", hidden)
	}
	return nil
}

// describeVerdict renders a verdict as "+601... valid (MY, mobile)".
func describeVerdict(v phone.Verdict) string {
	if !v.Valid {
		return fmt.Sprintf("%-16s invalid: %s", v.Number, v.Reason)
	}
	tags := []string{}
	if v.Region != "" {
		tags = append(tags, v.Region)
	}
	if v.Mobile {
		tags = append(tags, "mobile")
	} else {
		tags = append(tags, "not mobile")
	}
	return fmt.Sprintf("%-16s valid (%s)", v.Number, strings.Join(tags, ", "))
}
