package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/bulksend/internal/config"
	"github.com/roach88/bulksend/internal/templates"
)

// TemplatesResult is the JSON payload of the templates command.
type TemplatesResult struct {
	Templates      []templates.Template `json:"templates"`
	DefaultProject string               `json:"default_project"`
	PacingChoices  []int                `json:"pacing_choices"`
	DefaultPacing  int                  `json:"default_pacing"`
}

// NewTemplatesCommand creates the templates command.
func NewTemplatesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "templates",
		Short:         "List the message templates and pacing choices",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplates(rootOpts, cmd)
		},
	}

	return cmd
}

func runTemplates(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, formatter)
	if err != nil {
		return err
	}
	catalogue, err := cfg.Catalogue()
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeConfig, "invalid templates", err)
	}

	result := TemplatesResult{
		Templates:      catalogue.All(),
		DefaultProject: cfg.DefaultProject,
		PacingChoices:  config.PacingChoices(),
		DefaultPacing:  cfg.DefaultPacing,
	}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	for _, t := range result.Templates {
		marker := " "
		if t.Name == result.DefaultProject {
			marker = "*"
		}
		formatter.Line("%s %s: %s", marker, t.Name, t.Message)
	}
	formatter.Line("Pacing choices (seconds): %v, default %d", result.PacingChoices, result.DefaultPacing)
	return nil
}
