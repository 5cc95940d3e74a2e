package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CatalogEntry is one pattern listing for output.
type CatalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Verb string `json:"verb"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the loaded pattern catalog",
		Long: `List every pattern entry in the effective catalog: the embedded one,
or the file named by catalog_path in the configuration.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(rootOpts, cmd)
		},
	}

	return cmd
}

func runCatalog(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	entries := make([]CatalogEntry, 0, cat.Len())
	for _, id := range cat.PatternIDs() {
		spec, ok := cat.SpecByID(id)
		if !ok {
			continue
		}
		entries = append(entries, CatalogEntry{
			ID:   id,
			Name: spec.Name,
			Verb: string(spec.Verb),
		})
	}

	if opts.Format == "json" {
		return formatter.Success(entries)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d pattern(s), %d rule(s):\n", cat.Len(), len(cat.Rules()))
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-26s %-10s %s\n", e.ID, e.Verb, e.Name)
	}
	return nil
}
