package cli

import (
	"github.com/spf13/cobra"

	"github.com/coscheck/coscheck/internal/application/freshness"
	"github.com/coscheck/coscheck/internal/config"
)

func newRefreshCommand(d *deps, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run one freshness cycle against the configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker := freshness.NewTracker(d.fetcher, d.reader, d.store, d.logger)
			reports, err := tracker.Check(cmd.Context(), refreshTargets(d.cfg.Sources))
			if err != nil {
				return err
			}
			if opts.JSONOutput {
				return printJSON(cmd.OutOrStdout(), reports)
			}
			renderFreshness(cmd, reports)
			return nil
		},
	}
	return cmd
}

// refreshTargets lists every configured source with a fetch URL, registry
// first. Path-only sources have nothing remote to track.
func refreshTargets(sources config.SourcesConfig) []freshness.Target {
	var targets []freshness.Target
	if sources.Registry.URL != "" {
		targets = append(targets, freshness.Target{Name: sources.Registry.Name, URL: sources.Registry.URL})
	}
	for _, a := range sources.Annexes {
		if a.URL != "" {
			targets = append(targets, freshness.Target{Name: a.Name, URL: a.URL})
		}
	}
	return targets
}

func renderFreshness(cmd *cobra.Command, reports []freshness.Report) {
	out := cmd.OutOrStdout()
	var rows [][]string
	for _, r := range reports {
		status := okColor.Sprint("unchanged")
		switch {
		case r.Error != "":
			status = failColor.Sprint("error: " + r.Error)
		case r.Changed:
			status = warnColor.Sprint("changed")
		}
		rows = append(rows, []string{r.Source, status, string(r.Kind), r.Marker})
	}
	renderTable(out, []string{"Source", "Status", "Marker kind", "Marker"}, rows)
}
