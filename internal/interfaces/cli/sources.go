package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coscheck/coscheck/internal/application/ingest"
	"github.com/coscheck/coscheck/internal/domain/registry"
)

func newSourcesCommand(d *deps, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Summarize the loaded regulatory sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.ensureCatalog(cmd); err != nil {
				return err
			}
			if opts.JSONOutput {
				payload := struct {
					Sources []registry.SourceReport `json:"sources"`
					Load    []ingest.SourceStatus   `json:"load"`
				}{Sources: d.catalog.Report(), Load: d.statuses}
				return printJSON(cmd.OutOrStdout(), payload)
			}

			byName := make(map[string]ingest.SourceStatus, len(d.statuses))
			for _, s := range d.statuses {
				byName[s.Name] = s
			}

			var rows [][]string
			for _, r := range d.catalog.Report() {
				load := okColor.Sprint("ok")
				if st, ok := byName[r.Name]; ok {
					switch {
					case st.Error != "":
						load = failColor.Sprint(st.Error)
					case st.Cached:
						load = okColor.Sprint("cached")
					}
				}
				rows = append(rows, []string{
					r.Name,
					r.Kind,
					strconv.Itoa(r.Rows),
					strconv.Itoa(r.Columns),
					strconv.Itoa(r.CASColumns),
					strconv.Itoa(r.NameColumns),
					load,
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"Source", "Kind", "Rows", "Cols", "CAS cols", "Name cols", "Load"}, rows)
			return nil
		},
	}
	return cmd
}
