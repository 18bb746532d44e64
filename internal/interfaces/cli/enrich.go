package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coscheck/coscheck/internal/application/enrichment"
	"github.com/coscheck/coscheck/pkg/errors"
)

func newEnrichCommand(d *deps, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich <name-or-cas>[,<name-or-cas>...]",
		Short: "Resolve chemical identities via the PubChem compound database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var queries []string
			for _, p := range strings.FieldsFunc(strings.Join(args, ","), func(r rune) bool {
				return r == ',' || r == '\n'
			}) {
				if q := strings.TrimSpace(p); q != "" {
					queries = append(queries, q)
				}
			}
			if len(queries) == 0 {
				return errors.InvalidParam("no queries in input")
			}

			outcomes := d.enricher.EnrichBatch(cmd.Context(), queries)
			if opts.JSONOutput {
				return printJSON(cmd.OutOrStdout(), outcomes)
			}
			renderOutcomes(cmd, outcomes)
			return nil
		},
	}
	return cmd
}

func renderOutcomes(cmd *cobra.Command, outcomes []enrichment.Outcome) {
	out := cmd.OutOrStdout()
	var rows [][]string
	for _, o := range outcomes {
		switch o.Status {
		case enrichment.StatusFound:
			id := o.Identity
			detail := id.ReferenceURL
			if !id.Partial {
				detail = fmt.Sprintf("%s  %s  %.2f g/mol", id.MolecularFormula, id.InChIKey, id.MolecularWeight)
				if id.CAS != "" {
					detail += "  CAS " + id.CAS
				}
			}
			status := okColor.Sprint("found")
			if id.Partial {
				status = warnColor.Sprint("partial")
			}
			rows = append(rows, []string{o.Query, status, fmt.Sprintf("CID %d", id.CID), detail})
		case enrichment.StatusNotFound:
			rows = append(rows, []string{o.Query, warnColor.Sprint("not found"), "", o.Reason})
		default:
			rows = append(rows, []string{o.Query, failColor.Sprint("error"), "", o.Reason})
		}
	}
	renderTable(out, []string{"Query", "Status", "Compound", "Detail"}, rows)
}
