package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coscheck/coscheck/internal/domain/match"
	"github.com/coscheck/coscheck/pkg/cas"
	"github.com/coscheck/coscheck/pkg/errors"
)

func newCheckCommand(d *deps, opts *RootOptions) *cobra.Command {
	var policyFlag string
	var withRegistry bool

	cmd := &cobra.Command{
		Use:   "check <cas>[,<cas>...]",
		Short: "Search CAS numbers across the regulatory annex tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.ensureCatalog(cmd); err != nil {
				return err
			}

			queries := parseQueries(strings.Join(args, ","))
			if len(queries) == 0 {
				return errors.InvalidParam("no CAS numbers in input")
			}

			policy := match.ParseCASPolicy(d.cfg.Match.CASPolicy)
			if policyFlag != "" {
				policy = match.ParseCASPolicy(policyFlag)
			}

			results, err := d.searcher.SearchCAS(cmd.Context(), queries, policy)
			if err != nil {
				return err
			}

			if opts.JSONOutput {
				return printJSON(cmd.OutOrStdout(), results)
			}
			renderCrossAnnex(cmd, results)

			if withRegistry {
				for _, q := range queries {
					r, err := d.resolver.LookupCAS(cmd.Context(), q.String(), policy)
					if err != nil {
						return err
					}
					renderRegistryLookup(cmd, r)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policyFlag, "policy", "", "CAS matching policy (substring|exact)")
	cmd.Flags().BoolVar(&withRegistry, "registry", false, "also resolve each CAS in the canonical registry")
	return cmd
}

// parseQueries splits user input into CAS queries, stripping any "CAS"
// label prefix so pasted synonym strings work as-is.
func parseQueries(raw string) []match.Query {
	var qs []match.Query
	for _, p := range cas.SplitList(raw) {
		if n, ok := cas.Extract(p); ok {
			p = n
		}
		q := match.NewQuery(p)
		if !q.Empty() {
			qs = append(qs, q)
		}
	}
	return qs
}

func renderCrossAnnex(cmd *cobra.Command, results []match.CrossAnnexResult) {
	out := cmd.OutOrStdout()
	var rows [][]string
	for _, r := range results {
		if !r.Found() {
			rows = append(rows, []string{r.Query.String(), failColor.Sprint("not listed"), "", ""})
			continue
		}
		for _, sh := range r.Sources {
			rows = append(rows, []string{
				r.Query.String(),
				warnColor.Sprint("listed"),
				sh.Source,
				strconv.Itoa(len(sh.Hits)) + " row(s) via " + sh.Column,
			})
		}
	}
	renderTable(out, []string{"CAS", "Status", "Source", "Matches"}, rows)
}

func renderRegistryLookup(cmd *cobra.Command, r match.Result) {
	out := cmd.OutOrStdout()
	if !r.Found() {
		failColor.Fprintf(out, "%s: not in registry %s\n", r.Query, r.Source)
		return
	}
	labels := []string{"INCI name", "Ingredient", "Substance"}
	for _, h := range r.Hits {
		okColor.Fprintf(out, "%s: %s\n", r.Query, hitSummary(h.Values, labels))
	}
}
