package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/coscheck/coscheck/internal/domain/match"
	"github.com/coscheck/coscheck/pkg/errors"
)

func newIngredientsCommand(d *deps, opts *RootOptions) *cobra.Command {
	var modeFlag string
	var withAnnexes bool

	cmd := &cobra.Command{
		Use:   "ingredients <name>[,<name>...]",
		Short: "Resolve ingredient names against the canonical registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.ensureCatalog(cmd); err != nil {
				return err
			}

			queries := splitNames(strings.Join(args, ","))
			if len(queries) == 0 {
				return errors.InvalidParam("no ingredient names in input")
			}

			mode := match.ParseMode(d.cfg.Match.Mode)
			if modeFlag != "" {
				mode = match.ParseMode(modeFlag)
			}

			results, err := d.resolver.Resolve(cmd.Context(), queries, mode)
			if err != nil {
				return err
			}

			var annexResults []match.CrossAnnexResult
			if withAnnexes {
				annexResults, err = d.searcher.SearchName(cmd.Context(), queries, match.ModeFuzzy)
				if err != nil {
					return err
				}
			}

			if opts.JSONOutput {
				payload := struct {
					Registry []match.Result           `json:"registry"`
					Annexes  []match.CrossAnnexResult `json:"annexes,omitempty"`
				}{Registry: results, Annexes: annexResults}
				return printJSON(cmd.OutOrStdout(), payload)
			}

			renderResolveResults(cmd, results)
			if withAnnexes {
				renderCrossAnnexNames(cmd, annexResults)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "", "name matching mode (exact|fuzzy)")
	cmd.Flags().BoolVar(&withAnnexes, "annexes", false, "also search the annex tables for each name")
	return cmd
}

// splitNames splits on commas and newlines only; ingredient names may
// legitimately contain semicolons in parenthesized qualifiers.
func splitNames(raw string) []match.Query {
	var qs []match.Query
	for _, p := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	}) {
		q := match.NewQuery(p)
		if !q.Empty() {
			qs = append(qs, q)
		}
	}
	return qs
}

func renderResolveResults(cmd *cobra.Command, results []match.Result) {
	out := cmd.OutOrStdout()
	labels := []string{"INCI name", "Ingredient", "CAS No", "CAS Number"}
	var rows [][]string
	for _, r := range results {
		if !r.Found() {
			rows = append(rows, []string{r.Query.String(), failColor.Sprint("no match"), ""})
			continue
		}
		for _, h := range r.Hits {
			rows = append(rows, []string{r.Query.String(), okColor.Sprint("match"), hitSummary(h.Values, labels)})
		}
	}
	renderTable(out, []string{"Query", "Status", "Registry row"}, rows)
}

func renderCrossAnnexNames(cmd *cobra.Command, results []match.CrossAnnexResult) {
	out := cmd.OutOrStdout()
	var rows [][]string
	for _, r := range results {
		if !r.Found() {
			continue
		}
		for _, sh := range r.Sources {
			labels := []string{"INCI name", "Ingredient", "Substance"}
			for _, h := range sh.Hits {
				rows = append(rows, []string{r.Query.String(), sh.Source, hitSummary(h.Values, labels)})
			}
		}
	}
	if len(rows) == 0 {
		okColor.Fprintln(out, "no annex listings")
		return
	}
	renderTable(out, []string{"Query", "Annex", "Row"}, rows)
}
