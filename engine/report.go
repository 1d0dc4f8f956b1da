package engine

import (
	"fmt"
	"strings"
)

// RenderReport formats a run result for terminal output. Deterministic for
// a given result, so renderings are golden-testable.
func RenderReport(result *RunResult, searchURL func(query string) string) string {
	if searchURL == nil {
		searchURL = func(string) string { return "" }
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s — list %q — %s\n", result.RunID, result.ListName, result.State)

	switch result.State {
	case StateBlocked:
		fmt.Fprintf(&b, "\n%d item(s) block this run. Nothing was added to the cart.\n", len(result.Blocked))
		for _, r := range result.Blocked {
			fmt.Fprintf(&b, "\n  %q", r.Item.Original)
			if r.Item.Normalized != strings.ToLower(r.Item.Original) {
				fmt.Fprintf(&b, " (normalized: %q)", r.Item.Normalized)
			}
			b.WriteString("\n")
			if len(r.Candidates) == 0 {
				b.WriteString("    No similar product known. ")
				if url := searchURL(r.Item.Normalized); url != "" {
					fmt.Fprintf(&b, "Search and record it: %s\n", url)
				} else {
					b.WriteString("Record a mapping with: cartsync record\n")
				}
				continue
			}
			b.WriteString("    Candidates:\n")
			for _, c := range r.Candidates {
				fmt.Fprintf(&b, "      %3.0f%%  %s (id %s)\n", c.Score*100, c.Product.Name, c.Product.ID)
			}
			fmt.Fprintf(&b, "    Confirm with: cartsync record --item %q --product-id <id> --name <name>\n", r.Item.Normalized)
		}

	case StateReady:
		fmt.Fprintf(&b, "\nAll %d item(s) mapped. Dry run stopped before cart changes.\n", len(result.Items))

	case StateDone:
		if result.Plan.Empty() {
			b.WriteString("\nCart already satisfied every item; no adds were needed.\n")
		} else {
			fmt.Fprintf(&b, "\nPlanned %d add(s):\n", len(result.Plan.Adds))
			for _, rec := range result.Executed {
				fmt.Fprintf(&b, "  %-8s %dx %s\n", rec.Status, rec.Count, rec.Item.Product.Name)
			}
		}
		if result.Audit != nil {
			b.WriteString("\nAudit:\n")
			for _, item := range result.Audit.Fulfilled {
				fmt.Fprintf(&b, "  fulfilled   %s\n", item.Item.Normalized)
			}
			for _, item := range result.Audit.Missing {
				fmt.Fprintf(&b, "  MISSING     %s\n", item.Item.Normalized)
			}
			for _, entry := range result.Audit.Unexpected {
				name := entry.DisplayName
				if name == "" {
					name = entry.Product.Name
				}
				fmt.Fprintf(&b, "  UNEXPECTED  %s (in cart, never requested)\n", name)
			}
		}
		b.WriteString("\nCart update complete. Hard stop before checkout.\n")
	}

	return b.String()
}
