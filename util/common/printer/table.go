// Package printer renders per-artifact fetch outcomes for the terminal.
// This is the boundary where presentation attaches; the resolve-and-fetch
// core only ever returns typed results.
package printer

import (
	"github.com/pterm/pterm"

	"github.com/frctools/vendordep/module/vendordep/types"
	"github.com/frctools/vendordep/util/common"
)

// PrintResults renders one line per artifact outcome followed by a summary
// table. Failures keep their error text so a missing dependency is never
// silent.
func PrintResults(results []types.FetchResult) {
	rows := pterm.TableData{{"Artifact", "Classifier", "Status", "Size", "Detail"}}

	var ok, skipped, failed int
	for _, r := range results {
		detail := r.SourceURL
		switch r.Status {
		case types.StatusSuccess:
			ok++
			pterm.Success.Println(r.Descriptor.ID() + " (" + common.GetSize(r.Size) + ")")
		case types.StatusSkip:
			skipped++
			detail = "already present"
		case types.StatusFail:
			failed++
			if r.Err != nil {
				detail = r.Err.Error()
			}
			pterm.Error.Println(r.Descriptor.ID() + ": " + detail)
		}
		rows = append(rows, []string{
			r.Descriptor.ID(),
			r.Descriptor.Classifier,
			string(r.Status),
			common.GetSize(r.Size),
			detail,
		})
	}

	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	pterm.Info.Printfln("%d fetched, %d already present, %d failed", ok, skipped, failed)
}
