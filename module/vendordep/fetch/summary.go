package fetch

import "github.com/frctools/vendordep/module/vendordep/types"

// Summary aggregates per-artifact outcomes so callers can distinguish a
// fully resolved manifest from a partial one with named failures.
type Summary struct {
	Succeeded int
	Skipped   int
	Failed    []types.FetchResult
}

func Summarize(results []types.FetchResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case types.StatusSuccess:
			s.Succeeded++
		case types.StatusSkip:
			s.Skipped++
		case types.StatusFail:
			s.Failed = append(s.Failed, r)
		}
	}
	return s
}

// FullyResolved reports whether every descriptor was fetched or already
// present.
func (s Summary) FullyResolved() bool {
	return len(s.Failed) == 0
}
