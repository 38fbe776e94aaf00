package core

import (
	"fmt"
	"sort"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
)

// MergeOutcomes concatenates the records of successful outcomes into a single
// sequence, ordered by slice start so the result is deterministic even though
// completion order is not. Records whose identifier was already seen in an
// earlier slice are warned about but kept: the scanning page legitimately
// returns a candidate in two adjacent slices, and dropping rows here would
// hide that from the caller.
func MergeOutcomes(outcomes []QueryOutcome) []schema.Record {
	sorted := make([]QueryOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Success() {
			sorted = append(sorted, o)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Task.Slice.Start.Before(sorted[j].Task.Slice.Start)
	})

	var merged []schema.Record
	seen := make(map[string]struct{})
	duplicates := 0
	for _, o := range sorted {
		for _, r := range o.Records {
			if id := r.ID(); id != "" {
				if _, ok := seen[id]; ok {
					duplicates++
				}
				seen[id] = struct{}{}
			}
			merged = append(merged, r)
		}
	}

	if duplicates > 0 {
		contract.LogWarn("merged results contain duplicate identifiers",
			fmt.Errorf("%d records repeat an identifier seen in another slice", duplicates))
	}
	return merged
}
