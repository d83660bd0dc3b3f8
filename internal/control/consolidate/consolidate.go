package consolidate

import (
	"sort"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
)

// Consolidator reduces the raw per-chunk grades to one entry per control
// id, keeping the worst observation. Worst means highest effective score;
// on a tie the earliest observation wins so reruns stay deterministic.
type Consolidator struct {
	passThreshold int
	maxRisk       int
}

func New(cfg config.Pipeline) *Consolidator {
	return &Consolidator{
		passThreshold: cfg.PassThreshold,
		maxRisk:       cfg.MaxRiskScore,
	}
}

// Consolidate groups graded results by control id, in first-seen order
// within each group, and returns entries sorted by control id. Sentinel
// entries (definitions that never ran) are carried through but excluded
// from the pass tally.
func (c *Consolidator) Consolidate(graded []commonModels.GradedResult) ([]commonModels.ConsolidatedEntry, commonModels.Summary) {
	order := make([]string, 0)
	groups := make(map[string][]commonModels.GradedResult)
	for _, g := range graded {
		if _, seen := groups[g.ControlID]; !seen {
			order = append(order, g.ControlID)
		}
		groups[g.ControlID] = append(groups[g.ControlID], g)
	}

	entries := make([]commonModels.ConsolidatedEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, c.reduce(id, groups[id]))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ControlID < entries[j].ControlID
	})

	var summary commonModels.Summary
	for _, e := range entries {
		if e.Sentinel {
			continue
		}
		summary.Total++
		if e.Passed {
			summary.Passed++
		}
	}
	return entries, summary
}

func (c *Consolidator) reduce(id string, group []commonModels.GradedResult) commonModels.ConsolidatedEntry {
	entry := commonModels.ConsolidatedEntry{
		ControlID: id,
		Scores:    make([]int, 0, len(group)),
	}

	worstScore := 0
	sentinel := true
	for _, g := range group {
		entry.Scores = append(entry.Scores, g.Score)
		if !g.Sentinel {
			sentinel = false
		}

		// a grade that never resolved carries maximum risk
		effective := g.Score
		if effective <= 0 {
			effective = c.maxRisk
		}

		// strict comparison keeps the first observation on ties
		if effective > worstScore {
			worstScore = effective
			entry.Worst = g
			entry.Worst.Score = effective
		}
	}

	entry.Sentinel = sentinel
	entry.Passed = worstScore >= 1 && worstScore < c.passThreshold
	return entry
}
