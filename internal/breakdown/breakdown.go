package breakdown

import (
	"sort"

	"github.com/danielpatrickdp/policy-dash/internal/records"
)

// #region time-series
// TimeSeries counts decisions per calendar date, ascending by date.
// Anything that is not block or suggest is counted as allow.
func TimeSeries(rows []records.Record) []DayCounts {
	byDate := make(map[string]*DayCounts)
	var order []string
	for _, r := range rows {
		d := r.DateKey()
		dc, ok := byDate[d]
		if !ok {
			dc = &DayCounts{Date: d}
			byDate[d] = dc
			order = append(order, d)
		}
		switch r.Decision {
		case records.DecisionBlock:
			dc.Block++
		case records.DecisionSuggest:
			dc.Suggest++
		default:
			dc.Allow++
		}
	}

	sort.Strings(order)
	out := make([]DayCounts, len(order))
	for i, d := range order {
		out[i] = *byDate[d]
	}
	return out
}

// #endregion time-series

// #region by-category
// ByCategory counts records per policy category, largest first. Equal counts
// keep the order in which the categories first appear.
func ByCategory(rows []records.Record) []CategoryCount {
	idx := make(map[string]int)
	var out []CategoryCount
	for _, r := range rows {
		i, ok := idx[r.PolicyCategory]
		if !ok {
			i = len(out)
			idx[r.PolicyCategory] = i
			out = append(out, CategoryCount{Category: r.PolicyCategory})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Count > out[b].Count })
	if out == nil {
		out = []CategoryCount{}
	}
	return out
}

// #endregion by-category

// #region decision-bands
// DecisionBands always returns the Block, Suggest, Allow buckets in that order.
func DecisionBands(rows []records.Record) []BandCount {
	var block, suggest, allow int
	for _, r := range rows {
		switch r.Decision {
		case records.DecisionBlock:
			block++
		case records.DecisionSuggest:
			suggest++
		case records.DecisionAllow:
			allow++
		}
	}
	return []BandCount{
		{Name: "Block", Value: block},
		{Name: "Suggest", Value: suggest},
		{Name: "Allow", Value: allow},
	}
}

// #endregion decision-bands

// #region slice-disparity
// SliceDisparity returns the block rate of every distinct slice value in
// first-appearance order. Unlike metrics.WorstDisparity there is no language
// fallback: records with an empty slice form their own "" group.
func SliceDisparity(rows []records.Record) []SliceRate {
	type tally struct{ total, blocks int }
	idx := make(map[string]int)
	var slices []string
	var tallies []tally
	for _, r := range rows {
		i, ok := idx[r.Slice]
		if !ok {
			i = len(slices)
			idx[r.Slice] = i
			slices = append(slices, r.Slice)
			tallies = append(tallies, tally{})
		}
		tallies[i].total++
		if r.Decision == records.DecisionBlock {
			tallies[i].blocks++
		}
	}

	out := make([]SliceRate, len(slices))
	for i, s := range slices {
		rate := 0.0
		if tallies[i].total > 0 {
			rate = float64(tallies[i].blocks) / float64(tallies[i].total)
		}
		out[i] = SliceRate{Slice: s, BlockRate: rate}
	}
	return out
}

// #endregion slice-disparity
