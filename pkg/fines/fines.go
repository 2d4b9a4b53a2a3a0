// Package fines estimates the fines the city could have collected from
// buildings that did not submit their benchmarking report.
package fines

import (
	"strconv"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
)

// AnnualMaxFine is the maximum fine per building per year of non-compliance.
const AnnualMaxFine = 9200

// TotalKey is the key of the all-years entry.
const TotalKey = "total"

// Entry is the non-compliance count and fine amount for one year.
type Entry struct {
	Count int `json:"count"`
	Fines int `json:"fines"`
}

// ByYear counts "Not Submitted" rows per year and multiplies by maxFine. The
// result is keyed by year plus TotalKey. Years with no missing report are not
// listed.
func ByYear(historic []*benchmark.Record, maxFine int) map[string]Entry {
	counts := make(map[int]int)
	for _, r := range historic {
		if r.ReportingStatus == benchmark.StatusNotSubmitted {
			counts[r.DataYear]++
		}
	}

	out := make(map[string]Entry, len(counts)+1)
	total := 0
	for year, n := range counts {
		out[strconv.Itoa(year)] = Entry{Count: n, Fines: n * maxFine}
		total += n
	}
	out[TotalKey] = Entry{Count: total, Fines: total * maxFine}
	return out
}
