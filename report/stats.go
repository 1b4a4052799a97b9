package report

import (
	"sort"
)

// SalesStats is the per-executive summary rendered into a weekly sales
// report. Quarterly totals are keyed by quarter column name (e.g. 26Q1) and
// only include positive forecast values.
type SalesStats struct {
	TotalCustomers       int
	TotalAssignedRevenue float64
	AvgPerCustomer       float64
	QuarterlyTotals      map[string]float64
	UnassignedTotals     map[string]float64
	Quarters             [4]string
}

// QuarterBreakdown is a single quarter's assigned/unassigned split in the
// management rollup.
type QuarterBreakdown struct {
	Name       string
	Assigned   float64
	Unassigned float64
}

// AESummary is one executive's line in the management rollup.
type AESummary struct {
	Name                 string
	TotalAssignedRevenue float64
	TotalCustomers       int
	Quarters             []QuarterBreakdown
}

// ManagementStats is the company-wide summary rendered into the management
// report.
type ManagementStats struct {
	TotalRevenue           float64
	TotalUnassignedRevenue float64
	TotalCustomers         int
	Quarters               [4]string
	AEs                    []AESummary
}

// CalculateSalesStats summarises the forecast rows for a single account
// executive. Rows in the unassigned sector are excluded from the assigned
// totals and the customer count but are reported separately so the executive
// can see unallocated revenue in their book.
func CalculateSalesStats(rows []Row, ae string, year int) SalesStats {
	quarters := quarterColumns(year)

	stats := SalesStats{
		Quarters:         quarters,
		QuarterlyTotals:  map[string]float64{},
		UnassignedTotals: map[string]float64{},
	}

	customers := map[string]bool{}
	for _, row := range rows {
		if row.AE != ae {
			continue
		}

		if row.Sector == unassigned {
			for q, column := range quarters {
				if row.Quarters[q] > 0 {
					stats.UnassignedTotals[column] += row.Quarters[q]
				}
			}
			continue
		}

		customers[row.Customer] = true
		for q, column := range quarters {
			if row.Quarters[q] > 0 {
				stats.QuarterlyTotals[column] += row.Quarters[q]
				stats.TotalAssignedRevenue += row.Quarters[q]
			}
		}
	}

	stats.TotalCustomers = len(customers)
	if stats.TotalCustomers > 0 {
		stats.AvgPerCustomer = stats.TotalAssignedRevenue / float64(stats.TotalCustomers)
	}

	return stats
}

// CalculateManagementStats summarises the forecast rows across all account
// executives for the management rollup.
func CalculateManagementStats(rows []Row, year int) ManagementStats {
	quarters := quarterColumns(year)

	stats := ManagementStats{
		Quarters: quarters,
	}

	customers := map[string]bool{}
	names := []string{}
	seen := map[string]bool{}
	for _, row := range rows {
		customers[row.Customer] = true

		if !seen[row.AE] {
			seen[row.AE] = true
			names = append(names, row.AE)
		}

		for q := range quarters {
			if row.Sector == unassigned {
				stats.TotalUnassignedRevenue += row.Quarters[q]
			} else {
				stats.TotalRevenue += row.Quarters[q]
			}
		}
	}

	stats.TotalCustomers = len(customers)

	sort.Strings(names)
	for _, name := range names {
		stats.AEs = append(stats.AEs, summarise(rows, name, year))
	}

	return stats
}

// summarise builds an executive's rollup line from the same per-AE
// calculation as their own report, so the two never disagree on a figure.
func summarise(rows []Row, ae string, year int) AESummary {
	stats := CalculateSalesStats(rows, ae, year)

	breakdown := make([]QuarterBreakdown, len(stats.Quarters))
	for q, column := range stats.Quarters {
		breakdown[q] = QuarterBreakdown{
			Name:       column,
			Assigned:   stats.QuarterlyTotals[column],
			Unassigned: stats.UnassignedTotals[column],
		}
	}

	return AESummary{
		Name:                 ae,
		TotalAssignedRevenue: stats.TotalAssignedRevenue,
		TotalCustomers:       stats.TotalCustomers,
		Quarters:             breakdown,
	}
}
