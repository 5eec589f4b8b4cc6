package google

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rentbot/internal/core"
)

// The ledger worksheet allocates a fixed block of rows to every month,
// starting with 8/2021. Rows 1-24 are a legacy header area kept for audit
// history; month blocks follow, one per calendar month:
//
//	<month/year, e.g. "8/2021">
//	Total Rent,     <amount>
//	Total Utility,  <amount>
//	Name,           Weeks Stayed,   Paid?
//	Jake Deerin,    4,              False
//	Mac Mathis,     1.5,            True
//	...
const (
	startYear  = 2021
	startMonth = 8

	// monthBlockRows is the number of rows allocated per month block.
	monthBlockRows = 25

	// maxTenants bounds a month's roster so a block never overflows into
	// the next one.
	maxTenants = 20
)

// rangeValues is one A1-addressed update produced by the render side of the
// layout. The client turns these into Sheets API value ranges.
type rangeValues struct {
	Range  string
	Values [][]any
}

// monthStartRow returns the 1-based sheet row where a month's block begins.
func monthStartRow(key core.MonthKey) int {
	monthsFromStart := 12*(key.Year-startYear) + (key.Month - startMonth)
	// +1 skips the legacy header block at the top of the sheet.
	return monthBlockRows * (monthsFromStart + 1)
}

// inLayout reports whether the month falls inside the sheet's addressable
// range (at or after the first tracked month).
func inLayout(key core.MonthKey) bool {
	return !key.Before(core.MonthKey{Year: startYear, Month: startMonth})
}

// cell returns the trimmed cell at (row, col) or "" when out of bounds.
func cell(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	if col < 0 || col >= len(rows[row]) {
		return ""
	}
	return strings.TrimSpace(rows[row][col])
}

// monthBlockExists reports whether the sheet has data at the month's label
// cell.
func monthBlockExists(rows [][]string, key core.MonthKey) bool {
	if !inLayout(key) {
		return false
	}
	return cell(rows, monthStartRow(key)-1, 0) != ""
}

// parseMonthBlock reads one month's block out of the full sheet contents.
// Returns core.ErrMonthNotFound when the block is empty.
func parseMonthBlock(rows [][]string, key core.MonthKey) (core.MonthLedger, error) {
	if !monthBlockExists(rows, key) {
		return core.MonthLedger{}, core.ErrMonthNotFound
	}
	start := monthStartRow(key) - 1

	rent, err := parseSheetAmount(cell(rows, start+1, 1))
	if err != nil {
		return core.MonthLedger{}, fmt.Errorf("month %s: total rent: %w", key, err)
	}
	utility, err := parseSheetAmount(cell(rows, start+2, 1))
	if err != nil {
		return core.MonthLedger{}, fmt.Errorf("month %s: total utility: %w", key, err)
	}

	l := core.NewMonthLedger(key)
	l.TotalRent = rent
	l.TotalUtility = utility

	// Roster rows run from the fourth block row until the first blank name.
	for row := start + 4; row < start+monthBlockRows; row++ {
		name := cell(rows, row, 0)
		if name == "" {
			break
		}
		weight, err := parseSheetAmount(cell(rows, row, 1))
		if err != nil {
			return core.MonthLedger{}, fmt.Errorf("month %s: tenant %q weight: %w", key, name, err)
		}
		l.Tenants[name] = core.Tenant{
			Name:   name,
			Weight: weight,
			Paid:   strings.EqualFold(cell(rows, row, 2), "true"),
		}
	}
	return l, nil
}

// renderMonthBlock produces the batched updates that make the sheet's block
// match the given snapshot, clearing any leftover roster rows from a larger
// previous roster.
func renderMonthBlock(sheet string, l core.MonthLedger) []rangeValues {
	start := monthStartRow(l.Month)

	updates := []rangeValues{
		{
			Range:  fmt.Sprintf("%s!A%d:A%d", sheet, start, start),
			Values: [][]any{{l.Month.String()}},
		},
		{
			Range: fmt.Sprintf("%s!A%d:B%d", sheet, start+1, start+2),
			Values: [][]any{
				{"Total Rent", l.TotalRent},
				{"Total Utility", l.TotalUtility},
			},
		},
		{
			Range:  fmt.Sprintf("%s!A%d:C%d", sheet, start+3, start+3),
			Values: [][]any{{"Name", "Weeks Stayed", "Paid?"}},
		},
	}

	names := sortedTenantNames(l)
	if len(names) > 0 {
		values := make([][]any, 0, len(names))
		for _, name := range names {
			t := l.Tenants[name]
			values = append(values, []any{t.Name, t.Weight, paidLabel(t.Paid)})
		}
		updates = append(updates, rangeValues{
			Range:  fmt.Sprintf("%s!A%d:C%d", sheet, start+4, start+3+len(names)),
			Values: values,
		})
	}

	blanks := make([][]any, 0, maxTenants-len(names))
	for i := len(names); i < maxTenants; i++ {
		blanks = append(blanks, []any{"", "", ""})
	}
	if len(blanks) > 0 {
		updates = append(updates, rangeValues{
			Range:  fmt.Sprintf("%s!A%d:C%d", sheet, start+4+len(names), start+3+maxTenants),
			Values: blanks,
		})
	}
	return updates
}

func sortedTenantNames(l core.MonthLedger) []string {
	names := make([]string, 0, len(l.Tenants))
	for name := range l.Tenants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func paidLabel(paid bool) string {
	if paid {
		return "True"
	}
	return "False"
}

// parseSheetAmount parses a numeric sheet cell. Blank cells read as zero;
// currency symbols and decimal commas are tolerated since cells are edited
// by hand.
func parseSheetAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad numeric cell %q", s)
	}
	return v, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
