package google

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"rentbot/internal/core"
)

func TestMonthStartRow(t *testing.T) {
	cases := []struct {
		key  core.MonthKey
		want int
	}{
		{core.MonthKey{Year: 2021, Month: 8}, 25},
		{core.MonthKey{Year: 2021, Month: 9}, 50},
		{core.MonthKey{Year: 2021, Month: 12}, 125},
		{core.MonthKey{Year: 2022, Month: 1}, 150},
		{core.MonthKey{Year: 2022, Month: 8}, 325},
	}
	for _, tc := range cases {
		if got := monthStartRow(tc.key); got != tc.want {
			t.Fatalf("monthStartRow(%v) = %d, want %d", tc.key, got, tc.want)
		}
	}
}

func TestInLayout(t *testing.T) {
	if inLayout(core.MonthKey{Year: 2021, Month: 7}) {
		t.Fatalf("7/2021 predates the layout")
	}
	if !inLayout(core.MonthKey{Year: 2021, Month: 8}) || !inLayout(core.MonthKey{Year: 2024, Month: 1}) {
		t.Fatalf("expected months at/after 8/2021 to be addressable")
	}
}

// sheetWith builds full sheet contents with the given month block placed at
// its layout position.
func sheetWith(key core.MonthKey, block [][]string) [][]string {
	start := monthStartRow(key) - 1
	rows := make([][]string, start+len(block))
	for i := range rows {
		rows[i] = []string{""}
	}
	copy(rows[start:], block)
	return rows
}

func augustBlock() [][]string {
	return [][]string{
		{"8/2021"},
		{"Total Rent", "1697"},
		{"Total Utility", "413.18"},
		{"Name", "Weeks Stayed", "Paid?"},
		{"Jake Deerin", "4", "True"},
		{"Mac Mathis", "1.5", "False"},
		{"Manny Jonson", "0", "false"},
	}
}

func TestParseMonthBlock(t *testing.T) {
	key := core.MonthKey{Year: 2021, Month: 8}
	l, err := parseMonthBlock(sheetWith(key, augustBlock()), key)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if l.TotalRent != 1697 || l.TotalUtility != 413.18 {
		t.Fatalf("unexpected charges: %v / %v", l.TotalRent, l.TotalUtility)
	}
	if len(l.Tenants) != 3 {
		t.Fatalf("unexpected roster size: %d", len(l.Tenants))
	}
	if !l.Tenants["Jake Deerin"].Paid || l.Tenants["Jake Deerin"].Weight != 4 {
		t.Fatalf("unexpected tenant: %+v", l.Tenants["Jake Deerin"])
	}
	if l.Tenants["Mac Mathis"].Paid || l.Tenants["Mac Mathis"].Weight != 1.5 {
		t.Fatalf("unexpected tenant: %+v", l.Tenants["Mac Mathis"])
	}
}

func TestParseMonthBlockAbsent(t *testing.T) {
	key := core.MonthKey{Year: 2021, Month: 9}
	rows := sheetWith(core.MonthKey{Year: 2021, Month: 8}, augustBlock())
	if _, err := parseMonthBlock(rows, key); !errors.Is(err, core.ErrMonthNotFound) {
		t.Fatalf("expected ErrMonthNotFound, got %v", err)
	}
	// A month before the layout start is also simply absent.
	if _, err := parseMonthBlock(rows, core.MonthKey{Year: 2020, Month: 1}); !errors.Is(err, core.ErrMonthNotFound) {
		t.Fatalf("expected ErrMonthNotFound for pre-layout month, got %v", err)
	}
}

func TestParseMonthBlockBadCells(t *testing.T) {
	key := core.MonthKey{Year: 2021, Month: 8}
	block := augustBlock()
	block[1][1] = "lots"
	if _, err := parseMonthBlock(sheetWith(key, block), key); err == nil {
		t.Fatalf("expected error for non-numeric rent cell")
	}
}

func TestParseMonthBlockTolerantCells(t *testing.T) {
	key := core.MonthKey{Year: 2021, Month: 8}
	block := augustBlock()
	block[1][1] = "$1697.00"
	block[5][1] = "1,5"
	block[2] = []string{"Total Utility", ""}
	l, err := parseMonthBlock(sheetWith(key, block), key)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if l.TotalRent != 1697 || l.TotalUtility != 0 || l.Tenants["Mac Mathis"].Weight != 1.5 {
		t.Fatalf("unexpected ledger: %+v", l)
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	key := core.MonthKey{Year: 2021, Month: 9}
	l := core.NewMonthLedger(key)
	l.TotalRent = 1697
	l.TotalUtility = 413.18
	l.Tenants["Jake Deerin"] = core.Tenant{Name: "Jake Deerin", Weight: 4, Paid: true}
	l.Tenants["Mac Mathis"] = core.Tenant{Name: "Mac Mathis", Weight: 1.5}

	rows := applyUpdates(t, nil, renderMonthBlock("Ledger", l))
	got, err := parseMonthBlock(rows, key)
	if err != nil {
		t.Fatalf("parse rendered block: %v", err)
	}
	if got.TotalRent != l.TotalRent || got.TotalUtility != l.TotalUtility {
		t.Fatalf("charges changed in round trip: %+v", got)
	}
	if len(got.Tenants) != 2 || got.Tenants["Jake Deerin"] != l.Tenants["Jake Deerin"] || got.Tenants["Mac Mathis"] != l.Tenants["Mac Mathis"] {
		t.Fatalf("roster changed in round trip: %+v", got.Tenants)
	}
}

func TestRenderClearsShrunkenRoster(t *testing.T) {
	key := core.MonthKey{Year: 2021, Month: 8}
	big := core.NewMonthLedger(key)
	for _, name := range []string{"a", "b", "c", "d"} {
		big.Tenants[name] = core.Tenant{Name: name, Weight: 4}
	}
	rows := applyUpdates(t, nil, renderMonthBlock("Ledger", big))

	small := core.NewMonthLedger(key)
	small.Tenants["a"] = core.Tenant{Name: "a", Weight: 4}
	rows = applyUpdates(t, rows, renderMonthBlock("Ledger", small))

	got, err := parseMonthBlock(rows, key)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got.Tenants) != 1 {
		t.Fatalf("stale roster rows survived the rewrite: %+v", got.Tenants)
	}
}

// applyUpdates plays rendered A1 updates onto an in-memory grid the way the
// Sheets API would.
func applyUpdates(t *testing.T, rows [][]string, updates []rangeValues) [][]string {
	t.Helper()
	for _, u := range updates {
		startRow, startCol := parseA1Start(t, u.Range)
		for r, rowVals := range u.Values {
			row := startRow + r - 1
			for len(rows) <= row {
				rows = append(rows, nil)
			}
			for c, v := range rowVals {
				col := startCol + c
				for len(rows[row]) <= col {
					rows[row] = append(rows[row], "")
				}
				rows[row][col] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
	}
	return rows
}

func parseA1Start(t *testing.T, a1 string) (row, col int) {
	t.Helper()
	parts := strings.Split(a1, "!")
	if len(parts) != 2 {
		t.Fatalf("bad range %q", a1)
	}
	ref := strings.Split(parts[1], ":")[0]
	col = int(ref[0] - 'A')
	n, err := strconv.Atoi(ref[1:])
	if err != nil {
		t.Fatalf("bad range %q: %v", a1, err)
	}
	return n, col
}
