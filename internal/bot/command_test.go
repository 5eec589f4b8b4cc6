package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCommand(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"/rent show", true},
		{"  /rent help", true},
		{"\t/rent paid", true},
		{"/rent ", true},
		{"/rent", false},
		{"/rental show", false},
		{"hey /rent show", false},
		{"what's the rent?", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsCommand(tt.text), "IsCommand(%q)", tt.text)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Command
	}{
		{
			name: "help",
			text: "/rent help",
			want: Command{Kind: KindHelp},
		},
		{
			name: "show",
			text: "  /rent show",
			want: Command{Kind: KindShow},
		},
		{
			name: "paid targets the sender",
			text: "/rent paid",
			want: Command{Kind: KindPaid, Target: "Jake Deerin"},
		},
		{
			name: "add with explicit name",
			text: "/rent add Mac Mathis",
			want: Command{Kind: KindAdd, Target: "Mac Mathis"},
		},
		{
			name: "add strips mention prefix",
			text: "/rent add @Mac Mathis",
			want: Command{Kind: KindAdd, Target: "Mac Mathis"},
		},
		{
			name: "add defaults to sender",
			text: "/rent add",
			want: Command{Kind: KindAdd, Target: "Jake Deerin"},
		},
		{
			name: "remove",
			text: "/rent remove @Taylor",
			want: Command{Kind: KindRemove, Target: "Taylor"},
		},
		{
			name: "rent amount with dollar sign",
			text: "/rent rent-amt $1234.00",
			want: Command{Kind: KindRentAmount, Amount: 1234},
		},
		{
			name: "utility amount bare",
			text: "/rent utility-amt 413.18",
			want: Command{Kind: KindUtilityAmount, Amount: 413.18},
		},
		{
			name: "weeks stayed",
			text: "/rent weeks-stayed 2.5",
			want: Command{Kind: KindWeeksStayed, Weeks: 2.5, Target: "Jake Deerin"},
		},
		{
			name: "weeks stayed for someone else",
			text: "/rent weeks-stayed 4 @Mac Mathis",
			want: Command{Kind: KindWeeksStayed, Weeks: 4, Target: "Mac Mathis"},
		},
		{
			name: "unknown verb",
			text: "/rent dance",
			want: Command{Kind: KindUnknown},
		},
		{
			name: "bare trigger with trailing space",
			text: "/rent ",
			want: Command{Kind: KindUnknown},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, "Jake Deerin")
			require.NoError(t, err)
			tt.want.Sender = "Jake Deerin"
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBadArguments(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind Kind
		err  error
	}{
		{name: "missing amount", text: "/rent rent-amt", kind: KindRentAmount, err: ErrBadAmount},
		{name: "negative amount", text: "/rent rent-amt -50", kind: KindRentAmount, err: ErrBadAmount},
		{name: "garbage amount", text: "/rent utility-amt lots", kind: KindUtilityAmount, err: ErrBadAmount},
		{name: "missing weeks", text: "/rent weeks-stayed", kind: KindWeeksStayed, err: ErrBadWeeks},
		{name: "negative weeks", text: "/rent weeks-stayed -1", kind: KindWeeksStayed, err: ErrBadWeeks},
		{name: "nan weeks", text: "/rent weeks-stayed NaN", kind: KindWeeksStayed, err: ErrBadWeeks},
		{name: "infinite weeks", text: "/rent weeks-stayed Inf", kind: KindWeeksStayed, err: ErrBadWeeks},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, "Jake Deerin")
			require.True(t, errors.Is(err, tt.err), "Parse() error = %v, want %v", err, tt.err)
			assert.Equal(t, tt.kind, got.Kind)
		})
	}
}
