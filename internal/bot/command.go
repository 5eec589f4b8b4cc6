// Package bot parses chat commands and dispatches them against the ledger.
package bot

import (
	"errors"
	"strings"
	"unicode"

	"rentbot/internal/core"
)

// Kind identifies a chat command.
type Kind string

const (
	KindHelp          Kind = "help"
	KindShow          Kind = "show"
	KindPaid          Kind = "paid"
	KindAdd           Kind = "add"
	KindRemove        Kind = "remove"
	KindRentAmount    Kind = "rent-amt"
	KindUtilityAmount Kind = "utility-amt"
	KindWeeksStayed   Kind = "weeks-stayed"
	KindUnknown       Kind = "unknown"
)

var (
	// ErrBadAmount means an amount command was recognized but its amount
	// token was missing or unreadable.
	ErrBadAmount = errors.New("unreadable amount")
	// ErrBadWeeks means a weeks-stayed command was recognized but its weeks
	// token was missing or unreadable.
	ErrBadWeeks = errors.New("unreadable weeks")
)

// Command is a parsed chat command.
type Command struct {
	Kind   Kind
	Sender string
	// Target is the name the command acts on; defaults to the sender.
	Target string
	// Amount is the dollar amount for rent-amt / utility-amt.
	Amount float64
	// Weeks is the occupancy weight for weeks-stayed.
	Weeks float64
}

const trigger = "/rent"

// IsCommand reports whether the message is addressed to the bot. Leading
// whitespace is tolerated; the trigger must be followed by whitespace.
func IsCommand(text string) bool {
	_, ok := trimTrigger(text)
	return ok
}

func trimTrigger(text string) (string, bool) {
	s := strings.TrimLeftFunc(text, unicode.IsSpace)
	if !strings.HasPrefix(s, trigger) {
		return "", false
	}
	rest := s[len(trigger):]
	if rest == "" {
		return "", false
	}
	r := []rune(rest)[0]
	if !unicode.IsSpace(r) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// Parse turns a chat message into a Command. The sender is the GroupMe
// display name of whoever typed the message, used as the default target.
//
// A recognized command with an unreadable argument is returned with its Kind
// set alongside ErrBadAmount / ErrBadWeeks, so the caller can send a
// corrective reply instead of treating the message as unrecognized.
func Parse(text, sender string) (Command, error) {
	cmd := Command{Kind: KindUnknown, Sender: sender}

	rest, ok := trimTrigger(text)
	if !ok {
		return cmd, nil
	}

	verb := rest
	arg := ""
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		verb = rest[:i]
		arg = strings.TrimSpace(rest[i:])
	}

	switch Kind(verb) {
	case KindHelp:
		cmd.Kind = KindHelp
	case KindShow:
		cmd.Kind = KindShow
	case KindPaid:
		cmd.Kind = KindPaid
		cmd.Target = sender
	case KindAdd, KindRemove:
		cmd.Kind = Kind(verb)
		cmd.Target = targetName(arg, sender)
	case KindRentAmount, KindUtilityAmount:
		cmd.Kind = Kind(verb)
		token, _, _ := strings.Cut(arg, " ")
		cents, err := core.ParseDecimalToCents(token)
		if err != nil {
			return cmd, ErrBadAmount
		}
		cmd.Amount = core.Money{Cents: cents}.Dollars()
	case KindWeeksStayed:
		cmd.Kind = KindWeeksStayed
		token, remainder, _ := strings.Cut(arg, " ")
		weeks, err := core.ParseWeight(token)
		if err != nil {
			return cmd, ErrBadWeeks
		}
		cmd.Weeks = weeks
		cmd.Target = targetName(remainder, sender)
	}
	return cmd, nil
}

// targetName strips a leading @ mention; an empty argument means the sender
// is acting on themselves.
func targetName(arg, sender string) string {
	arg = strings.TrimSpace(arg)
	arg = strings.TrimPrefix(arg, "@")
	if arg == "" {
		return sender
	}
	return arg
}
