package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rentbot/internal/core"
)

// HelpMessage lists every command the bot understands.
const HelpMessage = `Hey! You can make me do things by typing "/rent <command name>" (without the quotes); here're the available commands:

"/rent show"
    Show how much everyone owes right now + how to pay
"/rent weeks-stayed <num weeks>"
    Mark how long you've stayed this month, e.g. "/rent weeks-stayed 4"
"/rent paid"
    Mark that you've paid this month's rent
"/rent add <GroupMe user name>"
    Add someone new (you, by default) to pay the rent
"/rent remove <GroupMe user name>"
    Removes someone (you, by default) from paying rent
"/rent rent-amt <rent cost>"
    Set the total apartment rent for the month
"/rent utility-amt <rent cost>"
    Set the total apartment utility bill for the month
"/rent help"
    Have this chit-chat with me again, anytime
`

const (
	UnrecognizedReply = `Hmmm, I don't recognize that command (try typing "/rent help"?)`
	SickReply         = "🤒 Oh no - I'm feeling sick right now! Please try again when I'm feeling better (we'll send someone to patch me up)"
	BadAmountReply    = `Hmmm, I couldn't read that amount (did you include it like "/rent rent-amt $1234.00"?)`
	BadWeeksReply     = `Hmmm, I couldn't read how many weeks that was (did you include it like "/rent weeks-stayed 4"?)`
)

// ReminderMessage is posted on the first of the month, shortly before the
// new charges land.
func ReminderMessage(landlord string) string {
	return fmt.Sprintf("It's RENT TIME again for the month!\n\nIn a few minutes, rents will be posted and you can type \"/rent show\" to see how much you owe @%s", landlord)
}

func AddedReply(name string) string {
	return fmt.Sprintf("Added @%s to the rent roll", name)
}

func RemovedReply(name string) string {
	return fmt.Sprintf("Removed @%s from the rent roll", name)
}

func PaidReply(name string, key core.MonthKey) string {
	return fmt.Sprintf("@%s paid the rent for %s", name, key.Label())
}

func RentSetReply(name string, key core.MonthKey, amount float64) string {
	return fmt.Sprintf("@%s set the total bill for %s at $%.2f", name, key.Label(), amount)
}

func UtilitySetReply(name string, key core.MonthKey, amount float64) string {
	return fmt.Sprintf("@%s set the total utility cost for %s to $%.2f", name, key.Label(), amount)
}

func WeeksReply(name string, key core.MonthKey, weeks float64) string {
	return fmt.Sprintf("@%s stayed for %s weeks in %s",
		name, strconv.FormatFloat(weeks, 'f', -1, 64), key.Label())
}

// RentsDueReply renders the amounts-owed board, one sorted "@name: $x.xx"
// line per unpaid tenant, followed by payment links.
func RentsDueReply(amounts map[string]float64, venmoURL, paypalURL, auditURL string) string {
	var body string
	if len(amounts) == 0 {
		body = `...hmmm, I'm not sure who's paying rent right now (have you run "/rent add" to add yourself?)`
	} else {
		lines := make([]string, 0, len(amounts))
		for name, amt := range amounts {
			lines = append(lines, fmt.Sprintf("@%s: $%.2f", name, amt))
		}
		sort.Strings(lines)
		body = strings.Join(lines, "\n")
	}

	var b strings.Builder
	b.WriteString("=== Rents Due ===\n")
	b.WriteString(body)
	b.WriteString("\n\nVenmo: ")
	b.WriteString(venmoURL)
	b.WriteString("\nPayPal: ")
	b.WriteString(paypalURL)
	if auditURL != "" {
		b.WriteString("\nSpreadsheet for audits: ")
		b.WriteString(auditURL)
	}
	return b.String()
}
