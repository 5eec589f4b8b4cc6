package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentbot/internal/core"
	"rentbot/internal/ledger"
)

// Messenger posts a message to the group chat.
type Messenger interface {
	Post(ctx context.Context, text string) error
}

// Status classifies the outcome of a dispatched message.
type Status string

const (
	// StatusOK covers handled commands, including corrective replies for
	// readable-command-unreadable-argument messages.
	StatusOK Status = "ok"
	// StatusUnrecognized means the message triggered the bot but named no
	// known command.
	StatusUnrecognized Status = "unrecognized"
	// StatusError means a backend or chat failure; the sender should retry.
	StatusError Status = "error"
)

// Outcome reports what Dispatch did with a message.
type Outcome struct {
	Kind   Kind
	Status Status
}

// Config carries the chat-facing identity the replies mention.
type Config struct {
	LandlordName string
	VenmoURL     string
	PayPalURL    string
	AuditURL     string
}

// Dispatcher executes parsed commands against the ledger service and replies
// through the Messenger.
type Dispatcher struct {
	svc  *ledger.Service
	msgr Messenger
	cfg  Config
	now  func() time.Time
}

func NewDispatcher(svc *ledger.Service, msgr Messenger, cfg Config) *Dispatcher {
	return &Dispatcher{
		svc:  svc,
		msgr: msgr,
		cfg:  cfg,
		now:  time.Now,
	}
}

// Dispatch parses and executes one chat message. Messages that don't trigger
// the bot are ignored with StatusOK.
func (d *Dispatcher) Dispatch(ctx context.Context, text, sender string) Outcome {
	if !IsCommand(text) {
		return Outcome{Kind: KindUnknown, Status: StatusOK}
	}

	cmd, parseErr := Parse(text, sender)
	slog.InfoContext(ctx, "Command received",
		"kind", string(cmd.Kind),
		"sender", sender)

	switch {
	case errors.Is(parseErr, ErrBadAmount):
		// The sender meant a real command; correct them rather than erroring.
		d.reply(ctx, BadAmountReply)
		return Outcome{Kind: cmd.Kind, Status: StatusOK}
	case errors.Is(parseErr, ErrBadWeeks):
		d.reply(ctx, BadWeeksReply)
		return Outcome{Kind: cmd.Kind, Status: StatusOK}
	}

	key := core.BillingMonth(d.now())

	var err error
	switch cmd.Kind {
	case KindHelp:
		err = d.msgr.Post(ctx, HelpMessage)
	case KindShow:
		err = d.show(ctx, key)
	case KindAdd:
		err = d.add(ctx, cmd.Target, key)
	case KindRemove:
		err = d.remove(ctx, cmd.Target, key)
	case KindPaid:
		err = d.markPaid(ctx, cmd.Target, key)
	case KindRentAmount:
		err = d.setRent(ctx, cmd, key)
	case KindUtilityAmount:
		err = d.setUtility(ctx, cmd, key)
	case KindWeeksStayed:
		err = d.setWeeks(ctx, cmd, key)
	default:
		d.reply(ctx, UnrecognizedReply)
		return Outcome{Kind: KindUnknown, Status: StatusUnrecognized}
	}

	if err != nil {
		slog.ErrorContext(ctx, "Command failed",
			"kind", string(cmd.Kind),
			"sender", sender,
			"error", err)
		d.reply(ctx, SickReply)
		return Outcome{Kind: cmd.Kind, Status: StatusError}
	}
	return Outcome{Kind: cmd.Kind, Status: StatusOK}
}

func (d *Dispatcher) show(ctx context.Context, key core.MonthKey) error {
	amounts, err := d.svc.AmountsOwed(ctx, key)
	if err != nil {
		return err
	}
	return d.msgr.Post(ctx, RentsDueReply(amounts, d.cfg.VenmoURL, d.cfg.PayPalURL, d.cfg.AuditURL))
}

func (d *Dispatcher) add(ctx context.Context, name string, key core.MonthKey) error {
	if err := d.svc.AddTenant(ctx, name, key); err != nil {
		return err
	}
	return d.msgr.Post(ctx, AddedReply(name))
}

func (d *Dispatcher) remove(ctx context.Context, name string, key core.MonthKey) error {
	if err := d.svc.RemoveTenant(ctx, name, key); err != nil {
		return err
	}
	return d.msgr.Post(ctx, RemovedReply(name))
}

// markPaid falls back one month when the billing month has no data yet;
// early-month payments usually mean the previous month's bill.
func (d *Dispatcher) markPaid(ctx context.Context, name string, key core.MonthKey) error {
	err := d.svc.MarkPaid(ctx, name, key)
	if errors.Is(err, core.ErrMonthNotFound) {
		key = key.Prev()
		err = d.svc.MarkPaid(ctx, name, key)
	}
	if err != nil {
		return err
	}
	return d.msgr.Post(ctx, PaidReply(name, key))
}

func (d *Dispatcher) setRent(ctx context.Context, cmd Command, key core.MonthKey) error {
	if err := d.svc.SetTotalRent(ctx, cmd.Amount, key); err != nil {
		return err
	}
	return d.msgr.Post(ctx, RentSetReply(cmd.Sender, key, cmd.Amount))
}

func (d *Dispatcher) setUtility(ctx context.Context, cmd Command, key core.MonthKey) error {
	if err := d.svc.SetTotalUtility(ctx, cmd.Amount, key); err != nil {
		return err
	}
	return d.msgr.Post(ctx, UtilitySetReply(cmd.Sender, key, cmd.Amount))
}

func (d *Dispatcher) setWeeks(ctx context.Context, cmd Command, key core.MonthKey) error {
	if err := d.svc.SetWeight(ctx, cmd.Target, cmd.Weeks, key); err != nil {
		return err
	}
	return d.msgr.Post(ctx, WeeksReply(cmd.Target, key, cmd.Weeks))
}

// reply posts a message without letting a chat failure mask the outcome.
func (d *Dispatcher) reply(ctx context.Context, text string) {
	if err := d.msgr.Post(ctx, text); err != nil {
		slog.ErrorContext(ctx, "Failed to post reply", "error", err)
	}
}
