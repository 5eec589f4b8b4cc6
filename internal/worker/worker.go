// Package worker runs the background side of the bot: fetching the month's
// charges, posting them to the ledger, and nagging the group on the first of
// the month.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rentbot/internal/amqp"
	"rentbot/internal/billing"
	"rentbot/internal/bot"
	"rentbot/internal/core"
	"rentbot/internal/ledger"
)

const fetchTimeout = 5 * time.Minute

// Config carries the chat identity the worker posts under.
type Config struct {
	BotName string
	Chat    bot.Config
}

// ChargeWorker consumes charge-fetch requests and runs the monthly reminder.
type ChargeWorker struct {
	svc    *ledger.Service
	source billing.Source
	msgr   bot.Messenger
	cfg    Config

	now          func() time.Time
	lastReminder core.MonthKey
}

func NewChargeWorker(svc *ledger.Service, source billing.Source, msgr bot.Messenger, cfg Config) *ChargeWorker {
	return &ChargeWorker{
		svc:    svc,
		source: source,
		msgr:   msgr,
		cfg:    cfg,
		now:    time.Now,
	}
}

// HandleFetchMessage processes one charge-fetch request from the queue.
func (w *ChargeWorker) HandleFetchMessage(msg *amqp.ChargeFetchMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	key := core.MonthKey{Year: msg.Year, Month: msg.Month}
	return w.FetchAndPost(ctx, key, msg.Announce)
}

// FetchAndPost fetches the current charges, records them on the given
// billing month, and optionally announces the resulting amounts owed.
func (w *ChargeWorker) FetchAndPost(ctx context.Context, key core.MonthKey, announce bool) error {
	if _, err := w.svc.CreateMonth(ctx, key); err != nil {
		return fmt.Errorf("ensure month %s: %w", key, err)
	}

	charges, err := w.source.FetchCurrentCharges(ctx)
	if err != nil {
		return fmt.Errorf("fetch charges: %w", err)
	}

	rent := core.Money{Cents: charges.RentCents}.Dollars()
	utility := core.Money{Cents: charges.UtilityCents}.Dollars()

	if err := w.svc.SetTotalRent(ctx, rent, key); err != nil {
		return fmt.Errorf("set rent for %s: %w", key, err)
	}
	if err := w.svc.SetTotalUtility(ctx, utility, key); err != nil {
		return fmt.Errorf("set utility for %s: %w", key, err)
	}

	slog.InfoContext(ctx, "Charges recorded",
		"month", key.String(),
		"rent", rent,
		"utility", utility)

	if !announce {
		return nil
	}

	if err := w.msgr.Post(ctx, bot.RentSetReply(w.cfg.BotName, key, rent)); err != nil {
		return fmt.Errorf("announce rent: %w", err)
	}
	if err := w.msgr.Post(ctx, bot.UtilitySetReply(w.cfg.BotName, key, utility)); err != nil {
		return fmt.Errorf("announce utility: %w", err)
	}

	amounts, err := w.svc.AmountsOwed(ctx, key)
	if err != nil {
		return fmt.Errorf("compute amounts owed: %w", err)
	}
	reply := bot.RentsDueReply(amounts, w.cfg.Chat.VenmoURL, w.cfg.Chat.PayPalURL, w.cfg.Chat.AuditURL)
	if err := w.msgr.Post(ctx, reply); err != nil {
		return fmt.Errorf("announce amounts owed: %w", err)
	}
	return nil
}

// RunReminderLoop posts the rent reminder on the first of each month and
// kicks off the charge fetch for the new billing period. It blocks until the
// context is cancelled.
func (w *ChargeWorker) RunReminderLoop(ctx context.Context, checkInterval time.Duration) error {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	// Catch a first-of-month start without waiting a full interval.
	w.maybeRemind(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.maybeRemind(ctx)
		}
	}
}

// maybeRemind fires at most once per calendar month, on its first day.
func (w *ChargeWorker) maybeRemind(ctx context.Context) {
	now := w.now().UTC()
	if now.Day() != 1 {
		return
	}
	current := core.MonthKeyFor(now)
	if current == w.lastReminder {
		return
	}

	key := core.BillingMonth(now)
	if _, err := w.svc.CreateMonth(ctx, key); err != nil {
		slog.ErrorContext(ctx, "Failed to create reminder month", "month", key.String(), "error", err)
		return
	}
	if err := w.msgr.Post(ctx, bot.ReminderMessage(w.cfg.Chat.LandlordName)); err != nil {
		slog.ErrorContext(ctx, "Failed to post reminder", "error", err)
		return
	}
	w.lastReminder = current

	if err := w.FetchAndPost(ctx, key, true); err != nil {
		slog.ErrorContext(ctx, "Failed to fetch charges after reminder", "error", err)
	}
}
