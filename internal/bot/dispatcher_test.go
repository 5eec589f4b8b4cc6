package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbot/internal/core"
	"rentbot/internal/ledger"
	"rentbot/internal/store/memory"
)

type chatRecorder struct {
	posts []string
	err   error
}

func (c *chatRecorder) Post(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.posts = append(c.posts, text)
	return nil
}

// newTestDispatcher pins "now" to 2024-03-20, so the billing month (two
// weeks back) is March 2024.
func newTestDispatcher(t *testing.T) (*Dispatcher, *ledger.Service, *chatRecorder) {
	t.Helper()
	svc := ledger.NewService(memory.New())
	chat := &chatRecorder{}
	d := NewDispatcher(svc, chat, Config{
		LandlordName: "Jake Deerin",
		VenmoURL:     "https://venmo.com/example",
		PayPalURL:    "https://paypal.me/example",
	})
	d.now = func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) }
	return d, svc, chat
}

func billingMonth() core.MonthKey { return core.MonthKey{Year: 2024, Month: 3} }

func TestDispatchIgnoresNonCommands(t *testing.T) {
	d, _, chat := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "anyone up for dinner?", "Mac Mathis")

	assert.Equal(t, StatusOK, out.Status)
	assert.Empty(t, chat.posts)
}

func TestDispatchHelp(t *testing.T) {
	d, _, chat := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "/rent help", "Mac Mathis")

	assert.Equal(t, Outcome{Kind: KindHelp, Status: StatusOK}, out)
	require.Len(t, chat.posts, 1)
	assert.Contains(t, chat.posts[0], `"/rent show"`)
}

func TestDispatchUnrecognized(t *testing.T) {
	d, _, chat := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "/rent dance", "Mac Mathis")

	assert.Equal(t, StatusUnrecognized, out.Status)
	require.Len(t, chat.posts, 1)
	assert.Equal(t, UnrecognizedReply, chat.posts[0])
}

func TestDispatchAddAndShow(t *testing.T) {
	d, _, chat := newTestDispatcher(t)
	ctx := context.Background()

	out := d.Dispatch(ctx, "/rent add", "Mac Mathis")
	assert.Equal(t, Outcome{Kind: KindAdd, Status: StatusOK}, out)

	out = d.Dispatch(ctx, "/rent add @Taylor Daniel", "Mac Mathis")
	assert.Equal(t, StatusOK, out.Status)

	out = d.Dispatch(ctx, "/rent rent-amt $1000", "Mac Mathis")
	assert.Equal(t, StatusOK, out.Status)

	out = d.Dispatch(ctx, "/rent show", "Mac Mathis")
	assert.Equal(t, Outcome{Kind: KindShow, Status: StatusOK}, out)

	require.Len(t, chat.posts, 4)
	assert.Equal(t, "Added @Mac Mathis to the rent roll", chat.posts[0])
	assert.Equal(t, "Added @Taylor Daniel to the rent roll", chat.posts[1])
	assert.Equal(t, "@Mac Mathis set the total bill for March 2024 at $1000.00", chat.posts[2])

	show := chat.posts[3]
	assert.True(t, strings.HasPrefix(show, "=== Rents Due ==="))
	assert.Contains(t, show, "@Mac Mathis: $500.00")
	assert.Contains(t, show, "@Taylor Daniel: $500.00")
	assert.Contains(t, show, "Venmo: https://venmo.com/example")
}

func TestDispatchShowEmptyMonth(t *testing.T) {
	d, _, chat := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "/rent show", "Mac Mathis")

	assert.Equal(t, StatusOK, out.Status)
	require.Len(t, chat.posts, 1)
	assert.Contains(t, chat.posts[0], "I'm not sure who's paying rent right now")
}

func TestDispatchPaid(t *testing.T) {
	d, svc, chat := newTestDispatcher(t)
	ctx := context.Background()

	require.NoError(t, svc.AddTenant(ctx, "Mac Mathis", billingMonth()))

	out := d.Dispatch(ctx, "/rent paid", "Mac Mathis")

	assert.Equal(t, Outcome{Kind: KindPaid, Status: StatusOK}, out)
	require.Len(t, chat.posts, 1)
	assert.Equal(t, "@Mac Mathis paid the rent for March 2024", chat.posts[0])
}

func TestDispatchPaidFallsBackOneMonth(t *testing.T) {
	d, svc, chat := newTestDispatcher(t)
	ctx := context.Background()

	// Only February data exists; paying in the March billing window should
	// land on February.
	february := core.MonthKey{Year: 2024, Month: 2}
	require.NoError(t, svc.AddTenant(ctx, "Mac Mathis", february))

	out := d.Dispatch(ctx, "/rent paid", "Mac Mathis")

	assert.Equal(t, StatusOK, out.Status)
	require.Len(t, chat.posts, 1)
	assert.Equal(t, "@Mac Mathis paid the rent for February 2024", chat.posts[0])

	amounts, err := svc.AmountsOwed(ctx, february)
	require.NoError(t, err)
	assert.NotContains(t, amounts, "Mac Mathis")
}

func TestDispatchPaidFallsBackAtMostOnce(t *testing.T) {
	d, svc, chat := newTestDispatcher(t)
	ctx := context.Background()

	// January exists but is two months back; no second fallback happens.
	require.NoError(t, svc.AddTenant(ctx, "Mac Mathis", core.MonthKey{Year: 2024, Month: 1}))

	out := d.Dispatch(ctx, "/rent paid", "Mac Mathis")

	assert.Equal(t, StatusError, out.Status)
	require.Len(t, chat.posts, 1)
	assert.Equal(t, SickReply, chat.posts[0])
}

func TestDispatchBadAmountIsCorrectedNotErrored(t *testing.T) {
	d, _, chat := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "/rent rent-amt lots", "Mac Mathis")

	assert.Equal(t, Outcome{Kind: KindRentAmount, Status: StatusOK}, out)
	require.Len(t, chat.posts, 1)
	assert.Equal(t, BadAmountReply, chat.posts[0])
}

func TestDispatchWeeksStayed(t *testing.T) {
	d, svc, chat := newTestDispatcher(t)
	ctx := context.Background()

	require.NoError(t, svc.AddTenant(ctx, "Mac Mathis", billingMonth()))

	out := d.Dispatch(ctx, "/rent weeks-stayed 2.5", "Mac Mathis")

	assert.Equal(t, StatusOK, out.Status)
	require.Len(t, chat.posts, 1)
	assert.Equal(t, "@Mac Mathis stayed for 2.5 weeks in March 2024", chat.posts[0])
}

func TestDispatchWeeksStayedNonFiniteIsCorrected(t *testing.T) {
	d, svc, chat := newTestDispatcher(t)
	ctx := context.Background()

	require.NoError(t, svc.AddTenant(ctx, "Mac Mathis", billingMonth()))
	require.NoError(t, svc.AddTenant(ctx, "Taylor Daniel", billingMonth()))
	require.NoError(t, svc.SetTotalRent(ctx, 1000, billingMonth()))

	for _, token := range []string{"NaN", "Inf", "-Inf"} {
		out := d.Dispatch(ctx, "/rent weeks-stayed "+token, "Mac Mathis")

		assert.Equal(t, StatusOK, out.Status)
		require.NotEmpty(t, chat.posts)
		assert.Equal(t, BadWeeksReply, chat.posts[len(chat.posts)-1])
	}

	// The roster stays untouched, so the split remains finite.
	owed, err := svc.AmountsOwed(ctx, billingMonth())
	require.NoError(t, err)
	assert.InDelta(t, 500.0, owed["Mac Mathis"], 0.001)
	assert.InDelta(t, 500.0, owed["Taylor Daniel"], 0.001)
}

func TestDispatchWeeksStayedUnknownTenant(t *testing.T) {
	d, svc, chat := newTestDispatcher(t)
	ctx := context.Background()

	_, err := svc.CreateMonth(ctx, billingMonth())
	require.NoError(t, err)

	out := d.Dispatch(ctx, "/rent weeks-stayed 4", "Stranger")

	assert.Equal(t, StatusError, out.Status)
	require.Len(t, chat.posts, 1)
	assert.Equal(t, SickReply, chat.posts[0])
}

func TestDispatchChargeWithoutMonthIsError(t *testing.T) {
	d, _, chat := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "/rent utility-amt 413.18", "Mac Mathis")

	assert.Equal(t, StatusError, out.Status)
	require.Len(t, chat.posts, 1)
	assert.Equal(t, SickReply, chat.posts[0])
}

func TestDispatchRemoveIsSilentOnAbsentTenant(t *testing.T) {
	d, _, chat := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "/rent remove @Nobody", "Mac Mathis")

	assert.Equal(t, Outcome{Kind: KindRemove, Status: StatusOK}, out)
	require.Len(t, chat.posts, 1)
	assert.Equal(t, "Removed @Nobody from the rent roll", chat.posts[0])
}

func TestDispatchChatFailureIsError(t *testing.T) {
	d, _, chat := newTestDispatcher(t)
	chat.err = errors.New("groupme is down")

	out := d.Dispatch(context.Background(), "/rent help", "Mac Mathis")

	assert.Equal(t, StatusError, out.Status)
}
