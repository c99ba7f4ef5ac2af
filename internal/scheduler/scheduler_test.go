package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/survivorbot/internal/config"
	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(context.Context) (models.LeagueData, error) {
	r.calls.Add(1)
	return models.LeagueData{}, r.err
}

type fixedReminder string

func (r fixedReminder) DeadlineReminder() string { return string(r) }

type outbox struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (o *outbox) send(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, text)
	return o.err
}

func testConfig() config.Scheduler {
	return config.Scheduler{
		RefreshCron:  "*/30 * * * *",
		ReminderCron: "0 18 * * 5",
		Timezone:     "Europe/London",
	}
}

func TestStartRefreshesImmediately(t *testing.T) {
	refresher := &countingRefresher{}
	s, err := NewScheduler(testConfig(), clockwork.NewRealClock(), refresher, fixedReminder(""), (&outbox{}).send)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { assert.NoError(t, s.Stop()) })

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	names := map[string]bool{}
	for _, job := range s.s.Jobs() {
		names[job.Name()] = true
	}
	assert.Equal(t, map[string]bool{refreshJob: true, reminderJob: true}, names)
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Mars/Olympus"

	_, err := NewScheduler(cfg, clockwork.NewRealClock(), &countingRefresher{}, fixedReminder(""), (&outbox{}).send)
	assert.Error(t, err)
}

func TestStartRejectsBadCron(t *testing.T) {
	cfg := testConfig()
	cfg.ReminderCron = "friday evening"

	s, err := NewScheduler(cfg, clockwork.NewRealClock(), &countingRefresher{}, fixedReminder(""), (&outbox{}).send)
	require.NoError(t, err)
	t.Cleanup(func() { s.Stop() })

	assert.ErrorContains(t, s.Start(context.Background()), "reminder job")
}

func TestSendReminder(t *testing.T) {
	out := &outbox{}
	s := &Scheduler{reminder: fixedReminder(""), sendMessage: out.send}
	s.sendReminder()
	assert.Empty(t, out.sent, "nothing to remind")

	s.reminder = fixedReminder("⏰ *MW 3 deadline*")
	s.sendReminder()
	assert.Equal(t, []string{"⏰ *MW 3 deadline*"}, out.sent)

	out.err = errors.New("telegram down")
	s.sendReminder()
	assert.Len(t, out.sent, 2)
}

func TestRefreshSkipsCancelledContext(t *testing.T) {
	refresher := &countingRefresher{}
	s := &Scheduler{refresher: refresher}

	ctx, cancel := context.WithCancel(context.Background())
	s.refresh(ctx)
	cancel()
	s.refresh(ctx)

	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestRefreshToleratesSourceFailure(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("error fetching fixtures: connection refused")}
	s := &Scheduler{refresher: refresher}

	s.refresh(context.Background())
	s.refresh(context.Background())

	assert.Equal(t, int32(2), refresher.calls.Load())
}
