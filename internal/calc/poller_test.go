package calc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cmdbgroup/internal/messages"
)

type fakeFeed struct {
	mu       sync.Mutex
	created  int
	polls    int
	expired  map[string]bool
	batches  [][]messages.Message
	pollErr  error
	createFn func() error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{expired: make(map[string]bool)}
}

func (f *fakeFeed) CreateChannel(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createFn != nil {
		if err := f.createFn(); err != nil {
			return "", err
		}
	}
	f.created++
	return "ch-" + string(rune('0'+f.created)), nil
}

func (f *fakeFeed) Poll(_ context.Context, channel string) ([]messages.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.expired[channel] {
		return nil, messages.ErrChannelNotFound
	}
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeFeed) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func TestPollOnceHandlesBatch(t *testing.T) {
	feed := newFakeFeed()
	feed.batches = [][]messages.Message{{started()}}
	rec := NewReconciler(Options{EntityID: entity})
	p := NewPoller(feed, rec, PollOptions{}, nil)
	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if !rec.Status().IsCalculating || feed.created != 1 {
		t.Fatalf("unexpected state %+v created=%d", rec.Status(), feed.created)
	}
	if err := p.PollOnce(context.Background()); err != nil || feed.created != 1 {
		t.Fatalf("channel should be reused, created=%d err=%v", feed.created, err)
	}
}

func TestPollOnceRecreatesExpiredChannel(t *testing.T) {
	feed := newFakeFeed()
	rec := NewReconciler(Options{EntityID: entity})
	p := NewPoller(feed, rec, PollOptions{}, nil)
	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	feed.expired["ch-1"] = true
	feed.batches = [][]messages.Message{{started()}}
	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatalf("expired channel should be recovered: %v", err)
	}
	if feed.created != 2 || feed.polls != 3 || !rec.Status().IsCalculating {
		t.Fatalf("expected one recreate and one retry, created=%d polls=%d", feed.created, feed.polls)
	}
}

func TestPollOnceRetriesOnlyOnce(t *testing.T) {
	feed := newFakeFeed()
	feed.expired["ch-1"] = true
	feed.expired["ch-2"] = true
	p := NewPoller(feed, NewReconciler(Options{EntityID: entity}), PollOptions{}, nil)
	err := p.PollOnce(context.Background())
	if !errors.Is(err, messages.ErrChannelNotFound) {
		t.Fatalf("expected not found after a single retry, got %v", err)
	}
	if feed.polls != 2 {
		t.Fatalf("expected exactly two polls, got %d", feed.polls)
	}
}

func TestPollOnceCreateFailure(t *testing.T) {
	feed := newFakeFeed()
	feed.createFn = func() error { return errors.New("down") }
	p := NewPoller(feed, NewReconciler(Options{}), PollOptions{}, nil)
	if err := p.PollOnce(context.Background()); err == nil {
		t.Fatalf("expected error when the channel cannot be created")
	}
}

func TestPollerIntervalFollowsMaskMode(t *testing.T) {
	rec := NewReconciler(Options{EntityID: entity})
	opts := PollOptions{Busy: 2 * time.Second, Idle: 5 * time.Second}

	calcOnly := NewPoller(newFakeFeed(), rec, PollOptions{Busy: opts.Busy, Idle: opts.Idle, Mask: MaskCalculating}, nil)
	saveOnly := NewPoller(newFakeFeed(), rec, PollOptions{Busy: opts.Busy, Idle: opts.Idle, Mask: MaskSaving}, nil)
	both := NewPoller(newFakeFeed(), rec, opts, nil)

	if calcOnly.Interval() != opts.Idle || both.Interval() != opts.Idle {
		t.Fatalf("idle interval expected")
	}
	rec.TrackSave(messages.SaveReceipt{RequestID: "r1"})
	if calcOnly.Interval() != opts.Idle || saveOnly.Interval() != opts.Busy || both.Interval() != opts.Busy {
		t.Fatalf("saving should only shorten save-masked pollers")
	}
	rec.Begin()
	if calcOnly.Interval() != opts.Busy {
		t.Fatalf("calculating should shorten calculation-masked pollers")
	}
	next := adaptiveSchedule{p: both}.Next(time.Unix(0, 0))
	if next.Sub(time.Unix(0, 0)) != opts.Busy {
		t.Fatalf("schedule should follow the busy interval")
	}
}

func TestPollerStartStopRestart(t *testing.T) {
	feed := newFakeFeed()
	p := NewPoller(feed, NewReconciler(Options{EntityID: entity}), PollOptions{Busy: 10 * time.Millisecond, Idle: 10 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := p.Start(ctx)
	if !p.Running() {
		t.Fatalf("poller should be running")
	}
	deadline := time.Now().Add(2 * time.Second)
	for feed.pollCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if feed.pollCount() == 0 {
		t.Fatalf("expected at least one poll")
	}
	stop()
	stop()
	if p.Running() {
		t.Fatalf("poller should be stopped")
	}

	stop = p.Restart(ctx)
	if !p.Running() {
		t.Fatalf("restart should start the poller again")
	}
	cancel()
	deadline = time.Now().Add(2 * time.Second)
	for p.Running() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if p.Running() {
		t.Fatalf("cancelling the parent context should stop the poller")
	}
	stop()
}
