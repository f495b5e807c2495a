package monodraw

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// countOp counts how many times it was drawn.
type countOp struct {
	count *int32
}

func (op countOp) Draw(surface *Surface) error {
	atomic.AddInt32(op.count, 1)
	surface.Clear(Black)
	return nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func newPlayerFixture(t *testing.T, scenes []Scene, series []FrameSeries) (*Player, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{caps: BackendCaps{PartialUpdate: true}}
	presenter, err := NewPresenter(backend, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	player, err := NewPlayer(presenter, scenes, series)
	if err != nil {
		t.Fatal(err)
	}
	if err := player.SetFrameRate(50); err != nil {
		t.Fatal(err)
	}
	return player, backend
}

func TestNewPlayerNilPresenter(t *testing.T) {
	if _, err := NewPlayer(nil, nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestPlayerStartStop(t *testing.T) {
	var drawn int32
	scenes := []Scene{{Name: "idle", FrameSeriesName: "idle-loop"}}
	series := []FrameSeries{{
		Name: "idle-loop",
		Frames: []Frame{
			{Ops: []DrawOp{countOp{&drawn}}},
			{Ops: []DrawOp{countOp{&drawn}}},
		},
	}}
	player, _ := newPlayerFixture(t, scenes, series)

	if err := player.Start("no-such-scene"); err == nil {
		t.Error("Start with unknown scene succeeded")
	}

	if err := player.Start("idle"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := player.Start("idle"); err == nil {
		t.Error("second Start succeeded while running")
	}

	// The scene loops, so the frames draw more times than the series
	// holds.
	waitFor(t, "scene loop", func() bool { return atomic.LoadInt32(&drawn) > 4 })

	player.Stop()
	waitFor(t, "draw loop exit", func() bool {
		before := atomic.LoadInt32(&drawn)
		time.Sleep(20 * time.Millisecond)
		return atomic.LoadInt32(&drawn) == before
	})
}

func TestPlayerSetFrameRate(t *testing.T) {
	player, _ := newPlayerFixture(t, []Scene{{Name: "s", FrameSeriesName: "f"}},
		[]FrameSeries{{Name: "f", Frames: []Frame{{}}}})

	if err := player.SetFrameRate(0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetFrameRate(0): err = %v, want ErrInvalidArgument", err)
	}
	if err := player.Start("s"); err != nil {
		t.Fatal(err)
	}
	defer player.Stop()
	if err := player.SetFrameRate(30); !errors.Is(err, ErrBusy) {
		t.Errorf("SetFrameRate while running: err = %v, want ErrBusy", err)
	}
}

func TestPlayerChangeScene(t *testing.T) {
	var idleDrawn, transitionDrawn, activeDrawn int32
	scenes := []Scene{
		{Name: "idle", FrameSeriesName: "idle-loop"},
		{Name: "active", FrameSeriesName: "active-loop"},
	}
	series := []FrameSeries{
		{
			Name: "idle-loop",
			Frames: []Frame{
				{Ops: []DrawOp{countOp{&idleDrawn}}},
				{
					Ops:         []DrawOp{countOp{&idleDrawn}},
					Transitions: []Transition{{DestSceneName: "active", FrameSeriesName: "idle-to-active"}},
				},
			},
		},
		{
			Name: "idle-to-active",
			Frames: []Frame{
				{Ops: []DrawOp{countOp{&transitionDrawn}}},
				{Ops: []DrawOp{countOp{&transitionDrawn}}},
			},
		},
		{
			Name:   "active-loop",
			Frames: []Frame{{Ops: []DrawOp{countOp{&activeDrawn}}}},
		},
	}
	player, _ := newPlayerFixture(t, scenes, series)

	if err := player.ChangeScene("active"); err == nil {
		t.Error("ChangeScene before Start succeeded")
	}

	if err := player.Start("idle"); err != nil {
		t.Fatal(err)
	}
	defer player.Stop()

	if err := player.ChangeScene("idle"); err != nil {
		t.Errorf("ChangeScene to current scene: %v", err)
	}

	if err := player.ChangeScene("active"); err != nil {
		t.Fatalf("ChangeScene: %v", err)
	}
	// Overrunning the frame budget drops frames, so the transition may
	// render short, but it never repeats.
	if got := atomic.LoadInt32(&transitionDrawn); got == 0 || got > 2 {
		t.Errorf("transition frames drawn %d times, want 1..2", got)
	}
	waitFor(t, "active scene frames", func() bool { return atomic.LoadInt32(&activeDrawn) > 0 })
}

func TestPlayerChangeSceneWithoutTransition(t *testing.T) {
	var drawn int32
	scenes := []Scene{
		{Name: "idle", FrameSeriesName: "idle-loop"},
		{Name: "active", FrameSeriesName: "active-loop"},
	}
	series := []FrameSeries{
		{Name: "idle-loop", Frames: []Frame{
			{Ops: []DrawOp{countOp{&drawn}}},
			{Ops: []DrawOp{countOp{&drawn}}},
		}},
		{Name: "active-loop", Frames: []Frame{{}}},
	}
	player, _ := newPlayerFixture(t, scenes, series)

	if err := player.Start("idle"); err != nil {
		t.Fatal(err)
	}
	defer player.Stop()

	// No frame in "idle-loop" offers a transition to "active"; the
	// request must fail after one full loop, with playback continuing.
	if err := player.ChangeScene("active"); err == nil {
		t.Fatal("ChangeScene without transition frame succeeded")
	}
	before := atomic.LoadInt32(&drawn)
	waitFor(t, "playback to continue", func() bool { return atomic.LoadInt32(&drawn) > before })
}

func TestPlayerDropsFramesWhileTransferBusy(t *testing.T) {
	var drawn int32
	scenes := []Scene{{Name: "idle", FrameSeriesName: "idle-loop"}}
	series := []FrameSeries{{Name: "idle-loop", Frames: []Frame{
		{Ops: []DrawOp{countOp{&drawn}}},
	}}}

	backend := &fakeBackend{caps: BackendCaps{PartialUpdate: true, AsyncPresent: true}}
	presenter, err := NewPresenter(backend, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	player, err := NewPlayer(presenter, scenes, series)
	if err != nil {
		t.Fatal(err)
	}
	if err := player.SetFrameRate(50); err != nil {
		t.Fatal(err)
	}

	// The transfer is never completed, so every present after the first
	// is rejected with ErrBusy. The player must keep drawing regardless.
	if err := player.Start("idle"); err != nil {
		t.Fatal(err)
	}
	defer player.Stop()

	waitFor(t, "frames despite busy transfers", func() bool { return atomic.LoadInt32(&drawn) > 5 })
	if got := len(backend.presents); got != 1 {
		t.Errorf("backend saw %d presents, want 1 while transfer outstanding", got)
	}
}
