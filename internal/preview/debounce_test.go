package preview

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerRunsOnlyLastTrigger(t *testing.T) {
	d := NewDebouncer[string](20 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	var ran []int
	done := make(chan struct{})

	for i := 1; i <= 3; i++ {
		n := i
		d.Trigger("field", func(func() bool) {
			mu.Lock()
			ran = append(ran, n)
			mu.Unlock()
			close(done)
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced work never ran")
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 1 || ran[0] != 3 {
		t.Errorf("ran = %v, want [3]", ran)
	}
}

func TestDebouncerMarksSupersededWorkStale(t *testing.T) {
	d := NewDebouncer[string](5 * time.Millisecond)
	defer d.Stop()

	started := make(chan struct{})
	release := make(chan struct{})
	result := make(chan bool, 1)

	d.Trigger("url", func(stillCurrent func() bool) {
		close(started)
		<-release
		result <- stillCurrent()
	})

	<-started
	d.Trigger("url", func(func() bool) {})
	close(release)

	select {
	case current := <-result:
		if current {
			t.Error("first run should be stale after a newer trigger")
		}
	case <-time.After(time.Second):
		t.Fatal("first run never finished")
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := NewDebouncer[int](10 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(1, func(func() bool) { calls.Add(1) })
	d.Stop()
	d.Trigger(2, func(func() bool) { calls.Add(1) })

	time.Sleep(40 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("work ran %d times after Stop", n)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", d.Pending())
	}
}

// A key released by finished work and triggered again must not hand out a
// generation that older, still running work holds.
func TestDebouncerGenerationsSurviveRelease(t *testing.T) {
	d := NewDebouncer[string](5 * time.Millisecond)
	defer d.Stop()

	firstStarted := make(chan struct{})
	firstRelease := make(chan struct{})
	firstResult := make(chan bool, 1)
	d.Trigger("url", func(stillCurrent func() bool) {
		close(firstStarted)
		<-firstRelease
		firstResult <- stillCurrent()
	})
	<-firstStarted

	secondDone := make(chan struct{})
	d.Trigger("url", func(func() bool) { close(secondDone) })
	<-secondDone
	deadline := time.Now().Add(time.Second)
	for d.Pending() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("second trigger was never released")
		}
		time.Sleep(time.Millisecond)
	}

	thirdStarted := make(chan struct{})
	thirdRelease := make(chan struct{})
	thirdResult := make(chan bool, 1)
	d.Trigger("url", func(stillCurrent func() bool) {
		close(thirdStarted)
		<-thirdRelease
		thirdResult <- stillCurrent()
	})
	<-thirdStarted

	close(firstRelease)
	if <-firstResult {
		t.Error("superseded first trigger reported current")
	}
	close(thirdRelease)
	if !<-thirdResult {
		t.Error("latest trigger reported stale")
	}
}

func TestDebouncerStopWaitsForRunningWork(t *testing.T) {
	d := NewDebouncer[string](5 * time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	var current atomic.Bool
	d.Trigger("url", func(stillCurrent func() bool) {
		close(started)
		<-release
		current.Store(stillCurrent())
	})
	<-started

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while work was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop never returned")
	}
	if !current.Load() {
		t.Error("running work should stay current through Stop")
	}
}
