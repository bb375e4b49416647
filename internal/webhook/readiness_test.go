package webhook

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestEnsureReady_CreatesSheetAndWritesHeader(t *testing.T) {
	sink := &fakeSheet{}
	var readiness SheetReadiness

	if err := readiness.EnsureReady(context.Background(), sink, "rideshare", Columns); err != nil {
		t.Fatalf("expected setup to succeed, got %v", err)
	}

	if sink.creates != 1 || sink.writes != 1 {
		t.Fatalf("expected 1 create and 1 header write, got %d and %d", sink.creates, sink.writes)
	}
	if !reflect.DeepEqual(sink.header, Columns) {
		t.Fatalf("expected header %q, got %q", Columns, sink.header)
	}
	if !readiness.Ready() {
		t.Fatalf("expected readiness to be ready")
	}
}

func TestEnsureReady_MatchingHeaderIsNotRewritten(t *testing.T) {
	sink := &fakeSheet{exists: true, header: DefaultColumns()}
	var readiness SheetReadiness

	if err := readiness.EnsureReady(context.Background(), sink, "rideshare", Columns); err != nil {
		t.Fatalf("expected setup to succeed, got %v", err)
	}
	if sink.writes != 0 {
		t.Fatalf("expected no header write, got %d", sink.writes)
	}
}

func TestEnsureReady_DifferentHeaderIsRewritten(t *testing.T) {
	reordered := DefaultColumns()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	sink := &fakeSheet{exists: true, header: reordered}
	var readiness SheetReadiness

	if err := readiness.EnsureReady(context.Background(), sink, "rideshare", Columns); err != nil {
		t.Fatalf("expected setup to succeed, got %v", err)
	}
	if sink.writes != 1 || !reflect.DeepEqual(sink.header, Columns) {
		t.Fatalf("expected header to be rewritten in order, got %q after %d writes", sink.header, sink.writes)
	}
}

func TestEnsureReady_StickyOnceReady(t *testing.T) {
	sink := &fakeSheet{}
	var readiness SheetReadiness
	ctx := context.Background()

	if err := readiness.EnsureReady(ctx, sink, "rideshare", Columns); err != nil {
		t.Fatalf("expected setup to succeed, got %v", err)
	}
	// Out-of-band header change and a different schema are both ignored.
	sink.header = []string{"tampered"}
	if err := readiness.EnsureReady(ctx, sink, "rideshare", []string{"other"}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}

	if sink.creates != 1 || sink.reads != 1 || sink.writes != 1 {
		t.Fatalf("expected no further setup calls, got creates=%d reads=%d writes=%d", sink.creates, sink.reads, sink.writes)
	}
}

func TestEnsureReady_FailureStaysUnready(t *testing.T) {
	sink := &fakeSheet{readErr: errors.New("quota exceeded")}
	var readiness SheetReadiness
	ctx := context.Background()

	if err := readiness.EnsureReady(ctx, sink, "rideshare", Columns); err == nil {
		t.Fatalf("expected setup error")
	}
	if readiness.Ready() {
		t.Fatalf("expected readiness to stay unready after failure")
	}

	sink.readErr = nil
	if err := readiness.EnsureReady(ctx, sink, "rideshare", Columns); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if sink.creates != 2 {
		t.Fatalf("expected full setup to be retried, got %d creates", sink.creates)
	}
}

func TestEnsureReady_HeaderWriteFailureStaysUnready(t *testing.T) {
	sink := &fakeSheet{writeErr: errors.New("permission denied")}
	var readiness SheetReadiness

	err := readiness.EnsureReady(context.Background(), sink, "rideshare", Columns)
	if err == nil || !errors.Is(err, sink.writeErr) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
	if readiness.Ready() {
		t.Fatalf("expected readiness to stay unready")
	}
}

func TestEnsureReady_ConcurrentCallersShareSetup(t *testing.T) {
	const callers = 8
	sink := &fakeSheet{gate: make(chan struct{}), entered: make(chan struct{}, callers)}
	var readiness SheetReadiness

	var started, wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		started.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			errs <- readiness.EnsureReady(context.Background(), sink, "rideshare", Columns)
		}()
	}

	// Hold the setup open until every caller is running and one of them is
	// inside it, then give the rest time to join before releasing.
	started.Wait()
	<-sink.entered
	time.Sleep(50 * time.Millisecond)
	if n := len(sink.entered); n != 0 {
		t.Fatalf("expected callers to wait on the running setup, got %d more setups", n)
	}
	close(sink.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("expected every caller to succeed, got %v", err)
		}
	}
	if sink.creates != 1 {
		t.Fatalf("expected exactly 1 setup, got %d", sink.creates)
	}
}
