package coalesce

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"texd/internal/domain"
)

func waitOutcome(t *testing.T, ticket *Ticket) Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	out, err := ticket.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	return out
}

func TestRegisterSupersedesPendingJob(t *testing.T) {
	c := New(nil)

	first := c.Register("frac-1")
	second := c.Register("frac-1")

	out := waitOutcome(t, first)
	if out.State != domain.JobStateSuperseded {
		t.Fatalf("first job state = %s, want %s", out.State, domain.JobStateSuperseded)
	}
	if out.Data != nil || out.Err != nil {
		t.Fatalf("superseded outcome must carry no data and no error, got %+v", out)
	}

	if !c.Resolve("frac-1", second.Generation(), Outcome{State: domain.JobStateCompleted, Data: []byte("png")}) {
		t.Fatal("resolve for current generation was rejected")
	}
	out = waitOutcome(t, second)
	if out.State != domain.JobStateCompleted || string(out.Data) != "png" {
		t.Fatalf("second job outcome mismatch: %+v", out)
	}
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	c := New(nil)

	first := c.Register("sum-1")
	second := c.Register("sum-1")

	// The engine answers for the superseded generation after the new
	// registration. Nothing may be delivered for it.
	if c.Resolve("sum-1", first.Generation(), Outcome{State: domain.JobStateCompleted, Data: []byte("old")}) {
		t.Fatal("stale completion was delivered")
	}

	if !c.Resolve("sum-1", second.Generation(), Outcome{State: domain.JobStateCompleted, Data: []byte("new")}) {
		t.Fatal("current completion was rejected")
	}
	out := waitOutcome(t, second)
	if string(out.Data) != "new" {
		t.Fatalf("delivered data = %q, want %q", out.Data, "new")
	}
}

func TestCancelResolvesPendingJob(t *testing.T) {
	c := New(nil)

	ticket := c.Register("int-1")
	if !c.Cancel("int-1") {
		t.Fatal("cancel of a pending job reported no-op")
	}

	out := waitOutcome(t, ticket)
	if out.State != domain.JobStateCancelled {
		t.Fatalf("state = %s, want %s", out.State, domain.JobStateCancelled)
	}
	if !errors.Is(out.Err, domain.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", out.Err)
	}

	// The engine's answer for the cancelled generation must be dropped.
	if c.Resolve("int-1", ticket.Generation(), Outcome{State: domain.JobStateCompleted}) {
		t.Fatal("completion after cancel was delivered")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	c := New(nil)

	if c.Cancel("missing") {
		t.Fatal("cancel with no job reported a cancellation")
	}

	ticket := c.Register("lim-1")
	if !c.Cancel("lim-1") {
		t.Fatal("first cancel reported no-op")
	}
	if c.Cancel("lim-1") {
		t.Fatal("second cancel reported a cancellation")
	}
	waitOutcome(t, ticket)
}

func TestCancelAfterCompleteIsNoOp(t *testing.T) {
	c := New(nil)

	ticket := c.Register("sqrt-1")
	c.Resolve("sqrt-1", ticket.Generation(), Outcome{State: domain.JobStateCompleted, Data: []byte("png")})

	if c.Cancel("sqrt-1") {
		t.Fatal("cancel after completion reported a cancellation")
	}
	out := waitOutcome(t, ticket)
	if out.State != domain.JobStateCompleted || string(out.Data) != "png" {
		t.Fatalf("completed outcome was altered: %+v", out)
	}
}

func TestCancelGenerationSkipsNewerJob(t *testing.T) {
	c := New(nil)

	first := c.Register("vec-1")
	second := c.Register("vec-1")
	waitOutcome(t, first)

	if c.CancelGeneration("vec-1", first.Generation()) {
		t.Fatal("stale scoped cancel hit the newer job")
	}
	if !c.Pending("vec-1") {
		t.Fatal("newer job should still be pending")
	}
	if !c.CancelGeneration("vec-1", second.Generation()) {
		t.Fatal("scoped cancel for current generation reported no-op")
	}
	waitOutcome(t, second)
}

func TestKeysAreIsolated(t *testing.T) {
	c := New(nil)

	a := c.Register("key-a")
	b := c.Register("key-b")

	c.Cancel("key-a")
	if !c.Pending("key-b") {
		t.Fatal("cancelling key-a disturbed key-b")
	}

	c.Resolve("key-b", b.Generation(), Outcome{State: domain.JobStateCompleted, Data: []byte("b")})
	outA := waitOutcome(t, a)
	outB := waitOutcome(t, b)
	if outA.State != domain.JobStateCancelled {
		t.Fatalf("key-a state = %s", outA.State)
	}
	if outB.State != domain.JobStateCompleted || string(outB.Data) != "b" {
		t.Fatalf("key-b outcome mismatch: %+v", outB)
	}
}

// Hammers one key from many goroutines and counts deliveries: every
// registered generation must resolve exactly once, and only the final
// generation may carry the completed payload.
func TestExactlyOneDeliveryPerGeneration(t *testing.T) {
	c := New(nil)
	const requests = 64

	var wg sync.WaitGroup
	deliveries := make([]Outcome, requests)
	tickets := make([]*Ticket, requests)

	for i := 0; i < requests; i++ {
		tickets[i] = c.Register("storm")
	}
	waitErrs := make([]error, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			deliveries[i], waitErrs[i] = tickets[i].Wait(ctx)
		}(i)
	}

	// Late completions for every superseded generation, then the real one.
	for i := 0; i < requests-1; i++ {
		if c.Resolve("storm", tickets[i].Generation(), Outcome{State: domain.JobStateCompleted, Data: []byte("stale")}) {
			t.Fatalf("generation %d delivered after supersession", tickets[i].Generation())
		}
	}
	last := tickets[requests-1]
	if !c.Resolve("storm", last.Generation(), Outcome{State: domain.JobStateCompleted, Data: []byte("fresh")}) {
		t.Fatal("final generation was rejected")
	}
	wg.Wait()

	for i, err := range waitErrs {
		if err != nil {
			t.Fatalf("wait %d returned error: %v", i, err)
		}
	}
	for i := 0; i < requests-1; i++ {
		if deliveries[i].State != domain.JobStateSuperseded {
			t.Fatalf("generation %d state = %s, want superseded", i, deliveries[i].State)
		}
	}
	if got := deliveries[requests-1]; got.State != domain.JobStateCompleted || string(got.Data) != "fresh" {
		t.Fatalf("final delivery mismatch: %+v", got)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	c := New(nil)
	ticket := c.Register("slow")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ticket.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait error = %v, want context.Canceled", err)
	}

	// The job itself is untouched by an abandoned wait.
	if !c.Pending("slow") {
		t.Fatal("abandoned wait resolved the job")
	}
}
