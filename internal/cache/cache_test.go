package cache

import "testing"

func TestBitmapsRoundTrip(t *testing.T) {
	b, err := New(2)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	b.Add("a", []byte("png-a"))
	got, ok := b.Get("a")
	if !ok || string(got) != "png-a" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}
	if _, ok := b.Get("missing"); ok {
		t.Fatal("Get(missing) reported a hit")
	}
}

func TestBitmapsEvictsOldest(t *testing.T) {
	b, err := New(2)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	b.Add("a", []byte("1"))
	b.Add("b", []byte("2"))
	b.Add("c", []byte("3"))

	if _, ok := b.Get("a"); ok {
		t.Fatal("oldest entry survived past capacity")
	}
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
}

func TestBitmapsIgnoresEmptyData(t *testing.T) {
	b, err := New(2)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	b.Add("a", nil)
	if _, ok := b.Get("a"); ok {
		t.Fatal("empty bitmap was cached")
	}
}

func TestBitmapsRejectsNonPositiveSize(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size 0")
	}
}

func TestNilBitmapsAreInert(t *testing.T) {
	var b *Bitmaps
	b.Add("a", []byte("1"))
	if _, ok := b.Get("a"); ok {
		t.Fatal("nil cache reported a hit")
	}
	if b.Len() != 0 {
		t.Fatal("nil cache reported entries")
	}
}
