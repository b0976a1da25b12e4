package upload

import (
	"sync"
	"testing"
)

func TestSessionReceivedSet(t *testing.T) {
	s := newSession("up-1", "a.bin", 20, 4, 5, "")

	if s.IsComplete() {
		t.Error("fresh session reports complete")
	}
	if got := s.Missing(); len(got) != 5 {
		t.Errorf("Missing = %v, want all 5 indices", got)
	}

	if count := s.MarkReceived(2); count != 1 {
		t.Errorf("MarkReceived = %d, want 1", count)
	}
	// Re-marking is a no-op on the count.
	if count := s.MarkReceived(2); count != 1 {
		t.Errorf("repeat MarkReceived = %d, want 1", count)
	}

	s.MarkReceived(0)
	s.MarkReceived(4)

	if got := s.Received(); len(got) != 3 || got[0] != 0 || got[1] != 2 || got[2] != 4 {
		t.Errorf("Received = %v, want [0 2 4]", got)
	}
	if got := s.Missing(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("Missing = %v, want [1 3]", got)
	}

	s.MarkReceived(1)
	s.MarkReceived(3)
	if !s.IsComplete() {
		t.Error("session with all chunks reports incomplete")
	}
}

func TestSessionSeedReceived(t *testing.T) {
	s := newSession("up-1", "a.bin", 20, 4, 5, "")

	// Out-of-range indices from stray files are ignored.
	s.seedReceived([]int{0, 3, 7, -1})

	if got := s.Received(); len(got) != 2 || got[0] != 0 || got[1] != 3 {
		t.Errorf("Received = %v, want [0 3]", got)
	}
}

func TestSessionConcurrentMarks(t *testing.T) {
	const totalChunks = 100
	s := newSession("up-1", "a.bin", int64(totalChunks), 1, totalChunks, "")

	var wg sync.WaitGroup
	for i := 0; i < totalChunks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.MarkReceived(i)
		}(i)
	}
	wg.Wait()

	if got := s.ReceivedCount(); got != totalChunks {
		t.Errorf("ReceivedCount = %d, want %d", got, totalChunks)
	}
	if !s.IsComplete() {
		t.Error("session incomplete after all marks")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Len() != 0 {
		t.Errorf("fresh registry Len = %d", reg.Len())
	}
	if _, ok := reg.Get("ghost"); ok {
		t.Error("Get on empty registry returned a session")
	}

	a := newSession("up-a", "a.bin", 10, 10, 1, "")
	b := newSession("up-b", "b.bin", 10, 10, 1, "")
	reg.Put(a)
	reg.Put(b)

	if got, ok := reg.Get("up-a"); !ok || got != a {
		t.Error("Get returned wrong session")
	}
	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
	if got := reg.List(); len(got) != 2 {
		t.Errorf("List returned %d sessions", len(got))
	}

	reg.Delete("up-a")
	if _, ok := reg.Get("up-a"); ok {
		t.Error("session survives Delete")
	}
	reg.Delete("up-a") // no-op
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s := newSession("up", "a.bin", 10, 10, 1, "")
				reg.Put(s)
				reg.Get("up")
				reg.List()
				reg.Len()
			}
		}(i)
	}
	wg.Wait()

	if _, ok := reg.Get("up"); !ok {
		t.Error("session missing after concurrent writes")
	}
}
