package state

import (
	"sync"
	"testing"
)

func TestSeen_Mark(t *testing.T) {
	seen := NewSeen()

	h1 := Hash([]byte("Subject: a\n\nbody"))
	if seen.Mark(h1) {
		t.Error("first message reported as duplicate")
	}
	if !seen.Mark(Hash([]byte("Subject: a\n\nbody"))) {
		t.Error("identical message not reported as duplicate")
	}
	if seen.Mark(Hash([]byte("Subject: b\n\nbody"))) {
		t.Error("different message reported as duplicate")
	}

	if got := seen.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestHash(t *testing.T) {
	// sha256("") in base64
	if got, want := Hash(nil), "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="; got != want {
		t.Errorf("Hash(nil) = %q, want %q", got, want)
	}
	if Hash([]byte("a")) == Hash([]byte("b")) {
		t.Error("distinct messages share a hash")
	}
}

func TestSeen_Concurrent(t *testing.T) {
	seen := NewSeen()
	hash := Hash([]byte("same"))
	var wg sync.WaitGroup
	dups := make([]bool, 8)
	for i := range dups {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dups[i] = seen.Mark(hash)
		}(i)
	}
	wg.Wait()

	firsts := 0
	for _, dup := range dups {
		if !dup {
			firsts++
		}
	}
	if firsts != 1 {
		t.Errorf("%d goroutines saw the message first, want 1", firsts)
	}
	if seen.Len() != 1 {
		t.Errorf("Len() = %d, want 1", seen.Len())
	}
}
