package utils

import (
	"testing"
	"time"
)

func TestLinkSetNoDuplicates(t *testing.T) {
	s := NewLinkSet()

	if !s.Add("https://example.is/1") {
		t.Error("first Add should return true")
	}
	if s.Add("https://example.is/1") {
		t.Error("second Add of same link should return false")
	}
	if !s.Contains("https://example.is/1") {
		t.Error("Contains should see the added link")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestPacerEnforcesInterval(t *testing.T) {
	interval := 50 * time.Millisecond
	p := NewPacer(interval)

	p.Wait() // first call is free
	start := time.Now()
	p.Wait()
	if gap := time.Since(start); gap < interval {
		t.Errorf("second Wait returned after %v, want at least %v", gap, interval)
	}
}

func TestPacerFirstCallImmediate(t *testing.T) {
	p := NewPacer(time.Second)

	start := time.Now()
	p.Wait()
	if gap := time.Since(start); gap > 100*time.Millisecond {
		t.Errorf("first Wait blocked for %v", gap)
	}
}
