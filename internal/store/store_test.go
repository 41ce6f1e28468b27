package store

import "testing"

func TestStore_ListIsNewestFirst(t *testing.T) {
	s := New(3)
	s.Add(Record{ID: "1"})
	s.Add(Record{ID: "2"})
	s.Add(Record{ID: "3"})

	got := s.List()
	want := []string{"3", "2", "1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("index %d: got %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestStore_OverwritesOldestWhenFull(t *testing.T) {
	s := New(2)
	s.Add(Record{ID: "1"})
	s.Add(Record{ID: "2"})
	s.Add(Record{ID: "3"})

	got := s.List()
	want := []string{"3", "2"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("index %d: got %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestStore_DefaultCapacityOnNonPositive(t *testing.T) {
	s := New(0)
	if s.capacity != DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultCapacity, s.capacity)
	}
}
