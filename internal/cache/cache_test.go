package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type entry struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, "k", entry{Name: "MAYBANK", Price: "9.80"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got entry
	if err := m.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "MAYBANK" || got.Price != "9.80" {
		t.Errorf("Get = %+v", got)
	}
}

func TestMemoryMiss(t *testing.T) {
	var got entry
	if err := NewMemory().Get(context.Background(), "absent", &got); !errors.Is(err, ErrMiss) {
		t.Errorf("err = %v, want ErrMiss", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Set(ctx, "k", entry{Name: "X"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, "forever", entry{Name: "Y"}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(2 * time.Minute)

	var got entry
	if err := m.Get(ctx, "k", &got); !errors.Is(err, ErrMiss) {
		t.Errorf("expired Get err = %v, want ErrMiss", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1 after expired entry removed", m.Len())
	}
	if err := m.Get(ctx, "forever", &got); err != nil || got.Name != "Y" {
		t.Errorf("non-expiring Get = %+v, %v", got, err)
	}
}

func TestMemorySweep(t *testing.T) {
	m := NewMemory()
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := m.Set(ctx, key, entry{Name: key}, time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if err := m.Set(ctx, "forever", entry{Name: "Y"}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(30 * time.Second)
	if err := m.Set(ctx, "fresh", entry{Name: "Z"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if n := m.Sweep(); n != 0 {
		t.Errorf("Sweep before expiry = %d, want 0", n)
	}

	// expired keys are removed without being read again
	now = now.Add(45 * time.Second)
	if n := m.Sweep(); n != 3 {
		t.Errorf("Sweep = %d, want 3", n)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
	var got entry
	if err := m.Get(ctx, "fresh", &got); err != nil || got.Name != "Z" {
		t.Errorf("fresh Get = %+v, %v", got, err)
	}
}
