package cache

import (
    "context"
    "testing"

    "tourplan/internal/model"
)

func TestMemorySnapshotRoundTrip(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()

    got, err := m.Load(ctx, "s1")
    if err != nil || got != nil {
        t.Fatalf("empty load: %v %v", got, err)
    }

    stops := []model.Stop{
        {ID: "a", Name: "Nashville", Committed: true, ScheduledDate: "2026-09-01"},
        {ID: "b", Name: "Memphis"},
    }
    if err := m.Save(ctx, "s1", stops); err != nil {
        t.Fatalf("save: %v", err)
    }

    got, err = m.Load(ctx, "s1")
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    if len(got) != 2 || got[0].ID != "a" || got[1].Name != "Memphis" {
        t.Fatalf("wrong snapshot: %+v", got)
    }

    // callers must not be able to mutate the stored copy
    got[0].Name = "changed"
    again, _ := m.Load(ctx, "s1")
    if again[0].Name != "Nashville" {
        t.Fatalf("snapshot aliased caller slice: %+v", again[0])
    }

    // saves overwrite wholesale
    if err := m.Save(ctx, "s1", stops[:1]); err != nil {
        t.Fatalf("save: %v", err)
    }
    got, _ = m.Load(ctx, "s1")
    if len(got) != 1 {
        t.Fatalf("expected wholesale overwrite, got %d stops", len(got))
    }
}

func TestMemorySnapshotKeys(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()
    _ = m.Save(ctx, "a", []model.Stop{{ID: "1"}})
    _ = m.Save(ctx, "b", []model.Stop{{ID: "2"}})
    got, _ := m.Load(ctx, "b")
    if len(got) != 1 || got[0].ID != "2" {
        t.Fatalf("keys not isolated: %+v", got)
    }
}
