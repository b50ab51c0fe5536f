package handler

import (
	"context"
	"testing"

	"github.com/kohei/umami/internal/model"
)

func TestStateStore_Load_NilSession_ReturnsZeroValue(t *testing.T) {
	store := NewStateStore(newFakeSessionUpdater(), newTestLogger())

	state := store.Load(nil)
	if state.Flash != "" || state.Editor != nil || state.Reviews != nil {
		t.Errorf("Load(nil) = %+v, want zero value", state)
	}
}

func TestStateStore_Load_CorruptData_ReturnsZeroValue(t *testing.T) {
	store := NewStateStore(newFakeSessionUpdater(), newTestLogger())
	session := &model.Session{ID: "s1", Data: []byte("{not json")}

	state := store.Load(session)
	if state.Flash != "" || state.Editor != nil {
		t.Errorf("Load of corrupt data = %+v, want zero value", state)
	}
}

func TestStateStore_SaveThenLoad_RoundTrips(t *testing.T) {
	store := NewStateStore(newFakeSessionUpdater(), newTestLogger())
	session := &model.Session{ID: "s1"}

	store.Save(context.Background(), session, SessionState{
		Flash: "hello",
		Editor: &EditorContext{
			RestaurantID:    "r1",
			RestaurantName:  "Trattoria Uno",
			RestaurantImage: "https://example.com/uno.jpg",
		},
		Reviews: []model.Review{{ID: "v1", Rating: 4}},
	})

	// Saveはsession.Dataも更新するので、同一リクエスト内のLoadに反映される
	state := store.Load(session)
	if state.Flash != "hello" {
		t.Errorf("flash = %q, want hello", state.Flash)
	}
	if state.Editor == nil || state.Editor.RestaurantName != "Trattoria Uno" {
		t.Errorf("editor = %+v", state.Editor)
	}
	if len(state.Reviews) != 1 || state.Reviews[0].ID != "v1" {
		t.Errorf("reviews = %+v", state.Reviews)
	}
}

func TestStateStore_Save_PersistsThroughUpdater(t *testing.T) {
	updater := newFakeSessionUpdater()
	store := NewStateStore(updater, newTestLogger())
	session := &model.Session{ID: "s1"}

	store.Save(context.Background(), session, SessionState{Flash: "persisted"})

	if updater.calls != 1 {
		t.Errorf("UpdateData calls = %d, want 1", updater.calls)
	}
	if state := updater.savedState(t, "s1"); state.Flash != "persisted" {
		t.Errorf("persisted flash = %q, want persisted", state.Flash)
	}
}

func TestStateStore_PopFlash_ReturnsAndClears(t *testing.T) {
	store := NewStateStore(newFakeSessionUpdater(), newTestLogger())
	session := &model.Session{ID: "s1"}

	store.SetFlash(context.Background(), session, "one-shot message")

	if got := store.PopFlash(context.Background(), session); got != "one-shot message" {
		t.Errorf("first PopFlash = %q, want one-shot message", got)
	}
	if got := store.PopFlash(context.Background(), session); got != "" {
		t.Errorf("second PopFlash = %q, want empty", got)
	}
}

func TestStateStore_PopFlash_PreservesOtherState(t *testing.T) {
	store := NewStateStore(newFakeSessionUpdater(), newTestLogger())
	session := &model.Session{ID: "s1"}

	store.Save(context.Background(), session, SessionState{
		Flash:   "message",
		Reviews: []model.Review{{ID: "v1"}},
	})
	store.PopFlash(context.Background(), session)

	state := store.Load(session)
	if state.Flash != "" {
		t.Errorf("flash = %q, want empty", state.Flash)
	}
	if len(state.Reviews) != 1 {
		t.Error("PopFlash must not drop the stashed reviews")
	}
}

func TestStateStore_PopFlash_EmptyFlash_DoesNotSave(t *testing.T) {
	updater := newFakeSessionUpdater()
	store := NewStateStore(updater, newTestLogger())
	session := &model.Session{ID: "s1"}

	if got := store.PopFlash(context.Background(), session); got != "" {
		t.Errorf("PopFlash = %q, want empty", got)
	}
	if updater.calls != 0 {
		t.Errorf("UpdateData calls = %d, want 0 (nothing to clear)", updater.calls)
	}
}
