// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"context"
	"errors"
	"testing"
)

// fakeAPI records calls and serves a configurable authoritative list.
type fakeAPI struct {
	items       []Item
	updateErr   error
	fetchErr    error
	updateCalls int
	fetchCalls  int
	lastUpdates []OrderUpdate
}

func (f *fakeAPI) MenuItems(ctx context.Context, menuID int64) ([]Item, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]Item(nil), f.items...), nil
}

func (f *fakeAPI) UpdateMenuItemsOrder(ctx context.Context, menuID int64, updates []OrderUpdate) error {
	f.updateCalls++
	f.lastUpdates = updates
	return f.updateErr
}

func newTestEditor(api *fakeAPI) *Editor {
	e := NewEditor(1, 2, NewSynchronizer(api, 0, nil))
	e.Load(testItems())
	return e
}

func TestEditorMoveSubmitsBatch(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEditor(api)

	if err := e.Move(context.Background(), Move{ItemID: 3, DestIndex: 0}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	if api.updateCalls != 1 {
		t.Fatalf("updateCalls = %d, want 1", api.updateCalls)
	}
	if len(api.lastUpdates) != 4 {
		t.Fatalf("got %d updates, want 4", len(api.lastUpdates))
	}

	state := e.State()
	if state.Reordering {
		t.Error("Reordering flag still set after completion")
	}
	root := ChildrenOf(state.Items, nil)
	if root[0].ID != 3 {
		t.Errorf("root[0].ID = %d, want 3", root[0].ID)
	}
}

func TestEditorNoOpMoveSkipsNetwork(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEditor(api)
	before := e.State()

	// B is already at root index 1.
	if err := e.Move(context.Background(), Move{ItemID: 2, DestIndex: 1}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	if api.updateCalls != 0 {
		t.Errorf("updateCalls = %d, want 0", api.updateCalls)
	}
	after := e.State()
	for i := range before.Items {
		if after.Items[i] != before.Items[i] {
			t.Errorf("item %d changed on a no-op move", i)
		}
	}
}

func TestEditorRollsBackOnSubmitFailure(t *testing.T) {
	// The authoritative list the fake serves differs from both the old and
	// the optimistic state, so the rollback is observable.
	authoritative := []Item{
		{ID: 1, Title: "A", Position: 0},
		{ID: 2, Title: "B", Position: 1},
	}
	api := &fakeAPI{items: authoritative, updateErr: errors.New("boom")}
	e := newTestEditor(api)

	err := e.Move(context.Background(), Move{ItemID: 3, DestIndex: 0})
	if err == nil {
		t.Fatal("expected an error")
	}

	if api.fetchCalls != 1 {
		t.Errorf("fetchCalls = %d, want 1", api.fetchCalls)
	}
	state := e.State()
	if state.Reordering {
		t.Error("Reordering flag still set after failed move")
	}
	if len(state.Items) != 2 || state.Items[0].ID != 1 || state.Items[1].ID != 2 {
		t.Errorf("working copy not replaced with authoritative list: %+v", state.Items)
	}
}

func TestEditorKeepsPreviousStateWhenRollbackFetchFails(t *testing.T) {
	api := &fakeAPI{
		updateErr: errors.New("boom"),
		fetchErr:  errors.New("also down"),
	}
	e := newTestEditor(api)

	err := e.Move(context.Background(), Move{ItemID: 3, DestIndex: 0})
	if err == nil {
		t.Fatal("expected an error")
	}

	state := e.State()
	want := testItems()
	if len(state.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(state.Items), len(want))
	}
	for i := range want {
		if state.Items[i] != want[i] {
			t.Errorf("item %d = %+v, want pre-move %+v", i, state.Items[i], want[i])
		}
	}
}

func TestEditorRejectsOverlappingMoves(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEditor(api)

	// Simulate an in-flight batch by setting the flag directly.
	e.mu.Lock()
	e.state.Reordering = true
	e.mu.Unlock()

	err := e.Move(context.Background(), Move{ItemID: 3, DestIndex: 0})
	if !errors.Is(err, ErrReorderInFlight) {
		t.Errorf("err = %v, want ErrReorderInFlight", err)
	}
	if api.updateCalls != 0 {
		t.Errorf("updateCalls = %d, want 0", api.updateCalls)
	}
}

func TestEditorInvalidMoveLeavesStateUntouched(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEditor(api)

	err := e.Move(context.Background(), Move{ItemID: 2, DestParent: ptr(4), DestIndex: 0})
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
	if api.updateCalls != 0 {
		t.Errorf("updateCalls = %d, want 0", api.updateCalls)
	}

	state := e.State()
	for i, item := range testItems() {
		if state.Items[i] != item {
			t.Errorf("item %d changed after rejected move", i)
		}
	}
}

func TestEditorRefresh(t *testing.T) {
	api := &fakeAPI{items: []Item{{ID: 7, Title: "New", Position: 0}}}
	e := newTestEditor(api)

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	state := e.State()
	if len(state.Items) != 1 || state.Items[0].ID != 7 {
		t.Errorf("working copy = %+v, want the refreshed list", state.Items)
	}
}
