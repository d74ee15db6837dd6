/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mikeb26/donuts/donut"
)

var names = []string{"Ann", "Bob", "Cat", "Dan"}

func TestRecordSchedule(t *testing.T) {
	h := New()
	sched := donut.Schedule{
		{{0, 3}, {1, 2}},
		{{0, 2, 1}},
	}
	h.RecordSchedule(names, sched)

	want := [][2]string{
		{"Ann", "Bob"},
		{"Ann", "Cat"},
		{"Ann", "Dan"},
		{"Bob", "Cat"},
	}
	if diff := cmp.Diff(want, h.Pairs()); diff != "" {
		t.Errorf("Pairs mismatch (-want +got):\n%s", diff)
	}
	if !h.Met("Dan", "Ann") || !h.Met("Ann", "Dan") {
		t.Errorf("expected Ann and Dan to have met")
	}
	if h.Met("Bob", "Dan") {
		t.Errorf("Bob and Dan never met")
	}
	if h.Runs != 1 || h.Updated.IsZero() {
		t.Errorf("expected a recorded run, got runs:%v updated:%v", h.Runs,
			h.Updated)
	}
}

func TestValidatorRejectsPriorMeetings(t *testing.T) {
	h := New()
	h.Record("Bob", "Cat")
	h.Record("Ann", "Zed") // Zed is not in this run

	// round 0 of the identity arrangement pairs Bob with Cat
	_, err := donut.PlanWithValidator(h.Validator(names), donut.Identity(4), 1)
	if !errors.Is(err, donut.ErrScheduleInfeasible) {
		t.Errorf("expected prior meeting to be rejected, got %v", err)
	}

	// a different order of names moves Bob and Cat apart
	reordered := []string{"Ann", "Bob", "Dan", "Cat"}
	_, err = donut.PlanWithValidator(h.Validator(reordered), donut.Identity(4), 1)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.json")
	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()

	h, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load of a missing file returned error: %v", err)
	}
	if len(h.Pairs()) != 0 {
		t.Errorf("expected empty history, got %v", h.Pairs())
	}

	h.RecordSchedule(names, donut.Schedule{{{0, 3}, {1, 2}}})
	if err := store.Save(ctx, h); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff(h.Pairs(), loaded.Pairs()); diff != "" {
		t.Errorf("loaded history mismatch (-saved +loaded):\n%s", diff)
	}
	if loaded.Runs != 1 {
		t.Errorf("Runs = %v; want 1", loaded.Runs)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the history file to remain, got %v entries",
			len(entries))
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	store := &FileStore{Path: path}
	if _, err := store.Load(context.Background()); err == nil {
		t.Errorf("expected an error for a corrupt history file")
	}
}

func TestMerge(t *testing.T) {
	a := New()
	a.Record("Ann", "Bob")
	b := New()
	b.Record("Cat", "Dan")
	b.Runs = 3

	a.Merge(b)
	if !a.Met("Ann", "Bob") || !a.Met("Cat", "Dan") {
		t.Errorf("merged history is missing meetings: %v", a.Pairs())
	}
	if a.Runs != 3 {
		t.Errorf("Runs = %v; want 3", a.Runs)
	}
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	for _, uri := range []string{"", "s3://bucket-only", "s3:///key"} {
		if _, err := Open(ctx, uri); err == nil {
			t.Errorf("Open(%q) expected an error", uri)
		}
	}
}

func TestPgStore(t *testing.T) {
	databaseURL := os.Getenv("DONUTS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("Skipping test because DONUTS_TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, databaseURL)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()

	h := New()
	h.RecordSchedule(names, donut.Schedule{{{0, 3}, {1, 2}}})
	if err := store.Save(ctx, h); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	for _, pair := range h.Pairs() {
		if !loaded.Met(pair[0], pair[1]) {
			t.Errorf("loaded history is missing %v", pair)
		}
	}
	if loaded.Runs < 1 {
		t.Errorf("Runs = %v; want at least 1", loaded.Runs)
	}
}

func TestSeedGroups(t *testing.T) {
	// Bob and Cat share round 0 of the identity arrangement
	v := donut.NewValidator()
	SeedGroups(v, names, [][]string{{"Bob", "Cat", "Zed"}})
	_, err := donut.PlanWithValidator(v, donut.Identity(4), 1)
	if !errors.Is(err, donut.ErrScheduleInfeasible) {
		t.Errorf("expected pairing a group together to be rejected, got %v", err)
	}

	v = donut.NewValidator()
	SeedGroups(v, names, [][]string{{"Ann", "Bob"}})
	if _, err := donut.PlanWithValidator(v, donut.Identity(4), 1); err != nil {
		t.Errorf("Ann and Bob are not paired in round 0, got %v", err)
	}
}
