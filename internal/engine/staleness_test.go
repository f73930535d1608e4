package engine

import (
	"testing"

	"github.com/amaumene/nextup/internal/models"
)

func TestApplyStalenessHidesIdleShows(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name        string
		idleDays    int
		cat         DisplayCategory
		schedulable bool
	}{
		{"fresh show stays", 3, CategoryWatching, true},
		{"just under the threshold stays", 89, CategoryWatching, true},
		{"at the threshold hides", 90, CategoryWatching, false},
		{"long idle airing-available hides", 120, CategoryAiringAvailable, false},
		{"long idle caught-up hides", 120, CategoryAiringCaughtUp, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lastWatched := today.AddDate(0, 0, -tt.idleDays)
			d := applyStaleness(models.StatusAiring, tt.cat, &lastWatched, today, opts)
			if d.Schedulable != tt.schedulable {
				t.Errorf("Expected schedulable=%v at %d idle days", tt.schedulable, tt.idleDays)
			}
			if d.Transition != nil {
				t.Errorf("Airing shows never auto-transition, got %v", *d.Transition)
			}
		})
	}
}

func TestApplyStalenessNeverWatchedIsNotIdle(t *testing.T) {
	d := applyStaleness(models.StatusWatching, CategoryWatching, nil, today, DefaultOptions())
	if !d.Schedulable {
		t.Error("A never-watched show must stay schedulable")
	}
	if d.Transition != nil {
		t.Error("A never-watched show must not transition")
	}
}

func TestApplyStalenessAutoAbandon(t *testing.T) {
	opts := DefaultOptions()

	lastWatched := today.AddDate(0, 0, -180)
	d := applyStaleness(models.StatusWatching, CategoryWatching, &lastWatched, today, opts)
	if d.Transition == nil || *d.Transition != models.StatusAbandoned {
		t.Fatalf("Expected abandon transition at 180 idle days, got %+v", d)
	}
	if d.Schedulable {
		t.Error("An abandoned show must not be scheduled in the same run")
	}

	// under the threshold: hidden but kept
	lastWatched = today.AddDate(0, 0, -179)
	d = applyStaleness(models.StatusWatching, CategoryWatching, &lastWatched, today, opts)
	if d.Transition != nil {
		t.Error("No transition expected at 179 idle days")
	}
	if d.Schedulable {
		t.Error("Expected hidden at 179 idle days")
	}
}

func TestApplyStalenessAbandonOnlyForWatchingStatus(t *testing.T) {
	lastWatched := today.AddDate(0, 0, -365)
	d := applyStaleness(models.StatusAiring, CategoryAiringCaughtUp, &lastWatched, today, DefaultOptions())
	if d.Transition != nil {
		t.Error("A still-airing show is never auto-abandoned, however idle")
	}
}
