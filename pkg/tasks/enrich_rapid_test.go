package tasks

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/whooof/brewsty/pkg/model"
)

// TestEnrichmentQueue_TrackingInvariants drives the queue through random
// enqueue/drain/launch/complete sequences and checks that no package is
// ever double-tracked and drains always come out oldest first.
func TestEnrichmentQueue_TrackingInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxConcurrent := rapid.IntRange(1, 8).Draw(t, "maxConcurrent")
		q := NewEnrichmentQueue(maxConcurrent, time.Minute)

		cells := map[string]*ResultCell[model.Package]{}
		var order []string
		seen := map[string]bool{}

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0: // request a package
				name := rapid.StringMatching(`pkg[0-9]{1,2}`).Draw(t, "name")
				if q.Tracks(name) {
					before := q.PendingCount()
					q.Enqueue(name, model.Formula)
					if q.PendingCount() != before {
						t.Fatalf("tracked package %q was enqueued again", name)
					}
					continue
				}
				if q.CanAdmitMore() {
					cell := NewResultCell[model.Package]()
					cells[name] = cell
					q.launch(name, model.Formula, cell, nil)
				} else {
					q.Enqueue(name, model.Formula)
					order = append(order, name)
				}
				seen[name] = true

			case 1: // replenish from pending
				room := maxConcurrent - q.InFlightCount()
				batch := q.DrainPending(room)
				if len(batch) > room {
					t.Fatalf("drained %d with room for %d", len(batch), room)
				}
				for _, p := range batch {
					if p.name != order[0] {
						t.Fatalf("drain order: got %q, want %q", p.name, order[0])
					}
					order = order[1:]
					cell := NewResultCell[model.Package]()
					cells[p.name] = cell
					q.launch(p.name, p.ptype, cell, nil)
				}

			case 2: // complete one in-flight lookup
				for name, cell := range cells {
					if !q.IsLoading(name) {
						continue
					}
					cell.Put(model.NewPackage(name, model.Formula))
					var res TaskResult
					q.PollAll(&res)
					if _, ok := res.PackageInfo[name]; !ok {
						t.Fatalf("completed lookup %q did not surface", name)
					}
					break
				}
			}

			if q.InFlightCount() > maxConcurrent {
				t.Fatalf("in-flight %d exceeds bound %d", q.InFlightCount(), maxConcurrent)
			}
			if q.PendingCount() != len(order) {
				t.Fatalf("pending count %d does not match model %d", q.PendingCount(), len(order))
			}
		}
	})
}
