// Package testing provides a harness for testing mounted components.
//
// # Quick Start
//
// Create a tester with some body markup, mount a component and interact:
//
//	func TestCounter(t *testing.T) {
//	    tester := pairtest.NewTesterWithT(t, `<div id="app"></div>`)
//	    tester.Mount("#app", counter(0))
//
//	    tester.Tap(pairtest.BySelector("button"))
//	    tester.Settle(time.Second)
//
//	    if !tester.Find(pairtest.ByText("1")).Exists() {
//	        t.Error("expected count to be 1")
//	    }
//	}
//
// The test goroutine plays the UI loop. Effects run on their own goroutines
// and hand results back with Loop.Dispatch; Pump and Settle drain that work.
//
// # Snapshot Testing
//
// Capture and compare element tree snapshots:
//
//	snapshot := tester.CaptureSnapshot("#app")
//	snapshot.MatchesFile(t, "testdata/counter.snapshot.json")
//
// Update snapshots with:
//
//	PAIRUI_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Time
//
// Delayed work scheduled through the FakeClock fires only when the test
// advances it:
//
//	tester.Clock.Advance(3 * time.Second)
//
// # Import Alias
//
// This package is named "testing" which conflicts with the standard library.
// Use an alias:
//
//	import pairtest "github.com/matter2mqtt/pairui/pkg/testing"
package testing
