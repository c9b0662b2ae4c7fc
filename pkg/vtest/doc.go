// Package vtest provides testing helpers for mini components.
//
// A Harness mounts an element into an in-memory host driven by the manual
// idle scheduler, so tests control exactly when work happens.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.Mount(t, mini.CreateElement(Counter, nil))
//	    vtest.ExpectMarkup(t, h, "<button>0</button>")
//
//	    h.Click("button")
//	    h.Flush()
//	    vtest.ExpectContains(t, h, ">1<")
//	}
//
// # Interrupted Passes
//
// StepUnits runs one idle period that allows n units of work, which makes
// it easy to observe a pass that has not committed yet:
//
//	h.Render(next)
//	h.StepUnits(2)
//	vtest.ExpectMarkup(t, h, before) // nothing committed mid-pass
//
// # Render Assertions
//
// Assert on the committed host tree:
//
//	vtest.ExpectContains(t, h, "foo")
//	vtest.ExpectNotContains(t, h, "Error")
//	vtest.ExpectElement(t, h, "button")
//	vtest.ExpectAttribute(t, h, "class", "btn-primary")
package vtest
