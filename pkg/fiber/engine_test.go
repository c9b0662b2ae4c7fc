package fiber

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/host"
	"github.com/vango-dev/mini/pkg/idle"
)

var h = element.H

func TestRenderCommitsTree(t *testing.T) {
	th := newHarness(t)
	th.render(t, h("div", element.Props{"id": "a"}, h("span", nil, "hello"), 42))

	if got, want := th.markup(), `<div id="a"><span>hello</span>42</div>`; got != want {
		t.Errorf("markup = %s, want %s", got, want)
	}
	if th.eng.State() != StateIdle {
		t.Errorf("State() = %s, want idle", th.eng.State())
	}
	if len(th.commits) != 1 || th.commits[0].Kind != PassRoot {
		t.Fatalf("commits = %+v, want one root commit", th.commits)
	}
	if got := th.commits[0].Placements; got != 4 {
		t.Errorf("Placements = %d, want 4", got)
	}
}

func TestRenderWithoutContainer(t *testing.T) {
	th := newHarness(t)
	err := th.eng.Render(nil, h("div", nil))
	if err == nil || err.Error() == "" {
		t.Fatal("Render(nil) should fail")
	}
	if th.eng.Busy() {
		t.Error("failed Render should not schedule a pass")
	}
}

func TestWorkLoopYieldsBetweenUnits(t *testing.T) {
	th := newHarness(t)
	// root, div, span, "a", span, "b"
	tree := h("div", nil, h("span", nil, "a"), h("span", nil, "b"))
	if err := th.eng.Render(th.container, tree); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 5; i++ {
		th.sched.Step(idle.Countdown(1))
		if len(th.container.Children) != 0 {
			t.Fatalf("host mutated after %d units: %s", i, th.markup())
		}
		if th.eng.State() != StateWorking {
			t.Fatalf("State() after %d units = %s, want working", i, th.eng.State())
		}
	}

	th.sched.Step(idle.Countdown(1))
	if got, want := th.markup(), "<div><span>a</span><span>b</span></div>"; got != want {
		t.Errorf("markup = %s, want %s", got, want)
	}
	if len(th.commits) != 1 || th.commits[0].Units != 6 {
		t.Errorf("commits = %+v, want one commit of 6 units", th.commits)
	}
}

func TestWorkLoopRespectsThreshold(t *testing.T) {
	th := newHarness(t, WithYieldThreshold(5*time.Millisecond))
	if err := th.eng.Render(th.container, h("p", nil)); err != nil {
		t.Fatal(err)
	}
	th.sched.Step(idle.DeadlineFunc(func() time.Duration { return time.Millisecond }))
	if !th.eng.Busy() || len(th.commits) != 0 {
		t.Fatal("work ran below the yield threshold")
	}
	th.flush()
	if len(th.commits) != 1 {
		t.Fatal("pass did not commit once time was available")
	}
}

func TestRenderReplacesPassInFlight(t *testing.T) {
	th := newHarness(t)
	if err := th.eng.Render(th.container, h("div", nil, "first")); err != nil {
		t.Fatal(err)
	}
	th.sched.Step(idle.Countdown(2))
	if err := th.eng.Render(th.container, h("div", nil, "second")); err != nil {
		t.Fatal(err)
	}
	th.flush()

	if got, want := th.markup(), "<div>second</div>"; got != want {
		t.Errorf("markup = %s, want %s", got, want)
	}
	if diff := cmp.Diff([]PassKind{PassRoot}, th.abandoned); diff != "" {
		t.Errorf("abandoned passes (-want +got):\n%s", diff)
	}
	if th.eng.LiveFibers() != countFibers(th.eng) {
		t.Errorf("LiveFibers() = %d, reachable = %d", th.eng.LiveFibers(), countFibers(th.eng))
	}
}

func TestRerenderUnchangedTreeIsIdempotent(t *testing.T) {
	tree := func() *element.Element {
		return h("div", element.Props{"id": "a", "onClick": noop},
			h("span", nil, "hello"),
			42,
			h("ul", nil, h("li", nil, "x"), h("li", nil, "y")),
		)
	}
	th := newHarness(t)
	th.render(t, tree())
	th.rec.Reset()

	th.render(t, tree())
	if n := len(th.rec.Mutations()); n != 0 {
		t.Errorf("re-render produced %d mutations: %v", n, th.rec.Mutations())
	}
}

func noop() {}

func TestSwappedChildrenAreReplacedNotMoved(t *testing.T) {
	th := newHarness(t)
	th.render(t, h("div", nil, h("span", nil, "A"), h("p", nil, "B")))
	th.rec.Reset()

	th.render(t, h("div", nil, h("p", nil, "B"), h("span", nil, "A")))

	if got, want := th.markup(), "<div><p>B</p><span>A</span></div>"; got != want {
		t.Errorf("markup = %s, want %s", got, want)
	}
	if got := th.rec.Count(host.OpRemove); got != 2 {
		t.Errorf("removals = %d, want 2", got)
	}
	// Each replacement creates an element and its text node.
	if got := th.rec.Count(host.OpCreate); got != 4 {
		t.Errorf("creations = %d, want 4", got)
	}
	if got := th.commits[len(th.commits)-1].Deletions; got != 2 {
		t.Errorf("Deletions = %d, want 2", got)
	}
}

func TestShorterChildListDeletesTail(t *testing.T) {
	th := newHarness(t)
	th.render(t, h("ul", nil, h("li", nil, "1"), h("li", nil, "2"), h("li", nil, "3")))
	th.render(t, h("ul", nil, h("li", nil, "1")))

	if got, want := th.markup(), "<ul><li>1</li></ul>"; got != want {
		t.Errorf("markup = %s, want %s", got, want)
	}
}

func TestNilChildIsHole(t *testing.T) {
	th := newHarness(t)
	th.render(t, h("div", nil, h("span", nil, "a"), h("p", nil, "b")))
	th.render(t, h("div", nil, h("span", nil, "a"), nil))

	if got, want := th.markup(), "<div><span>a</span></div>"; got != want {
		t.Errorf("markup = %s, want %s", got, want)
	}

	th.render(t, h("div", nil, false, h("span", nil, "a")))
	if got, want := th.markup(), "<div><span>a</span></div>"; got != want {
		t.Errorf("markup = %s, want %s", got, want)
	}
}

func TestPropsReconciliation(t *testing.T) {
	th := newHarness(t)
	th.render(t, h("button", element.Props{"class": "x", "onClick": handlerA, "title": "t"}))
	th.rec.Reset()

	th.render(t, h("button", element.Props{"onClick": handlerB, "title": "t2"}))

	var ops []string
	for _, m := range th.rec.Mutations() {
		ops = append(ops, m.String())
	}
	want := []string{"RemoveProp(class)", "Unlisten(click)", "Listen(click)", "SetProp(title=t2)"}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("mutations (-want +got):\n%s", diff)
	}

	btn := th.container.FindByType("button")
	if len(btn.Listeners("click")) != 1 {
		t.Fatalf("listeners = %d, want 1", len(btn.Listeners("click")))
	}

	th.rec.Reset()
	th.render(t, h("button", nil))
	if got := th.rec.Count(host.OpUnlisten); got != 1 {
		t.Errorf("unlistens = %d, want 1", got)
	}
	if got := th.rec.Count(host.OpRemoveProp); got != 1 {
		t.Errorf("prop removals = %d, want 1 (title)", got)
	}
	if len(btn.Events()) != 0 {
		t.Errorf("events still attached: %v", btn.Events())
	}
}

func handlerA() {}
func handlerB() {}

func TestTypeChangeReplacesSubtree(t *testing.T) {
	th := newHarness(t)
	th.render(t, h("div", nil, h("section", nil, h("p", nil, "deep"))))
	th.render(t, h("div", nil, h("article", nil, "flat")))

	if got, want := th.markup(), "<div><article>flat</article></div>"; got != want {
		t.Errorf("markup = %s, want %s", got, want)
	}
	if th.eng.LiveFibers() != countFibers(th.eng) {
		t.Errorf("LiveFibers() = %d, reachable = %d", th.eng.LiveFibers(), countFibers(th.eng))
	}
}

func TestInvalidElementTypePanics(t *testing.T) {
	th := newHarness(t)
	bad := &element.Element{Type: 42, Props: element.Props{}}
	if err := th.eng.Render(th.container, h("div", nil, bad)); err != nil {
		t.Fatal(err)
	}
	expectPanicCode(t, "E005", th.eng.Flush)

	if th.eng.Busy() {
		t.Error("panicking pass should be abandoned")
	}
	if len(th.container.Children) != 0 {
		t.Errorf("host mutated by failed pass: %s", th.markup())
	}
}

func TestMultipleEnginesAreIndependent(t *testing.T) {
	a := newHarness(t)
	b := newHarness(t)
	if err := a.eng.Render(a.container, h("p", nil, "a")); err != nil {
		t.Fatal(err)
	}
	b.render(t, h("p", nil, "b"))
	if a.markup() != "" {
		t.Errorf("engine a committed while b flushed: %s", a.markup())
	}
	a.flush()
	if a.markup() != "<p>a</p>" || b.markup() != "<p>b</p>" {
		t.Errorf("markup a=%s b=%s", a.markup(), b.markup())
	}
}

func TestWalkVisitsCommittedTree(t *testing.T) {
	th := newHarness(t)
	th.render(t, h("div", nil, h("span", nil, "x")))

	var names []string
	th.eng.Walk(func(f *Fiber, depth int) bool {
		names = append(names, strings.Repeat(" ", depth)+f.Name())
		return true
	})
	want := []string{"root", " div", "  span", "   #text"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("walk (-want +got):\n%s", diff)
	}
}

// countFibers counts fibers reachable in the committed tree.
func countFibers(e *Engine) int {
	n := 0
	e.Walk(func(*Fiber, int) bool {
		n++
		return true
	})
	return n
}

func TestStaleSiblingGuard(t *testing.T) {
	leaf := func(text string) element.Component {
		return func(element.Props) *element.Element { return h("p", nil, text) }
	}
	first, second := leaf("a"), leaf("b")
	th := newHarness(t)
	th.render(t, h("div", nil, element.CreateElement(first, nil), element.CreateElement(second, nil)))

	var src *Fiber
	th.eng.Walk(func(f *Fiber, _ int) bool {
		if src == nil && element.SameType(f.Type, first) {
			src = f
		}
		return true
	})
	if src == nil || src.sibling.IsZero() {
		t.Fatal("first component fiber or its sibling not found")
	}

	if th.eng.staleSiblingGuard(src.sibling) {
		t.Error("guard fired with no pass in flight")
	}

	root := th.eng.cloneForPass(src)
	th.eng.wipRoot = root.id
	defer func() { th.eng.wipRoot = ID{} }()

	if !th.eng.staleSiblingGuard(src.sibling) {
		t.Error("guard did not fire on the carried-over sibling")
	}
	if th.eng.staleSiblingGuard(root.child) {
		t.Error("guard fired on a unit inside the pass")
	}
	if th.eng.staleSiblingGuard(ID{}) {
		t.Error("guard fired on the zero ID")
	}
	if next := th.eng.nextUnitOf(root); next != root.child {
		t.Errorf("nextUnitOf(root) = %s, want its child %s", next, root.child)
	}
}

func TestMiddleTypeChangeAppendsReplacement(t *testing.T) {
	th := newHarness(t)
	th.render(t, h("ul", nil, h("a", nil), h("b", nil), h("c", nil)))
	th.render(t, h("ul", nil, h("a", nil), h("x", nil), h("c", nil)))

	// Placements append, so the replacement lands after its unchanged
	// siblings rather than in the middle.
	if got, want := th.markup(), "<ul><a></a><c></c><x></x></ul>"; got != want {
		t.Errorf("markup = %s, want %s", got, want)
	}
}
