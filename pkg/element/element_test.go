package element

import (
	"strings"
	"testing"
)

func Counter(props Props) *Element {
	return CreateElement("span", nil, props["start"])
}

func Label(props Props) *Element {
	return CreateElement("label", nil)
}

func TestCreateElementWrapsPrimitives(t *testing.T) {
	el := CreateElement("div", nil, "hello", 42, 3.5, uint8(7))

	children := el.Props.Children()
	if len(children) != 4 {
		t.Fatalf("len(children) = %d, want 4", len(children))
	}
	want := []any{"hello", 42, 3.5, uint8(7)}
	for i, child := range children {
		if !child.IsText() {
			t.Errorf("child %d is %v, want text element", i, child)
			continue
		}
		if got := child.Props[NodeValueKey]; got != want[i] {
			t.Errorf("child %d nodeValue = %v, want %v", i, got, want[i])
		}
		if len(child.Props.Children()) != 0 {
			t.Errorf("text child %d should have no children", i)
		}
	}
}

func TestCreateElementHolesKeepPosition(t *testing.T) {
	el := CreateElement("ul", nil,
		CreateElement("li", nil, "a"),
		nil,
		false,
		CreateElement("li", nil, "b"),
	)

	children := el.Props.Children()
	if len(children) != 4 {
		t.Fatalf("len(children) = %d, want 4", len(children))
	}
	if children[1] != nil || children[2] != nil {
		t.Error("nil and bool children should be positional holes")
	}
	if children[3].Tag() != "li" {
		t.Errorf("children[3] = %v, want <li>", children[3])
	}
}

func TestCreateElementFlattensSlices(t *testing.T) {
	items := []*Element{
		CreateElement("li", nil, "1"),
		CreateElement("li", nil, "2"),
	}
	el := CreateElement("ul", nil, items, []any{"tail", 3})

	children := el.Props.Children()
	if len(children) != 4 {
		t.Fatalf("len(children) = %d, want 4", len(children))
	}
	if !children[2].IsText() || children[2].Props[NodeValueKey] != "tail" {
		t.Errorf("children[2] = %v, want text tail", children[2])
	}
}

func TestCreateElementCopiesProps(t *testing.T) {
	props := Props{"id": "main", ChildrenKey: []*Element{Text("ignored")}}
	el := CreateElement("div", props, "kept")

	if _, ok := props["nodeValue"]; ok {
		t.Fatal("caller props must not be modified")
	}
	props["id"] = "changed"
	if el.Props["id"] != "main" {
		t.Errorf("element props alias the caller map: id = %v", el.Props["id"])
	}
	children := el.Props.Children()
	if len(children) != 1 || children[0].Props[NodeValueKey] != "kept" {
		t.Errorf("children = %v, want only the variadic child", children)
	}
}

func TestCreateElementIgnoresUnknownChildren(t *testing.T) {
	el := CreateElement("div", nil, struct{}{}, "x")
	if n := len(el.Props.Children()); n != 1 {
		t.Errorf("len(children) = %d, want 1", n)
	}
}

func TestElementAccessors(t *testing.T) {
	comp := CreateElement(Counter, Props{"start": 1})
	if comp.Component() == nil {
		t.Error("Component() should return the component function")
	}
	if comp.Tag() != "" {
		t.Errorf("Tag() = %q, want empty for components", comp.Tag())
	}
	if !strings.HasSuffix(comp.String(), "Counter>") {
		t.Errorf("String() = %q, want component name", comp.String())
	}

	host := H("div", nil)
	if host.Tag() != "div" || host.Component() != nil {
		t.Errorf("host accessors: tag=%q comp=%v", host.Tag(), host.Component() != nil)
	}
	if host.String() != "<div>" {
		t.Errorf("String() = %q, want <div>", host.String())
	}

	var nilEl *Element
	if nilEl.IsText() || nilEl.Tag() != "" || nilEl.Component() != nil || nilEl.String() != "<nil>" {
		t.Error("nil element accessors should be safe")
	}
}

func TestValidType(t *testing.T) {
	var nilComp Component
	tests := []struct {
		name string
		typ  any
		want bool
	}{
		{"tag", "div", true},
		{"text", TextType, true},
		{"component", Counter, true},
		{"named component", Component(Counter), true},
		{"empty tag", "", false},
		{"nil", nil, false},
		{"nil component", nilComp, false},
		{"int", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidType(tt.typ); got != tt.want {
				t.Errorf("ValidType(%v) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestEventName(t *testing.T) {
	tests := []struct {
		key    string
		event  string
		isProp bool
	}{
		{"onClick", "click", true},
		{"onclick", "click", true},
		{"onMouseDown", "mousedown", true},
		{"on", "", false},
		{"one", "e", true},
		{"class", "", false},
		{"children", "", false},
		{"OnClick", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			event, ok := EventName(tt.key)
			if ok != tt.isProp || event != tt.event {
				t.Errorf("EventName(%q) = (%q, %v), want (%q, %v)", tt.key, event, ok, tt.event, tt.isProp)
			}
			if IsEventProp(tt.key) != tt.isProp {
				t.Errorf("IsEventProp(%q) = %v", tt.key, !tt.isProp)
			}
		})
	}
}

func TestEventProp(t *testing.T) {
	if got := EventProp("click"); got != "onClick" {
		t.Errorf("EventProp(click) = %q", got)
	}
	if got := OnInput(); got != "onInput" {
		t.Errorf("OnInput() = %q", got)
	}
	if got := EventProp(""); got != "" {
		t.Errorf("EventProp(\"\") = %q", got)
	}
	event, _ := EventName(OnSubmit())
	if event != "submit" {
		t.Errorf("round trip = %q, want submit", event)
	}
}
