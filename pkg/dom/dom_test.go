package dom

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

func newTestDocument(t *testing.T, body string) *Document {
	t.Helper()
	doc, err := Parse("<!DOCTYPE html><html><head></head><body>" + body + "</body></html>")
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestSelect_FailsLoudly(t *testing.T) {
	doc := newTestDocument(t, `<div id="app"></div>`)

	if _, err := doc.Select("#app"); err != nil {
		t.Fatalf("Select(#app) error = %v", err)
	}

	_, err := doc.Select("#missing")
	var sel *errors.SelectionError
	if !stderrors.As(err, &sel) {
		t.Fatalf("expected SelectionError, got %v", err)
	}
	if sel.Selector != "#missing" {
		t.Errorf("Selector = %q, want %q", sel.Selector, "#missing")
	}

	if _, err := doc.SelectAll(".none"); !stderrors.As(err, &sel) {
		t.Errorf("SelectAll should fail with SelectionError, got %v", err)
	}
	if _, err := doc.SelectByID("nope"); !stderrors.As(err, &sel) {
		t.Errorf("SelectByID should fail with SelectionError, got %v", err)
	}
}

func TestSelect_InvalidSelector(t *testing.T) {
	doc := NewDocument()
	if _, err := doc.Select("[[["); err == nil {
		t.Error("expected error for invalid selector")
	}
	if doc.Body().Query("[[[") != nil {
		t.Error("invalid selector should match nothing")
	}
}

func TestClosestAndContains(t *testing.T) {
	doc := newTestDocument(t, `<div id="outer"><button data-action="close"><svg><path id="icon"></path></svg></button></div><p id="other"></p>`)

	icon, _ := doc.SelectByID("icon")
	outer, _ := doc.SelectByID("outer")
	other, _ := doc.SelectByID("other")

	btn := icon.Closest(`[data-action="close"]`)
	if btn == nil || btn.Tag() != "button" {
		t.Fatalf("Closest returned %v, want button", btn)
	}
	if !icon.Closest("#icon").Same(icon) {
		t.Error("Closest should include the element itself")
	}
	if !outer.Contains(icon) {
		t.Error("outer should contain icon")
	}
	if !outer.Contains(outer) {
		t.Error("Contains should be inclusive")
	}
	if outer.Contains(other) {
		t.Error("outer should not contain sibling")
	}
}

func TestSetInnerHTML_ReplacesContent(t *testing.T) {
	doc := newTestDocument(t, `<div id="app"><p>old</p></div>`)
	app, _ := doc.SelectByID("app")

	if err := app.SetInnerHTML(`<span class="a">one</span><span class="b">two</span>`); err != nil {
		t.Fatal(err)
	}
	if app.Query("p") != nil {
		t.Error("old content should be gone")
	}
	if got := len(app.QueryAll("span")); got != 2 {
		t.Errorf("span count = %d, want 2", got)
	}
	if got := app.Text(); got != "onetwo" {
		t.Errorf("Text() = %q, want %q", got, "onetwo")
	}
	if !strings.Contains(app.InnerHTML(), `class="b"`) {
		t.Errorf("InnerHTML() = %q", app.InnerHTML())
	}
}

func TestRemove_ClearsFocus(t *testing.T) {
	doc := newTestDocument(t, `<div id="box"><input id="field"></div>`)
	field, _ := doc.SelectByID("field")
	box, _ := doc.SelectByID("box")

	field.Focus()
	if !doc.ActiveElement().Same(field) {
		t.Fatal("field should be focused")
	}
	box.Remove()
	if box.IsConnected() {
		t.Error("box should be detached")
	}
	if doc.ActiveElement() != nil {
		t.Error("focus should be cleared when the focused subtree is removed")
	}
}

func TestDispatch_BubblesToAncestors(t *testing.T) {
	doc := newTestDocument(t, `<div id="outer"><button id="btn">go</button></div>`)
	btn, _ := doc.SelectByID("btn")
	outer, _ := doc.SelectByID("outer")

	var order []string
	btn.AddEventListener("click", func(ev *Event) { order = append(order, "btn") })
	outer.AddEventListener("click", func(ev *Event) { order = append(order, "outer") })
	doc.Body().AddEventListener("click", func(ev *Event) {
		order = append(order, "body")
		if !ev.Target.Same(btn) {
			t.Error("Target should be the dispatch target")
		}
	})

	btn.Dispatch(&Event{Type: "click"})
	if got := strings.Join(order, ","); got != "btn,outer,body" {
		t.Errorf("order = %q, want btn,outer,body", got)
	}
}

func TestAddEventListener_Remove(t *testing.T) {
	doc := NewDocument()
	body := doc.Body()

	calls := 0
	remove := body.AddEventListener("keydown", func(*Event) { calls++ })
	if got := doc.ListenerCount(body, "keydown"); got != 1 {
		t.Fatalf("ListenerCount = %d, want 1", got)
	}
	body.Dispatch(&Event{Type: "keydown", Key: "a"})
	remove()
	remove()
	body.Dispatch(&Event{Type: "keydown", Key: "b"})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if got := doc.ListenerCount(body, "keydown"); got != 0 {
		t.Errorf("ListenerCount after remove = %d, want 0", got)
	}
}

func TestPreventDefault(t *testing.T) {
	doc := NewDocument()
	doc.Body().AddEventListener("submit", func(ev *Event) { ev.PreventDefault() })
	if doc.Body().Dispatch(&Event{Type: "submit"}) {
		t.Error("Dispatch should report a prevented default")
	}
}

func TestModal(t *testing.T) {
	doc := newTestDocument(t, `<dialog id="d"></dialog>`)
	d, _ := doc.SelectByID("d")

	d.ShowModal()
	if !d.IsOpen() {
		t.Error("dialog should be open")
	}
	d.CloseModal()
	if d.IsOpen() {
		t.Error("dialog should be closed")
	}
}

func TestEscape(t *testing.T) {
	if got, want := Escape(`<b>"x"</b>`), "&lt;b&gt;&#34;x&#34;&lt;/b&gt;"; got != want {
		t.Errorf("Escape = %q, want %q", got, want)
	}
}
