package focus

import (
	"testing"

	"github.com/matter2mqtt/pairui/pkg/dom"
)

func parse(t *testing.T, body string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse("<html><body>" + body + "</body></html>")
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestRequestFirst(t *testing.T) {
	doc := parse(t, `<div id="s">
		<p>text</p>
		<input type="hidden" name="h">
		<button disabled>off</button>
		<select name="a"><option>1</option></select>
		<input name="b">
	</div>`)
	scope := doc.MustSelect("#s")

	if !RequestFirst(scope) {
		t.Fatal("expected focus to move")
	}
	if got := doc.ActiveElement(); got == nil || got.Tag() != "select" {
		t.Errorf("active = %v, want the select", got)
	}
}

func TestRequestFirst_NothingFocusable(t *testing.T) {
	doc := parse(t, `<div id="s"><p>nothing here</p></div>`)
	if RequestFirst(doc.MustSelect("#s")) {
		t.Error("RequestFirst should report false")
	}
	if doc.ActiveElement() != nil {
		t.Error("focus should be unchanged")
	}
	if First(nil) != nil {
		t.Error("First(nil) should be nil")
	}
}

func TestMove_Wraps(t *testing.T) {
	doc := parse(t, `<div id="s"><input id="a"><input id="b"><button id="c">c</button></div>`)
	scope := doc.MustSelect("#s")

	tests := []struct {
		delta int
		want  string
	}{
		{1, "a"},
		{1, "b"},
		{1, "c"},
		{1, "a"},
		{-1, "c"},
	}
	for i, tt := range tests {
		Move(scope, tt.delta)
		if got := doc.ActiveElement(); got == nil || got.ID() != tt.want {
			t.Fatalf("step %d: active = %v, want #%s", i, got, tt.want)
		}
	}
}

func TestMove_FromOutsideBackwards(t *testing.T) {
	doc := parse(t, `<input id="out"><div id="s"><input id="a"><input id="b"></div>`)
	doc.MustSelect("#out").Focus()

	if !Move(doc.MustSelect("#s"), -1) {
		t.Fatal("expected focus to move")
	}
	if got := doc.ActiveElement().ID(); got != "b" {
		t.Errorf("active = #%s, want #b", got)
	}
}
