package testing

import (
	"fmt"

	"github.com/matter2mqtt/pairui/pkg/dom"
)

// Tap dispatches a click at the first element matched by finder.
func (t *Tester) Tap(finder Finder) error {
	result := t.Find(finder)
	if !result.Exists() {
		return fmt.Errorf("Tap: finder matched no elements: %s", finder.Description())
	}
	t.TapElement(result.First())
	return nil
}

// TapElement dispatches a click at el and pumps the loop.
func (t *Tester) TapElement(el *dom.Element) bool {
	ok := Click(el)
	t.Pump()
	return ok
}

// PressKey dispatches a keydown for key at the focused element, or the body
// when nothing has focus, and pumps the loop.
func (t *Tester) PressKey(key string) bool {
	return t.press(&dom.Event{Type: "keydown", Key: key})
}

// PressShiftKey is PressKey with Shift held.
func (t *Tester) PressShiftKey(key string) bool {
	return t.press(&dom.Event{Type: "keydown", Key: key, Shift: true})
}

func (t *Tester) press(ev *dom.Event) bool {
	target := t.Doc.ActiveElement()
	if target == nil {
		target = t.Doc.Body()
	}
	ok := target.Dispatch(ev)
	t.Pump()
	return ok
}

// EnterText sets the value attribute of the first element matched by finder
// and dispatches an input event carrying the new value.
func (t *Tester) EnterText(finder Finder, value string) error {
	result := t.Find(finder)
	if !result.Exists() {
		return fmt.Errorf("EnterText: finder matched no elements: %s", finder.Description())
	}
	el := result.First()
	el.SetAttr("value", value)
	name, _ := el.Attr("name")
	el.Dispatch(&dom.Event{Type: "input", Values: map[string]string{name: value}})
	t.Pump()
	return nil
}

// Submit dispatches a submit event at the first form matched by finder. The
// event carries the current value of every named control in the form,
// overridden by values.
func (t *Tester) Submit(finder Finder, values map[string]string) (*dom.Event, error) {
	result := t.Find(finder)
	if !result.Exists() {
		return nil, fmt.Errorf("Submit: finder matched no elements: %s", finder.Description())
	}
	ev := Submit(result.First(), values)
	t.Pump()
	return ev, nil
}

// FormValues collects the value of every named input, select and textarea
// inside form.
func FormValues(form *dom.Element) map[string]string {
	values := make(map[string]string)
	for _, el := range form.QueryAll("input[name], select[name], textarea[name]") {
		name, _ := el.Attr("name")
		values[name] = el.Value()
	}
	return values
}

// Click dispatches a click at el. It reports whether the default action was
// left intact.
func Click(el *dom.Element) bool {
	return el.Dispatch(&dom.Event{Type: "click"})
}

// KeyDown dispatches a keydown for key at el.
func KeyDown(el *dom.Element, key string) bool {
	return el.Dispatch(&dom.Event{Type: "keydown", Key: key})
}

// Submit dispatches a submit event at form carrying the form's values,
// overridden by values, and returns the event.
func Submit(form *dom.Element, values map[string]string) *dom.Event {
	ev := &dom.Event{Type: "submit", Values: FormValues(form)}
	for k, v := range values {
		ev.Values[k] = v
	}
	form.Dispatch(ev)
	return ev
}
