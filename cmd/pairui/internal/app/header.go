package app

import (
	"strings"

	"github.com/matter2mqtt/pairui/pkg/dom"
	"github.com/matter2mqtt/pairui/pkg/effect"
	"github.com/matter2mqtt/pairui/pkg/mount"
)

const powerIcon = `<svg xmlns="http://www.w3.org/2000/svg" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor" class="size-6">` +
	`<path stroke-linecap="round" stroke-linejoin="round" d="M5.636 5.636a9 9 0 1 0 12.728 0M12 3v9" /></svg>`

func headerComponent(a *App, current Page) mount.Component {
	var b strings.Builder
	b.WriteString(`<header><div class="header-main"><h1>matter2mqtt</h1>`)
	b.WriteString(`<button class="toggle-button" data-action="toggle-theme" title="Toggle light/dark theme">` + powerIcon + `</button>`)
	b.WriteString(`</div><nav class="breadcrumb">`)
	b.WriteString(`<a href="#" data-page="` + string(PageHome) + `">` + PageHome.Title() + `</a>`)
	if current != PageHome {
		b.WriteString(`<span class="breadcrumb-separator">/</span>`)
		b.WriteString(`<span class="breadcrumb-current">` + dom.Escape(current.Title()) + `</span>`)
	}
	b.WriteString(`</nav></header>`)

	return mount.Component{
		Markup: b.String(),
		Bindings: []mount.Binding{
			mount.On(`[data-action="toggle-theme"]`, "click", func(ev *dom.Event) effect.Effect {
				ev.PreventDefault()
				toggleClass(a.doc.Body(), "light")
				return effect.None
			}),
			mount.On(`[data-page]`, "click", func(ev *dom.Event) effect.Effect {
				ev.PreventDefault()
				if link := ev.Target.Closest("[data-page]"); link != nil {
					a.Navigate(Page(link.Data("page")))
				}
				return effect.None
			}),
		},
	}
}

// toggleClass adds cls to el's class list, or removes it when present.
func toggleClass(el *dom.Element, cls string) {
	current, _ := el.Attr("class")
	fields := strings.Fields(current)
	out := fields[:0]
	found := false
	for _, f := range fields {
		if f == cls {
			found = true
			continue
		}
		out = append(out, f)
	}
	if !found {
		out = append(out, cls)
	}
	if len(out) == 0 {
		el.RemoveAttr("class")
		return
	}
	el.SetAttr("class", strings.Join(out, " "))
}
