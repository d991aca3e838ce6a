// Package dom provides the in-memory document the runtime mounts into.
//
// A Document is an HTML tree parsed with golang.org/x/net/html. Elements are
// queried with CSS selectors compiled by cascadia. The package offers the
// small capability set the runtime relies on:
//
//   - selection that fails loudly (Select, SelectAll, SelectByID)
//   - containment, matching and closest-ancestor lookups for delegation
//   - wholesale markup replacement (SetInnerHTML) and appending (AppendHTML)
//   - listener attachment with bubbling dispatch
//   - native modal open/close and focus
//
// The document is not safe for concurrent use. All access happens on the UI
// loop (see package platform).
package dom
