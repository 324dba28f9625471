// Package uilayout checks UI layout markup made of many cooperating files.
//
// A Workspace binds layout documents into one namespace, where files may
// extend or override each other's frames, and checks every document against
// the schema catalogue and the merged frame hierarchy.
package uilayout

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jacoelho/uilayout/errors"
	"github.com/jacoelho/uilayout/internal/check"
	"github.com/jacoelho/uilayout/internal/desc"
	"github.com/jacoelho/uilayout/internal/hierarchy"
	"github.com/jacoelho/uilayout/internal/markup"
	"github.com/jacoelho/uilayout/internal/schema"
	"github.com/jacoelho/uilayout/internal/selector"
)

// Workspace is a set of bound layout documents. It is safe for concurrent
// use; bind, unbind and check calls are serialized.
type Workspace struct {
	reg     *schema.Registry
	idx     *desc.Index
	nav     *hierarchy.Navigator
	checker *check.Checker
	docs    map[string]*document
	opts    resolvedOptions
	mu      sync.Mutex
}

// document is a bound layout with the diagnostics found while parsing and
// binding it.
type document struct {
	doc    *markup.Document
	syntax errors.List
}

// New returns an empty workspace configured by opts.
func New(opts Options) (*Workspace, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	idx := desc.NewIndex(desc.Config{ReportUnbindable: resolved.reportUnbindable})
	nav := hierarchy.NewNavigator(hierarchy.NewBuilder(idx, resolved.registry), resolved.rootFile)
	return &Workspace{
		reg:     resolved.registry,
		idx:     idx,
		nav:     nav,
		checker: check.New(nav),
		docs:    make(map[string]*document),
		opts:    resolved,
	}, nil
}

// Bind parses text and binds it under uri, replacing any document already
// bound there, which keeps its load position. It returns the markup syntax
// diagnostics; the document is bound with whatever could be parsed.
func (w *Workspace) Bind(uri, text string) errors.List {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bind(uri, text)
}

func (w *Workspace) bind(uri, text string) errors.List {
	doc, syntax := markup.Parse(uri, text, w.reg)
	w.docs[uri] = &document{doc: doc, syntax: syntax}
	w.idx.Bind(doc)
	return syntax
}

// Unbind removes the document bound under uri and reports whether there
// was one.
func (w *Workspace) Unbind(uri string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.docs[uri]
	if !ok {
		return false
	}
	w.idx.Unbind(d.doc)
	delete(w.docs, uri)
	return true
}

// Clear unbinds every document.
func (w *Workspace) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.idx.Clear()
	clear(w.docs)
}

// Documents returns the bound URIs, sorted.
func (w *Workspace) Documents() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	uris := make([]string, 0, len(w.docs))
	for uri := range w.docs {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	return uris
}

// Check returns every diagnostic of the document bound under uri: markup
// syntax, namespace binding and semantic checks, in that order.
func (w *Workspace) Check(uri string) (errors.List, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.docs[uri]
	if !ok {
		return nil, fmt.Errorf("check %s: document not bound", uri)
	}
	return w.check(d), nil
}

func (w *Workspace) check(d *document) errors.List {
	var out errors.List
	out = append(out, d.syntax...)
	out = append(out, w.idx.BindDiagnostics(d.doc.URI)...)
	out = append(out, w.checker.CheckFile(d.doc)...)
	return out
}

// CheckAll checks every bound document and aggregates the results in URI
// order.
func (w *Workspace) CheckAll() errors.Summary {
	uris := w.Documents()
	w.mu.Lock()
	defer w.mu.Unlock()
	var summary errors.Summary
	for _, uri := range uris {
		d, ok := w.docs[uri]
		if !ok {
			continue
		}
		summary.Add(errors.NewFileReport(uri, d.doc.Text, w.check(d)))
	}
	return summary
}

// ResolvePath resolves a selector path from the frame named by the slash
// separated descriptor path from, for example "GameUI/WorldPanel". It
// returns the descriptor path of the target frame.
func (w *Workspace) ResolvePath(from, expr string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	res := w.idx.Lookup(from)
	if !res.Resolved() {
		return "", false
	}
	id, ok := w.nav.Builder().NodeForDesc(res.Desc)
	if !ok {
		return "", false
	}
	path, diags := selector.ParsePath(expr)
	if len(diags) > 0 {
		return "", false
	}
	sel := w.nav.ResolveSelection(id, path.Fragments)
	if !sel.Resolved() {
		return "", false
	}
	n, _ := w.nav.Builder().Node(sel.Target)
	return n.MainDesc.FQN(), true
}

// Constant returns the literal value constant name resolves to after
// following references to other constants.
func (w *Workspace) Constant(name string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	chain, err := w.idx.ResolveConstantDeep(name)
	if err != nil || !chain.Resolved {
		return "", false
	}
	return chain.Value, true
}
