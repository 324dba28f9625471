package desc

import (
	"slices"
	"strings"

	"github.com/jacoelho/uilayout/errors"
	"github.com/jacoelho/uilayout/internal/markup"
	"github.com/jacoelho/uilayout/internal/names"
	"github.com/jacoelho/uilayout/internal/schema"
)

// Config controls index policies.
type Config struct {
	// ReportUnbindable records a diagnostic for every declaration whose
	// namespace path cannot be computed. Such declarations are skipped
	// either way.
	ReportUnbindable bool
}

// Listener is notified after every mutation with the descriptors whose
// declarations changed, including detached ones. A nil slice means the
// whole namespace changed.
type Listener func(changed []*Desc)

// Index owns the namespace tree and the cross-cutting tables derived from
// bound documents. It is not safe for concurrent use.
type Index struct {
	root       *Desc
	docs       map[string]*document
	constants  *names.Map[*entry[string]]
	handles    *names.Map[*entry[*Desc]]
	templates  map[string]*entry[*Desc]
	listeners  []Listener
	cfg        Config
	nextSeq    int
	generation uint64
}

// document tracks what a bound document contributed so it can be unbound.
type document struct {
	doc      *markup.Document
	elements map[*markup.Element]*Desc
	files    []*Desc
	touched  []*Desc
	diags    errors.List
	seq      int
}

// entry is a table value contributed by one or more documents; the last
// contribution wins.
type entry[V any] struct {
	items []contribution[V]
}

type contribution[V any] struct {
	value V
	elem  *markup.Element
	uri   string
}

func (e *entry[V]) last() (contribution[V], bool) {
	if e == nil || len(e.items) == 0 {
		var zero contribution[V]
		return zero, false
	}
	return e.items[len(e.items)-1], true
}

func (e *entry[V]) drop(uri string) {
	out := e.items[:0]
	for _, it := range e.items {
		if it.uri != uri {
			out = append(out, it)
		}
	}
	e.items = out
}

// NewIndex returns an empty index.
func NewIndex(cfg Config) *Index {
	idx := &Index{cfg: cfg}
	idx.reset()
	return idx
}

func (idx *Index) reset() {
	idx.root = newDesc(nil, "", KindRoot)
	idx.docs = make(map[string]*document)
	idx.constants = names.New[*entry[string]]()
	idx.handles = names.New[*entry[*Desc]]()
	idx.templates = make(map[string]*entry[*Desc])
}

// Root returns the namespace root.
func (idx *Index) Root() *Desc {
	return idx.root
}

// Generation increases on every mutation.
func (idx *Index) Generation() uint64 {
	return idx.generation
}

// Subscribe registers a change listener.
func (idx *Index) Subscribe(l Listener) {
	idx.listeners = append(idx.listeners, l)
}

func (idx *Index) notify(changed []*Desc) {
	idx.generation++
	for _, l := range idx.listeners {
		l(changed)
	}
}

// Clear drops every bound document.
func (idx *Index) Clear() {
	idx.reset()
	idx.notify(nil)
}

// Documents returns the number of bound documents.
func (idx *Index) Documents() int {
	return len(idx.docs)
}

// Bind adds the declarations of doc to the namespace and returns its file
// descriptor. A document already bound under the same URI is replaced and
// keeps its load position. Bind returns nil when the document has no
// descriptor root element.
func (idx *Index) Bind(doc *markup.Document) *Desc {
	seq := -1
	if prev, ok := idx.docs[doc.URI]; ok {
		seq = prev.seq
		idx.Unbind(prev.doc)
	}
	if doc.Root == nil || doc.Root.Kind() != schema.ElementDesc {
		return nil
	}
	if seq < 0 {
		seq = idx.nextSeq
		idx.nextSeq++
	}

	st := &document{doc: doc, seq: seq, elements: make(map[*markup.Element]*Desc)}
	idx.docs[doc.URI] = st

	file, _ := idx.root.child(doc.Name(), KindFile)
	file.Kind = KindFile
	idx.declare(st, file, doc.Root, false)
	st.files = append(st.files, file)

	b := binder{idx: idx, st: st}
	for _, child := range doc.Root.Children {
		b.element(file, child)
	}
	idx.notify(st.touched)
	return file
}

// BindDiagnostics returns the diagnostics recorded while binding uri. They
// are only produced when Config.ReportUnbindable is set.
func (idx *Index) BindDiagnostics(uri string) errors.List {
	if st, ok := idx.docs[uri]; ok {
		return st.diags
	}
	return nil
}

// Unbind removes every declaration contributed by doc. Descriptors left
// without declarations or bound descendants are pruned.
func (idx *Index) Unbind(doc *markup.Document) {
	st, ok := idx.docs[doc.URI]
	if !ok {
		return
	}
	delete(idx.docs, doc.URI)
	uri := doc.URI

	changed := append([]*Desc(nil), st.touched...)
	removed := func(d *Desc) { changed = append(changed, d) }
	for _, file := range st.files {
		if file.detached {
			continue
		}
		file.removeDocument(uri, removed)
		if len(file.decls) == 0 && file.children.Len() == 0 {
			idx.root.children.Delete(file.Name)
			file.detach(removed)
		}
	}

	dropAll(idx.constants, uri)
	dropAll(idx.handles, uri)
	for key, e := range idx.templates {
		e.drop(uri)
		if len(e.items) == 0 {
			delete(idx.templates, key)
		}
	}
	idx.notify(changed)
}

func dropAll[V any](m *names.Map[*entry[V]], uri string) {
	for _, key := range m.Keys() {
		e, _ := m.GetExactCase(key)
		e.drop(uri)
		if len(e.items) == 0 {
			m.Delete(key)
		}
	}
}

// DescOf returns the descriptor an element of a bound document declares.
func (idx *Index) DescOf(elem *markup.Element) (*Desc, bool) {
	for _, st := range idx.docs {
		if d, ok := st.elements[elem]; ok {
			return d, true
		}
	}
	return nil, false
}

// DocumentDescs returns the descriptors declared by the document bound at uri.
func (idx *Index) DocumentDescs(uri string) map[*markup.Element]*Desc {
	if st, ok := idx.docs[uri]; ok {
		return st.elements
	}
	return nil
}

func (idx *Index) declare(st *document, d *Desc, elem *markup.Element, override bool) {
	d.addDecl(Decl{Element: elem, Document: st.doc, Override: override, seq: st.seq})
	st.elements[elem] = d
	st.touched = append(st.touched, d)
}

type binder struct {
	idx *Index
	st  *document
}

// element binds elem, declared under parent, and recurses into the
// children of name-bearing elements.
func (b binder) element(parent *Desc, elem *markup.Element) {
	switch elem.Kind() {
	case schema.ElementConstant:
		b.constant(elem)
		return
	case schema.ElementHandle:
		b.handle(parent, elem)
		return
	}
	kind, ok := KindOf(elem.Kind())
	if !ok || kind == KindFile {
		return
	}

	d, override, ok := b.locate(parent, elem, kind)
	if !ok {
		return
	}
	b.idx.declare(b.st, d, elem, override)
	if tpl, ok := elem.AttrValue("template"); ok && tpl != "" {
		b.template(tpl, d, elem)
	}
	for _, child := range elem.Children {
		b.element(d, child)
	}
}

// locate computes the descriptor elem contributes to, creating missing
// descriptors along the way.
func (b binder) locate(parent *Desc, elem *markup.Element, kind Kind) (*Desc, bool, bool) {
	nameAttr, ok := elem.Attr("name")
	if !ok || strings.TrimSpace(nameAttr.Value) == "" {
		b.unbindable(elem.Start, elem.TagEnd, "cannot determine the name of %s", elem.Name)
		return nil, false, false
	}
	segments := strings.Split(nameAttr.Value, "/")
	for _, s := range segments {
		if s == "" {
			b.unbindable(nameAttr.ValueStart, nameAttr.ValueEnd, "invalid name %q", nameAttr.Value)
			return nil, false, false
		}
	}

	override := false
	if fileName, ok := elem.AttrValue("file"); ok && fileName != "" {
		file, created := b.idx.root.child(fileName, KindFile)
		if created || !file.Bound() {
			file.Kind = KindFile
		}
		if !slices.Contains(b.st.files, file) {
			b.st.files = append(b.st.files, file)
		}
		parent = file
		override = file != b.st.files[0]
	}

	d := parent
	for i, s := range segments {
		k := KindFrame
		if i == len(segments)-1 {
			k = kind
		}
		next, created := d.child(s, k)
		if created || !next.Bound() {
			next.Kind = k
		}
		d = next
	}
	return d, override, true
}

func (b binder) unbindable(start, end int, format string, args ...any) {
	if !b.idx.cfg.ReportUnbindable {
		return
	}
	b.st.diags = append(b.st.diags, errors.Newf(errors.CategoryError, errors.CodeDescNotCreatable, start, end, format, args...))
}

func (b binder) constant(elem *markup.Element) {
	name, ok := elem.AttrValue("name")
	if !ok || name == "" {
		b.unbindable(elem.Start, elem.TagEnd, "constant without name")
		return
	}
	value, _ := elem.AttrValue("val")
	addEntry(b.idx.constants, name, contribution[string]{value: value, elem: elem, uri: b.st.doc.URI})
}

func (b binder) handle(parent *Desc, elem *markup.Element) {
	name, ok := elem.AttrValue("val")
	if !ok || name == "" || parent.Kind == KindFile {
		return
	}
	addEntry(b.idx.handles, name, contribution[*Desc]{value: parent, elem: elem, uri: b.st.doc.URI})
}

func (b binder) template(name string, user *Desc, elem *markup.Element) {
	key := strings.ToLower(strings.Trim(name, "/"))
	e, ok := b.idx.templates[key]
	if !ok {
		e = &entry[*Desc]{}
		b.idx.templates[key] = e
	}
	e.items = append(e.items, contribution[*Desc]{value: user, elem: elem, uri: b.st.doc.URI})
}

func addEntry[V any](m *names.Map[*entry[V]], name string, c contribution[V]) {
	e, _, match := m.Get(name)
	if !match.Found() {
		e = &entry[V]{}
		m.Set(name, e)
	}
	e.items = append(e.items, c)
}
