package hierarchy

import (
	"slices"

	"github.com/jacoelho/uilayout/internal/desc"
	"github.com/jacoelho/uilayout/internal/names"
	"github.com/jacoelho/uilayout/internal/schema"
)

// Builder owns a node arena built from an index. Top nodes are memoized per
// descriptor and dropped when the index reports a change at or below them.
// Slots of dropped nodes are reused, so a handle is only meaningful until the
// next index change. It is not safe for concurrent use.
type Builder struct {
	idx      *desc.Index
	reg      *schema.Registry
	nodes    []*Node
	released []NodeID
	top      map[*desc.Desc]NodeID
}

// NewBuilder returns a builder subscribed to idx changes.
func NewBuilder(idx *desc.Index, reg *schema.Registry) *Builder {
	b := &Builder{
		idx:   idx,
		reg:   reg,
		nodes: []*Node{nil},
		top:   make(map[*desc.Desc]NodeID),
	}
	idx.Subscribe(b.invalidate)
	return b
}

// Index returns the descriptor index the builder reads.
func (b *Builder) Index() *desc.Index {
	return b.idx
}

// Registry returns the schema registry used for frame types.
func (b *Builder) Registry() *schema.Registry {
	return b.reg
}

// Node returns the node addressed by id. Stale handles report false.
func (b *Builder) Node(id NodeID) (*Node, bool) {
	if id == 0 || int(id) >= len(b.nodes) || b.nodes[id] == nil {
		return nil, false
	}
	return b.nodes[id], true
}

// Live returns the number of nodes currently in the arena.
func (b *Builder) Live() int {
	n := 0
	for _, node := range b.nodes {
		if node != nil {
			n++
		}
	}
	return n
}

// BuildNodeFromDesc returns the memoized top node for d, building it when
// needed. It fails for detached or unbound descriptors and for file
// descriptors without a schema type.
func (b *Builder) BuildNodeFromDesc(d *desc.Desc) (NodeID, bool) {
	if d == nil || !d.Attached() || !d.Bound() || d.Kind == desc.KindRoot {
		return 0, false
	}
	if d.Kind == desc.KindFile && d.Type() == nil {
		return 0, false
	}
	if id, ok := b.top[d]; ok {
		if _, live := b.Node(id); live {
			return id, true
		}
	}
	id := b.newNode(0, d.Name, b.collect(d, nil))
	b.top[d] = id
	return id, true
}

// collect returns d preceded by its template chain, deepest template first.
// Templates already visited, enclosing d or nested in d are skipped.
func (b *Builder) collect(d *desc.Desc, seen []*desc.Desc) []*desc.Desc {
	if slices.Contains(seen, d) {
		return nil
	}
	seen = append(seen, d)
	var out []*desc.Desc
	if res, ok := b.idx.Template(d); ok && res.Resolved() {
		tpl := res.Desc
		if tpl != d && !tpl.IsAncestorOf(d) && !d.IsAncestorOf(tpl) && tpl.Bound() {
			out = append(out, b.collect(tpl, seen)...)
		}
	}
	return append(out, d)
}

func (b *Builder) newNode(parent NodeID, name string, descs []*desc.Desc) NodeID {
	id := NodeID(len(b.nodes))
	if last := len(b.released) - 1; last >= 0 {
		id = b.released[last]
		b.released = b.released[:last]
	}
	main := descs[len(descs)-1]
	n := &Node{
		ID:       id,
		Parent:   parent,
		Name:     name,
		MainDesc: main,
		Descs:    descs,
		Kind:     main.Kind,
		children: names.New[NodeID](),
	}
	newPayloads(n, b.reg)
	if int(id) == len(b.nodes) {
		b.nodes = append(b.nodes, n)
	} else {
		b.nodes[id] = n
	}
	return id
}

// Lookup reports a materialized child without expanding.
func (b *Builder) Lookup(id NodeID, name string) (NodeID, LookupState) {
	n, ok := b.Node(id)
	if !ok {
		return 0, ChildMissing
	}
	if child, _, match := n.children.Get(name); match.Found() {
		return child, ChildFound
	}
	if n.expanded {
		return 0, ChildMissing
	}
	return 0, ChildNotExpanded
}

// Child returns the child named name, materializing it when needed. match
// reports whether the name differs in case from the declaration.
func (b *Builder) Child(id NodeID, name string) (NodeID, names.Match) {
	n, ok := b.Node(id)
	if !ok || name == "" {
		return 0, names.MatchNone
	}
	if child, _, match := n.children.Get(name); match.Found() {
		return child, match
	}
	if n.expanded {
		return 0, names.MatchNone
	}
	return b.materialize(n, name)
}

// materialize merges the children named name of every descriptor of n into
// one child node.
func (b *Builder) materialize(n *Node, name string) (NodeID, names.Match) {
	var descs []*desc.Desc
	key := ""
	match := names.MatchNone
	for _, d := range n.Descs {
		c, k, m := d.Child(name)
		if !m.Found() || !c.Bound() {
			continue
		}
		if key == "" {
			key, match = k, m
		}
		for _, x := range b.collect(c, nil) {
			if !slices.Contains(descs, x) && !b.onChain(n.ID, x) {
				descs = append(descs, x)
			}
		}
	}
	if len(descs) == 0 {
		return 0, names.MatchNone
	}
	id := b.newNode(n.ID, key, descs)
	n.children.Set(key, id)
	return id, match
}

// onChain reports whether d is merged into id or one of its ancestors, which
// would make a template expand into itself.
func (b *Builder) onChain(id NodeID, d *desc.Desc) bool {
	for n, ok := b.Node(id); ok; n, ok = b.Node(n.Parent) {
		if slices.Contains(n.Descs, d) {
			return true
		}
	}
	return false
}

// childNames returns the merged child names of n in merge order.
func (b *Builder) childNames(n *Node) []string {
	seen := names.New[struct{}]()
	for _, d := range n.Descs {
		for c := range d.Children() {
			if c.Bound() && !seen.Has(c.Name) {
				seen.Set(c.Name, struct{}{})
			}
		}
	}
	return seen.Keys()
}

// expandAll materializes every direct child of n.
func (b *Builder) expandAll(n *Node) {
	if n.expanded {
		return
	}
	for _, name := range b.childNames(n) {
		if !n.children.Has(name) {
			b.materialize(n, name)
		}
	}
	n.expanded = true
}

// Expand materializes children of id. A nil hint expands the whole subtree;
// otherwise only the chain named by hint is expanded. Expansion is additive
// and repeating it has no effect.
func (b *Builder) Expand(id NodeID, hint []string) {
	n, ok := b.Node(id)
	if !ok {
		return
	}
	if hint == nil {
		b.expandAll(n)
		for _, child := range n.ChildIDs() {
			b.Expand(child, nil)
		}
		return
	}
	cur := id
	for _, name := range hint {
		next, match := b.Child(cur, name)
		if !match.Found() {
			return
		}
		cur = next
	}
}

// Children returns every child of id in merge order, expanding as needed.
func (b *Builder) Children(id NodeID) []NodeID {
	n, ok := b.Node(id)
	if !ok {
		return nil
	}
	b.expandAll(n)
	ids := make([]NodeID, 0, n.children.Len())
	for _, name := range b.childNames(n) {
		if child, _, match := n.children.Get(name); match.Found() {
			ids = append(ids, child)
		}
	}
	return ids
}

// ContextOfDesc returns the top node of the file d belongs to.
func (b *Builder) ContextOfDesc(d *desc.Desc) (NodeID, bool) {
	if d == nil || !d.Attached() {
		return 0, false
	}
	file := d.File()
	if file == nil {
		return 0, false
	}
	return b.BuildNodeFromDesc(file)
}

// NodeForDesc returns the node materializing d inside its file context.
func (b *Builder) NodeForDesc(d *desc.Desc) (NodeID, bool) {
	ctx, ok := b.ContextOfDesc(d)
	if !ok {
		return 0, false
	}
	cur := ctx
	path := d.Path()
	for _, name := range path[1:] {
		next, match := b.Child(cur, name)
		if !match.Found() {
			return 0, false
		}
		cur = next
	}
	return cur, true
}

// invalidate drops memoized top nodes affected by changed descriptors:
// the descriptors themselves, their ancestors and, transitively, every user
// of an affected template.
func (b *Builder) invalidate(changed []*desc.Desc) {
	if changed == nil {
		b.nodes = []*Node{nil}
		b.released = nil
		clear(b.top)
		return
	}
	affected := make(map[*desc.Desc]bool)
	queue := slices.Clone(changed)
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		for c := d; c != nil; c = c.Parent() {
			if affected[c] {
				break
			}
			affected[c] = true
			queue = append(queue, b.idx.TemplateUsers(c)...)
		}
	}
	for d, id := range b.top {
		if affected[d] {
			b.free(id)
			delete(b.top, d)
		}
	}
}

func (b *Builder) free(id NodeID) {
	n, ok := b.Node(id)
	if !ok {
		return
	}
	for child := range n.children.Values() {
		b.free(child)
	}
	b.nodes[id] = nil
	b.released = append(b.released, id)
}
