// Package hierarchy materializes UI node graphs from descriptors and
// resolves selector paths against them.
package hierarchy

import (
	"github.com/jacoelho/uilayout/internal/desc"
	"github.com/jacoelho/uilayout/internal/markup"
	"github.com/jacoelho/uilayout/internal/names"
	"github.com/jacoelho/uilayout/internal/schema"
)

// NodeID addresses a node in a Builder arena. The zero value is invalid.
type NodeID uint32

// LookupState distinguishes an unexpanded child from a missing one.
type LookupState uint8

const (
	// ChildNotExpanded reports that the parent has not materialized its
	// children yet, so absence proves nothing.
	ChildNotExpanded LookupState = iota
	// ChildMissing reports that the fully expanded parent has no such child.
	ChildMissing
	// ChildFound reports a materialized child.
	ChildFound
)

// Node is a materialized descriptor with every contributing descriptor
// merged in. Exactly one payload is set for frame, animation and state
// group nodes.
type Node struct {
	children *names.Map[NodeID]
	MainDesc *desc.Desc
	// Descs lists the merged descriptors, template descriptors first and
	// MainDesc last.
	Descs      []*desc.Desc
	Frame      *FramePayload
	Animation  *AnimationPayload
	StateGroup *StateGroupPayload
	Name       string
	ID         NodeID
	Parent     NodeID
	Kind       desc.Kind
	expanded   bool
}

// Expanded reports whether every child has been materialized.
func (n *Node) Expanded() bool {
	return n.expanded
}

// ChildIDs returns the materialized children in merge order.
func (n *Node) ChildIDs() []NodeID {
	out := make([]NodeID, 0, n.children.Len())
	for id := range n.children.Values() {
		out = append(out, id)
	}
	return out
}

// Decls returns every declaration of every merged descriptor in merge
// order.
func (n *Node) Decls() []desc.Decl {
	var out []desc.Decl
	for _, d := range n.Descs {
		out = append(out, d.Decls()...)
	}
	return out
}

// FramePayload is the frame specific state of a node.
type FramePayload struct {
	Type *schema.FrameType
	// TypeName is the declared type spelling of the winning declaration.
	TypeName string
	// Aliases maps hookup paths to the author declared child path.
	Aliases *names.Map[string]
}

// Class returns the native class of the frame, or nil when the type is
// unknown.
func (p *FramePayload) Class() *schema.FrameClass {
	if p == nil || p.Type == nil {
		return nil
	}
	return p.Type.Class
}

// AnimationPayload is the animation specific state of a node.
type AnimationPayload struct {
	// Events maps event names to the elements declaring them.
	Events *names.Map[[]*markup.Element]
}

// StateGroupPayload is the state group specific state of a node.
type StateGroupPayload struct {
	States *names.Map[*markup.Element]
	// Default is the declared default state name, empty when absent.
	Default     string
	DefaultDecl *markup.Element
}

func newPayloads(n *Node, reg *schema.Registry) {
	switch n.Kind {
	case desc.KindFrame:
		p := &FramePayload{Aliases: names.New[string]()}
		for _, decl := range n.Decls() {
			el := decl.Element
			if v, ok := el.AttrValue("type"); ok && v != "" {
				p.TypeName = v
				p.Type = nil
				if reg != nil {
					if ft, _, match := reg.FrameType(v); match.Found() {
						p.Type = ft
					}
				}
			}
			for _, child := range el.Children {
				if child.Kind() != schema.ElementHookupAlias {
					continue
				}
				name, _ := child.AttrValue("name")
				path, _ := child.AttrValue("path")
				if name != "" && path != "" {
					p.Aliases.Set(name, path)
				}
			}
		}
		n.Frame = p
	case desc.KindAnimation:
		p := &AnimationPayload{Events: names.New[[]*markup.Element]()}
		for _, decl := range n.Decls() {
			for _, child := range decl.Element.Children {
				if child.Kind() != schema.ElementEvent {
					continue
				}
				name, ok := child.AttrValue("event")
				if !ok || name == "" {
					continue
				}
				list, _, _ := p.Events.Get(name)
				p.Events.Set(name, append(list, child))
			}
		}
		n.Animation = p
	case desc.KindStateGroup:
		p := &StateGroupPayload{States: names.New[*markup.Element]()}
		for _, decl := range n.Decls() {
			for _, child := range decl.Element.Children {
				switch child.Kind() {
				case schema.ElementState:
					if name, ok := child.AttrValue("name"); ok && name != "" {
						p.States.Set(name, child)
					}
				case schema.ElementDefaultState:
					if v, ok := child.AttrValue("val"); ok {
						p.Default = v
						p.DefaultDecl = child
					}
				}
			}
		}
		n.StateGroup = p
	}
}
