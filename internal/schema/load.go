package schema

import (
	"embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strings"
	"sync"

	"github.com/jacoelho/uilayout/internal/graphcycle"
	"github.com/jacoelho/uilayout/internal/names"
)

// ErrInvalidCatalog reports a catalogue that cannot be resolved.
var ErrInvalidCatalog = errors.New("invalid schema catalog")

func catalogErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidCatalog}, args...)...)
}

//go:embed catalog.xml
var embedded embed.FS

// DefaultCatalog is the name of the embedded catalogue.
const DefaultCatalog = "catalog.xml"

var loadDefault = sync.OnceValues(func() (*Registry, error) {
	return Load(embedded, DefaultCatalog)
})

// Default returns the registry built from the embedded catalogue. The
// registry is shared; it is never mutated after loading.
func Default() (*Registry, error) {
	return loadDefault()
}

// Load reads and resolves a catalogue from fsys.
func Load(fsys fs.FS, location string) (*Registry, error) {
	if fsys == nil {
		return nil, fmt.Errorf("load schema catalog: nil fs")
	}
	f, err := fsys.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open schema catalog %s: %w", location, err)
	}
	defer f.Close()

	reg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load schema catalog %s: %w", location, err)
	}
	return reg, nil
}

type rawCatalog struct {
	XMLName      xml.Name         `xml:"catalog"`
	SimpleTypes  []rawSimpleType  `xml:"simpleType"`
	ComplexTypes []rawComplexType `xml:"complexType"`
	FrameClasses []rawFrameClass  `xml:"frameClass"`
	FrameTypes   []rawFrameType   `xml:"frameType"`
	Roots        []rawElement     `xml:"root"`
}

type rawSimpleType struct {
	Name    string   `xml:"name,attr"`
	Kind    string   `xml:"kind,attr"`
	Union   string   `xml:"union,attr"`
	Pattern string   `xml:"pattern,attr"`
	Class   string   `xml:"class,attr"`
	Values  []string `xml:"value"`
}

type rawComplexType struct {
	Name            string             `xml:"name,attr"`
	Base            string             `xml:"base,attr"`
	Attributes      []rawAttribute     `xml:"attribute"`
	Elements        []rawElement       `xml:"element"`
	Indeterminate   []rawIndeterminate `xml:"indeterminate"`
	ExtraAttributes bool               `xml:"extraAttributes,attr"`
}

type rawAttribute struct {
	Name     string `xml:"name,attr"`
	Type     string `xml:"type,attr"`
	Default  string `xml:"default,attr"`
	Required bool   `xml:"required,attr"`
	Bindable bool   `xml:"bindable,attr"`
}

type rawElement struct {
	Alternation *rawAlternation `xml:"alternation"`
	Name        string          `xml:"name,attr"`
	Type        string          `xml:"type,attr"`
	Kind        string          `xml:"kind,attr"`
	Bindable    bool            `xml:"bindable,attr"`
}

type rawAlternation struct {
	Attribute  string   `xml:"attribute,attr"`
	Alts       []rawAlt `xml:"alt"`
	FrameTypes bool     `xml:"frameTypes,attr"`
}

type rawAlt struct {
	Value string `xml:"value,attr"`
	Type  string `xml:"type,attr"`
}

type rawIndeterminate struct {
	Key      string `xml:"key,attr"`
	Value    string `xml:"value,attr"`
	Required bool   `xml:"required,attr"`
}

type rawFrameClass struct {
	Name    string      `xml:"name,attr"`
	Parent  string      `xml:"parent,attr"`
	Hookups []rawHookup `xml:"hookup"`
}

type rawHookup struct {
	Path     string `xml:"path,attr"`
	Class    string `xml:"class,attr"`
	Required bool   `xml:"required,attr"`
}

type rawFrameType struct {
	Name  string `xml:"name,attr"`
	Class string `xml:"class,attr"`
	Type  string `xml:"type,attr"`
}

// Parse decodes and resolves a catalogue document.
func Parse(r io.Reader) (*Registry, error) {
	var raw rawCatalog
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode schema catalog: %w", err)
	}
	b := &builder{raw: &raw, reg: newRegistry()}
	steps := []func() error{
		b.declare,
		b.resolveSimpleTypes,
		b.resolveComplexTypes,
		b.resolveFrameClasses,
		b.resolveFrameTypes,
		b.resolveRoots,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return b.reg, nil
}

type builder struct {
	raw *rawCatalog
	reg *Registry
}

func declareAll[R any, V any](m *names.Map[V], items []R, name func(R) string, make func(R) V, what string) error {
	for _, item := range items {
		n := name(item)
		if n == "" {
			return catalogErrorf("%s without name", what)
		}
		if m.Has(n) {
			return catalogErrorf("duplicate %s %q", what, n)
		}
		m.Set(n, make(item))
	}
	return nil
}

func (b *builder) declare() error {
	if err := declareAll(b.reg.simple, b.raw.SimpleTypes,
		func(r rawSimpleType) string { return r.Name },
		func(r rawSimpleType) *SimpleType { return &SimpleType{Name: r.Name, Class: r.Class, Enum: r.Values} },
		"simple type"); err != nil {
		return err
	}
	if err := declareAll(b.reg.complex, b.raw.ComplexTypes,
		func(r rawComplexType) string { return r.Name },
		func(r rawComplexType) *ComplexType {
			ct := newComplexType(r.Name)
			ct.AllowExtraAttrs = r.ExtraAttributes
			return ct
		},
		"complex type"); err != nil {
		return err
	}
	return declareAll(b.reg.classes, b.raw.FrameClasses,
		func(r rawFrameClass) string { return r.Name },
		func(r rawFrameClass) *FrameClass { return &FrameClass{Name: r.Name} },
		"frame class")
}

func splitNames(list string) []string {
	return strings.Fields(list)
}

func (b *builder) simpleType(name, context string) (*SimpleType, error) {
	st, ok := b.reg.SimpleType(name)
	if !ok {
		return nil, catalogErrorf("unknown simple type %q referenced by %s", name, context)
	}
	return st, nil
}

func (b *builder) complexType(name, context string) (*ComplexType, error) {
	ct, ok := b.reg.ComplexType(name)
	if !ok {
		return nil, catalogErrorf("unknown complex type %q referenced by %s", name, context)
	}
	return ct, nil
}

func (b *builder) resolveSimpleTypes() error {
	unions := make(map[string][]string, len(b.raw.SimpleTypes))
	for _, r := range b.raw.SimpleTypes {
		st, _ := b.reg.SimpleType(r.Name)
		kind := r.Kind
		if kind == "" {
			switch {
			case r.Union != "":
				kind = "union"
			case len(r.Values) > 0:
				kind = "enum"
			default:
				kind = "string"
			}
		}
		builtin, ok := builtinNames[kind]
		if !ok {
			return catalogErrorf("simple type %q has unknown kind %q", r.Name, kind)
		}
		st.Kind = builtin
		if r.Pattern != "" {
			re, err := regexp.Compile("^(?:" + r.Pattern + ")$")
			if err != nil {
				return catalogErrorf("simple type %q pattern: %v", r.Name, err)
			}
			st.Pattern = re
		}
		for _, member := range splitNames(r.Union) {
			m, err := b.simpleType(member, "union "+r.Name)
			if err != nil {
				return err
			}
			st.Union = append(st.Union, m)
		}
		unions[strings.ToLower(r.Name)] = splitNames(r.Union)
	}

	err := graphcycle.Detect(graphcycle.Config[string]{
		Starts: b.reg.simple.Keys(),
		Next: func(name string) ([]string, error) {
			return unions[strings.ToLower(name)], nil
		},
	})
	if err != nil {
		return catalogErrorf("simple type unions: %v", err)
	}
	for st := range b.reg.simple.Values() {
		st.flatten()
	}
	return nil
}

func (b *builder) resolveComplexTypes() error {
	bases := make(map[string][]string, len(b.raw.ComplexTypes))
	for _, r := range b.raw.ComplexTypes {
		if r.Base != "" {
			bases[strings.ToLower(r.Name)] = []string{r.Base}
		}
	}
	err := graphcycle.Detect(graphcycle.Config[string]{
		Starts:  b.reg.complex.Keys(),
		Missing: graphcycle.MissingPolicyError,
		Exists:  func(name string) bool { return b.reg.complex.Has(name) },
		Next: func(name string) ([]string, error) {
			return bases[strings.ToLower(name)], nil
		},
	})
	if err != nil {
		return catalogErrorf("complex type inheritance: %v", err)
	}

	for _, r := range b.raw.ComplexTypes {
		ct, _ := b.reg.ComplexType(r.Name)
		context := "complex type " + r.Name
		if r.Base != "" {
			base, err := b.complexType(r.Base, context)
			if err != nil {
				return err
			}
			ct.Base = base
		}
		for _, ra := range r.Attributes {
			st, err := b.simpleType(ra.Type, context+" attribute "+ra.Name)
			if err != nil {
				return err
			}
			ct.attrs.Set(ra.Name, &Attribute{
				Name:     ra.Name,
				Type:     st,
				Default:  ra.Default,
				Required: ra.Required,
				Bindable: ra.Bindable,
			})
		}
		for _, re := range r.Elements {
			def, err := b.elementDef(re, context)
			if err != nil {
				return err
			}
			ct.elems.Set(re.Name, def)
		}
		for _, ri := range r.Indeterminate {
			key, err := b.simpleType(ri.Key, context+" indeterminate key")
			if err != nil {
				return err
			}
			value, err := b.simpleType(ri.Value, context+" indeterminate value")
			if err != nil {
				return err
			}
			ct.Indeterminate = append(ct.Indeterminate, &IndeterminateAttr{Key: key, Value: value, Required: ri.Required})
		}
	}
	return nil
}

func (b *builder) elementDef(re rawElement, context string) (*ElementDef, error) {
	context += " element " + re.Name
	ct, err := b.complexType(re.Type, context)
	if err != nil {
		return nil, err
	}
	kind, ok := elementKindNames[strings.ToLower(re.Kind)]
	if !ok && re.Kind != "" {
		return nil, catalogErrorf("%s has unknown kind %q", context, re.Kind)
	}
	def := &ElementDef{Name: re.Name, Type: ct, Kind: kind, Bindable: re.Bindable}
	if ra := re.Alternation; ra != nil {
		if ra.Attribute == "" {
			return nil, catalogErrorf("%s alternation without attribute", context)
		}
		alt := &Alternation{Attribute: ra.Attribute, FrameTypes: ra.FrameTypes, types: names.New[*ComplexType]()}
		for _, a := range ra.Alts {
			at, err := b.complexType(a.Type, context+" alternation "+a.Value)
			if err != nil {
				return nil, err
			}
			alt.types.Set(a.Value, at)
		}
		def.Alternation = alt
	}
	return def, nil
}

func (b *builder) resolveFrameClasses() error {
	parents := make(map[string][]string, len(b.raw.FrameClasses))
	for _, r := range b.raw.FrameClasses {
		fc, _ := b.reg.FrameClass(r.Name)
		if r.Parent != "" {
			parent, ok := b.reg.FrameClass(r.Parent)
			if !ok {
				return catalogErrorf("unknown parent class %q of frame class %q", r.Parent, r.Name)
			}
			fc.Parent = parent
			parents[strings.ToLower(r.Name)] = []string{r.Parent}
		}
		for _, rh := range r.Hookups {
			hc, ok := b.reg.FrameClass(rh.Class)
			if !ok {
				return catalogErrorf("unknown class %q of hookup %q in frame class %q", rh.Class, rh.Path, r.Name)
			}
			fc.Hookups = append(fc.Hookups, &Hookup{Path: rh.Path, Class: hc, Required: rh.Required})
		}
	}
	err := graphcycle.Detect(graphcycle.Config[string]{
		Starts: b.reg.classes.Keys(),
		Next: func(name string) ([]string, error) {
			return parents[strings.ToLower(name)], nil
		},
	})
	if err != nil {
		return catalogErrorf("frame class inheritance: %v", err)
	}
	return nil
}

func (b *builder) resolveFrameTypes() error {
	for _, r := range b.raw.FrameTypes {
		if b.reg.frameTypes.Has(r.Name) {
			return catalogErrorf("duplicate frame type %q", r.Name)
		}
		fc, ok := b.reg.FrameClass(r.Class)
		if !ok {
			return catalogErrorf("unknown class %q of frame type %q", r.Class, r.Name)
		}
		ct, err := b.complexType(r.Type, "frame type "+r.Name)
		if err != nil {
			return err
		}
		b.reg.frameTypes.Set(r.Name, &FrameType{Name: r.Name, Class: fc, Type: ct})
	}
	return nil
}

func (b *builder) resolveRoots() error {
	if len(b.raw.Roots) == 0 {
		return catalogErrorf("no root element declared")
	}
	for _, re := range b.raw.Roots {
		def, err := b.elementDef(re, "root")
		if err != nil {
			return err
		}
		b.reg.roots.Set(re.Name, def)
	}
	return nil
}
