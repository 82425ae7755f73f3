// Package document reads and writes airframe model documents.
//
// A document is a YAML list of components in any order. Components may name
// parents, profiles, sections and duct targets that appear later in the
// file; references are resolved lazily by the model.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/airframe/internal/positioning"
)

// ErrInvalidDocument is returned for documents that do not parse.
var ErrInvalidDocument = errors.New("invalid document")

// Kinds accepted in a document.
const (
	KindProfile  = "profile"
	KindFuselage = "fuselage"
	KindWing     = "wing"
	KindDuct     = "duct"
)

// Document is a parsed model file.
type Document struct {
	Name       string      `yaml:"name,omitempty"`
	Components []Component `yaml:"components"`
}

// Component is one entry of the components list.
type Component struct {
	Kind      string     `yaml:"kind"`
	UID       string     `yaml:"uid"`
	Parent    string     `yaml:"parent,omitempty"`
	Symmetry  string     `yaml:"symmetry,omitempty"`
	Transform *Transform `yaml:"transform,omitempty"`
	Points    []Vec      `yaml:"points,omitempty"`
	Sections  []Section  `yaml:"sections,omitempty"`
	Segments  []Segment  `yaml:"segments,omitempty"`
	Targets   []string   `yaml:"targets,omitempty"`

	// Line is the source line, zero for components not read from a file.
	Line int `yaml:"-"`

	buildErr error
}

// BuildErr is the error Build reported for the entry, nil if it was added.
func (c Component) BuildErr() error { return c.buildErr }

// Rename rewrites every occurrence of oldID in doc: component, section and
// segment UIDs as well as parents, profiles, segment ends and duct targets.
// It returns the number of strings rewritten.
func (doc *Document) Rename(oldID, newID string) int {
	n := 0
	swap := func(s *string) {
		if *s == oldID {
			*s = newID
			n++
		}
	}
	for i := range doc.Components {
		c := &doc.Components[i]
		swap(&c.UID)
		swap(&c.Parent)
		for j := range c.Sections {
			swap(&c.Sections[j].UID)
			swap(&c.Sections[j].Profile)
		}
		for j := range c.Segments {
			swap(&c.Segments[j].UID)
			swap(&c.Segments[j].From)
			swap(&c.Segments[j].To)
		}
		for j := range c.Targets {
			swap(&c.Targets[j])
		}
	}
	return n
}

// Section places a profile along its component.
type Section struct {
	UID       string     `yaml:"uid"`
	Profile   string     `yaml:"profile"`
	Transform *Transform `yaml:"transform,omitempty"`
}

// Segment joins two sections of a wing.
type Segment struct {
	UID  string `yaml:"uid"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Transform is the YAML form of positioning.Transform.
type Transform struct {
	Scaling         *Vec   `yaml:"scaling,omitempty"`
	Rotation        *Vec   `yaml:"rotation,omitempty"`
	Translation     *Vec   `yaml:"translation,omitempty"`
	TranslationType string `yaml:"translation_type,omitempty"`
}

// Vec is written as a three element flow sequence.
type Vec [3]float64

func (v *Vec) UnmarshalYAML(node *yaml.Node) error {
	var values []float64
	if err := node.Decode(&values); err != nil {
		return err
	}
	if len(values) != 3 {
		return fmt.Errorf("line %d: vector needs 3 values, got %d", node.Line, len(values))
	}
	copy(v[:], values)
	return nil
}

func (v Vec) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, f := range v {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(f, 'g', -1, 64),
		})
	}
	return node, nil
}

// Point converts v.
func (v Vec) Point() positioning.Vec3 {
	return positioning.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func vecOf(p positioning.Vec3) Vec {
	return Vec{p.X, p.Y, p.Z}
}

// Resolve converts t, validating the translation type. A nil transform is
// the identity.
func (t *Transform) Resolve() (positioning.Transform, error) {
	out := positioning.IdentityTransform()
	if t == nil {
		return out, nil
	}
	if t.Scaling != nil {
		out.Scaling = t.Scaling.Point()
	}
	if t.Rotation != nil {
		out.Rotation = t.Rotation.Point()
	}
	if t.Translation != nil {
		out.Translation = t.Translation.Point()
	}
	tt, err := positioning.ParseTranslationType(t.TranslationType)
	if err != nil {
		return out, err
	}
	out.TranslationType = tt
	return out, nil
}

func transformOf(t positioning.Transform) *Transform {
	if t == positioning.IdentityTransform() {
		return nil
	}
	out := &Transform{}
	if t.Scaling != (positioning.Vec3{X: 1, Y: 1, Z: 1}) {
		s := vecOf(t.Scaling)
		out.Scaling = &s
	}
	if t.Rotation != (positioning.Vec3{}) {
		r := vecOf(t.Rotation)
		out.Rotation = &r
	}
	if t.Translation != (positioning.Vec3{}) {
		tr := vecOf(t.Translation)
		out.Translation = &tr
	}
	if t.TranslationType == positioning.AbsGlobal {
		out.TranslationType = string(positioning.AbsGlobal)
	}
	return out
}

// Parse reads a document. Unknown keys are rejected.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	doc := &Document{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	// Attach source lines to the components.
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err == nil {
		if components := lookup(&root, "components"); components != nil {
			for i, node := range components.Content {
				if i < len(doc.Components) {
					doc.Components[i].Line = node.Line
				}
			}
		}
	}
	return doc, nil
}

func lookup(root *yaml.Node, key string) *yaml.Node {
	node := root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return enc.Close()
}
