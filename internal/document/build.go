package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/airframe/internal/component"
	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/positioning"
	"github.com/zjrosen/airframe/internal/tracing"
)

// Build creates a model from doc. Components are added in document order;
// references to components further down resolve once those are added.
//
// A component that fails to build is skipped and reported in the joined
// error, so the returned model is always usable. The entry keeps its error
// (see Component.BuildErr) so Export can write it back unchanged.
func Build(doc *Document, opts ...component.Option) (*component.Model, error) {
	m := component.NewModel(opts...)
	var errs []error
	for i := range doc.Components {
		c := &doc.Components[i]
		c.buildErr = add(m, *c)
		if c.buildErr != nil {
			errs = append(errs, fmt.Errorf("line %d: %s %q: %w", c.Line, c.Kind, c.UID, c.buildErr))
		}
	}
	return m, errors.Join(errs...)
}

func add(m *component.Model, c Component) error {
	if c.Kind == KindProfile {
		points := make([]positioning.Vec3, len(c.Points))
		for i, p := range c.Points {
			points[i] = p.Point()
		}
		_, err := m.AddProfile(c.UID, points)
		return err
	}

	placement, err := c.placement()
	if err != nil {
		return err
	}
	sections, err := sectionConfigs(c.Sections)
	if err != nil {
		return err
	}

	switch c.Kind {
	case KindFuselage:
		_, err = m.AddFuselage(c.UID, placement, sections...)
	case KindWing:
		segments := make([]component.SegmentConfig, len(c.Segments))
		for i, s := range c.Segments {
			segments[i] = component.SegmentConfig{UID: s.UID, From: s.From, To: s.To}
		}
		_, err = m.AddWing(c.UID, placement, sections, segments)
	case KindDuct:
		_, err = m.AddDuct(c.UID, placement, c.Targets, sections...)
	default:
		err = fmt.Errorf("%w: unknown kind %q", ErrInvalidDocument, c.Kind)
	}
	return err
}

func (c Component) placement() (component.Placement, error) {
	sym, err := positioning.ParseSymmetry(c.Symmetry)
	if err != nil {
		return component.Placement{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	t, err := c.Transform.Resolve()
	if err != nil {
		return component.Placement{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return component.Placement{Parent: c.Parent, Transform: t, Symmetry: sym}, nil
}

func sectionConfigs(sections []Section) ([]component.SectionConfig, error) {
	out := make([]component.SectionConfig, len(sections))
	for i, s := range sections {
		t, err := s.Transform.Resolve()
		if err != nil {
			return nil, fmt.Errorf("%w: section %q: %w", ErrInvalidDocument, s.UID, err)
		}
		out[i] = component.SectionConfig{UID: s.UID, Profile: s.Profile, Transform: t}
	}
	return out, nil
}

// Loader reads documents from disk.
type Loader struct {
	tracer trace.Tracer
	opts   []component.Option
}

// NewLoader returns a loader that passes opts to every model it builds. A
// nil tracer disables tracing.
func NewLoader(tracer trace.Tracer, opts ...component.Option) *Loader {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("document")
	}
	return &Loader{tracer: tracer, opts: opts}
}

// LoadFile parses and builds the document at path. The document is returned
// whenever it parsed, even if some components failed to build.
func (l *Loader) LoadFile(ctx context.Context, path string) (*component.Model, *Document, error) {
	_, span := l.tracer.Start(ctx, tracing.SpanDocumentLoad,
		trace.WithAttributes(attribute.String(tracing.AttrDocumentPath, path)))
	defer span.End()

	f, err := os.Open(path)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, nil, fmt.Errorf("opening document: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := Parse(f)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	span.SetAttributes(attribute.Int(tracing.AttrDocumentComponents, len(doc.Components)))

	m, err := Build(doc, l.opts...)
	span.SetAttributes(attribute.String(tracing.AttrModelID, m.ID().String()))
	if err != nil {
		tracing.RecordError(span, err)
		log.Warn(log.CatDocument, "document built with errors", "path", path, "error", err)
		return m, doc, fmt.Errorf("%s: %w", path, err)
	}
	log.Info(log.CatDocument, "document loaded", "path", path, "components", len(doc.Components), "model", m.ID())
	return m, doc, nil
}

// Export describes m as a document. Sections and segments are nested under
// their owners.
//
// With a source document the result follows its order and keeps its name.
// Entries that failed to build are written back as they are, so apply any
// rename to src (Document.Rename) before exporting. Components the source
// does not mention are appended.
func Export(m *component.Model, src *Document) *Document {
	doc := &Document{}
	seen := make(map[string]bool)
	if src != nil {
		doc.Name = src.Name
		for _, entry := range src.Components {
			if entry.buildErr == nil && !seen[entry.UID] {
				if c, err := m.Component(entry.UID); err == nil {
					if exported, ok := exportComponent(c); ok {
						seen[entry.UID] = true
						doc.Components = append(doc.Components, exported)
						continue
					}
				}
			}
			doc.Components = append(doc.Components, entry)
		}
	}
	for _, c := range m.Components() {
		if seen[c.UID()] {
			continue
		}
		if exported, ok := exportComponent(c); ok {
			doc.Components = append(doc.Components, exported)
		}
	}
	return doc
}

func exportComponent(c component.Component) (Component, bool) {
	switch c := c.(type) {
	case *component.Profile:
		entry := Component{Kind: KindProfile, UID: c.UID()}
		for _, p := range c.Points() {
			entry.Points = append(entry.Points, vecOf(p))
		}
		return entry, true
	case *component.Fuselage:
		entry := placedEntry(KindFuselage, c, c.Transform(), c.Symmetry())
		entry.Sections = sectionEntries(c.Sections())
		return entry, true
	case *component.Wing:
		entry := placedEntry(KindWing, c, c.Transform(), c.Symmetry())
		entry.Sections = sectionEntries(c.Sections())
		for _, s := range c.Segments() {
			from, to := s.Sections()
			entry.Segments = append(entry.Segments, Segment{UID: s.UID(), From: from, To: to})
		}
		return entry, true
	case *component.Duct:
		entry := placedEntry(KindDuct, c, c.Transform(), c.Symmetry())
		entry.Sections = sectionEntries(c.Sections())
		entry.Targets = c.Targets()
		return entry, true
	}
	return Component{}, false
}

func placedEntry(kind string, c component.PositionedComponent, t positioning.Transform, s positioning.Symmetry) Component {
	parent, _ := c.ParentUID()
	return Component{
		Kind:      kind,
		UID:       c.UID(),
		Parent:    parent,
		Symmetry:  string(s),
		Transform: transformOf(t),
	}
}

func sectionEntries(sections []*component.Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, Section{UID: s.UID(), Profile: s.ProfileUID(), Transform: transformOf(s.Transform())})
	}
	return out
}

// Save writes doc to path atomically: a temp file in the same directory is
// renamed over the target.
func Save(path string, doc *Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".airframe.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := Encode(tmp, doc); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
