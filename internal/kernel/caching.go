package kernel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/airframe/internal/cachemanager"
	"github.com/zjrosen/airframe/internal/tracing"
)

type loftRequest struct {
	name     string
	sections []Section
}

type cutRequest struct {
	base  Shape
	tools []Shape
}

// CachingKernel memoizes another kernel by content fingerprint, so two
// components with identical input share one kernel call.
type CachingKernel struct {
	inner  Kernel
	tracer trace.Tracer
	lofts  *cachemanager.ReadThroughCache[Fingerprint, Shape, loftRequest]
	cuts   *cachemanager.ReadThroughCache[Fingerprint, Shape, cutRequest]
}

var _ Kernel = (*CachingKernel)(nil)

// CachingOption configures a CachingKernel.
type CachingOption func(*cachingOptions)

type cachingOptions struct {
	tracer   trace.Tracer
	disabled bool
}

// WithTracer records a span for every kernel call.
func WithTracer(tracer trace.Tracer) CachingOption {
	return func(o *cachingOptions) {
		o.tracer = tracer
	}
}

// WithCacheDisabled passes every call straight to the inner kernel.
func WithCacheDisabled(disabled bool) CachingOption {
	return func(o *cachingOptions) {
		o.disabled = disabled
	}
}

// NewCachingKernel wraps inner. Shapes are stored in store for ttl.
func NewCachingKernel(inner Kernel, store cachemanager.CacheManager[Fingerprint, Shape], ttl time.Duration, opts ...CachingOption) *CachingKernel {
	o := cachingOptions{tracer: noop.NewTracerProvider().Tracer("kernel")}
	for _, opt := range opts {
		opt(&o)
	}

	k := &CachingKernel{inner: inner, tracer: o.tracer}
	k.lofts = cachemanager.NewReadThroughCache(store,
		func(r loftRequest) Fingerprint { return LoftFingerprint(r.name, r.sections) },
		func(ctx context.Context, r loftRequest) (Shape, error) { return inner.Loft(ctx, r.name, r.sections) },
		ttl, o.disabled)
	k.cuts = cachemanager.NewReadThroughCache(store,
		func(r cutRequest) Fingerprint { return CutFingerprint(r.base, r.tools) },
		func(ctx context.Context, r cutRequest) (Shape, error) { return inner.Cut(ctx, r.base, r.tools...) },
		ttl, o.disabled)
	return k
}

func (k *CachingKernel) Loft(ctx context.Context, name string, sections []Section) (Shape, error) {
	ctx, span := k.tracer.Start(ctx, tracing.SpanKernelLoft, trace.WithAttributes(
		attribute.String(tracing.AttrShapeName, name),
		attribute.Int(tracing.AttrShapeSections, len(sections)),
	))
	defer span.End()

	hitsBefore, _ := k.lofts.Stats()
	shape, err := k.lofts.GetWithRefresh(ctx, loftRequest{name: name, sections: sections})
	if err != nil {
		tracing.RecordError(span, err)
		return Shape{}, err
	}
	hitsAfter, _ := k.lofts.Stats()
	span.SetAttributes(
		attribute.String(tracing.AttrShapeFingerprint, string(shape.Fingerprint)),
		attribute.Bool(tracing.AttrCacheHit, hitsAfter > hitsBefore),
	)
	return shape, nil
}

func (k *CachingKernel) Cut(ctx context.Context, base Shape, tools ...Shape) (Shape, error) {
	ctx, span := k.tracer.Start(ctx, tracing.SpanKernelCut, trace.WithAttributes(
		attribute.String(tracing.AttrShapeName, base.Name),
		attribute.Int(tracing.AttrShapeTools, len(tools)),
	))
	defer span.End()

	hitsBefore, _ := k.cuts.Stats()
	shape, err := k.cuts.GetWithRefresh(ctx, cutRequest{base: base, tools: tools})
	if err != nil {
		tracing.RecordError(span, err)
		return Shape{}, err
	}
	hitsAfter, _ := k.cuts.Stats()
	span.SetAttributes(
		attribute.String(tracing.AttrShapeFingerprint, string(shape.Fingerprint)),
		attribute.Bool(tracing.AttrCacheHit, hitsAfter > hitsBefore),
	)
	return shape, nil
}

// Stats reports kernel cache hits and misses over lofts and cuts.
func (k *CachingKernel) Stats() (hits, misses int64) {
	lh, lm := k.lofts.Stats()
	ch, cm := k.cuts.Stats()
	return lh + ch, lm + cm
}
