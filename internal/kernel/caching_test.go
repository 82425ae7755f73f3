package kernel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/airframe/internal/cachemanager"
	"github.com/zjrosen/airframe/internal/kernel"
	"github.com/zjrosen/airframe/internal/mocks"
	"github.com/zjrosen/airframe/internal/positioning"
	"github.com/zjrosen/airframe/internal/tracing"
)

func sections() []kernel.Section {
	return []kernel.Section{
		{Name: "root", Points: []positioning.Vec3{{X: 0}, {X: 0, Y: 1}}},
		{Name: "tip", Points: []positioning.Vec3{{X: 1}, {X: 1, Y: 1}}},
	}
}

func newStore() *cachemanager.InMemoryCacheManager[kernel.Fingerprint, kernel.Shape] {
	return cachemanager.NewInMemoryCacheManager[kernel.Fingerprint, kernel.Shape]("shapes", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
}

func TestCachingKernel_LoftIsMemoized(t *testing.T) {
	inner := mocks.NewMockKernel(t)
	shape := kernel.Shape{Name: "wing", Kind: kernel.KindLoft, Fingerprint: "loft:1"}
	inner.EXPECT().Loft(mock.Anything, "wing", sections()).Return(shape, nil).Once()

	k := kernel.NewCachingKernel(inner, newStore(), cachemanager.DefaultExpiration)
	for range 3 {
		got, err := k.Loft(context.Background(), "wing", sections())
		require.NoError(t, err)
		require.Equal(t, shape, got)
	}

	hits, misses := k.Stats()
	require.Equal(t, int64(2), hits)
	require.Equal(t, int64(1), misses)
}

func TestCachingKernel_ErrorsAreNotCached(t *testing.T) {
	inner := mocks.NewMockKernel(t)
	inner.EXPECT().Loft(mock.Anything, "wing", mock.Anything).Return(kernel.Shape{}, kernel.ErrDegenerate).Twice()

	k := kernel.NewCachingKernel(inner, newStore(), cachemanager.DefaultExpiration)
	_, err := k.Loft(context.Background(), "wing", sections())
	require.ErrorIs(t, err, kernel.ErrDegenerate)
	_, err = k.Loft(context.Background(), "wing", sections())
	require.ErrorIs(t, err, kernel.ErrDegenerate)
}

func TestCachingKernel_CutKeyedByInputs(t *testing.T) {
	inner := mocks.NewMockKernel(t)
	base := kernel.Shape{Name: "fuselage", Fingerprint: "loft:f"}
	duct := kernel.Shape{Name: "duct", Fingerprint: "loft:d"}
	inner.EXPECT().Cut(mock.Anything, base, duct).Return(kernel.Shape{Name: "fuselage", Kind: kernel.KindCut}, nil).Once()
	inner.EXPECT().Cut(mock.Anything, base).Return(kernel.Shape{Name: "fuselage", Kind: kernel.KindCut}, nil).Once()

	k := kernel.NewCachingKernel(inner, newStore(), cachemanager.DefaultExpiration)
	for range 2 {
		_, err := k.Cut(context.Background(), base, duct)
		require.NoError(t, err)
		_, err = k.Cut(context.Background(), base)
		require.NoError(t, err)
	}
}

func TestCachingKernel_Disabled(t *testing.T) {
	inner := mocks.NewMockKernel(t)
	inner.EXPECT().Loft(mock.Anything, "wing", mock.Anything).Return(kernel.Shape{Name: "wing"}, nil).Times(2)

	k := kernel.NewCachingKernel(inner, newStore(), cachemanager.DefaultExpiration, kernel.WithCacheDisabled(true))
	for range 2 {
		_, err := k.Loft(context.Background(), "wing", sections())
		require.NoError(t, err)
	}
}

func TestCachingKernel_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	k := kernel.NewCachingKernel(kernel.BoundsKernel{}, newStore(), cachemanager.DefaultExpiration, kernel.WithTracer(tracer))
	_, err := k.Loft(context.Background(), "wing", sections())
	require.NoError(t, err)
	_, err = k.Loft(context.Background(), "wing", sections())
	require.NoError(t, err)
	_, err = k.Loft(context.Background(), "wing", nil)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	hit := func(s sdktrace.ReadOnlySpan) any {
		for _, kv := range s.Attributes() {
			if string(kv.Key) == tracing.AttrCacheHit {
				return kv.Value.AsBool()
			}
		}
		return nil
	}
	require.Equal(t, tracing.SpanKernelLoft, spans[0].Name())
	require.Equal(t, false, hit(spans[0]))
	require.Equal(t, true, hit(spans[1]))
	require.Nil(t, hit(spans[2]))
	require.True(t, errors.Is(err, kernel.ErrDegenerate))
	require.Equal(t, "Error", spans[2].Status().Code.String())
}
