package invalidation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/airframe/internal/pubsub"
)

type counter struct {
	clears int
}

func (c *counter) Clear() {
	c.clears++
}

func TestInvalidate_ClearsOwnedSubtree(t *testing.T) {
	bus := NewBus()
	model := bus.NewNode("model", nil)
	wing := bus.NewNode("wing", model)
	segment := bus.NewNode("segment", wing)
	fuselage := bus.NewNode("fuselage", model)

	var wingCache, segmentCache, fuselageCache counter
	wing.Track(&wingCache)
	segment.Track(&segmentCache)
	fuselage.Track(&fuselageCache)

	wing.Invalidate("")

	require.Equal(t, 1, wingCache.clears)
	require.Equal(t, 1, segmentCache.clears)
	require.Zero(t, fuselageCache.clears, "siblings are not touched")

	model.Invalidate("")
	require.Equal(t, 2, wingCache.clears)
	require.Equal(t, 2, segmentCache.clears)
	require.Equal(t, 1, fuselageCache.clears)
}

func TestSubscribe_CrossTreeCallback(t *testing.T) {
	bus := NewBus()
	model := bus.NewNode("model", nil)
	duct := bus.NewNode("duct", model)
	fuselage := bus.NewNode("fuselage", model)

	var fuselageCache counter
	fuselage.Track(&fuselageCache)

	_, err := duct.Subscribe(fuselage, func() { fuselage.Invalidate("duct") })
	require.NoError(t, err)

	duct.Invalidate("")
	require.Equal(t, 1, fuselageCache.clears)
}

func TestSubscribe_RejectsSelfAndAncestors(t *testing.T) {
	bus := NewBus()
	model := bus.NewNode("model", nil)
	wing := bus.NewNode("wing", model)
	segment := bus.NewNode("segment", wing)

	_, err := segment.Subscribe(segment, func() {})
	require.ErrorIs(t, err, ErrSubscriptionCycle)

	_, err = wing.Subscribe(segment, func() {})
	require.ErrorIs(t, err, ErrSubscriptionCycle)

	_, err = model.Subscribe(segment, func() {})
	require.ErrorIs(t, err, ErrSubscriptionCycle)

	// A descendant may be the producer.
	_, err = segment.Subscribe(wing, func() {})
	require.NoError(t, err)
}

func TestSubscribe_Cancel(t *testing.T) {
	bus := NewBus()
	a := bus.NewNode("a", nil)
	b := bus.NewNode("b", nil)

	calls := 0
	cancel, err := a.Subscribe(b, func() { calls++ })
	require.NoError(t, err)
	require.Equal(t, 1, a.Subscribers())

	cancel()
	cancel()
	require.Zero(t, a.Subscribers())

	a.Invalidate("")
	require.Zero(t, calls)
}

func TestInvalidate_ReentrantCallbacksAreQueued(t *testing.T) {
	bus := NewBus()
	a := bus.NewNode("a", nil)
	b := bus.NewNode("b", nil)

	var order []string
	var aCache, bCache counter
	a.Track(&aCache)
	b.Track(&bCache)

	// a -> b -> a: a loop of subscriptions between unrelated roots.
	_, err := a.Subscribe(b, func() {
		require.True(t, bus.Dispatching())
		order = append(order, "a fired")
		b.Invalidate("a")
		order = append(order, "a callback returned")
	})
	require.NoError(t, err)
	_, err = b.Subscribe(a, func() {
		order = append(order, "b fired")
		a.Invalidate("b")
	})
	require.NoError(t, err)

	a.Invalidate("")

	require.Equal(t, []string{"a fired", "a callback returned", "b fired"}, order)
	require.Equal(t, 1, aCache.clears, "a is cleared once per dispatch")
	require.Equal(t, 1, bCache.clears)
	require.False(t, bus.Dispatching())

	// A later dispatch clears again.
	a.Invalidate("")
	require.Equal(t, 2, aCache.clears)
}

func TestInvalidate_ResetsAfterPanic(t *testing.T) {
	bus := NewBus()
	a := bus.NewNode("a", nil)
	b := bus.NewNode("b", nil)
	_, err := a.Subscribe(b, func() { panic("callback failed") })
	require.NoError(t, err)

	require.Panics(t, func() { a.Invalidate("") })
	require.False(t, bus.Dispatching())
}

func TestDetach(t *testing.T) {
	bus := NewBus()
	model := bus.NewNode("model", nil)
	duct := bus.NewNode("duct", model)
	wing := bus.NewNode("wing", model)
	segment := bus.NewNode("segment", wing)

	calls := 0
	_, err := duct.Subscribe(segment, func() { calls++ })
	require.NoError(t, err)

	wing.Detach()

	require.Len(t, model.Children(), 1)
	require.Nil(t, wing.Owner())
	require.Zero(t, duct.Subscribers(), "subtree subscriptions are cancelled")

	duct.Invalidate("")
	require.Zero(t, calls)
}

func TestWithPublisher(t *testing.T) {
	broker := pubsub.NewBroker[Event]()
	defer broker.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := broker.Subscribe(ctx)

	bus := NewBus(WithPublisher(broker))
	node := bus.NewNode("wing1", nil)
	node.SetName("wing1_fwd")
	node.Invalidate("fuselage")

	select {
	case event := <-ch:
		require.Equal(t, pubsub.InvalidatedEvent, event.Type)
		require.Equal(t, Event{Node: "wing1_fwd", Source: "fuselage"}, event.Payload)
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "timeout waiting for invalidation event")
	}
	require.Equal(t, 1, bus.Cleared())
}

func TestClearOwn_DoesNotPropagate(t *testing.T) {
	bus := NewBus()
	wing := bus.NewNode("wing", nil)
	segment := bus.NewNode("segment", wing)
	other := bus.NewNode("other", nil)

	var wingCache, segmentCache counter
	wing.Track(&wingCache)
	segment.Track(&segmentCache)
	calls := 0
	_, err := wing.Subscribe(other, func() { calls++ })
	require.NoError(t, err)

	wing.ClearOwn()
	require.Equal(t, 1, wingCache.clears)
	require.Zero(t, segmentCache.clears)
	require.Zero(t, calls)
	require.Zero(t, bus.Cleared())
}
