package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/zjrosen/airframe/internal/component"
	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/positioning"
	"github.com/zjrosen/airframe/internal/pubsub"
	"github.com/zjrosen/airframe/internal/uid"
)

// Large enough for every registration of a sizeable document between two
// reports.
const registryEventBuffer = 1024

// modelEvents collects the registry changes and tree rebuilds of every model
// a watch session builds.
type modelEvents struct {
	registry *pubsub.Broker[uid.Change]
	tree     *pubsub.Broker[positioning.Summary]
	changes  <-chan pubsub.Event[uid.Change]
	rebuilds <-chan pubsub.Event[positioning.Summary]
	dropped  int
}

func newModelEvents(ctx context.Context) *modelEvents {
	e := &modelEvents{
		registry: pubsub.NewBrokerWithBuffer[uid.Change](registryEventBuffer),
		tree:     pubsub.NewBroker[positioning.Summary](),
	}
	e.changes = e.registry.Subscribe(ctx)
	e.rebuilds = e.tree.Subscribe(ctx)
	return e
}

func (e *modelEvents) options() []component.Option {
	return []component.Option{
		component.WithRegistryEvents(e.registry),
		component.WithTreeEvents(e.tree),
	}
}

// report drains what was published since the last report and writes one
// summary line.
func (e *modelEvents) report(w io.Writer) {
	counts := make(map[uid.ChangeType]int)
	var last *positioning.Summary
drain:
	for {
		select {
		case ev, ok := <-e.changes:
			if !ok {
				e.changes = nil
				continue
			}
			counts[ev.Payload.Type]++
		case ev, ok := <-e.rebuilds:
			if !ok {
				e.rebuilds = nil
				continue
			}
			s := ev.Payload
			last = &s
		default:
			break drain
		}
	}

	var parts []string
	for _, t := range []uid.ChangeType{uid.ChangeRegistered, uid.ChangeUnregistered, uid.ChangeRenamed, uid.ChangeCleared} {
		if counts[t] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[t], t))
		}
	}
	if last != nil {
		parts = append(parts, fmt.Sprintf("tree: %d nodes, %d roots, %d errors", last.Nodes, last.Roots, last.Errors))
	}
	if dropped := e.registry.Dropped() + e.tree.Dropped(); dropped > e.dropped {
		log.Warn(log.CatWatcher, "model events dropped", "count", dropped-e.dropped)
		parts = append(parts, fmt.Sprintf("%d dropped", dropped-e.dropped))
		e.dropped = dropped
	}
	if len(parts) > 0 {
		_, _ = fmt.Fprintf(w, "events: %s\n", strings.Join(parts, "; "))
	}
}

func (e *modelEvents) close() {
	e.registry.Close()
	e.tree.Close()
}
