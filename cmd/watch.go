package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/presentation"
	"github.com/zjrosen/airframe/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload and rebuild the model whenever the document changes",
		Long: `Watch the model document and print the positioning tree and shapes every
time it is saved, followed by the registry changes and tree rebuilds of the
reload. Shapes whose inputs did not change are served from the kernel
cache across reloads.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.documentPath()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w, err := watcher.New(watcher.Config{Path: path, DebounceDur: a.cfg.Watch.Debounce})
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()

			onChange, err := w.Start()
			if err != nil {
				return err
			}

			a.events = newModelEvents(ctx)
			defer a.events.close()
			return a.watchLoop(ctx, cmd.OutOrStdout(), path, onChange)
		},
	}
}

// watchLoop rebuilds once, then again on every signal from onChange, until
// ctx is done or onChange is closed.
func (a *app) watchLoop(ctx context.Context, out io.Writer, path string, onChange <-chan struct{}) error {
	a.rebuild(ctx, out, path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-onChange:
			if !ok {
				return nil
			}
			log.Info(log.CatWatcher, "reloading", "path", path)
			a.rebuild(ctx, out, path)
		}
	}
}

func (a *app) rebuild(ctx context.Context, out io.Writer, path string) {
	m, _, err := a.loader(ctx).LoadFile(ctx, path)
	if err != nil {
		_, _ = fmt.Fprintf(out, "error: %v\n", err)
	}
	if m == nil {
		return
	}

	tree, err := presentation.RenderTree(m)
	_, _ = fmt.Fprintln(out, tree)
	if a.events != nil {
		a.events.report(out)
	}
	if err != nil {
		_, _ = fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	_, _ = fmt.Fprintln(out, presentation.RenderShapes(presentation.Shapes(m)))

	hits, misses := a.geometryKernel().Stats()
	_, _ = fmt.Fprintf(out, "kernel cache: %d hits, %d misses\n", hits, misses)
}
