// Package cmd implements the airframe command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/airframe/internal/cachemanager"
	"github.com/zjrosen/airframe/internal/component"
	"github.com/zjrosen/airframe/internal/config"
	"github.com/zjrosen/airframe/internal/document"
	"github.com/zjrosen/airframe/internal/kernel"
	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/paths"
	"github.com/zjrosen/airframe/internal/tracing"
)

var version = "dev"

// app is the state shared by every command of one invocation.
type app struct {
	cfgFile  string
	docFile  string
	policy   string
	debug    bool
	verbose  bool
	asJSON   bool
	cfg      config.Config
	v        *viper.Viper
	provider *tracing.Provider
	kernel   *kernel.CachingKernel
	events   *modelEvents
	cleanup  []func()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "airframe",
		Short: "Inspect parametric airframe models",
		Long: `airframe loads a YAML model document (profiles, fuselages, wings and ducts
that reference each other by UID), builds the positioning tree and the
derived geometry, and prints them.

Components may reference components defined further down the document.`,
		Version:            version,
		SilenceUsage:       true,
		PersistentPreRunE:  func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error { return a.teardown(cmd.Context()) },
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: .airframe/config.yaml or ~/.config/airframe/config.yaml)")
	flags.StringVarP(&a.docFile, "file", "f", "", "model document (default: document from config)")
	flags.StringVar(&a.policy, "policy", "", "parent policy: lenient or strict (overrides config)")
	flags.BoolVarP(&a.debug, "debug", "d", false, "write a debug log (also AIRFRAME_DEBUG=1)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newTreeCmd(a),
		newResolveCmd(a),
		newRenameCmd(a),
		newShapesCmd(a),
		newWatchCmd(a),
		newNewCmd(a),
		newInitConfigCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := a.loadConfig(cmd); err != nil {
		return err
	}
	if err := a.initLogging(cmd.ErrOrStderr()); err != nil {
		return err
	}

	provider, err := tracing.NewProvider(a.cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	a.provider = provider
	log.Debug(log.CatConfig, "airframe starting", "config", a.v.ConfigFileUsed(), "policy", a.cfg.Tree.ParentPolicy)
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	var err error
	if a.provider != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		err = a.provider.Shutdown(ctx)
	}
	for _, fn := range a.cleanup {
		fn()
	}
	a.cleanup = nil
	return err
}

// loadConfig reads, in order of precedence: flags, AIRFRAME_* environment
// variables, the config file, defaults.
func (a *app) loadConfig(cmd *cobra.Command) error {
	v := viper.New()
	config.SetDefaults(v)
	v.SetEnvPrefix("AIRFRAME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		// Config lookup order:
		// 1. .airframe/config.yaml (current directory)
		// 2. ~/.config/airframe/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			v.AddConfigPath(filepath.Join(home, ".config", "airframe"))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if cmd.Flags().Changed("policy") {
		v.Set("tree.parent_policy", a.policy)
	}
	if a.docFile != "" {
		v.Set("document", a.docFile)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.v = v
	a.cfg = cfg
	return nil
}

const localConfigPath = ".airframe/config.yaml"

func (a *app) initLogging(stderr io.Writer) error {
	level := log.ParseLevel(a.cfg.Log.Level)
	switch {
	case a.verbose:
		log.InitWriter(stderr, level)
	case a.debug || os.Getenv("AIRFRAME_DEBUG") != "":
		cleanup, err := log.InitWithTeaLog(a.cfg.Log.File, "airframe")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		log.SetMinLevel(level)
		a.cleanup = append(a.cleanup, cleanup)
	}
	return nil
}

// documentPath returns the document to operate on. A directory resolves to
// the airframe.yaml inside it.
func (a *app) documentPath() (string, error) {
	path := paths.ResolveDocument(a.cfg.Document)
	if a.cfg.Document == "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("no model document at %s: pass --file or set document in the config", path)
		}
	}
	return path, nil
}

// geometryKernel returns the kernel shared by every model this invocation
// loads, so a reload reuses shapes whose inputs did not change.
func (a *app) geometryKernel() *kernel.CachingKernel {
	if a.kernel == nil {
		store := cachemanager.NewInMemoryCacheManager[kernel.Fingerprint, kernel.Shape](
			"shapes", a.cfg.Kernel.CacheTTL, a.cfg.Kernel.CleanupInterval)
		a.kernel = kernel.NewCachingKernel(kernel.BoundsKernel{}, store, a.cfg.Kernel.CacheTTL,
			kernel.WithTracer(a.provider.Tracer()),
			kernel.WithCacheDisabled(!a.cfg.Kernel.Cache),
		)
	}
	return a.kernel
}

func (a *app) loader(ctx context.Context) *document.Loader {
	opts := []component.Option{
		component.WithKernel(a.geometryKernel()),
		component.WithContext(ctx),
		component.WithParentPolicy(a.cfg.Tree.Policy()),
		component.WithTracer(a.provider.Tracer()),
	}
	if a.events != nil {
		opts = append(opts, a.events.options()...)
	}
	return document.NewLoader(a.provider.Tracer(), opts...)
}

// load reads the configured document. Components that fail to build are
// logged and reported on stderr; the rest of the model is still usable.
func (a *app) load(cmd *cobra.Command) (*component.Model, *document.Document, string, error) {
	path, err := a.documentPath()
	if err != nil {
		return nil, nil, "", err
	}
	m, doc, err := a.loader(cmd.Context()).LoadFile(cmd.Context(), path)
	if m == nil {
		return nil, nil, path, err
	}
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return m, doc, path, nil
}

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
