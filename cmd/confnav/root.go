package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/andrebassi/confnav/configs"
	"github.com/andrebassi/confnav/internal/app"
	"github.com/andrebassi/confnav/internal/domain/port"
	"github.com/andrebassi/confnav/internal/usecase"
)

// cli holds the state shared by every command of one invocation.
type cli struct {
	v *viper.Viper

	configPath string
	namespace  string
	group      string
	debug      bool

	// fileCfg is the config as stored on disk; cfg is fileCfg with flags
	// and environment applied. Only user state is written back.
	fileCfg *configs.Config
	cfg     *configs.Config
	logger  *zap.Logger
	store   port.ConfigStore

	newStore func(cfg *configs.Config, logger *zap.Logger) (port.ConfigStore, error)
	runTUI   func(ctx context.Context, opts app.Options) error
}

func newCLI() *cli {
	return &cli{
		v:        viper.New(),
		newStore: app.NewStore,
		runTUI:   app.Run,
	}
}

// overlays lists the settings that flags and CONFNAV_* variables override.
var overlays = []struct {
	key   string
	usage string
	apply func(c *configs.Config, v *viper.Viper, key string)
}{
	{"server", "base URL of the config service", func(c *configs.Config, v *viper.Viper, k string) { c.Server = v.GetString(k) }},
	{"backend", "store backend: api, nacos or kubernetes", func(c *configs.Config, v *viper.Viper, k string) { c.Backend = v.GetString(k) }},
	{"username", "username for basic auth", func(c *configs.Config, v *viper.Viper, k string) { c.Username = v.GetString(k) }},
	{"password", "password for basic auth", func(c *configs.Config, v *viper.Viper, k string) { c.Password = v.GetString(k) }},
	{"kubeconfig", "kubeconfig path for the kubernetes backend", func(c *configs.Config, v *viper.Viper, k string) { c.Kubeconfig = v.GetString(k) }},
	{"log-file", "log file path", func(c *configs.Config, v *viper.Viper, k string) { c.LogFile = v.GetString(k) }},
}

var intOverlays = []struct {
	key   string
	usage string
	apply func(c *configs.Config, n int)
}{
	{"page-size", "entries per page", func(c *configs.Config, n int) { c.PageSize = n }},
	{"timeout", "request timeout in seconds", func(c *configs.Config, n int) { c.RequestTimeout = n }},
	{"interval", "watch polling interval in seconds", func(c *configs.Config, n int) { c.WatchInterval = n }},
}

func (c *cli) root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confnav",
		Short: "Browse and edit a configuration store from the terminal",
		Long: `confnav browses a configuration service organised as
namespace > group > dataId. Without a command it starts the interactive
browser; the subcommands expose the same operations for scripts.

Settings are read from ~/.config/confnav/config.yaml and can be overridden
with flags or CONFNAV_* environment variables (e.g. CONFNAV_SERVER).`,
		Version:           version,
		SilenceUsage:      true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return c.setup() },
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := c.connect()
			if err != nil {
				return err
			}
			return c.runTUI(cmd.Context(), app.Options{
				Config:     c.cfg,
				Store:      store,
				Logger:     c.logger,
				Namespace:  c.namespace,
				Group:      c.group,
				SaveConfig: c.saveUserState,
			})
		},
	}
	cmd.SetVersionTemplate(`{{printf "confnav version %s\n" .Version}}`)

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default is $HOME/.config/confnav/config.yaml)")
	flags.StringVarP(&c.namespace, "namespace", "n", "", "namespace to open")
	flags.StringVarP(&c.group, "group", "g", "", "group to open")
	flags.BoolVar(&c.debug, "debug", false, "log at debug level")
	for _, o := range overlays {
		flags.String(o.key, "", o.usage)
	}
	for _, o := range intOverlays {
		flags.Int(o.key, 0, o.usage)
	}

	c.v.SetEnvPrefix("CONFNAV")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	_ = c.v.BindPFlags(flags)

	cmd.AddCommand(
		c.namespacesCmd(),
		c.groupsCmd(),
		c.listCmd(),
		c.getCmd(),
		c.putCmd(),
		c.watchCmd(),
		c.versionCmd(),
	)
	return cmd
}

// setup loads the config file, applies overrides and opens the log.
func (c *cli) setup() error {
	var err error
	if c.configPath != "" {
		c.fileCfg, err = configs.LoadFile(c.configPath)
	} else {
		c.fileCfg, err = configs.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg := *c.fileCfg
	cfg.FavoriteNamespaces = append([]string(nil), c.fileCfg.FavoriteNamespaces...)
	applyOverlays(&cfg, c.v)
	c.cfg = &cfg

	logFile := c.cfg.LogFile
	if logFile == "" {
		logFile = configs.DefaultLogFile()
	}
	c.logger, err = app.NewLogger(logFile, c.debug || c.v.GetBool("debug"))
	if err != nil {
		return err
	}
	return nil
}

// applyOverlays copies every setting that was given as a flag or an
// environment variable into cfg.
func applyOverlays(cfg *configs.Config, v *viper.Viper) {
	for _, o := range overlays {
		if v.IsSet(o.key) && v.GetString(o.key) != "" {
			o.apply(cfg, v, o.key)
		}
	}
	for _, o := range intOverlays {
		if n := v.GetInt(o.key); v.IsSet(o.key) && n > 0 {
			o.apply(cfg, n)
		}
	}
}

// connect builds the store once per invocation.
func (c *cli) connect() (port.ConfigStore, error) {
	if c.store != nil {
		return c.store, nil
	}
	store, err := c.newStore(c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

// saveUserState writes the TUI's remembered position and favourites back
// to the config file without persisting flag or environment overrides.
func (c *cli) saveUserState(cfg *configs.Config) error {
	c.fileCfg.LastNamespace = cfg.LastNamespace
	c.fileCfg.LastGroup = cfg.LastGroup
	c.fileCfg.FavoriteNamespaces = cfg.FavoriteNamespaces
	if c.configPath != "" {
		return c.fileCfg.SaveFile(c.configPath)
	}
	return c.fileCfg.Save()
}

// targetNamespace is --namespace, falling back to the last one browsed.
func (c *cli) targetNamespace() string {
	if c.namespace != "" {
		return c.namespace
	}
	return c.cfg.LastNamespace
}

func (c *cli) requireGroup() (string, error) {
	if c.group == "" {
		return "", fmt.Errorf("--group is required")
	}
	return c.group, nil
}

// browser opens a headless browsing session on the target namespace.
func (c *cli) browser() (*usecase.NamespaceBrowser, error) {
	store, err := c.connect()
	if err != nil {
		return nil, err
	}
	return usecase.NewNamespaceBrowser(store, c.targetNamespace(),
		usecase.WithLogger(c.logger),
		usecase.WithPageSize(c.cfg.PageSize),
		usecase.WithRequestTimeout(c.cfg.Timeout()),
	)
}
