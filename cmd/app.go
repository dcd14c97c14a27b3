package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/tonhe/hometray/internal/config"
	"github.com/tonhe/hometray/internal/engine"
	"github.com/tonhe/hometray/internal/hub"
	"github.com/tonhe/hometray/internal/icons"
	"github.com/tonhe/hometray/internal/logging"
	"github.com/tonhe/hometray/internal/vault"
)

// tokenEnv hands a resolved token to child processes so the vault is
// unlocked once.
const tokenEnv = "HOMETRAY_TOKEN"

var errNoEntities = errors.New("no entities configured; run 'hometray setup' or edit the config file")

// app is the state every long-running command shares.
type app struct {
	cfg     *config.Config
	cfgPath string
	token   string
	log     zerolog.Logger
}

// loadApp reads the config and starts file logging. With withLog false the
// logger writes to stderr, for short commands.
func loadApp(withLog bool) (*app, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if flagInterval < 0 {
		return nil, fmt.Errorf("--interval must be positive, got %d", flagInterval)
	}
	if flagInterval > 0 {
		cfg.UpdateInterval = flagInterval
	}

	if withLog {
		dir, err := logging.ResolveDir(flagLogDir)
		if err != nil {
			return nil, err
		}
		logging.SetDir(dir)
	}
	if err := logging.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging to stderr: %v\n", err)
	}
	return &app{cfg: cfg, cfgPath: path, log: logging.Logger()}, nil
}

func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	return config.GetConfigPath()
}

func (a *app) metricsAddr() string {
	if flagMetricsAddr != "" {
		return flagMetricsAddr
	}
	return a.cfg.MetricsAddr
}

// hubClient resolves the token: env from a parent process first, then the
// config token, then the named vault credential. A credential URL replaces
// api_url.
func (a *app) hubClient() (*hub.Client, error) {
	url := a.cfg.APIURL
	token := os.Getenv(tokenEnv)
	if token == "" {
		token = a.cfg.Token
	}
	if token == "" && a.cfg.Credential != "" {
		cred, err := lookupCredential(a.cfg.Credential)
		if err != nil {
			return nil, err
		}
		token = cred.Token
		if cred.URL != "" {
			url = cred.URL
		}
	}
	if token == "" {
		return nil, errors.New("no access token; set token or credential in the config, or run 'hometray setup'")
	}
	a.token = token
	return hub.NewClient(url, token)
}

func lookupCredential(name string) (*vault.Credential, error) {
	store, err := openVault()
	if err != nil {
		return nil, err
	}
	return store.Get(name)
}

func openVault() (*vault.FileStore, error) {
	path, err := config.GetVaultPath()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create config directories: %w", err)
	}
	prompt := vault.TerminalPrompt(os.Stderr)
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) && prompt != nil {
		if _, set := os.LookupEnv(vault.MasterKeyEnv); !set {
			key, err := prompt("New master key (empty for none): ")
			if err != nil {
				return nil, fmt.Errorf("read master key: %w", err)
			}
			return vault.OpenFileStore(path, key)
		}
	}
	store, err := vault.Unlock(path, prompt)
	if err != nil {
		return nil, fmt.Errorf("open credential vault: %w", err)
	}
	return store, nil
}

// entities expands the configured domains through the hub and merges them
// with the explicit list.
func (a *app) entities(ctx context.Context, client *hub.Client) ([]string, error) {
	var fromDomains []string
	for _, d := range a.cfg.Domains {
		states, err := client.ListEntities(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("list %s entities: %w", d, err)
		}
		for _, st := range states {
			fromDomains = append(fromDomains, st.EntityID)
		}
	}
	ids := a.cfg.ResolveEntities(fromDomains)
	if len(ids) == 0 {
		return nil, errNoEntities
	}
	return ids, nil
}

// iconDir picks the bundle: icon_dir, then <data dir>/icons, then the
// directory the binary ships with.
func (a *app) iconDir() string {
	if a.cfg.IconDir != "" {
		return a.cfg.IconDir
	}
	if dir, ok := config.UserIconDir(); ok {
		return dir
	}
	return icons.DefaultDir()
}

// renderer opens the icon bundle and fails early when it is unusable.
func (a *app) renderer() (*icons.Renderer, error) {
	dir := a.iconDir()
	bundle := icons.Bundle(dir)
	if err := icons.Validate(bundle); err != nil {
		return nil, fmt.Errorf("icon bundle %s: %w", dir, err)
	}
	return icons.NewRenderer(bundle, icons.Options{
		Size:   a.cfg.IconSize,
		Format: icons.NativeFormat(),
		Logger: a.log.With().Str("component", "icons").Logger(),
	}), nil
}

func (a *app) manager(client *hub.Client, r *icons.Renderer, display func(string) engine.Display) *engine.Manager {
	return engine.NewManager(engine.ManagerConfig{
		Interval:   a.cfg.Interval(),
		Scheme:     a.cfg.Scheme(),
		Hub:        client,
		Icons:      r,
		Logger:     a.log,
		NewDisplay: display,
	})
}

// watchConfig re-applies colors from the config file whenever it changes.
func (a *app) watchConfig(ctx context.Context, mgr *engine.Manager) {
	err := config.Watch(ctx, a.cfgPath, a.log, func() {
		cfg, err := config.LoadConfig(a.cfgPath)
		if err != nil {
			a.log.Warn().Err(err).Msg("config reload rejected")
			return
		}
		mgr.SetScheme(cfg.Scheme())
		a.log.Info().Msg("colors reloaded")
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("config watch unavailable")
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
