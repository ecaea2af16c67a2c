package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sigil/internal/app"
)

// annotationNoStore marks commands that run without a wired store.
const annotationNoStore = "sigil/no-store"

var (
	home       string
	configPath string
	backend    string
	passphrase string
	logLevel   string
	seal       bool
	appCtx     *app.Wire
)

// Execute runs the CLI with os.Args.
func Execute() error {
	return execute(newRootCmd())
}

// execute runs root and releases the wired store whether or not the command
// succeeded.
func execute(root *cobra.Command) error {
	err := root.Execute()
	if appCtx != nil {
		err = errors.Join(err, appCtx.Close())
		appCtx = nil
	}
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sigil",
		Short:        "Local identity and signing CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoStore] == "true" {
				return nil
			}
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Backend != app.BackendMemory {
				if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
					return err
				}
			}
			if cfg.Seal && passphrase == "" {
				passphrase = os.Getenv("SIGIL_PASSPHRASE")
			}
			if cfg.Seal && passphrase == "" {
				if passphrase, err = promptPassphrase(cmd); err != nil {
					return err
				}
			}
			appCtx, err = app.NewWire(cfg, passphrase, cmd.ErrOrStderr())
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&home, "home", "", "data dir (default ~/.sigil)")
	flags.StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	flags.StringVar(&backend, "backend", "", "credential store: file, bolt or memory")
	flags.StringVarP(&passphrase, "passphrase", "p", "", "passphrase sealing the file store")
	flags.BoolVar(&seal, "seal", false, "encrypt the file store at rest")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flags.Duration("timeout", 0, "per-command timeout (0 keeps the configured value)")

	root.AddCommand(
		registerCmd(),
		loginCmd(),
		whoamiCmd(),
		logoutCmd(),
		fingerprintCmd(),
		signCmd(),
		verifyCmd(),
		usersCmd(),
	)
	return root
}

// resolveConfig layers defaults, the config file, the environment and flags.
func resolveConfig(cmd *cobra.Command) (app.Config, error) {
	dir := home
	if dir == "" {
		dir = os.Getenv("SIGIL_HOME")
	}
	if dir == "" {
		dir = app.DefaultHome()
	}
	cfg := app.Defaults(dir)

	path, required := configPath, true
	if path == "" {
		path, required = filepath.Join(dir, app.ConfigFile), false
	}
	cfg, err := app.LoadConfig(path, cfg, required)
	if err != nil {
		return cfg, err
	}
	if cfg, err = app.ApplyEnv(cfg, os.Getenv); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if home != "" {
		cfg.Home = home
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("seal") {
		cfg.Seal = seal
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("timeout") {
		if cfg.OperationTimeout, err = flags.GetDuration("timeout"); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func promptPassphrase(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("passphrase required (-p or SIGIL_PASSPHRASE)")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Passphrase: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	return string(b), nil
}
