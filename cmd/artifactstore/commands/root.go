// Package commands implements the artifactstore command line.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kbukum/artifactstore/bootstrap"
	"github.com/kbukum/artifactstore/config"
	"github.com/kbukum/artifactstore/storage"
	"github.com/kbukum/artifactstore/version"

	// Backends register themselves with the storage factory.
	_ "github.com/kbukum/artifactstore/storage/database"
	_ "github.com/kbukum/artifactstore/storage/memory"
	_ "github.com/kbukum/artifactstore/storage/s3"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	envFile    string
	provider   string
	logLevel   string

	fs afero.Fs
}

func (o *rootOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configFile, "config", "c", "", "config file (default: search ./config.yml, ./config/config.yml)")
	fs.StringVar(&o.envFile, "env-file", "", ".env file applied before reading the environment")
	fs.StringVar(&o.provider, "provider", "", "storage provider override: database, s3 or memory")
	fs.StringVar(&o.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// loadConfig reads the config file and environment, then applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	opts := []config.LoaderOption{config.WithFs(o.fs)}
	if o.configFile != "" {
		opts = append(opts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		opts = append(opts, config.WithEnvFile(o.envFile))
	}

	var cfg config.Config
	if err := config.LoadConfig(config.ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	if o.provider != "" {
		cfg.Storage.Provider = o.provider
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return &cfg, nil
}

// run builds the app for one command invocation and runs task inside its lifecycle.
func (o *rootOptions) run(cmd *cobra.Command, task func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	app, err := bootstrap.NewApp(cfg,
		bootstrap.WithSignalHandling(),
		bootstrap.WithStorageOptions(storage.WithFs(o.fs)),
	)
	if err != nil {
		return err
	}
	return app.RunTask(cmd.Context(), task)
}

// NewRootCmd builds the command tree against the OS filesystem.
func NewRootCmd() *cobra.Command {
	return newRootCmd(afero.NewOsFs())
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	o := &rootOptions{fs: fs}

	rootCmd := &cobra.Command{
		Use:   "artifactstore",
		Short: "Store static site artifacts in a database or object store",
		Long: `artifactstore walks a directory of generated files, stores each one
under a key prefix in the configured backend and prints a manifest of
[mime, path] pairs.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	o.addFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newIngestCmd(o))
	rootCmd.AddCommand(newGetCmd(o))
	rootCmd.AddCommand(newExistsCmd(o))
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
