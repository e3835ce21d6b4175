package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/himanishpuri/EKGLab/pkg/ekglab"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/settings"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/storage"
	"github.com/himanishpuri/EKGLab/pkg/logger"
)

// app carries what every subcommand needs: resolved options and the output
// writer of the running command.
type app struct {
	v   *viper.Viper
	out io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "ekglab",
		Short:         "Synthesize, draw and classify EKG waveforms.",
		Long:          `EKGLab generates textbook EKG traces, analyzes hand-drawn ones and streams either to a device.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.setup()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			printBanner(cmd.OutOrStdout())
			_ = cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "CLI config file (YAML or JSON)")
	flags.String("db-path", storage.DefaultDBFile, "Path to the SQLite database file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "Disable colored output")
	for _, name := range []string{"config", "db-path", "log-level", "no-color"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	a.v.SetEnvPrefix(settings.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newGenerateCmd(a),
		newAnalyzeCmd(a),
		newDrawingsCmd(a),
		newSettingsCmd(a),
		newSendCmd(a),
	)
	return root
}

// setup reads the optional config file and applies logging options.
func (a *app) setup() error {
	if configFile := a.v.GetString("config"); configFile != "" {
		a.v.SetConfigFile(configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	level, ok := logger.ParseLevel(a.v.GetString("log-level"))
	if !ok {
		return fmt.Errorf("unknown log level %q", a.v.GetString("log-level"))
	}
	logger.SetLevel(level)

	if a.v.GetBool("no-color") {
		color.NoColor = true
	}
	return nil
}

// openService creates a service on the configured database
func (a *app) openService(opts ...ekglab.Option) (ekglab.Service, error) {
	base := []ekglab.Option{
		ekglab.WithDBPath(a.v.GetString("db-path")),
		ekglab.WithLogger(logger.GetLogger().WithPrefix("ekglab")),
	}
	svc, err := ekglab.NewService(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

func commandContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func printBanner(w io.Writer) {
	banner := `
 _____ _  ______ _          _
| ____| |/ / ___| |    __ _| |__
|  _| | ' / |  _| |   / _' | '_ \
| |___| . \ |_| | |__| (_| | |_) |
|_____|_|\_\____|_____\__,_|_.__/

      EKG Teaching Tool CLI
`
	fmt.Fprintln(w, banner)
}
