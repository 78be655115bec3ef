package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/hfss-client/internal/adapters/host/com"
	"github.com/bnema/hfss-client/internal/adapters/host/memory"
	"github.com/bnema/hfss-client/internal/adapters/host/traced"
	"github.com/bnema/hfss-client/internal/adapters/render/transcript"
	"github.com/bnema/hfss-client/internal/application"
	"github.com/bnema/hfss-client/internal/config"
	"github.com/bnema/hfss-client/internal/log"
	"github.com/bnema/hfss-client/internal/ports"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	fs    afero.Fs
	viper *viper.Viper
	cfg   config.Config

	configPath string
	dryRun     bool

	connect  func(ctx context.Context, opts com.Options) (ports.Automation, error)
	render   func([]ports.CallRecord, transcript.RenderOptions) (string, error)
	newDryRun func() *memory.Host
}

func wireApp() (*app, error) {
	fs := afero.NewOsFs()

	return &app{
		fs:    fs,
		viper: config.NewViper(fs),
		cfg:   config.Defaults(),
		connect: func(ctx context.Context, opts com.Options) (ports.Automation, error) {
			return com.Connect(ctx, opts)
		},
		render: transcript.Render,
		newDryRun: func() *memory.Host {
			return memory.New()
		},
	}, nil
}

// loadConfig runs before every command: flags are already parsed and bound.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(a.fs, a.viper, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := log.Init(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.Debug(log.CatConfig, "config loaded", "dry_run", a.dryRun, "trace", cfg.Trace.Enabled)

	return nil
}

// withSession attaches to the host for one command. In dry-run mode the
// memory host stands in and its call transcript is printed once fn returns,
// failed calls included.
func (a *app) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *application.Session) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		host   ports.Automation
		dryRun *memory.Host
		fs     = a.fs
	)
	if a.dryRun {
		dryRun = a.newDryRun()
		host = dryRun
		fs = dryRun.Fs()
	} else {
		err = runWithSpinner(ctx, cmd.ErrOrStderr(), "Connecting to HFSS...", func() error {
			var connErr error
			host, connErr = a.connect(ctx, com.Options{
				ProgID: a.cfg.Host.ProgID,
				Editor: a.cfg.Host.Editor,
			})
			return connErr
		})
		if err != nil {
			err = fmt.Errorf("connect to host: %w", err)
			if host != nil {
				err = errors.Join(err, host.Close())
			}
			return err
		}
	}

	if a.cfg.Trace.Enabled {
		tp, tpErr := traced.NewStdoutProvider(cmd.ErrOrStderr())
		if tpErr != nil {
			return errors.Join(fmt.Errorf("init tracing: %w", tpErr), host.Close())
		}
		defer func() {
			err = errors.Join(err, tp.Shutdown(context.WithoutCancel(ctx)))
		}()
		host = traced.New(host, tp)
	}

	session, err := application.NewSession(ctx, host, application.Options{
		SetupSuffix: a.cfg.Solution.SetupSuffix,
		ExportDir:   a.cfg.Solution.ExportDir,
		Fs:          fs,
	})
	if err != nil {
		return errors.Join(err, host.Close())
	}

	err = fn(ctx, session)
	err = errors.Join(err, session.Close())

	if dryRun != nil {
		rendered, renderErr := a.render(dryRun.Calls(), transcript.RenderOptions{})
		if renderErr != nil {
			return errors.Join(err, fmt.Errorf("render transcript: %w", renderErr))
		}
		if _, writeErr := fmt.Fprintln(cmd.OutOrStdout(), rendered); writeErr != nil {
			return errors.Join(err, writeErr)
		}
	}

	return err
}
