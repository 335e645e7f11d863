package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/cli/config"
	httpctrl "github.com/secmon-lab/isogap/pkg/controller/http"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/repository/record"
	"github.com/secmon-lab/isogap/pkg/service/location"
	"github.com/secmon-lab/isogap/pkg/usecase"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe(version string) *cli.Command {
	var addr string
	var maxUploadSize int64
	var enableMetrics bool
	var watch bool
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var slackCfg config.Slack
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ISOGAP_ADDR"),
			Destination: &addr,
		},
		&cli.Int64Flag{
			Name:        "max-upload-size",
			Usage:       "Maximum size in bytes of one evidence upload request",
			Value:       httpctrl.DefaultMaxUploadSize,
			Sources:     cli.EnvVars("ISOGAP_MAX_UPLOAD_SIZE"),
			Destination: &maxUploadSize,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Serve Prometheus metrics on /metrics",
			Value:       true,
			Sources:     cli.EnvVars("ISOGAP_METRICS"),
			Destination: &enableMetrics,
		},
		&cli.BoolFlag{
			Name:        "watch",
			Usage:       "Reload submission histories changed by another writer (file backend only)",
			Value:       true,
			Sources:     cli.EnvVars("ISOGAP_WATCH"),
			Destination: &watch,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			ctx = logging.With(ctx, logger)

			flush, err := sentryCfg.Configure(ctx, version)
			if err != nil {
				return err
			}
			defer flush()

			risk, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load app config")
			}

			store, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			routes := model.DefaultRouteTable()
			notifier, err := slackCfg.Configure(ctx, routes)
			if err != nil {
				return err
			}

			uc := usecase.New(
				model.DefaultCatalog(),
				routes,
				location.NewHistory("/"),
				record.New(store),
				usecase.WithNotifier(notifier),
				usecase.WithRiskConfig(risk),
			)
			if err := uc.Session.Validate(); err != nil {
				return goerr.Wrap(err, "session is incomplete")
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if watcher, ok := store.(interfaces.BlobWatcher); ok && watch {
				if err := watcher.Watch(ctx, func(key string) {
					uc.Session.Invalidate(ctx, key)
				}); err != nil {
					return goerr.Wrap(err, "failed to watch repository")
				}
				logger.Info("Watching repository for external changes", "backend", repoCfg.Backend())
			}

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(uc.Session,
					httpctrl.WithMaxUploadSize(maxUploadSize),
					httpctrl.WithMetrics(enableMetrics),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logger.Info("Starting HTTP server",
					"addr", addr,
					"session_id", uc.Session.ID(),
					"repository", repoCfg,
					"slack", slackCfg,
					"sentry", sentryCfg,
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logger.Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}
			logger.Info("Server shutdown completed")
			return nil
		},
	}
}
