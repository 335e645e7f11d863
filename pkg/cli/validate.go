package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/cli/config"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/repository/record"
	"github.com/secmon-lab/isogap/pkg/service/location"
	"github.com/secmon-lab/isogap/pkg/usecase"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
	"github.com/secmon-lab/isogap/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var checkDB bool

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-db",
		Usage:       "Decode every stored submission history of the configured repository",
		Destination: &checkDB,
	})
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the app config and optionally the stored submission histories",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			risk, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			logger.Info("Configuration validation passed",
				"config", appCfg.Path(),
				"risk_count", len(risk.Risks),
				"trend_points", len(risk.Trend),
			)

			catalog := model.DefaultCatalog()
			session := usecase.NewSession(catalog, model.DefaultRouteTable(), location.NewHistory("/"), nil, usecase.WithRiskConfig(risk))
			if err := session.Validate(); err != nil {
				return goerr.Wrap(err, "page registry validation failed")
			}

			if !checkDB {
				logger.Info("Skipping stored submission check, use --check-db to enable it")
				return nil
			}

			store, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, store)

			repo := record.New(store)
			var issues int
			for _, d := range catalog.List() {
				n, err := repo.Inspect(ctx, d.StorageKey)
				if err != nil {
					if !errors.Is(err, record.ErrMalformed) {
						return goerr.Wrap(err, "stored submission check failed", goerr.V(model.DomainIDKey, d.ID))
					}
					issues++
					logger.Warn("Stored submissions are malformed and would be listed as empty",
						"domain", d.ID,
						"storage_key", d.StorageKey,
						"error", err,
					)
					continue
				}
				logger.Info("Stored submissions checked", "domain", d.ID, "count", n)
			}

			if issues > 0 {
				return fmt.Errorf("stored submission check found %d malformed history(ies)", issues)
			}
			logger.Info("Stored submission check passed")
			return nil
		},
	}
}
