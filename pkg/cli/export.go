package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/cli/config"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/secmon-lab/isogap/pkg/repository/record"
	"github.com/secmon-lab/isogap/pkg/usecase"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
	"github.com/secmon-lab/isogap/pkg/utils/safe"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func cmdExport() *cli.Command {
	var format string
	var output string
	var domains []string
	var withPayload bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Output format [json|yaml]",
			Value:       "json",
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file path (stdout if omitted)",
			Destination: &output,
		},
		&cli.StringSliceFlag{
			Name:        "domain",
			Aliases:     []string{"d"},
			Usage:       "Assessment domain to export (repeatable, all domains if omitted)",
			Destination: &domains,
		},
		&cli.BoolFlag{
			Name:        "with-payload",
			Usage:       "Include evidence file contents",
			Destination: &withPayload,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "export",
		Aliases: []string{"e"},
		Usage:   "Export submission histories",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if format != "json" && format != "yaml" {
				return goerr.New("invalid export format", goerr.V("format", format))
			}

			store, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, store)

			ids := make([]types.DomainID, len(domains))
			for i, d := range domains {
				ids[i] = types.DomainID(d)
			}

			uc := usecase.NewExportUseCase(model.DefaultCatalog(), record.New(store))
			exports, err := uc.Export(ctx, ids, withPayload)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if output != "" {
				// #nosec G304 - output path is given by the operator
				f, err := os.Create(output)
				if err != nil {
					return goerr.Wrap(err, "failed to create output file", goerr.V("path", output))
				}
				defer safe.Close(ctx, f)
				w = f
			}

			if err := writeExport(w, format, exports); err != nil {
				return err
			}

			logging.From(ctx).Info("Exported submissions",
				"domains", len(exports),
				"format", format,
				"with_payload", withPayload,
			)
			return nil
		},
	}
}

// writeExport keeps the JSON field names in YAML output by converting
// through a generic JSON value
func writeExport(w io.Writer, format string, exports []*usecase.DomainExport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(exports); err != nil {
			return goerr.Wrap(err, "failed to encode export as JSON")
		}
		return nil

	case "yaml":
		raw, err := json.Marshal(exports)
		if err != nil {
			return goerr.Wrap(err, "failed to encode export")
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return goerr.Wrap(err, "failed to convert export")
		}

		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return goerr.Wrap(err, "failed to encode export as YAML")
		}
		if err := enc.Close(); err != nil {
			return goerr.Wrap(err, "failed to flush YAML encoder")
		}
		return nil

	default:
		return goerr.New("invalid export format", goerr.V("format", format))
	}
}
