package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdRoutes() *cli.Command {
	var noColor bool

	return &cli.Command{
		Name:  "routes",
		Usage: "Print the route table and the views without a location",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "no-color",
				Usage:       "Disable colored output",
				Sources:     cli.EnvVars("NO_COLOR"),
				Destination: &noColor,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if noColor {
				color.NoColor = true
			}
			printRoutes(os.Stdout, model.DefaultRouteTable(), model.DefaultCatalog())
			return nil
		},
	}
}

func printRoutes(w io.Writer, routes *model.RouteTable, catalog *model.Catalog) {
	header := color.New(color.Bold)
	loc := color.New(color.FgCyan)
	warn := color.New(color.FgYellow)

	_, _ = header.Fprintf(w, "%-32s %-34s %s\n", "VIEW", "LOCATION", "DOMAIN")
	for _, r := range routes.Routes() {
		_, _ = fmt.Fprintf(w, "%-32s ", r.View)
		_, _ = loc.Fprintf(w, "%-34s", r.Location)
		_, _ = fmt.Fprintf(w, " %s\n", domainOf(catalog, r.View))
	}

	unlinked := routes.Unlinked()
	if len(unlinked) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = warn.Fprintf(w, "%d view(s) without location, reachable only through view requests:\n", len(unlinked))
	for _, v := range unlinked {
		_, _ = warn.Fprintf(w, "  %s\n", v)
	}
}

func domainOf(catalog *model.Catalog, view types.View) string {
	d, _, ok := catalog.ByView(view)
	if !ok {
		return "-"
	}
	return string(d.ID)
}
