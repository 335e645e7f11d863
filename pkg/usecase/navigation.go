package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/secmon-lab/isogap/pkg/service/metrics"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
)

// NavigationController owns the active view. The view is derived from the
// external location on every change and reflected back into it when a page
// requests another view.
//
// The controller is not safe for concurrent use; Session serializes events.
type NavigationController struct {
	routes   *model.RouteTable
	location interfaces.Location
	active   types.View
}

type NavigationOption func(*NavigationController)

// WithInitialView overrides the view derived from the current location
func WithInitialView(view types.View) NavigationOption {
	return func(c *NavigationController) {
		if view.IsValid() {
			c.active = view
		}
	}
}

// NewNavigationController derives the initial view from the current
// location and subscribes to location changes.
func NewNavigationController(routes *model.RouteTable, location interfaces.Location, opts ...NavigationOption) *NavigationController {
	c := &NavigationController{
		routes:   routes,
		location: location,
		active:   types.DefaultView,
	}
	if view, ok := routes.Resolve(location.CurrentLocation()); ok {
		c.active = view
	}
	for _, opt := range opts {
		opt(c)
	}

	location.OnChange(c.OnLocationChanged)
	return c
}

// OnLocationChanged sets the active view mapped to location. Locations
// missing from the route table fall back to the dashboard.
func (c *NavigationController) OnLocationChanged(ctx context.Context, location string) {
	view, ok := c.routes.Resolve(location)
	if !ok {
		logging.From(ctx).Warn("UnknownLocationWarning: no view for location, showing dashboard",
			"location", location,
		)
		metrics.NavigationEvents.WithLabelValues(metrics.OutcomeUnknown).Inc()
		c.active = types.DefaultView
		return
	}

	metrics.NavigationEvents.WithLabelValues(metrics.OutcomeResolved).Inc()
	c.active = view
}

// RequestView switches to view. The location is updated only when the view
// has one and it differs from the current location.
func (c *NavigationController) RequestView(ctx context.Context, view types.View) error {
	if !view.IsValid() {
		return goerr.Wrap(ErrUnknownView, "requested view is not defined", goerr.V(model.ViewKey, view))
	}

	metrics.ViewRequests.WithLabelValues(view.String()).Inc()
	c.active = view

	loc, ok := c.routes.LocationOf(view)
	if !ok {
		return nil
	}
	if loc != model.NormalizeLocation(c.location.CurrentLocation()) {
		c.location.NavigateTo(ctx, loc)
	}
	return nil
}

// Active returns the active view
func (c *NavigationController) Active() types.View {
	return c.active
}

// Location returns the current external location
func (c *NavigationController) Location() string {
	return c.location.CurrentLocation()
}
