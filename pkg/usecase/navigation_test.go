package usecase_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/secmon-lab/isogap/pkg/service/location"
	"github.com/secmon-lab/isogap/pkg/usecase"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
)

// mockLocation records NavigateTo calls and notifies like a real location
type mockLocation struct {
	current     string
	navigations []string
	subscribers []interfaces.LocationChangeFunc
}

func (m *mockLocation) CurrentLocation() string { return m.current }

func (m *mockLocation) OnChange(fn interfaces.LocationChangeFunc) {
	m.subscribers = append(m.subscribers, fn)
}

func (m *mockLocation) NavigateTo(ctx context.Context, loc string) {
	m.navigations = append(m.navigations, loc)
	m.current = loc
	for _, fn := range m.subscribers {
		fn(ctx, loc)
	}
}

func newLogContext() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return logging.With(context.Background(), logger), &buf
}

func TestNavigationInitialView(t *testing.T) {
	testCases := []struct {
		name     string
		location string
		expected types.View
	}{
		{name: "root is dashboard", location: "/", expected: types.ViewDashboard},
		{name: "mapped location", location: "/support-reports", expected: types.ViewSupportReports},
		{name: "unknown location", location: "/nowhere", expected: types.ViewDashboard},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := usecase.NewNavigationController(model.DefaultRouteTable(), &mockLocation{current: tc.location})
			gt.Value(t, c.Active()).Equal(tc.expected)
		})
	}
}

func TestNavigationRoundTrip(t *testing.T) {
	ctx := context.Background()
	loc := &mockLocation{current: "/"}
	c := usecase.NewNavigationController(model.DefaultRouteTable(), loc)

	c.OnLocationChanged(ctx, "/leadership")
	original := c.Active()
	gt.Value(t, original).Equal(types.ViewLeadership)

	gt.NoError(t, c.RequestView(ctx, types.ViewPlanningReports)).Required()
	gt.Value(t, c.Active()).Equal(types.ViewPlanningReports)

	c.OnLocationChanged(ctx, "/leadership")
	gt.Value(t, c.Active()).Equal(original)
}

func TestNavigationRequestViewUpdatesLocation(t *testing.T) {
	t.Run("exactly one update from a different location", func(t *testing.T) {
		ctx := context.Background()
		loc := &mockLocation{current: "/"}
		c := usecase.NewNavigationController(model.DefaultRouteTable(), loc)

		gt.NoError(t, c.RequestView(ctx, types.ViewOperation)).Required()
		gt.Value(t, loc.navigations).Equal([]string{"/operation"})
		gt.Value(t, c.Active()).Equal(types.ViewOperation)
		gt.Value(t, c.Location()).Equal("/operation")
	})

	t.Run("no update when already there", func(t *testing.T) {
		ctx := context.Background()
		loc := &mockLocation{current: "/operation"}
		c := usecase.NewNavigationController(model.DefaultRouteTable(), loc)

		gt.NoError(t, c.RequestView(ctx, types.ViewOperation)).Required()
		gt.Array(t, loc.navigations).Length(0)
		gt.Value(t, c.Active()).Equal(types.ViewOperation)
	})

	t.Run("unlinked view never updates location", func(t *testing.T) {
		ctx := context.Background()
		routes, err := model.NewRouteTable(
			model.Route{View: types.ViewDashboard, Location: "/"},
			model.Route{View: types.ViewLeadership, Location: "/leadership"},
		)
		gt.NoError(t, err).Required()

		loc := &mockLocation{current: "/leadership"}
		c := usecase.NewNavigationController(routes, loc)

		gt.NoError(t, c.RequestView(ctx, types.ViewLeadershipReports)).Required()
		gt.Array(t, loc.navigations).Length(0)
		gt.Value(t, c.Active()).Equal(types.ViewLeadershipReports)
		gt.Value(t, c.Location()).Equal("/leadership")
	})

	t.Run("unknown view is rejected", func(t *testing.T) {
		ctx := context.Background()
		loc := &mockLocation{current: "/support"}
		c := usecase.NewNavigationController(model.DefaultRouteTable(), loc)

		err := c.RequestView(ctx, types.View("settings"))
		gt.Error(t, err).Is(usecase.ErrUnknownView)
		gt.Value(t, c.Active()).Equal(types.ViewSupport)
		gt.Array(t, loc.navigations).Length(0)
	})
}

func TestNavigationUnknownLocation(t *testing.T) {
	ctx, buf := newLogContext()
	loc := &mockLocation{current: "/risk-analysis"}
	c := usecase.NewNavigationController(model.DefaultRouteTable(), loc)

	c.OnLocationChanged(ctx, "/unknown-path")

	gt.Value(t, c.Active()).Equal(types.ViewDashboard)
	gt.Value(t, strings.Count(buf.String(), "UnknownLocationWarning")).Equal(1)
	gt.String(t, buf.String()).Contains("/unknown-path")
}

func TestNavigationMalformedLocation(t *testing.T) {
	for _, location := range []string{"//context-org", "http://evil/leadership"} {
		t.Run(location, func(t *testing.T) {
			ctx, buf := newLogContext()
			loc := &mockLocation{current: "/risk-analysis"}
			c := usecase.NewNavigationController(model.DefaultRouteTable(), loc)

			c.OnLocationChanged(ctx, location)

			gt.Value(t, c.Active()).Equal(types.ViewDashboard)
			gt.Value(t, strings.Count(buf.String(), "UnknownLocationWarning")).Equal(1)
		})
	}
}

func TestNavigationIdempotent(t *testing.T) {
	ctx := context.Background()
	c := usecase.NewNavigationController(model.DefaultRouteTable(), &mockLocation{current: "/"})

	c.OnLocationChanged(ctx, "/improvement")
	c.OnLocationChanged(ctx, "/improvement")
	gt.Value(t, c.Active()).Equal(types.ViewImprovement)
}

func TestNavigationWithHistory(t *testing.T) {
	ctx := context.Background()
	h := location.NewHistory("/")
	c := usecase.NewNavigationController(model.DefaultRouteTable(), h)

	h.Visit(ctx, "/support")
	gt.Value(t, c.Active()).Equal(types.ViewSupport)

	gt.NoError(t, c.RequestView(ctx, types.ViewSupportReports)).Required()
	gt.Value(t, h.CurrentLocation()).Equal("/support-reports")

	gt.Bool(t, h.Back(ctx)).True()
	gt.Value(t, c.Active()).Equal(types.ViewSupport)

	gt.Bool(t, h.Forward(ctx)).True()
	gt.Value(t, c.Active()).Equal(types.ViewSupportReports)
}

func TestNavigationActiveAlwaysInClosedSet(t *testing.T) {
	ctx := context.Background()
	c := usecase.NewNavigationController(model.DefaultRouteTable(), &mockLocation{current: "/"})

	for _, loc := range []string{"", "/", "//", "/leadership?x=1", "/leadership/", "/a/b/c", "/LEADERSHIP", "#frag"} {
		c.OnLocationChanged(ctx, loc)
		gt.B(t, c.Active().IsValid()).Describef("location %q", loc).True()
	}
}
