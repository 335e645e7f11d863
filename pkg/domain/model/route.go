package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/types"
)

// Route binds a view to the location a user can bookmark
type Route struct {
	View     types.View `json:"view"`
	Location string     `json:"location"`
}

// RouteTable is the declared Location <-> View table. Each view and each
// location appears at most once, so lookups in both directions are exact.
type RouteTable struct {
	routes     []Route
	byLocation map[string]types.View
	byView     map[types.View]string
}

// NewRouteTable builds and validates a route table
func NewRouteTable(routes ...Route) (*RouteTable, error) {
	t := &RouteTable{
		byLocation: make(map[string]types.View, len(routes)),
		byView:     make(map[types.View]string, len(routes)),
	}
	for _, r := range routes {
		if !r.View.IsValid() {
			return nil, goerr.Wrap(ErrInvalidRouteTable, "unknown view", goerr.V(ViewKey, r.View))
		}
		if !strings.HasPrefix(r.Location, "/") {
			return nil, goerr.Wrap(ErrInvalidRouteTable, "location must start with /", goerr.V(LocationKey, r.Location))
		}
		loc := NormalizeLocation(r.Location)
		if _, exists := t.byView[r.View]; exists {
			return nil, goerr.Wrap(ErrInvalidRouteTable, "view has more than one location", goerr.V(ViewKey, r.View))
		}
		if v, exists := t.byLocation[loc]; exists {
			return nil, goerr.Wrap(ErrInvalidRouteTable, "location is bound to more than one view",
				goerr.V(LocationKey, loc), goerr.V(ViewKey, v))
		}
		t.byLocation[loc] = r.View
		t.byView[r.View] = loc
		t.routes = append(t.routes, Route{View: r.View, Location: loc})
	}
	return t, nil
}

// DefaultRouteTable makes every view of the closed set deep-linkable.
// The dashboard lives at the root; every other view at /<view>.
func DefaultRouteTable() *RouteTable {
	routes := make([]Route, 0, len(types.AllViews()))
	for _, v := range types.AllViews() {
		loc := "/" + v.String()
		if v == types.ViewDashboard {
			loc = "/"
		}
		routes = append(routes, Route{View: v, Location: loc})
	}
	t, err := NewRouteTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// NormalizeLocation strips query, fragment and trailing slashes. The rest of
// the path is kept verbatim, so a scheme or a doubled leading slash never
// matches a route. An empty path is the root.
func NormalizeLocation(location string) string {
	loc := location
	if i := strings.IndexAny(loc, "?#"); i >= 0 {
		loc = loc[:i]
	}
	loc = strings.TrimRight(loc, "/")
	if loc == "" {
		return "/"
	}
	if !strings.HasPrefix(loc, "/") {
		loc = "/" + loc
	}
	return loc
}

// Resolve maps a location to its view
func (t *RouteTable) Resolve(location string) (types.View, bool) {
	v, ok := t.byLocation[NormalizeLocation(location)]
	return v, ok
}

// LocationOf maps a view to its location. Views without an entry are not
// deep-linkable.
func (t *RouteTable) LocationOf(view types.View) (string, bool) {
	loc, ok := t.byView[view]
	return loc, ok
}

// Routes returns the table entries in declaration order
func (t *RouteTable) Routes() []Route {
	routes := make([]Route, len(t.routes))
	copy(routes, t.routes)
	return routes
}

// Unlinked returns the views of the closed set that have no location
func (t *RouteTable) Unlinked() []types.View {
	var views []types.View
	for _, v := range types.AllViews() {
		if _, ok := t.byView[v]; !ok {
			views = append(views, v)
		}
	}
	return views
}
