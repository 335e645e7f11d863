package interfaces

import "context"

// LocationChangeFunc is called after the addressable location has changed
type LocationChangeFunc func(ctx context.Context, location string)

// Location is the external addressing collaborator: it knows the current
// location, reports changes and accepts change requests.
type Location interface {
	CurrentLocation() string
	OnChange(fn LocationChangeFunc)
	NavigateTo(ctx context.Context, location string)
}

// History is a Location that also keeps the visited entries, like a
// browser tab.
type History interface {
	Location

	// Visit is a location change made by the user
	Visit(ctx context.Context, location string)
	Back(ctx context.Context) bool
	Forward(ctx context.Context) bool
	CanBack() bool
	CanForward() bool
}
