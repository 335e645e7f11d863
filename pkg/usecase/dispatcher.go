package usecase

import (
	"context"

	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
)

// RequestViewFunc asks the navigation controller to switch view
type RequestViewFunc func(ctx context.Context, view types.View) error

// Component renders one view
type Component interface {
	Render(ctx context.Context, requestView RequestViewFunc) (*model.Page, error)
}

// Dispatcher maps every view to the component that renders it. Views
// without a registered component are rendered by the fallback.
type Dispatcher struct {
	components map[types.View]Component
	fallback   Component
}

func NewDispatcher(fallback Component) *Dispatcher {
	return &Dispatcher{
		components: make(map[types.View]Component),
		fallback:   fallback,
	}
}

func (d *Dispatcher) Register(view types.View, component Component) {
	d.components[view] = component
}

// Dispatch never returns nil
func (d *Dispatcher) Dispatch(view types.View) Component {
	if c, ok := d.components[view]; ok {
		return c
	}
	return d.fallback
}

// Registered reports whether view has its own component
func (d *Dispatcher) Registered(view types.View) bool {
	_, ok := d.components[view]
	return ok
}
