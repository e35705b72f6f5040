package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/bodysim/internal/integrators"
	"github.com/san-kum/bodysim/internal/sim"
)

var ErrUnknownIntegrator = errors.New("experiment: unknown integrator")

// Registry maps integrator names to constructors. Each lookup builds a new
// integrator, so stage buffers are never shared between runs.
type Registry struct {
	integrators map[string]func() sim.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() sim.Integrator),
	}

	r.Register("euler", func() sim.Integrator { return integrators.NewEuler() })
	r.Register("rk4", func() sim.Integrator { return integrators.NewRK4() })

	return r
}

// Register adds or replaces an integrator constructor.
func (r *Registry) Register(name string, fn func() sim.Integrator) {
	r.integrators[name] = fn
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownIntegrator, name, r.ListIntegrators())
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
