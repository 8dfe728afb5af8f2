package solver

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrNonFinite signals a NaN or Inf temperature after a step; the run is
// halted instead of letting the corruption spread through the history.
var ErrNonFinite = errors.New("non-finite temperature in field")

// Solver marches the composite-rod temperature field from t=0 to tEnd with
// the implicit scheme, one tridiagonal solve per step.
type Solver struct {
	cfg  Config
	grid Grid

	asm    *assembler
	thomas *thomasSolver
	sys    *TridiagonalSystem
	iface  *interfaceCoupling // nil under the averaged-coefficient policy

	// field and next alternate each step: the assembler reads field, the
	// sweep writes next, then the two are swapped.
	field []float64
	next  []float64

	history [][]float64
	step    int
	steps   int
}

// NewSolver validates cfg and prepares the initial field: uniform T0 with
// the boundary nodes pinned to Tl and Tr. The step count floor(tEnd/tau) is
// fixed here once; a residual partial step is dropped, the march does not
// try to hit tEnd exactly.
func NewSolver(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "solver config")
	}

	grid := NewGrid(cfg.N1, cfg.N2, cfg.L)
	n := grid.N()
	s := &Solver{
		cfg:    cfg,
		grid:   grid,
		asm:    newAssembler(cfg, grid),
		thomas: newThomasSolver(n),
		sys:    NewTridiagonalSystem(n),
		field:  make([]float64, n),
		next:   make([]float64, n),
		steps:  int(cfg.TEnd / cfg.Tau),
	}
	if cfg.Policy == FluxContinuity {
		coupling := s.asm.coupling()
		s.iface = &coupling
	}

	for i := range s.field {
		s.field[i] = cfg.T0
	}
	s.field[0] = cfg.Tl
	s.field[n-1] = cfg.Tr

	log.WithFields(log.Fields{
		"n":      n,
		"h":      grid.H(),
		"tau":    cfg.Tau,
		"steps":  s.steps,
		"policy": cfg.Policy.String(),
	}).Info("solver initialized")
	return s, nil
}

// Advance performs one implicit step: assemble, sweep, swap, record.
func (s *Solver) Advance() error {
	s.asm.assemble(s.sys, s.field)
	if err := s.thomas.solve(s.sys, s.iface, s.next); err != nil {
		return err
	}
	for i, v := range s.next {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrNonFinite, "node %d after step %d", i, s.step+1)
		}
	}
	s.field, s.next = s.next, s.field

	snapshot := make([]float64, len(s.field))
	copy(snapshot, s.field)
	s.history = append(s.history, snapshot)
	s.step++
	return nil
}

// Solve runs the remaining steps of the march to completion.
func (s *Solver) Solve() error {
	for s.step < s.steps {
		if err := s.Advance(); err != nil {
			return errors.Wrapf(err, "step %d", s.step+1)
		}
	}
	log.WithFields(log.Fields{
		"steps":     s.step,
		"interface": s.field[s.grid.Interface()],
	}).Info("time march finished")
	return nil
}

// Done reports whether the configured number of steps has been taken.
func (s *Solver) Done() bool { return s.step >= s.steps }

// Step is the number of completed steps.
func (s *Solver) Step() int { return s.step }

// Steps is the total number of steps the march will take.
func (s *Solver) Steps() int { return s.steps }

// CurrentField returns a copy of the latest temperature field.
func (s *Solver) CurrentField() []float64 {
	out := make([]float64, len(s.field))
	copy(out, s.field)
	return out
}

// History returns one snapshot per completed step, oldest first. The
// returned slices must not be modified.
func (s *Solver) History() [][]float64 { return s.history }

// Coordinates returns the x position of every node.
func (s *Solver) Coordinates() []float64 { return s.grid.Coordinates() }

// Grid exposes the node layout, for rendering clients.
func (s *Solver) Grid() Grid { return s.grid }
