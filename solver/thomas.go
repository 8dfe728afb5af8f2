package solver

import (
	"math"

	"github.com/pkg/errors"
)

// ErrBreakdown signals a vanishing elimination denominator. Diagonal
// dominance of every assembled row makes this unreachable for a valid
// configuration; hitting it means the assembler produced a bad system.
var ErrBreakdown = errors.New("tridiagonal elimination denominator vanished")

const denominatorFloor = 1e-12

// interfaceCoupling carries the one-sided conductances A1=lambda1/h and
// A2=lambda2/h used to join the layer-1 and layer-2 sweeps under the
// flux-continuity policy. The formula is tied to the left-to-right sweep
// order: it folds the accumulated layer-1 sweep state into the interface
// balance A1*(T[i]-T[i-1]) = A2*(T[i+1]-T[i]).
type interfaceCoupling struct {
	index int
	a1    float64
	a2    float64
}

// thomasSolver runs forward elimination and back substitution over one
// TridiagonalSystem. The sweep coefficients alpha and beta live only within
// one solve call; the buffers are preallocated once and reused every step.
type thomasSolver struct {
	alpha []float64
	beta  []float64
}

func newThomasSolver(n int) *thomasSolver {
	return &thomasSolver{
		alpha: make([]float64, n),
		beta:  make([]float64, n),
	}
}

// solve computes out such that every row of sys holds. The sweep relation is
// T[i] = alpha[i+1]*T[i+1] + beta[i+1]. When iface is non-nil, row
// iface.index is skipped and the interface coefficients are derived inline
// from the coupling instead:
//
//	denom      = A1 + A2 - A1*alpha[i]
//	alpha[i+1] = A2/denom
//	beta[i+1]  = A1*beta[i]/denom
//
// out and the system rows must have the same length; out must not alias the
// field the system was assembled from.
func (t *thomasSolver) solve(sys *TridiagonalSystem, iface *interfaceCoupling, out []float64) error {
	n := len(sys.Diag)

	t.alpha[1] = -sys.Super[0] / sys.Diag[0]
	t.beta[1] = sys.RHS[0] / sys.Diag[0]
	for i := 1; i <= n-2; i++ {
		if iface != nil && i == iface.index {
			denom := iface.a1 + iface.a2 - iface.a1*t.alpha[i]
			if math.Abs(denom) < denominatorFloor {
				return errors.Wrapf(ErrBreakdown, "interface row %d", i)
			}
			t.alpha[i+1] = iface.a2 / denom
			t.beta[i+1] = iface.a1 * t.beta[i] / denom
			continue
		}
		denom := sys.Sub[i]*t.alpha[i] + sys.Diag[i]
		if math.Abs(denom) < denominatorFloor {
			return errors.Wrapf(ErrBreakdown, "row %d", i)
		}
		t.alpha[i+1] = -sys.Super[i] / denom
		t.beta[i+1] = (sys.RHS[i] - sys.Sub[i]*t.beta[i]) / denom
	}

	denom := sys.Diag[n-1] + sys.Sub[n-1]*t.alpha[n-1]
	if math.Abs(denom) < denominatorFloor {
		return errors.Wrapf(ErrBreakdown, "row %d", n-1)
	}
	out[n-1] = (sys.RHS[n-1] - sys.Sub[n-1]*t.beta[n-1]) / denom
	for i := n - 2; i >= 0; i-- {
		out[i] = t.alpha[i+1]*out[i+1] + t.beta[i+1]
	}
	return nil
}
