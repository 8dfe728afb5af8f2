package solver

// TridiagonalSystem stores row i as
//
//	Sub[i]*T[i-1] + Diag[i]*T[i] + Super[i]*T[i+1] = RHS[i]
//
// Rows 0 and n-1 carry the Dirichlet boundary conditions, row n1 the
// interface condition. The system is rebuilt from the previous field every
// time step; the buffers are reused.
type TridiagonalSystem struct {
	Sub   []float64
	Diag  []float64
	Super []float64
	RHS   []float64
}

func NewTridiagonalSystem(n int) *TridiagonalSystem {
	return &TridiagonalSystem{
		Sub:   make([]float64, n),
		Diag:  make([]float64, n),
		Super: make([]float64, n),
		RHS:   make([]float64, n),
	}
}

// assembler builds the implicit (backward-Euler) discretization of
// rho*c*dT/dt = lambda*d2T/dx2 for one time step. All rows move every term to
// one side, so the diagonal carries the negative sign:
//
//	sub = super = lambda/h², diag = -(sub + super + rho*c/tau),
//	rhs = -T_old*rho*c/tau
//
// which keeps |diag| > |sub|+|super| for any tau > 0 (diagonal dominance, the
// property the Thomas sweep relies on).
type assembler struct {
	grid   Grid
	layer1 Layer
	layer2 Layer
	policy InterfacePolicy
	tau    float64
	tl     float64
	tr     float64
}

func newAssembler(cfg Config, grid Grid) *assembler {
	return &assembler{
		grid:   grid,
		layer1: cfg.Layer1(),
		layer2: cfg.Layer2(),
		policy: cfg.Policy,
		tau:    cfg.Tau,
		tl:     cfg.Tl,
		tr:     cfg.Tr,
	}
}

// assemble populates sys from the previous field. Under the flux-continuity
// policy the interface row is not a stencil row at all: it is left zeroed
// here and replaced by the inline coupling formula during the forward sweep.
func (a *assembler) assemble(sys *TridiagonalSystem, old []float64) {
	n := a.grid.N()
	iface := a.grid.Interface()

	a.boundaryRow(sys, 0, a.tl)
	a.boundaryRow(sys, n-1, a.tr)

	for i := 1; i <= n-2; i++ {
		switch a.grid.Region(i) {
		case RegionLayer1:
			a.interiorRow(sys, i, a.layer1.Lambda, a.layer1.VolumetricHeat(), old)
		case RegionLayer2:
			a.interiorRow(sys, i, a.layer2.Lambda, a.layer2.VolumetricHeat(), old)
		case RegionInterface:
			if a.policy == FluxContinuity {
				sys.Sub[iface], sys.Diag[iface], sys.Super[iface], sys.RHS[iface] = 0, 0, 0, 0
				continue
			}
			lambda, volumetricHeat := blend(a.layer1, a.layer2)
			a.interiorRow(sys, i, lambda, volumetricHeat, old)
		}
	}
}

// boundaryRow encodes a fixed Dirichlet temperature: diag=1, rhs=value.
func (a *assembler) boundaryRow(sys *TridiagonalSystem, i int, value float64) {
	sys.Sub[i] = 0
	sys.Diag[i] = 1
	sys.Super[i] = 0
	sys.RHS[i] = value
}

func (a *assembler) interiorRow(sys *TridiagonalSystem, i int, lambda, volumetricHeat float64, old []float64) {
	h := a.grid.H()
	k := lambda / (h * h)
	capacity := volumetricHeat / a.tau
	sys.Sub[i] = k
	sys.Super[i] = k
	sys.Diag[i] = -(2*k + capacity)
	sys.RHS[i] = -old[i] * capacity
}

// coupling returns the one-sided conductances the flux-continuity sweep
// joins the two layers with. Only meaningful under that policy.
func (a *assembler) coupling() interfaceCoupling {
	h := a.grid.H()
	return interfaceCoupling{
		index: a.grid.Interface(),
		a1:    a.layer1.Lambda / h,
		a2:    a.layer2.Lambda / h,
	}
}
