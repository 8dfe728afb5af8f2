package solver

// Layer holds the physical coefficients of one homogeneous material layer.
type Layer struct {
	Lambda float64 // thermal conductivity, W/(m·K)
	Rho    float64 // density, kg/m³
	C      float64 // specific heat, J/(kg·K)
}

// VolumetricHeat is the rho*c product used by the implicit stencil.
func (l Layer) VolumetricHeat() float64 { return l.Rho * l.C }

// Diffusivity is lambda/(rho*c), the rate at which the layer equilibrates.
func (l Layer) Diffusivity() float64 { return l.Lambda / (l.Rho * l.C) }

// blend is the averaged-coefficient interface material: arithmetic mean of
// the conductivities and of the volumetric heat capacities.
func blend(a, b Layer) (lambda, volumetricHeat float64) {
	return (a.Lambda + b.Lambda) / 2, (a.VolumetricHeat() + b.VolumetricHeat()) / 2
}
