package solver

import (
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// InterfacePolicy selects how the node shared by the two layers is treated.
type InterfacePolicy int

const (
	// AveragedCoefficients treats the interface node as a material with
	// conductivity (lambda1+lambda2)/2 and heat capacity (rho1*c1+rho2*c2)/2
	// and applies the standard interior stencil to it.
	AveragedCoefficients InterfacePolicy = iota
	// FluxContinuity enforces continuous temperature and equal heat flux at
	// the interface node. The interface coefficients are computed inline
	// during the left-to-right forward elimination, see thomas.go.
	FluxContinuity
)

func (p InterfacePolicy) String() string {
	switch p {
	case AveragedCoefficients:
		return "average"
	case FluxContinuity:
		return "flux"
	}
	return "unknown"
}

var (
	ErrLayerSize   = errors.New("each layer needs at least one node")
	ErrGeometry    = errors.New("rod length and end time must be positive")
	ErrTimeStep    = errors.New("time step must be positive")
	ErrCoefficient = errors.New("physical coefficients must be strictly positive")
	ErrPolicy      = errors.New("unknown interface policy")
)

// Config holds every construction parameter of the solver. It is validated
// once and never changes afterwards.
type Config struct {
	N1 int // node count of layer 1
	N2 int // node count of layer 2

	L    float64 // rod length, m
	TEnd float64 // end time of the march, s
	Tau  float64 // time step, s

	Lambda1 float64 // conductivity of layer 1, W/(m·K)
	Lambda2 float64
	Rho1    float64 // density of layer 1, kg/m³
	Rho2    float64
	C1      float64 // specific heat of layer 1, J/(kg·K)
	C2      float64

	T0 float64 // initial uniform temperature
	Tl float64 // left boundary temperature, pinned every step
	Tr float64 // right boundary temperature, pinned every step

	Policy InterfacePolicy
}

func (cfg Config) Validate() error {
	if cfg.N1 < 1 || cfg.N2 < 1 {
		return errors.Wrapf(ErrLayerSize, "n1=%d n2=%d", cfg.N1, cfg.N2)
	}
	if cfg.L <= 0 || cfg.TEnd <= 0 {
		return errors.Wrapf(ErrGeometry, "L=%v tEnd=%v", cfg.L, cfg.TEnd)
	}
	if cfg.Tau <= 0 {
		return errors.Wrapf(ErrTimeStep, "tau=%v", cfg.Tau)
	}
	coefficients := []struct {
		name  string
		value float64
	}{
		{"lambda1", cfg.Lambda1}, {"lambda2", cfg.Lambda2},
		{"rho1", cfg.Rho1}, {"rho2", cfg.Rho2},
		{"c1", cfg.C1}, {"c2", cfg.C2},
	}
	for _, c := range coefficients {
		if c.value <= 0 {
			return errors.Wrapf(ErrCoefficient, "%s=%v", c.name, c.value)
		}
	}
	if cfg.Policy != AveragedCoefficients && cfg.Policy != FluxContinuity {
		return errors.Wrapf(ErrPolicy, "policy=%d", cfg.Policy)
	}
	return nil
}

// Layer1 returns the material of the first layer.
func (cfg Config) Layer1() Layer {
	return Layer{Lambda: cfg.Lambda1, Rho: cfg.Rho1, C: cfg.C1}
}

// Layer2 returns the material of the second layer.
func (cfg Config) Layer2() Layer {
	return Layer{Lambda: cfg.Lambda2, Rho: cfg.Rho2, C: cfg.C2}
}

// LoadConfig reads the solver section of an ini file. Missing keys fall back
// to the built-in two-layer steel/copper scenario.
func LoadConfig(path string) (Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "load solver config")
	}
	section := file.Section("solver")
	cfg := Config{
		N1:      section.Key("N1").MustInt(50),
		N2:      section.Key("N2").MustInt(50),
		L:       section.Key("L").MustFloat64(0.4),
		TEnd:    section.Key("TEnd").MustFloat64(800),
		Tau:     section.Key("Tau").MustFloat64(2),
		Lambda1: section.Key("Lambda1").MustFloat64(46),
		Lambda2: section.Key("Lambda2").MustFloat64(384),
		Rho1:    section.Key("Rho1").MustFloat64(7800),
		Rho2:    section.Key("Rho2").MustFloat64(8800),
		C1:      section.Key("C1").MustFloat64(460),
		C2:      section.Key("C2").MustFloat64(381),
		T0:      section.Key("T0").MustFloat64(283),
		Tl:      section.Key("Tl").MustFloat64(373),
		Tr:      section.Key("Tr").MustFloat64(323),
	}
	switch policy := section.Key("Policy").MustString("average"); policy {
	case "average":
		cfg.Policy = AveragedCoefficients
	case "flux":
		cfg.Policy = FluxContinuity
	default:
		return Config{}, errors.Wrapf(ErrPolicy, "policy=%q", policy)
	}
	return cfg, nil
}
