package domain

import (
	"math"
	"math/rand"
)

// Exponential is the constant-failure-rate reliability model:
// P(t) = 1 - exp(-lambda*t).
type Exponential struct {
	Lambda, Time Expression
	cache        sampleCache
}

func NewExponential(lambda, t Expression) (*Exponential, error) {
	l, err := lambda.Mean()
	if err != nil {
		return nil, err
	}
	if l < 0 {
		return nil, NewValidationError(Location{}, "exponential lambda must be >= 0, got %g", l)
	}
	return &Exponential{Lambda: lambda, Time: t}, nil
}

func exponentialOf(lambda, t float64) float64 { return 1 - math.Exp(-lambda*t) }

func (e *Exponential) Mean() (float64, error) {
	l, err := e.Lambda.Mean()
	if err != nil {
		return 0, err
	}
	t, err := e.Time.Mean()
	if err != nil {
		return 0, err
	}
	return exponentialOf(l, t), nil
}

func (e *Exponential) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := e.cache.get(); ok {
		return v, nil
	}
	l, err := e.Lambda.Sample(rng)
	if err != nil {
		return 0, err
	}
	t, err := e.Time.Sample(rng)
	if err != nil {
		return 0, err
	}
	v := exponentialOf(l, t)
	e.cache.set(v)
	return v, nil
}

func (e *Exponential) Reset()                 { e.cache.resetWith(e.Children()) }
func (e *Exponential) Children() []Expression { return []Expression{e.Lambda, e.Time} }
func (e *Exponential) IsConstant() bool       { return isConstantOf(false, e.Children()) }
func (e *Exponential) Min() (float64, error)  { return 0, nil }
func (e *Exponential) Max() (float64, error)  { return 1, nil }

// GLM is the generalised repairable-component availability model: a
// component with failure rate Lambda and repair rate Mu, whose
// unavailability relaxes from an initial value Gamma at t=0 toward the
// long-run unavailability lambda/(lambda+mu) as t grows.
type GLM struct {
	Gamma, Lambda, Mu, Time Expression
	cache                   sampleCache
}

func NewGLM(gamma, lambda, mu, t Expression) (*GLM, error) {
	return &GLM{Gamma: gamma, Lambda: lambda, Mu: mu, Time: t}, nil
}

func glmOf(gamma, lambda, mu, t float64) float64 {
	rate := lambda + mu
	if rate == 0 {
		return gamma
	}
	steady := lambda / rate
	return steady + (gamma-steady)*math.Exp(-rate*t)
}

func (g *GLM) Mean() (float64, error) {
	vals, err := meanAll(g.Children())
	if err != nil {
		return 0, err
	}
	return glmOf(vals[0], vals[1], vals[2], vals[3]), nil
}

func (g *GLM) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := g.cache.get(); ok {
		return v, nil
	}
	vals, err := sampleAll(g.Children(), rng)
	if err != nil {
		return 0, err
	}
	v := glmOf(vals[0], vals[1], vals[2], vals[3])
	g.cache.set(v)
	return v, nil
}

func (g *GLM) Reset() { g.cache.resetWith(g.Children()) }
func (g *GLM) Children() []Expression {
	return []Expression{g.Gamma, g.Lambda, g.Mu, g.Time}
}
func (g *GLM) IsConstant() bool      { return isConstantOf(false, g.Children()) }
func (g *GLM) Min() (float64, error) { return 0, nil }
func (g *GLM) Max() (float64, error) { return 1, nil }

// Weibull is the three-parameter Weibull failure model with scale Alpha,
// shape Beta and start-of-life offset T0: F(t) = 1 - exp(-((t-t0)/alpha)^beta)
// for t >= t0, else 0.
type Weibull struct {
	Alpha, Beta, T0, Time Expression
	cache                 sampleCache
}

func NewWeibull(alpha, beta, t0, t Expression) (*Weibull, error) {
	a, err := alpha.Mean()
	if err != nil {
		return nil, err
	}
	b, err := beta.Mean()
	if err != nil {
		return nil, err
	}
	if a <= 0 || b <= 0 {
		return nil, NewValidationError(Location{}, "weibull requires alpha > 0 and beta > 0, got alpha=%g beta=%g", a, b)
	}
	return &Weibull{Alpha: alpha, Beta: beta, T0: t0, Time: t}, nil
}

func weibullOf(alpha, beta, t0, t float64) float64 {
	if t < t0 {
		return 0
	}
	return 1 - math.Exp(-math.Pow((t-t0)/alpha, beta))
}

func (w *Weibull) Mean() (float64, error) {
	vals, err := meanAll(w.Children())
	if err != nil {
		return 0, err
	}
	return weibullOf(vals[0], vals[1], vals[2], vals[3]), nil
}

func (w *Weibull) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := w.cache.get(); ok {
		return v, nil
	}
	vals, err := sampleAll(w.Children(), rng)
	if err != nil {
		return 0, err
	}
	v := weibullOf(vals[0], vals[1], vals[2], vals[3])
	w.cache.set(v)
	return v, nil
}

func (w *Weibull) Reset() { w.cache.resetWith(w.Children()) }
func (w *Weibull) Children() []Expression {
	return []Expression{w.Alpha, w.Beta, w.T0, w.Time}
}
func (w *Weibull) IsConstant() bool      { return isConstantOf(false, w.Children()) }
func (w *Weibull) Min() (float64, error) { return 0, nil }
func (w *Weibull) Max() (float64, error) { return 1, nil }
