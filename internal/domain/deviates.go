package domain

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// randSource adapts a *rand.Rand (already seeded by the sampling cycle) to
// gonum's distuv.Rander. *rand.Rand implements Int63/Seed, satisfying
// distuv's rand.Source requirement directly.
type randSource = *rand.Rand

// Uniform is a continuous uniform deviate over [min, max]. Mean()
// substitutes the mean of each parameter rather than sampling, per the
// v0.12 rule.
type Uniform struct {
	LowExpr, HighExpr Expression
	cache             sampleCache
}

func NewUniform(low, high Expression) (*Uniform, error) {
	lo, err := low.Mean()
	if err != nil {
		return nil, err
	}
	hi, err := high.Mean()
	if err != nil {
		return nil, err
	}
	if !(lo < hi) {
		return nil, NewValidationError(Location{}, "uniform deviate requires min < max, got [%g, %g]", lo, hi)
	}
	return &Uniform{LowExpr: low, HighExpr: high}, nil
}

func (u *Uniform) Mean() (float64, error) {
	lo, err := u.LowExpr.Mean()
	if err != nil {
		return 0, err
	}
	hi, err := u.HighExpr.Mean()
	if err != nil {
		return 0, err
	}
	return (lo + hi) / 2, nil
}

func (u *Uniform) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := u.cache.get(); ok {
		return v, nil
	}
	lo, err := u.LowExpr.Sample(rng)
	if err != nil {
		return 0, err
	}
	hi, err := u.HighExpr.Sample(rng)
	if err != nil {
		return 0, err
	}
	d := distuv.Uniform{Min: lo, Max: hi, Src: randSource(rng)}
	v := d.Rand()
	u.cache.set(v)
	return v, nil
}

func (u *Uniform) Reset()                 { u.cache.resetWith(u.Children()) }
func (u *Uniform) Children() []Expression { return []Expression{u.LowExpr, u.HighExpr} }
func (u *Uniform) IsConstant() bool       { return false }
func (u *Uniform) Min() (float64, error)  { return u.LowExpr.Min() }
func (u *Uniform) Max() (float64, error)  { return u.HighExpr.Max() }

// Normal is a Gaussian deviate parameterised by mean and standard deviation.
type Normal struct {
	Mu, Sigma Expression
	cache     sampleCache
}

func NewNormal(mu, sigma Expression) (*Normal, error) {
	s, err := sigma.Mean()
	if err != nil {
		return nil, err
	}
	if s <= 0 {
		return nil, NewValidationError(Location{}, "normal deviate requires sigma > 0, got %g", s)
	}
	return &Normal{Mu: mu, Sigma: sigma}, nil
}

func (n *Normal) Mean() (float64, error) { return n.Mu.Mean() }

func (n *Normal) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := n.cache.get(); ok {
		return v, nil
	}
	mu, err := n.Mu.Sample(rng)
	if err != nil {
		return 0, err
	}
	sigma, err := n.Sigma.Sample(rng)
	if err != nil {
		return 0, err
	}
	d := distuv.Normal{Mu: mu, Sigma: sigma, Src: randSource(rng)}
	v := d.Rand()
	n.cache.set(v)
	return v, nil
}

func (n *Normal) Reset()                 { n.cache.resetWith(n.Children()) }
func (n *Normal) Children() []Expression { return []Expression{n.Mu, n.Sigma} }
func (n *Normal) IsConstant() bool       { return false }
func (n *Normal) Min() (float64, error)  { return math.Inf(-1), nil }
func (n *Normal) Max() (float64, error)  { return math.Inf(1), nil }

// LogNormal is parameterised directly by the log-space mu and sigma.
type LogNormal struct {
	Mu, Sigma Expression
	cache     sampleCache
}

func NewLogNormal(mu, sigma Expression) (*LogNormal, error) {
	s, err := sigma.Mean()
	if err != nil {
		return nil, err
	}
	if s <= 0 {
		return nil, NewValidationError(Location{}, "lognormal deviate requires sigma > 0, got %g", s)
	}
	return &LogNormal{Mu: mu, Sigma: sigma}, nil
}

func (l *LogNormal) Mean() (float64, error) {
	mu, err := l.Mu.Mean()
	if err != nil {
		return 0, err
	}
	sigma, err := l.Sigma.Mean()
	if err != nil {
		return 0, err
	}
	return math.Exp(mu + sigma*sigma/2), nil
}

func (l *LogNormal) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := l.cache.get(); ok {
		return v, nil
	}
	mu, err := l.Mu.Sample(rng)
	if err != nil {
		return 0, err
	}
	sigma, err := l.Sigma.Sample(rng)
	if err != nil {
		return 0, err
	}
	d := distuv.LogNormal{Mu: mu, Sigma: sigma, Src: randSource(rng)}
	v := d.Rand()
	l.cache.set(v)
	return v, nil
}

func (l *LogNormal) Reset()                 { l.cache.resetWith(l.Children()) }
func (l *LogNormal) Children() []Expression { return []Expression{l.Mu, l.Sigma} }
func (l *LogNormal) IsConstant() bool       { return false }
func (l *LogNormal) Min() (float64, error)  { return 0, nil }
func (l *LogNormal) Max() (float64, error)  { return math.Inf(1), nil }

// LogNormalEF is the MEF's error-factor parameterisation: the distribution's
// mean and an error factor at the given confidence level, re-expressed in
// (mu, sigma) space for sampling. level is the two-sided confidence
// fraction, typically 0.95.
type LogNormalEF struct {
	MeanExpr, EF, Level Expression
	cache               sampleCache
}

func NewLogNormalEF(mean, ef, level Expression) (*LogNormalEF, error) {
	efv, err := ef.Mean()
	if err != nil {
		return nil, err
	}
	if efv <= 1 {
		return nil, NewValidationError(Location{}, "lognormal error factor must be > 1, got %g", efv)
	}
	return &LogNormalEF{MeanExpr: mean, EF: ef, Level: level}, nil
}

// sigmaFromEF inverts EF = exp(z * sigma) for the given two-sided confidence
// level, where z is the level's standard normal quantile.
func sigmaFromEF(ef, level float64) float64 {
	z := distuv.UnitNormal.Quantile(0.5 + level/2)
	return math.Log(ef) / z
}

func (l *LogNormalEF) Mean() (float64, error) { return l.MeanExpr.Mean() }

func (l *LogNormalEF) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := l.cache.get(); ok {
		return v, nil
	}
	mean, err := l.MeanExpr.Sample(rng)
	if err != nil {
		return 0, err
	}
	ef, err := l.EF.Sample(rng)
	if err != nil {
		return 0, err
	}
	level, err := l.Level.Sample(rng)
	if err != nil {
		return 0, err
	}
	sigma := sigmaFromEF(ef, level)
	mu := math.Log(mean) - sigma*sigma/2
	d := distuv.LogNormal{Mu: mu, Sigma: sigma, Src: randSource(rng)}
	v := d.Rand()
	l.cache.set(v)
	return v, nil
}

func (l *LogNormalEF) Reset()     { l.cache.resetWith(l.Children()) }
func (l *LogNormalEF) Children() []Expression {
	return []Expression{l.MeanExpr, l.EF, l.Level}
}
func (l *LogNormalEF) IsConstant() bool      { return false }
func (l *LogNormalEF) Min() (float64, error) { return 0, nil }
func (l *LogNormalEF) Max() (float64, error) { return math.Inf(1), nil }

// Gamma is a shape/scale gamma deviate. gonum's distuv.Gamma takes a rate
// (Beta = 1/scale); NewGamma converts so the public API matches the MEF's
// (k, theta) shape/scale convention.
type Gamma struct {
	K, Theta Expression
	cache    sampleCache
}

func NewGamma(k, theta Expression) (*Gamma, error) {
	kv, err := k.Mean()
	if err != nil {
		return nil, err
	}
	tv, err := theta.Mean()
	if err != nil {
		return nil, err
	}
	if kv <= 0 || tv <= 0 {
		return nil, NewValidationError(Location{}, "gamma deviate requires k > 0 and theta > 0, got k=%g theta=%g", kv, tv)
	}
	return &Gamma{K: k, Theta: theta}, nil
}

func (g *Gamma) Mean() (float64, error) {
	k, err := g.K.Mean()
	if err != nil {
		return 0, err
	}
	theta, err := g.Theta.Mean()
	if err != nil {
		return 0, err
	}
	return k * theta, nil
}

func (g *Gamma) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := g.cache.get(); ok {
		return v, nil
	}
	k, err := g.K.Sample(rng)
	if err != nil {
		return 0, err
	}
	theta, err := g.Theta.Sample(rng)
	if err != nil {
		return 0, err
	}
	d := distuv.Gamma{Alpha: k, Beta: 1 / theta, Src: randSource(rng)}
	v := d.Rand()
	g.cache.set(v)
	return v, nil
}

func (g *Gamma) Reset()                 { g.cache.resetWith(g.Children()) }
func (g *Gamma) Children() []Expression { return []Expression{g.K, g.Theta} }
func (g *Gamma) IsConstant() bool       { return false }
func (g *Gamma) Min() (float64, error)  { return 0, nil }
func (g *Gamma) Max() (float64, error)  { return math.Inf(1), nil }

// Beta is a beta(alpha, beta) deviate, naturally supported on [0, 1] which
// makes it the MEF's usual choice for probabilities and fractions.
type Beta struct {
	AlphaExpr, BetaExpr Expression
	cache               sampleCache
}

func NewBeta(alpha, beta Expression) (*Beta, error) {
	a, err := alpha.Mean()
	if err != nil {
		return nil, err
	}
	b, err := beta.Mean()
	if err != nil {
		return nil, err
	}
	if a <= 0 || b <= 0 {
		return nil, NewValidationError(Location{}, "beta deviate requires alpha > 0 and beta > 0, got alpha=%g beta=%g", a, b)
	}
	return &Beta{AlphaExpr: alpha, BetaExpr: beta}, nil
}

func (b *Beta) Mean() (float64, error) {
	a, err := b.AlphaExpr.Mean()
	if err != nil {
		return 0, err
	}
	c, err := b.BetaExpr.Mean()
	if err != nil {
		return 0, err
	}
	return a / (a + c), nil
}

func (b *Beta) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := b.cache.get(); ok {
		return v, nil
	}
	a, err := b.AlphaExpr.Sample(rng)
	if err != nil {
		return 0, err
	}
	c, err := b.BetaExpr.Sample(rng)
	if err != nil {
		return 0, err
	}
	d := distuv.Beta{Alpha: a, Beta: c, Src: randSource(rng)}
	v := d.Rand()
	b.cache.set(v)
	return v, nil
}

func (b *Beta) Reset()                 { b.cache.resetWith(b.Children()) }
func (b *Beta) Children() []Expression { return []Expression{b.AlphaExpr, b.BetaExpr} }
func (b *Beta) IsConstant() bool       { return false }
func (b *Beta) Min() (float64, error)  { return 0, nil }
func (b *Beta) Max() (float64, error)  { return 1, nil }

// Histogram is a piecewise-constant empirical deviate: Boundaries are
// increasing bin upper edges (the first bin runs from 0 to Boundaries[0])
// and Weights give each bin's relative likelihood. gonum's distuv has no
// arbitrary-weighted-histogram distribution, so this samples directly via
// inverse-CDF over the cumulative weight array using the stdlib math/rand
// generator already threaded through the sampling cycle — a deliberate,
// narrow stdlib exception (see DESIGN.md).
type Histogram struct {
	Boundaries, Weights []Expression
	cache                sampleCache
}

func NewHistogram(boundaries, weights []Expression) (*Histogram, error) {
	if len(boundaries) == 0 || len(boundaries) != len(weights) {
		return nil, NewValidationError(Location{}, "histogram requires equal non-empty boundary and weight lists, got %d and %d",
			len(boundaries), len(weights))
	}
	prev := 0.0
	for _, b := range boundaries {
		v, err := b.Mean()
		if err != nil {
			return nil, err
		}
		if v <= prev {
			return nil, NewValidationError(Location{}, "histogram boundaries must be strictly increasing, got %g after %g", v, prev)
		}
		prev = v
	}
	for _, w := range weights {
		v, err := w.Mean()
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, NewValidationError(Location{}, "histogram weights must be non-negative, got %g", v)
		}
	}
	return &Histogram{Boundaries: boundaries, Weights: weights}, nil
}

func (h *Histogram) edges() ([]float64, []float64, error) {
	bnds, err := meanAll(h.Boundaries)
	if err != nil {
		return nil, nil, err
	}
	wts, err := meanAll(h.Weights)
	if err != nil {
		return nil, nil, err
	}
	return bnds, wts, nil
}

func (h *Histogram) Mean() (float64, error) {
	bnds, wts, err := h.edges()
	if err != nil {
		return 0, err
	}
	total := 0.0
	weighted := 0.0
	lo := 0.0
	for i, hi := range bnds {
		mid := (lo + hi) / 2
		weighted += mid * wts[i]
		total += wts[i]
		lo = hi
	}
	if total == 0 {
		return 0, NewValidationError(Location{}, "histogram has zero total weight")
	}
	return weighted / total, nil
}

func (h *Histogram) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := h.cache.get(); ok {
		return v, nil
	}
	bnds, wts, err := h.edges()
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, w := range wts {
		total += w
	}
	if total == 0 {
		return 0, NewValidationError(Location{}, "histogram has zero total weight")
	}
	target := rng.Float64() * total
	cum := 0.0
	lo := 0.0
	for i, hi := range bnds {
		cum += wts[i]
		if target <= cum {
			v := lo + rng.Float64()*(hi-lo)
			h.cache.set(v)
			return v, nil
		}
		lo = hi
	}
	v := bnds[len(bnds)-1]
	h.cache.set(v)
	return v, nil
}

func (h *Histogram) Reset() { h.cache.resetWith(h.Children()) }

func (h *Histogram) Children() []Expression {
	out := make([]Expression, 0, len(h.Boundaries)+len(h.Weights))
	out = append(out, h.Boundaries...)
	out = append(out, h.Weights...)
	return out
}

func (h *Histogram) IsConstant() bool { return false }
func (h *Histogram) Min() (float64, error) { return 0, nil }
func (h *Histogram) Max() (float64, error) {
	bnds, _, err := h.edges()
	if err != nil {
		return 0, err
	}
	return bnds[len(bnds)-1], nil
}
