package domain

import "math/rand"

// PeriodicTest is the MEF's staggered-test reliability built-in. It accepts
// 4, 5 or 11 arguments:
//
//   - 4 args: (lambda, tau, theta, time) — the plain periodic-test model.
//     Before the first test at theta, failure accumulates from
//     commissioning at rate lambda. After theta, the component is restored
//     to as-good-as-new at every test boundary theta + n*tau; the returned
//     value is 1 - exp(-lambda * elapsed) since the most recent boundary
//     not after time.
//   - 5 args: (lambda, tau, theta, testDuration, time) — adds an explicit
//     test window of length testDuration starting at each boundary, during
//     which the component is considered fully down (value 1); elapsed is
//     measured from the end of the test window instead of its start.
//   - 11 args: (lambdaActive, lambdaStandby, tau, theta, testDuration,
//     availabilityDuringTest, detectionProbability, repairTime, redundancy,
//     replaceFlag, time) — the full model, layering an active/standby
//     failure-rate blend, a partial-availability test window and imperfect
//     repair. The exact shape of this extension is not pinned down by any
//     reference output available to this module; periodicTest11 below is
//     the interpretation implemented here.
type PeriodicTest struct {
	args  []Expression
	cache sampleCache
}

// NewPeriodicTest validates the arity and builds the node.
func NewPeriodicTest(args ...Expression) (*PeriodicTest, error) {
	switch len(args) {
	case 4, 5, 11:
		return &PeriodicTest{args: args}, nil
	default:
		return nil, NewValidationError(Location{}, "periodic-test takes 4, 5 or 11 arguments, got %d", len(args))
	}
}

func lastTestBoundary(t, theta, tau float64) float64 {
	if t < theta {
		return 0
	}
	n := float64(int((t - theta) / tau))
	return theta + n*tau
}

func periodicTest4(lambda, tau, theta, t float64) float64 {
	if t < theta {
		return exponentialOf(lambda, t)
	}
	last := lastTestBoundary(t, theta, tau)
	return exponentialOf(lambda, t-last)
}

func periodicTest5(lambda, tau, theta, testDuration, t float64) float64 {
	if t < theta {
		return exponentialOf(lambda, t)
	}
	last := lastTestBoundary(t, theta, tau)
	testEnd := last + testDuration
	if t < testEnd {
		return 1
	}
	return exponentialOf(lambda, t-testEnd)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func periodicTest11(lambdaActive, lambdaStandby, tau, theta, testDuration,
	availabilityDuringTest, detectionProbability, repairTime, redundancy,
	replaceFlag, t float64) float64 {
	if t < theta {
		return exponentialOf(lambdaActive, t)
	}
	last := lastTestBoundary(t, theta, tau)
	testEnd := last + testDuration
	if t < testEnd {
		return clamp01(1 - availabilityDuringTest*(1-detectionProbability))
	}
	effectiveLambda := lambdaActive*(1-redundancy) + lambdaStandby*redundancy
	baseline := clamp01((1 - replaceFlag) * (1 - repairTime))
	elapsed := t - testEnd
	return clamp01(baseline + (1-baseline)*exponentialOf(effectiveLambda, elapsed))
}

func (p *PeriodicTest) eval(vals []float64) (float64, error) {
	switch len(vals) {
	case 4:
		return periodicTest4(vals[0], vals[1], vals[2], vals[3]), nil
	case 5:
		return periodicTest5(vals[0], vals[1], vals[2], vals[3], vals[4]), nil
	case 11:
		return periodicTest11(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5],
			vals[6], vals[7], vals[8], vals[9], vals[10]), nil
	default:
		return 0, NewLogicError(Location{}, "periodic-test arity %d slipped past construction", len(vals))
	}
}

func (p *PeriodicTest) Mean() (float64, error) {
	vals, err := meanAll(p.args)
	if err != nil {
		return 0, err
	}
	return p.eval(vals)
}

func (p *PeriodicTest) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := p.cache.get(); ok {
		return v, nil
	}
	vals, err := sampleAll(p.args, rng)
	if err != nil {
		return 0, err
	}
	v, err := p.eval(vals)
	if err != nil {
		return 0, err
	}
	p.cache.set(v)
	return v, nil
}

func (p *PeriodicTest) Reset()                 { p.cache.resetWith(p.args) }
func (p *PeriodicTest) Children() []Expression { return p.args }
func (p *PeriodicTest) IsConstant() bool       { return isConstantOf(false, p.args) }
func (p *PeriodicTest) Min() (float64, error)  { return 0, nil }
func (p *PeriodicTest) Max() (float64, error)  { return 1, nil }
