package domain

// CCFModel names one of the four parametric common-cause-failure models
// spec §3 lists.
type CCFModel string

const (
	CCFBetaFactor  CCFModel = "beta-factor"
	CCFMGL         CCFModel = "MGL"
	CCFAlphaFactor CCFModel = "alpha-factor"
	CCFPhiFactor   CCFModel = "phi-factor"
)

// CCFGroup is a set of basic events whose independent-failure assumption is
// replaced by one of the parametric CCF models. Qtotal is each member's
// (homogeneous) total failure probability; Factors holds the model's
// parameters, whose count and meaning depend on Model:
//
//   - beta-factor: exactly one factor, beta.
//   - MGL: n-1 factors (beta, gamma, delta, ...), each the fraction of the
//     previous level's contribution attributable to the next multiplicity.
//   - alpha-factor: n factors, alpha_1..alpha_n, the fraction of the
//     weighted failure rate at each multiplicity (need not sum to 1; they
//     are normalised by their rate-weighted sum).
//   - phi-factor: n factors, phi_1..phi_n, the direct fraction of Qtotal
//     at each multiplicity, summing to 1.
type CCFGroup struct {
	ID      Identifier
	Model   CCFModel
	Members []*BasicEvent
	Qtotal  Expression
	Factors []Expression
}

// level is one multiplicity's contribution: frac is the fraction of Qtotal
// a single combination of exactly size members carries.
type level struct {
	size int
	frac float64
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

func choose(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	return factorial(n) / (factorial(k) * factorial(n-k))
}

// levels computes, per multiplicity size 1..n, the fraction of Qtotal one
// specific combination of that size carries.
func (g *CCFGroup) levels() ([]level, error) {
	n := len(g.Members)
	factors, err := meanAll(g.Factors)
	if err != nil {
		return nil, err
	}

	switch g.Model {
	case CCFBetaFactor:
		if len(factors) != 1 {
			return nil, NewValidationError(Location{}, "beta-factor CCF group %q needs exactly one factor, got %d", g.ID.Name, len(factors))
		}
		beta := factors[0]
		return []level{
			{size: 1, frac: 1 - beta},
			{size: n, frac: beta / choose(n-1, n-1)},
		}, nil

	case CCFMGL:
		if len(factors) != n-1 {
			return nil, NewValidationError(Location{}, "MGL CCF group %q of %d members needs %d factors, got %d",
				g.ID.Name, n, n-1, len(factors))
		}
		rho := make([]float64, n+1)
		rho[1] = 1
		for k := 2; k <= n; k++ {
			rho[k] = rho[k-1] * factors[k-2]
		}
		out := make([]level, 0, n)
		for k := 1; k < n; k++ {
			frac := (rho[k] - rho[k+1]) / choose(n-1, k-1)
			out = append(out, level{size: k, frac: frac})
		}
		out = append(out, level{size: n, frac: rho[n] / choose(n-1, n-1)})
		return out, nil

	case CCFAlphaFactor:
		if len(factors) != n {
			return nil, NewValidationError(Location{}, "alpha-factor CCF group %q of %d members needs %d factors, got %d",
				g.ID.Name, n, n, len(factors))
		}
		weighted := 0.0
		for k, a := range factors {
			weighted += float64(k+1) * a
		}
		if weighted == 0 {
			return nil, NewValidationError(Location{}, "alpha-factor CCF group %q has all-zero factors", g.ID.Name)
		}
		out := make([]level, n)
		for k, a := range factors {
			size := k + 1
			frac := (float64(size) * a / weighted) / choose(n-1, size-1)
			out[k] = level{size: size, frac: frac}
		}
		return out, nil

	case CCFPhiFactor:
		if len(factors) != n {
			return nil, NewValidationError(Location{}, "phi-factor CCF group %q of %d members needs %d factors, got %d",
				g.ID.Name, n, n, len(factors))
		}
		sum := 0.0
		for _, phi := range factors {
			sum += phi
		}
		if sum < 0.999 || sum > 1.001 {
			return nil, NewValidationError(Location{}, "phi-factor CCF group %q factors must sum to 1, got %g", g.ID.Name, sum)
		}
		out := make([]level, n)
		for k, phi := range factors {
			size := k + 1
			out[k] = level{size: size, frac: phi / choose(n-1, size-1)}
		}
		return out, nil

	default:
		return nil, NewValidationError(Location{}, "unknown CCF model %q", g.Model)
	}
}

func combinations(items []*BasicEvent, k int) [][]*BasicEvent {
	if k == 0 {
		return [][]*BasicEvent{{}}
	}
	if k > len(items) {
		return nil
	}
	var out [][]*BasicEvent
	head, rest := items[0], items[1:]
	for _, tail := range combinations(rest, k-1) {
		combo := append([]*BasicEvent{head}, tail...)
		out = append(out, combo)
	}
	out = append(out, combinations(rest, k)...)
	return out
}

// Derive synthesises one CcfEvent per combination of two or more members and
// returns, for every group member, the substitution formula that should
// replace direct references to it: an OR of its independent term and every
// CcfEvent whose combination includes it. The independent terms are plain
// BasicEvents carrying the member's own identifier; they are not part of
// the returned events.
func (g *CCFGroup) Derive() (events []*CcfEvent, substitution map[string]*Formula, err error) {
	n := len(g.Members)
	if n < 2 {
		return nil, nil, NewValidationError(Location{}, "CCF group %q needs at least two members, got %d", g.ID.Name, n)
	}
	lvls, err := g.levels()
	if err != nil {
		return nil, nil, err
	}

	byMember := make(map[string][]Arg, n)

	for _, lv := range lvls {
		if lv.size == 1 {
			for _, m := range g.Members {
				qIndep, err := NewMul(g.Qtotal, NewConstant(lv.frac))
				if err != nil {
					return nil, nil, err
				}
				byMember[m.ID.ID] = append(byMember[m.ID.ID], BasicArg(&BasicEvent{ID: m.ID, Prob: qIndep}))
			}
			continue
		}
		for _, combo := range combinations(g.Members, lv.size) {
			qCombo, err := NewMul(g.Qtotal, NewConstant(lv.frac))
			if err != nil {
				return nil, nil, err
			}
			ce := &CcfEvent{
				BasicEvent: BasicEvent{ID: ccfEventID(g.ID, combo), Prob: qCombo},
				Group:      g,
				Members:    combo,
			}
			events = append(events, ce)
			for _, m := range combo {
				byMember[m.ID.ID] = append(byMember[m.ID.ID], BasicArg(&ce.BasicEvent))
			}
		}
	}

	substitution = make(map[string]*Formula, n)
	for _, m := range g.Members {
		args := byMember[m.ID.ID]
		f, err := NewFormula(m.ID.Name+"-ccf-or", ConnectiveOr, 0, args)
		if err != nil {
			return nil, nil, err
		}
		substitution[m.ID.ID] = f
	}
	return events, substitution, nil
}

func ccfEventID(group Identifier, combo []*BasicEvent) Identifier {
	name := group.Name + "-CCF["
	for i, m := range combo {
		if i > 0 {
			name += "-"
		}
		name += m.ID.Name
	}
	name += "]"
	return NewIdentifier(name, group.BasePath, group.IsPublic)
}

// Rewrite substitutes every reference to a group member within ft's gates
// with that member's CCF substitution formula, and appends the group's
// synthesised CcfEvents to the tree's basic event list.
func (g *CCFGroup) Rewrite(ft *FaultTree) error {
	events, substitution, err := g.Derive()
	if err != nil {
		return err
	}
	replace := func(f *Formula) {
		for i, a := range f.Args {
			if a.Basic == nil {
				continue
			}
			if sub, ok := substitution[a.Basic.ID.ID]; ok {
				f.Args[i] = NestedArg(sub)
			}
		}
	}
	// Substitution formulas hold an independent term under the member's own
	// id, so the walk must not descend into them once they are spliced in.
	subs := make(map[*Formula]bool, len(substitution))
	for _, s := range substitution {
		subs[s] = true
	}
	var walk func(f *Formula)
	walk = func(f *Formula) {
		replace(f)
		for _, a := range f.Args {
			if a.Nested != nil && !subs[a.Nested] {
				walk(a.Nested)
			}
		}
	}
	if ft.Top != nil {
		walk(ft.Top.Formula)
	}
	for _, gate := range ft.Gates {
		if gate != ft.Top {
			walk(gate.Formula)
		}
	}
	for _, ce := range events {
		ft.BasicEvents = append(ft.BasicEvents, &ce.BasicEvent)
	}
	ft.computeOrphans()
	return nil
}
