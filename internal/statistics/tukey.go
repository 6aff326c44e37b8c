package statistics

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// TukeyComparison is one pairwise row of a Tukey HSD table. MeanDiff is
// mean(Group2) - mean(Group1).
type TukeyComparison struct {
	Group1   string  `json:"group1"`
	Group2   string  `json:"group2"`
	MeanDiff float64 `json:"meandiff"`
	PAdj     float64 `json:"p-adj"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Reject   bool    `json:"reject"`
}

// TukeyResult holds every pairwise comparison
type TukeyResult struct {
	Alpha       float64           `json:"alpha"`
	QCritical   float64           `json:"q_critical"`
	DFWithin    int               `json:"df_within"`
	MSWithin    float64           `json:"ms_within"`
	Comparisons []TukeyComparison `json:"comparisons"`
}

// TukeyHSD runs Tukey's honestly significant difference test with the
// Tukey-Kramer adjustment for unequal group sizes. Pairs are formed in
// label order.
func TukeyHSD(groups Groups, alpha float64) (*TukeyResult, error) {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	if err := groups.validate(); err != nil {
		return nil, err
	}
	k := len(groups)
	if k < 2 {
		return nil, ErrTooFewGroups
	}
	dfW := groups.Total() - k
	if dfW <= 0 {
		return nil, ErrDegenerateANOVA
	}

	sorted := make(Groups, k)
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })

	means := make([]float64, k)
	var ssw float64
	for i, g := range sorted {
		var sum float64
		for _, v := range g.Values {
			sum += v
		}
		means[i] = sum / float64(len(g.Values))
		for _, v := range g.Values {
			d := v - means[i]
			ssw += d * d
		}
	}
	msw := ssw / float64(dfW)
	if msw == 0 {
		return nil, ErrNoWithinVariance
	}

	qcrit := StudentizedRangeQuantile(1-alpha, k, float64(dfW))
	res := &TukeyResult{
		Alpha:       alpha,
		QCritical:   qcrit,
		DFWithin:    dfW,
		MSWithin:    msw,
		Comparisons: make([]TukeyComparison, 0, k*(k-1)/2),
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			ni, nj := float64(len(sorted[i].Values)), float64(len(sorted[j].Values))
			se := math.Sqrt(msw / 2 * (1/ni + 1/nj))
			diff := means[j] - means[i]
			q := math.Abs(diff) / se
			p := clampProbability(1 - StudentizedRangeCDF(q, k, float64(dfW)))
			res.Comparisons = append(res.Comparisons, TukeyComparison{
				Group1:   sorted[i].Label,
				Group2:   sorted[j].Label,
				MeanDiff: diff,
				PAdj:     p,
				Lower:    diff - qcrit*se,
				Upper:    diff + qcrit*se,
				Reject:   p < alpha,
			})
		}
	}
	return res, nil
}

const (
	rangeInnerNodes = 128
	rangeOuterNodes = 256
	// Beyond this many degrees of freedom the variance estimate is exact
	// to the precision of the quadrature.
	rangeLargeDF = 1e5
)

type nodes struct {
	x, w []float64
}

var (
	rangeOnce  sync.Once
	innerNodes nodes
	outerNodes nodes
)

func loadNodes() {
	rangeOnce.Do(func() {
		var rule quad.Legendre
		innerNodes = nodes{x: make([]float64, rangeInnerNodes), w: make([]float64, rangeInnerNodes)}
		rule.FixedLocations(innerNodes.x, innerNodes.w, -8, 8)
		outerNodes = nodes{x: make([]float64, rangeOuterNodes), w: make([]float64, rangeOuterNodes)}
		rule.FixedLocations(outerNodes.x, outerNodes.w, 0, 1)
	})
}

// rangeCDFKnownVariance is P(range of k standard normals <= w)
func rangeCDFKnownVariance(w float64, k int) float64 {
	if w <= 0 {
		return 0
	}
	norm := distuv.UnitNormal
	var total float64
	for i, z := range innerNodes.x {
		inner := norm.CDF(z) - norm.CDF(z-w)
		if inner <= 0 {
			continue
		}
		total += innerNodes.w[i] * norm.Prob(z) * math.Pow(inner, float64(k-1))
	}
	return float64(k) * total
}

// StudentizedRangeCDF is the distribution function of the studentized
// range for k groups and df degrees of freedom.
func StudentizedRangeCDF(q float64, k int, df float64) float64 {
	if q <= 0 || k < 2 || df <= 0 {
		return 0
	}
	if math.IsInf(q, 1) {
		return 1
	}
	loadNodes()
	if df >= rangeLargeDF {
		return clampProbability(rangeCDFKnownVariance(q, k))
	}

	// Integrate over the quantiles of s = sqrt(chi2(df)/df)
	chi := distuv.ChiSquared{K: df}
	var total float64
	for i, u := range outerNodes.x {
		s := math.Sqrt(chi.Quantile(u) / df)
		total += outerNodes.w[i] * rangeCDFKnownVariance(q*s, k)
	}
	return clampProbability(total)
}

// StudentizedRangeQuantile inverts StudentizedRangeCDF by bisection
func StudentizedRangeQuantile(p float64, k int, df float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return math.Inf(1)
	}
	lo, hi := 0.0, 8.0
	for StudentizedRangeCDF(hi, k, df) < p {
		hi *= 2
		if hi > 1e4 {
			return math.Inf(1)
		}
	}
	for i := 0; i < 60 && hi-lo > 1e-9; i++ {
		mid := (lo + hi) / 2
		if StudentizedRangeCDF(mid, k, df) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// Report bundles the descriptive table, the ANOVA and the Tukey HSD test
type Report struct {
	Summaries []Summary    `json:"summaries"`
	ANOVA     *ANOVAResult `json:"anova"`
	Tukey     *TukeyResult `json:"tukey,omitempty"`
	Notes     []string     `json:"notes,omitempty"`
}

// Analyze runs the full set. Tukey failures on otherwise valid input
// (zero within-group variance) are reported as notes.
func Analyze(groups Groups, alpha float64) (*Report, error) {
	summaries, err := DescribeAll(groups)
	if err != nil {
		return nil, err
	}
	anova, err := OneWayANOVA(groups, alpha)
	if err != nil {
		return nil, err
	}
	report := &Report{Summaries: summaries, ANOVA: anova}
	for _, s := range summaries {
		if !s.CVDefined {
			report.Notes = append(report.Notes, fmt.Sprintf("coefficient of variation undefined for %q (mean is zero)", s.Label))
		}
	}
	tukey, err := TukeyHSD(groups, alpha)
	if err != nil {
		report.Notes = append(report.Notes, "tukey hsd not computed: "+err.Error())
		return report, nil
	}
	report.Tukey = tukey
	return report, nil
}
