package statistics

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha is the significance threshold used when none is configured
const DefaultAlpha = 0.05

// ANOVAResult is a one-way analysis of variance table
type ANOVAResult struct {
	Groups      int     `json:"groups"`
	N           int     `json:"n"`
	GrandMean   float64 `json:"grand_mean"`
	SSBetween   float64 `json:"ss_between"`
	SSWithin    float64 `json:"ss_within"`
	SSTotal     float64 `json:"ss_total"`
	DFBetween   int     `json:"df_between"`
	DFWithin    int     `json:"df_within"`
	MSBetween   float64 `json:"ms_between"`
	MSWithin    float64 `json:"ms_within"`
	F           float64 `json:"f"`
	PValue      float64 `json:"p_value"`
	Alpha       float64 `json:"alpha"`
	Significant bool    `json:"significant"`
}

// MarshalJSON encodes an infinite F (perfect separation) as null
func (r ANOVAResult) MarshalJSON() ([]byte, error) {
	type table ANOVAResult
	out := struct {
		table
		F *float64 `json:"f"`
	}{table: table(r)}
	if !math.IsInf(r.F, 0) {
		f := r.F
		out.F = &f
	}
	return json.Marshal(out)
}

// OneWayANOVA tests whether the group means differ. alpha <= 0 uses
// DefaultAlpha.
//
// Identical group means give F = 0 and p = 1. Differing means with no
// within-group spread give F = +Inf and p = 0.
func OneWayANOVA(groups Groups, alpha float64) (*ANOVAResult, error) {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	if err := groups.validate(); err != nil {
		return nil, err
	}

	k := len(groups)
	n := groups.Total()
	res := &ANOVAResult{
		Groups:    k,
		N:         n,
		DFBetween: k - 1,
		DFWithin:  n - k,
		Alpha:     alpha,
	}
	if k < 2 || res.DFWithin <= 0 {
		return nil, ErrDegenerateANOVA
	}

	var sum float64
	for _, g := range groups {
		for _, v := range g.Values {
			sum += v
		}
	}
	res.GrandMean = sum / float64(n)

	for _, g := range groups {
		var gs float64
		for _, v := range g.Values {
			gs += v
		}
		mean := gs / float64(len(g.Values))
		d := mean - res.GrandMean
		// Rounding leaves a residue of a few ulps on identical means
		if math.Abs(d) <= 1e-12*math.Max(math.Abs(mean), math.Abs(res.GrandMean)) {
			d = 0
		}
		res.SSBetween += float64(len(g.Values)) * d * d
		for _, v := range g.Values {
			e := v - mean
			res.SSWithin += e * e
		}
	}
	res.SSTotal = res.SSBetween + res.SSWithin
	res.MSBetween = res.SSBetween / float64(res.DFBetween)
	res.MSWithin = res.SSWithin / float64(res.DFWithin)

	switch {
	case res.SSBetween == 0:
		res.F = 0
		res.PValue = 1
	case res.SSWithin == 0:
		res.F = math.Inf(1)
		res.PValue = 0
	default:
		res.F = res.MSBetween / res.MSWithin
		res.PValue = FTestPValue(res.F, res.DFBetween, res.DFWithin)
	}
	res.Significant = res.PValue < alpha
	return res, nil
}

// FTestPValue is the upper tail probability of the F distribution
func FTestPValue(f float64, d1, d2 int) float64 {
	if f <= 0 {
		return 1
	}
	if math.IsInf(f, 1) {
		return 0
	}
	dist := distuv.F{D1: float64(d1), D2: float64(d2)}
	return clampProbability(1 - dist.CDF(f))
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
