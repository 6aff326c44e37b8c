// Package statistics computes per-group descriptive statistics, one-way
// ANOVA and Tukey HSD pairwise comparisons over small in-memory samples.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"agrodesk/domain/core"
)

var (
	ErrEmptyGroup       = fmt.Errorf("%w: group has no observations", core.ErrInsufficientData)
	ErrTooFewGroups     = fmt.Errorf("%w: at least two groups are required", core.ErrInsufficientData)
	ErrUndefinedCV      = fmt.Errorf("%w: coefficient of variation with zero mean", core.ErrUndefinedStatistic)
	ErrDegenerateANOVA  = fmt.Errorf("%w: within-group degrees of freedom must be positive", core.ErrDegenerateInput)
	ErrNoWithinVariance = fmt.Errorf("%w: within-group variance is zero", core.ErrDegenerateInput)
	ErrNonFinite        = fmt.Errorf("%w: observation is NaN or infinite", core.ErrInvalidInput)
)

// Group is a labelled sample
type Group struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Groups keeps samples in presentation order
type Groups []Group

// GroupsFromMap orders a label->values map. Labels named in order come
// first in that order; the rest follow sorted by label.
func GroupsFromMap(m map[string][]float64, order []string) Groups {
	seen := make(map[string]bool, len(m))
	out := make(Groups, 0, len(m))
	for _, label := range order {
		values, ok := m[label]
		if !ok || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, Group{Label: label, Values: values})
	}
	rest := make([]string, 0, len(m))
	for label := range m {
		if !seen[label] {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	for _, label := range rest {
		out = append(out, Group{Label: label, Values: m[label]})
	}
	return out
}

// Total is the number of observations across all groups
func (g Groups) Total() int {
	n := 0
	for _, grp := range g {
		n += len(grp.Values)
	}
	return n
}

func (g Groups) validate() error {
	for _, grp := range g {
		if len(grp.Values) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyGroup, grp.Label)
		}
		for _, v := range grp.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: group %q", ErrNonFinite, grp.Label)
			}
		}
	}
	return nil
}

// Summary holds the descriptive statistics of one group. StdDev is the
// population standard deviation (divide by n); SampleStdDev divides by
// n-1 and is absent for single observations.
type Summary struct {
	Label        string   `json:"label"`
	Count        int      `json:"count"`
	Mean         float64  `json:"mean"`
	Median       float64  `json:"median"`
	Min          float64  `json:"min"`
	Max          float64  `json:"max"`
	Range        float64  `json:"range"`
	StdDev       float64  `json:"std_dev"`
	SampleStdDev *float64 `json:"sample_std_dev,omitempty"`
	StdErr       float64  `json:"std_err"`
	CV           float64  `json:"cv"`
	CVDefined    bool     `json:"cv_defined"`
}

// Describe summarizes one group. A zero mean leaves CVDefined false.
func Describe(label string, values []float64) (Summary, error) {
	s := Summary{Label: label, Count: len(values)}
	if len(values) == 0 {
		return s, fmt.Errorf("%w: %q", ErrEmptyGroup, label)
	}
	data := stats.Float64Data(values)

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviationPopulation(data); err != nil {
		return s, err
	}
	if len(values) > 1 {
		sample, err := stats.StandardDeviationSample(data)
		if err != nil {
			return s, err
		}
		s.SampleStdDev = &sample
	}
	s.Range = s.Max - s.Min
	s.StdErr = s.StdDev / math.Sqrt(float64(len(values)))

	if cv, err := cv(s.Mean, s.StdDev); err == nil {
		s.CV = cv
		s.CVDefined = true
	}
	return s, nil
}

// DescribeAll summarizes every group in order
func DescribeAll(groups Groups) ([]Summary, error) {
	out := make([]Summary, 0, len(groups))
	for _, g := range groups {
		s, err := Describe(g.Label, g.Values)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// CoefficientOfVariation returns sd/mean*100 using the population sd
func CoefficientOfVariation(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyGroup
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0, err
	}
	sd, err := stats.StandardDeviationPopulation(values)
	if err != nil {
		return 0, err
	}
	return cv(mean, sd)
}

func cv(mean, sd float64) (float64, error) {
	if mean == 0 {
		return 0, ErrUndefinedCV
	}
	return sd / mean * 100, nil
}
