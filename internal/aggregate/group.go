// Package aggregate reduces lists of records into chart-ready series:
// grouped counts, sums and means keyed by a derived string.
package aggregate

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"agrodesk/domain/core"
)

// NamePoint is one bar or slice of a chart
type NamePoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// KeyFunc derives the grouping key. Items reporting false are skipped.
type KeyFunc[T any] func(T) (string, bool)

// ValueFunc extracts the value to aggregate
type ValueFunc[T any] func(T) float64

// Result is a keyed aggregate. Skipped counts items whose key could not
// be derived.
type Result struct {
	values  map[string]float64
	counts  map[string]int
	counted int
	Skipped int
}

func newResult() *Result {
	return &Result{values: map[string]float64{}, counts: map[string]int{}}
}

func (r *Result) add(key string, v float64) {
	r.values[key] += v
	r.counts[key]++
	r.counted++
}

// Get returns the aggregate for key, zero when absent
func (r *Result) Get(key string) float64 { return r.values[key] }

// Len is the number of distinct keys
func (r *Result) Len() int { return len(r.values) }

// Counted is the number of items that contributed to some key
func (r *Result) Counted() int { return r.counted }

// Keys returns the keys in ascending order
func (r *Result) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Points returns the aggregate ordered by key
func (r *Result) Points() []NamePoint {
	points := make([]NamePoint, 0, len(r.values))
	for _, k := range r.Keys() {
		points = append(points, NamePoint{Name: k, Value: r.values[k]})
	}
	return points
}

// Top returns the n largest entries, ties broken by key. n <= 0 returns all.
func (r *Result) Top(n int) []NamePoint {
	points := r.Points()
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Value > points[j].Value
	})
	if n > 0 && len(points) > n {
		points = points[:n]
	}
	return points
}

// Total sums every key's aggregate
func (r *Result) Total() float64 {
	var total float64
	for _, v := range r.values {
		total += v
	}
	return total
}

// MarshalJSON encodes the ordered points with the skipped count
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Points  []NamePoint `json:"points"`
		Skipped int         `json:"skipped"`
	}{r.Points(), r.Skipped})
}

// Count groups items by key and counts them
func Count[T any](items []T, key KeyFunc[T]) *Result {
	return Sum(items, key, func(T) float64 { return 1 })
}

// Sum groups items by key and sums value
func Sum[T any](items []T, key KeyFunc[T], value ValueFunc[T]) *Result {
	r := newResult()
	for _, item := range items {
		k, ok := key(item)
		if !ok {
			r.Skipped++
			continue
		}
		r.add(k, value(item))
	}
	return r
}

// Mean groups items by key and averages value
func Mean[T any](items []T, key KeyFunc[T], value ValueFunc[T]) *Result {
	r := Sum(items, key, value)
	for k, n := range r.counts {
		r.values[k] /= float64(n)
	}
	return r
}

// Field keys items by a string field. Blank values are skipped.
func Field[T any](get func(T) string) KeyFunc[T] {
	return func(item T) (string, bool) {
		v := strings.TrimSpace(get(item))
		return v, v != ""
	}
}

// OptionalField keys items by a nullable string column
func OptionalField[T any](get func(T) *string) KeyFunc[T] {
	return Field(func(item T) string {
		if p := get(item); p != nil {
			return *p
		}
		return ""
	})
}

// Month keys items by the yyyy-MM of a timestamp. Zero times are skipped.
func Month[T any](date func(T) time.Time) KeyFunc[T] {
	return func(item T) (string, bool) {
		t := date(item)
		if t.IsZero() {
			return "", false
		}
		return core.MonthKey(t), true
	}
}

// Day keys items by the yyyy-MM-dd of a timestamp
func Day[T any](date func(T) time.Time) KeyFunc[T] {
	return func(item T) (string, bool) {
		t := date(item)
		if t.IsZero() {
			return "", false
		}
		return core.DayKey(t), true
	}
}

// MonthString keys items by the month of a date string in any layout
// core.ParseTime accepts. Empty or malformed strings are skipped.
func MonthString[T any](date func(T) string) KeyFunc[T] {
	return func(item T) (string, bool) {
		t, err := core.ParseTime(date(item))
		if err != nil {
			return "", false
		}
		return core.MonthKey(t), true
	}
}

// ByMonth counts items per yyyy-MM
func ByMonth[T any](items []T, date func(T) time.Time) *Result {
	return Count(items, Month(date))
}

// ByDay counts items per yyyy-MM-dd
func ByDay[T any](items []T, date func(T) time.Time) *Result {
	return Count(items, Day(date))
}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthOfYearResult is twelve Jan..Dec buckets. It encodes like Result.
type MonthOfYearResult struct {
	Points  []NamePoint `json:"points"`
	Skipped int         `json:"skipped"`
}

// Total sums the twelve buckets
func (r *MonthOfYearResult) Total() float64 {
	var total float64
	for _, p := range r.Points {
		total += p.Value
	}
	return total
}

// MonthOfYear counts items into twelve fixed Jan..Dec buckets regardless
// of year. Zero times are counted in Skipped.
func MonthOfYear[T any](items []T, date func(T) time.Time) *MonthOfYearResult {
	var counts [12]float64
	r := &MonthOfYearResult{Points: make([]NamePoint, 12)}
	for _, item := range items {
		t := date(item)
		if t.IsZero() {
			r.Skipped++
			continue
		}
		counts[t.Month()-1]++
	}
	for i, name := range monthNames {
		r.Points[i] = NamePoint{Name: name, Value: counts[i]}
	}
	return r
}

// Series names a result for AlignSeries
type Series struct {
	Name   string
	Result *Result
}

// Row is one x-axis position of a multi-series chart
type Row struct {
	Name   string
	Values map[string]float64
}

// MarshalJSON flattens the row to {"name": ..., "<series>": value, ...}
func (r Row) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		out[k] = v
	}
	out["name"] = r.Name
	return json.Marshal(out)
}

// AlignSeries merges several results over the union of their keys,
// filling absent keys with zero.
func AlignSeries(series ...Series) []Row {
	keys := map[string]struct{}{}
	for _, s := range series {
		for k := range s.Result.values {
			keys[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	rows := make([]Row, 0, len(names))
	for _, name := range names {
		row := Row{Name: name, Values: make(map[string]float64, len(series))}
		for _, s := range series {
			row.Values[s.Name] = s.Result.Get(name)
		}
		rows = append(rows, row)
	}
	return rows
}
