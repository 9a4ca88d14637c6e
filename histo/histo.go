/*
 * histo.go, part of apdap.
 *
 * Copyright 2026 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package histo implements simple histograms with fixed dividers.
package histo

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Data is a histogram. Bin i counts the values v with
// dividers[i] <= v < dividers[i+1]. Values outside are omitted.
type Data struct {
	normalized bool
	total      int
	dividers   []float64
	histo      []float64
}

type jsonData struct {
	Normalized bool      `json:"normalized"`
	Total      int       `json:"total"`
	Dividers   []float64 `json:"dividers"`
	Histo      []float64 `json:"histo"`
}

// MarshalJSON implements json.Marshaler.
func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonData{D.normalized, D.total, D.dividers, D.histo})
}

// UnmarshalJSON implements json.Unmarshaler.
func (D *Data) UnmarshalJSON(b []byte) error {
	var a jsonData
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Dividers) < 2 || len(a.Histo) != len(a.Dividers)-1 {
		return fmt.Errorf("histogram with %d dividers and %d bins", len(a.Dividers), len(a.Histo))
	}
	D.normalized = a.Normalized
	D.total = a.Total
	D.dividers = a.Dividers
	D.histo = a.Histo
	return nil
}

// String returns a two-line representation of the histogram: the bins
// and their values.
func (D *Data) String() string {
	d := make([]string, 0, len(D.histo))
	h := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

// NewData returns a new histogram with the given dividers, which must be
// sorted and at least 2, filled with rawdata, which can be nil.
func NewData(dividers []float64, rawdata []float64) (*Data, error) {
	if len(dividers) < 2 {
		return nil, fmt.Errorf("a histogram needs at least 2 dividers, got %d", len(dividers))
	}
	if !sort.Float64sAreSorted(dividers) {
		return nil, fmt.Errorf("histogram dividers are not sorted")
	}
	d := new(Data)
	d.dividers = append([]float64(nil), dividers...)
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.ReHisto(rawdata)
	}
	return d, nil
}

// Integers returns dividers for one bin per integer value in [lo, hi].
func Integers(lo, hi int) []float64 {
	ret := make([]float64, 0, hi-lo+2)
	for i := lo; i <= hi+1; i++ {
		ret = append(ret, float64(i)-0.5)
	}
	return ret
}

// AddData adds the given data point(s) to the histogram.
func (D *Data) AddData(point ...float64) {
	norma := D.normalized
	if norma {
		D.UnNormalize()
	}
	last := len(D.dividers) - 1
	for _, v := range point {
		if v < D.dividers[0] || v >= D.dividers[last] {
			continue
		}
		//the first divider larger than v closes v's bin.
		j := sort.Search(len(D.dividers), func(i int) bool { return D.dividers[i] > v })
		D.histo[j-1]++
		D.total++
	}
	if norma {
		D.Normalize()
	}
}

// Total returns the number of values counted.
func (D *Data) Total() int { return D.total }

// Normalized returns true if the histogram is normalized.
func (D *Data) Normalized() bool { return D.normalized }

// Normalize divides every bin by the number of values counted.
func (D *Data) Normalize() { D.normaunnorma(true) }

// UnNormalize reverts Normalize.
func (D *Data) UnNormalize() { D.normaunnorma(false) }

func (D *Data) normaunnorma(normalize bool) {
	if D.total <= 0 || D.normalized == normalize {
		return
	}
	n := float64(D.total)
	if normalize {
		n = 1 / n
	}
	D.normalized = normalize
	floats.Scale(n, D.histo)
}

// Dividers returns a copy of the dividers of the histogram.
func (D *Data) Dividers() []float64 {
	return append([]float64(nil), D.dividers...)
}

// Copy returns a copy of the bins of the histogram.
func (D *Data) Copy() []float64 {
	return append([]float64(nil), D.histo...)
}

// View returns the bins of the histogram, not a copy.
func (D *Data) View() []float64 {
	return D.histo
}

// Sum returns the sum of the bins.
func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

// ReHisto replaces the contents of the histogram with rawdata,
// which gets sorted.
func (D *Data) ReHisto(rawdata []float64) {
	sort.Float64s(rawdata)
	//stat.Histogram panics on values out of the dividers.
	maxi := sort.SearchFloat64s(rawdata, D.dividers[len(D.dividers)-1])
	mini := sort.SearchFloat64s(rawdata, D.dividers[0])
	rawdata = rawdata[mini:maxi]
	D.normalized = false
	D.total = len(rawdata)
	for i := range D.histo {
		D.histo[i] = 0
	}
	D.histo = stat.Histogram(D.histo, D.dividers, rawdata, nil)
}
