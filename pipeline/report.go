/*
 * report.go, part of apdap.
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

package pipeline

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/chemstat"
	"github.com/rmera/apdap/cluster"
	"github.com/rmera/apdap/histo"
	"github.com/rmera/apdap/selection"
)

// FrameStats are the numbers collected from one processed frame.
type FrameStats struct {
	Index    int
	Timestep int64
	//Particles in the input frame, without the inserted ones.
	Particles int
	Selected  int
	Clusters  int
	Largest   int
	Added     int
	//Size of every cluster, largest first.
	Sizes []int
}

// DisorderedFraction returns the fraction of the input particles
// that were selected.
func (S FrameStats) DisorderedFraction() float64 {
	if S.Particles == 0 {
		return 0
	}
	return float64(S.Selected) / float64(S.Particles)
}

// Report collects the statistics of every frame of a run, in frame order.
type Report struct {
	Frames []FrameStats
}

func (R *Report) add(F *chem.Frame) {
	get := func(name string) int {
		v, _ := F.Attribute(name)
		return int(v)
	}
	s := FrameStats{
		Index:    F.Index,
		Timestep: F.Timestep,
		Selected: get(selection.NumSelectedAttribute),
		Clusters: get(cluster.CountAttribute),
		Largest:  get(cluster.LargestAttribute),
		Added:    get(AddedAttribute),
	}
	s.Particles = F.Len() - s.Added
	s.Sizes = make([]int, len(F.Clusters))
	for i, c := range F.Clusters {
		s.Sizes[i] = c.Size
	}
	R.Frames = append(R.Frames, s)
}

// Len returns the number of frames in the report.
func (R *Report) Len() int { return len(R.Frames) }

// Series returns one value per frame, computed by f.
func (R *Report) Series(f func(FrameStats) float64) []float64 {
	ret := make([]float64, len(R.Frames))
	for i, v := range R.Frames {
		ret[i] = f(v)
	}
	return ret
}

// Summary is the mean and standard deviation over frames of a series.
type Summary struct {
	Mean, StdDev, Max float64
}

func summarize(x []float64) Summary {
	if len(x) == 0 {
		return Summary{}
	}
	var s Summary
	if len(x) == 1 {
		s.Mean = x[0]
	} else {
		s.Mean, s.StdDev = stat.MeanStdDev(x, nil)
	}
	s.Max = floats.Max(x)
	return s
}

// Largest summarizes the size of the largest cluster of each frame.
func (R *Report) Largest() Summary {
	return summarize(R.Series(func(s FrameStats) float64 { return float64(s.Largest) }))
}

// Disordered summarizes the disordered fraction of each frame.
func (R *Report) Disordered() Summary {
	return summarize(R.Series(FrameStats.DisorderedFraction))
}

// SizeDistribution returns the histogram of the sizes of all the
// clusters of all frames, with one bin per size. It returns nil if
// there are no clusters.
func (R *Report) SizeDistribution() *histo.Data {
	var sizes []float64
	largest := 0
	for _, f := range R.Frames {
		for _, v := range f.Sizes {
			sizes = append(sizes, float64(v))
			largest = max(largest, v)
		}
	}
	if len(sizes) == 0 {
		return nil
	}
	D, err := histo.NewData(histo.Integers(1, largest), sizes)
	if err != nil {
		//the dividers are always valid.
		panic(err)
	}
	return D
}

// CorrelationTime returns the number of frames it takes the
// autocorrelation of the largest cluster size to drop below 1/e.
// It is +Inf if the size never decorrelates or doesn't change.
func (R *Report) CorrelationTime() float64 {
	if R.Len() < 2 {
		return math.Inf(1)
	}
	acf, err := chemstat.AutoCorrelation(R.Series(func(s FrameStats) float64 { return float64(s.Largest) }))
	if err != nil {
		return math.Inf(1)
	}
	return chemstat.CorrelationTime(acf)
}

// Added returns the total number of particles inserted.
func (R *Report) Added() int {
	n := 0
	for _, v := range R.Frames {
		n += v.Added
	}
	return n
}

// Log writes the summary of the report to logger.
func (R *Report) Log(logger *zerolog.Logger) {
	l, d := R.Largest(), R.Disordered()
	ev := logger.Info().Int("frames", R.Len()).Int("added", R.Added()).
		Float64("largest_mean", l.Mean).Float64("largest_stddev", l.StdDev).Float64("largest_max", l.Max).
		Float64("disordered_mean", d.Mean).Float64("disordered_stddev", d.StdDev)
	if tau := R.CorrelationTime(); !math.IsInf(tau, 1) {
		ev = ev.Float64("largest_corr_frames", tau)
	}
	ev.Msg("run summary")
	if D := R.SizeDistribution(); D != nil {
		logger.Debug().Msgf("cluster size distribution\n%s", D)
	}
}
