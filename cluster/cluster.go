/*
 * cluster.go, part of apdap.
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

// Package cluster decomposes a set of particles into clusters of particles
// connected by distances shorter than a cutoff, and computes the center of
// mass of each cluster across periodic boundaries.
package cluster

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/neighbors"
	v3 "github.com/rmera/apdap/v3"
)

// Names of the frame attributes set by Frame.
const (
	CountAttribute   = "ClusterAnalysis.cluster_count"
	LargestAttribute = "ClusterAnalysis.largest_size"
)

// Options contains the parameters for the cluster analysis.
type Options struct {
	cutoff       float64
	onlySelected bool
	sortBySize   bool
	com          bool
	gyration     bool
}

// DefaultOptions returns the default options: a 3.2 A cutoff, only the
// selected particles are considered, clusters are sorted by size and
// centers of mass are computed.
func DefaultOptions() *Options {
	r := new(Options)
	r.cutoff = 3.2
	r.onlySelected = true
	r.sortBySize = true
	r.com = true
	r.gyration = false
	return r
}

// Cutoff returns the neighbor cutoff distance,
// and sets it to a new value, if given.
func (O *Options) Cutoff(c ...float64) float64 {
	if len(c) > 0 && c[0] > 0 {
		O.cutoff = c[0]
	}
	return O.cutoff
}

// OnlySelected returns whether only the selected particles are clustered,
// and sets it to a new value, if given.
func (O *Options) OnlySelected(b ...bool) bool {
	if len(b) > 0 {
		O.onlySelected = b[0]
	}
	return O.onlySelected
}

// SortBySize returns whether clusters are numbered by decreasing size,
// and sets it to a new value, if given.
func (O *Options) SortBySize(b ...bool) bool {
	if len(b) > 0 {
		O.sortBySize = b[0]
	}
	return O.sortBySize
}

// CenterOfMass returns whether centers of mass are computed,
// and sets it to a new value, if given.
func (O *Options) CenterOfMass(b ...bool) bool {
	if len(b) > 0 {
		O.com = b[0]
	}
	return O.com
}

// RadiusOfGyration returns whether radii of gyration are computed,
// and sets it to a new value, if given. They require centers of mass.
func (O *Options) RadiusOfGyration(b ...bool) bool {
	if len(b) > 0 {
		O.gyration = b[0]
	}
	return O.gyration
}

// Result is the cluster decomposition of a frame.
type Result struct {
	//Cluster of each particle of the frame, from 1. 0 for particles not clustered.
	Assignment []int
	Clusters   []chem.ClusterInfo
	//Members of each cluster, same order as Clusters.
	Members [][]int
}

// Analyze finds the clusters of the particles of F. F is not modified.
func Analyze(ctx context.Context, F *chem.Frame, O *Options) (*Result, error) {
	if O == nil {
		O = DefaultOptions()
	}
	n := F.Len()
	res := &Result{Assignment: make([]int, n)}
	members := make([]int, 0, n)
	if O.OnlySelected() {
		if F.Selection == nil {
			return nil, Error{fmt.Sprintf("frame %d has no selection", F.Index), []string{"Analyze"}, true}
		}
		members = F.Selected()
	} else {
		for i := 0; i < n; i++ {
			members = append(members, i)
		}
	}
	if len(members) == 0 {
		return res, nil
	}
	finder, err := neighbors.NewFinder(F.Coords, F.Box, O.Cutoff())
	if err != nil {
		return nil, errDecorate(err, "Analyze")
	}
	g := ContactGraph(finder, members, O.Cutoff())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	//unwrapped positions, relative to the first particle found in each cluster.
	unwrapped := make(map[int64][3]float64, len(members))
	bf := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			c := e.(Contact)
			to := c.To().ID()
			if _, ok := unwrapped[to]; !ok {
				p := unwrapped[c.From().ID()]
				unwrapped[to] = [3]float64{p[0] + c.Delta[0], p[1] + c.Delta[1], p[2] + c.Delta[2]}
			}
			return true
		},
	}
	var groups [][]int
	for _, v := range members {
		id := int64(v)
		if bf.Visited(g.Node(id)) {
			continue
		}
		unwrapped[id] = F.Coords.Vec(v)
		group := make([]int, 0, 8)
		bf.Walk(g, g.Node(id), func(n graph.Node, _ int) bool {
			group = append(group, int(n.ID()))
			return false
		})
		sort.Ints(group)
		groups = append(groups, group)
	}
	if O.SortBySize() {
		//groups were found in increasing order of their lowest member.
		sort.SliceStable(groups, func(i, j int) bool { return len(groups[i]) > len(groups[j]) })
	}
	masses, merr := F.Masses()
	res.Clusters = make([]chem.ClusterInfo, len(groups))
	res.Members = groups
	for ci, group := range groups {
		info := chem.ClusterInfo{ID: ci + 1, Size: len(group)}
		for _, v := range group {
			res.Assignment[v] = ci + 1
		}
		if O.CenterOfMass() {
			pos := v3.Zeros(len(group))
			var w []float64
			if merr == nil {
				w = make([]float64, len(group))
			}
			for k, v := range group {
				pos.SetVec(k, unwrapped[int64(v)])
				if w != nil {
					w[k] = masses[v]
				}
			}
			com, err := chem.CenterOfMass(pos, w)
			if err != nil {
				return nil, errDecorate(err, "Analyze")
			}
			info.CenterOfMass = com
			if O.RadiusOfGyration() {
				info.RadiusOfGyration = chem.RadiusOfGyration(pos, w, com)
			}
		}
		res.Clusters[ci] = info
	}
	return res, nil
}

// Frame runs the cluster analysis on F and stores the result in
// F.Cluster, F.Clusters and the frame attributes.
func Frame(ctx context.Context, F *chem.Frame, O *Options) error {
	res, err := Analyze(ctx, F, O)
	if err != nil {
		return errDecorate(err, fmt.Sprintf("Frame %d", F.Index))
	}
	F.Cluster = res.Assignment
	F.Clusters = res.Clusters
	largest := 0
	for _, v := range res.Clusters {
		if v.Size > largest {
			largest = v.Size
		}
	}
	F.SetAttribute(CountAttribute, float64(len(res.Clusters)))
	F.SetAttribute(LargestAttribute, float64(largest))
	return nil
}
