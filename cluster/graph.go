/*
 * graph.go, part of apdap.
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

package cluster

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/rmera/apdap/neighbors"
)

// Particle is a node of the contact graph. Its ID is the index
// of the particle in the frame.
type Particle int64

// ID returns the index of the particle, as a graph node ID.
func (P Particle) ID() int64 { return int64(P) }

// Contact is an edge of the contact graph, joining two particles
// closer than the cutoff. Delta goes from At1 to At2, through the
// periodic boundaries if needed.
type Contact struct {
	At1, At2 Particle
	Delta    [3]float64
}

func (C Contact) From() graph.Node { return C.At1 }

func (C Contact) To() graph.Node { return C.At2 }

// ReversedEdge returns the same contact, going from At2 to At1.
func (C Contact) ReversedEdge() graph.Edge {
	return Contact{At1: C.At2, At2: C.At1, Delta: [3]float64{-C.Delta[0], -C.Delta[1], -C.Delta[2]}}
}

// ContactGraph builds the undirected graph of the particles in members,
// joined when closer than cutoff according to finder.
// Contacts of a particle with its own periodic images are not included.
func ContactGraph(finder *neighbors.Finder, members []int, cutoff float64) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	in := make(map[int]bool, len(members))
	for _, v := range members {
		in[v] = true
		g.AddNode(Particle(v))
	}
	for _, i := range members {
		for _, n := range finder.Within(i, cutoff) {
			//each pair is seen from both ends; keep the first one.
			if n.Index <= i || !in[n.Index] {
				continue
			}
			if g.HasEdgeBetween(int64(i), int64(n.Index)) {
				continue
			}
			g.SetEdge(Contact{At1: Particle(i), At2: Particle(n.Index), Delta: n.Delta})
		}
	}
	return g
}
