/*
 * frame.go, part of apdap.
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

package chem

import (
	"fmt"
	"sort"

	v3 "github.com/rmera/apdap/v3"
)

// Names of the standard particle properties.
const (
	PropIdentifier = "Particle Identifier"
	PropType       = "Particle Type"
	PropPositionX  = "Position.X"
	PropPositionY  = "Position.Y"
	PropPositionZ  = "Position.Z"
	PropMass       = "Mass"
	PropStructure  = "Structure Type"
	PropRMSD       = "RMSD"
	PropCluster    = "Cluster"
	PropSelection  = "Selection"
)

// ClusterInfo is a row of the cluster table of a frame.
type ClusterInfo struct {
	ID               int //From 1.
	Size             int
	CenterOfMass     [3]float64
	RadiusOfGyration float64
}

// Frame is one snapshot of a trajectory, with everything the analysis
// steps compute for it.
type Frame struct {
	Index    int //Position in the input trajectory, from 0.
	Timestep int64
	Box      *Box
	*Topology
	Coords *v3.Matrix

	//Per-particle analysis results. nil until the step computing them runs.
	Structure []int
	RMSD      []float64
	Selection []int //1 for selected particles.
	Cluster   []int

	//Extra per-particle properties read from the input, by name.
	Extra      map[string][]float64
	ExtraOrder []string

	Attributes map[string]float64
	Clusters   []ClusterInfo
}

// NewFrame returns a frame with the given topology, coordinates and box.
// A nil box is replaced by the non-periodic bounding box of the coordinates.
func NewFrame(top *Topology, coords *v3.Matrix, box *Box) (*Frame, error) {
	if top == nil {
		top = &Topology{Atoms: []*Atom{}}
	}
	if coords == nil {
		coords = v3.Zeros(0)
	}
	if top.Len() != coords.NVecs() {
		return nil, NewError(fmt.Sprintf("topology has %d atoms but %d coordinates were given", top.Len(), coords.NVecs()), "NewFrame", true)
	}
	if box == nil {
		box = BoundingBox(coords)
	}
	return &Frame{
		Box:        box,
		Topology:   top,
		Coords:     coords,
		Extra:      make(map[string][]float64),
		Attributes: make(map[string]float64),
	}, nil
}

// SetExtra sets the extra per-particle property name. It panics if
// vals doesn't have one value per particle.
func (F *Frame) SetExtra(name string, vals []float64) {
	if len(vals) != F.Len() {
		panic(fmt.Sprintf("SetExtra: %d values for %d particles", len(vals), F.Len()))
	}
	if F.Extra == nil {
		F.Extra = make(map[string][]float64)
	}
	if _, ok := F.Extra[name]; !ok {
		F.ExtraOrder = append(F.ExtraOrder, name)
	}
	F.Extra[name] = vals
}

// SetAttribute sets the global attribute name to val.
func (F *Frame) SetAttribute(name string, val float64) {
	if F.Attributes == nil {
		F.Attributes = make(map[string]float64)
	}
	F.Attributes[name] = val
}

// Attribute returns the global attribute name and whether it exists.
func (F *Frame) Attribute(name string) (float64, bool) {
	v, ok := F.Attributes[name]
	return v, ok
}

// HasProperty returns true if the particle property name is available in the frame.
func (F *Frame) HasProperty(name string) bool {
	switch name {
	case PropIdentifier, PropType, PropPositionX, PropPositionY, PropPositionZ, PropMass:
		return true
	case PropStructure:
		return F.Structure != nil
	case PropRMSD:
		return F.RMSD != nil
	case PropCluster:
		return F.Cluster != nil
	case PropSelection:
		return F.Selection != nil
	}
	_, ok := F.Extra[name]
	return ok
}

// PropertyNames returns the names of all the particle properties
// available in the frame, the standard ones first.
func (F *Frame) PropertyNames() []string {
	names := []string{PropIdentifier, PropType, PropPositionX, PropPositionY, PropPositionZ, PropMass}
	for _, v := range []string{PropStructure, PropRMSD, PropCluster, PropSelection} {
		if F.HasProperty(v) {
			names = append(names, v)
		}
	}
	return append(names, F.ExtraOrder...)
}

// Property returns the value of the property name for the ith particle.
// It returns an error if the frame has no such property.
func (F *Frame) Property(name string, i int) (float64, error) {
	switch name {
	case PropIdentifier:
		return float64(F.Atom(i).ID), nil
	case PropType:
		return float64(F.Atom(i).Type), nil
	case PropPositionX:
		return F.Coords.At(i, 0), nil
	case PropPositionY:
		return F.Coords.At(i, 1), nil
	case PropPositionZ:
		return F.Coords.At(i, 2), nil
	case PropMass:
		return F.Atom(i).Mass, nil
	case PropStructure:
		if F.Structure != nil {
			return float64(F.Structure[i]), nil
		}
	case PropRMSD:
		if F.RMSD != nil {
			return F.RMSD[i], nil
		}
	case PropCluster:
		if F.Cluster != nil {
			return float64(F.Cluster[i]), nil
		}
	case PropSelection:
		if F.Selection != nil {
			return float64(F.Selection[i]), nil
		}
	default:
		if v, ok := F.Extra[name]; ok {
			return v[i], nil
		}
	}
	return 0, NewError(fmt.Sprintf("property %q not present in frame %d", name, F.Index), "Property", true)
}

// Selected returns the indexes of the selected particles, or all of them
// if no selection has been made.
func (F *Frame) Selected() []int {
	ret := make([]int, 0, F.Len())
	for i := 0; i < F.Len(); i++ {
		if F.Selection == nil || F.Selection[i] != 0 {
			ret = append(ret, i)
		}
	}
	return ret
}

// AddParticle appends a particle at pos, with type typ and an identifier
// one larger than the current maximum. All other per-particle properties
// of the new particle are zero. It returns the index of the new particle.
func (F *Frame) AddParticle(pos [3]float64, typ int) int {
	at := &Atom{ID: F.MaxID() + 1, Type: typ}
	F.AppendAtom(at)
	n := F.Coords.NVecs()
	F.Coords = F.Coords.Grow(1)
	F.Coords.SetVec(n, pos)
	if F.Structure != nil {
		F.Structure = append(F.Structure, 0)
	}
	if F.RMSD != nil {
		F.RMSD = append(F.RMSD, 0)
	}
	if F.Selection != nil {
		F.Selection = append(F.Selection, 0)
	}
	if F.Cluster != nil {
		F.Cluster = append(F.Cluster, 0)
	}
	for k, v := range F.Extra {
		F.Extra[k] = append(v, 0)
	}
	return n
}

// SortByID reorders all the particles of the frame by increasing identifier.
func (F *Frame) SortByID() {
	n := F.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return F.Atoms[order[i]].ID < F.Atoms[order[j]].ID })
	sorted := true
	for i, v := range order {
		if i != v {
			sorted = false
			break
		}
	}
	if sorted {
		return
	}
	ats := make([]*Atom, n)
	coords := v3.Zeros(n)
	for i, v := range order {
		ats[i] = F.Atoms[v]
		coords.SetVec(i, F.Coords.Vec(v))
	}
	F.Atoms = ats
	F.Coords = coords
	F.Structure = permuteInts(F.Structure, order)
	F.Selection = permuteInts(F.Selection, order)
	F.Cluster = permuteInts(F.Cluster, order)
	F.RMSD = permuteFloats(F.RMSD, order)
	for k, v := range F.Extra {
		F.Extra[k] = permuteFloats(v, order)
	}
}

func permuteInts(s []int, order []int) []int {
	if s == nil {
		return nil
	}
	r := make([]int, len(s))
	for i, v := range order {
		r[i] = s[v]
	}
	return r
}

func permuteFloats(s []float64, order []int) []float64 {
	if s == nil {
		return nil
	}
	r := make([]float64, len(s))
	for i, v := range order {
		r[i] = s[v]
	}
	return r
}
