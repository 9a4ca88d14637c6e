/*
 * chem.go, part of apdap.
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
	"strconv"
)

// Atom contains the per-particle information that is not a coordinate.
type Atom struct {
	ID     int     //Particle identifier, as read from the file. Unique within a frame.
	Type   int     //Numeric particle type.
	Symbol string  //Type name, if the format gives one (i.e. an element symbol).
	Mass   float64 //0 means unknown.
}

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	n := *A
	return &n
}

// TypeName returns the symbol of the atom, or its numeric type as a
// string if no symbol is set.
func (A *Atom) TypeName() string {
	if A.Symbol != "" {
		return A.Symbol
	}
	return strconv.Itoa(A.Type)
}

/*****Topology type***/

// Topology contains the non-coordinate information of all the particles in a frame.
type Topology struct {
	Atoms []*Atom
}

// NewTopology returns a topology with the given atoms. It returns an
// error if two atoms share an identifier.
func NewTopology(ats []*Atom) (*Topology, error) {
	if ats == nil {
		ats = []*Atom{}
	}
	seen := make(map[int]bool, len(ats))
	for i, v := range ats {
		if v == nil {
			return nil, NewError(fmt.Sprintf("nil atom at index %d", i), "NewTopology", true)
		}
		if seen[v.ID] {
			return nil, NewError(fmt.Sprintf("duplicate particle identifier %d", v.ID), "NewTopology", true)
		}
		seen[v.ID] = true
	}
	return &Topology{Atoms: ats}, nil
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// AppendAtom appends an atom at the end of the topology.
func (T *Topology) AppendAtom(at *Atom) {
	T.Atoms = append(T.Atoms, at)
}

// Masses returns a slice of float64 with the masses of the atoms in the topology,
// or an error if any atom has no known mass.
func (T *Topology) Masses() ([]float64, error) {
	mass := make([]float64, T.Len())
	for i, v := range T.Atoms {
		if v.Mass <= 0 {
			return nil, NewError(fmt.Sprintf("atom %d (id %d) has no mass", i, v.ID), "Masses", false)
		}
		mass[i] = v.Mass
	}
	return mass, nil
}

// MaxID returns the largest particle identifier in the topology, or 0 if
// it has no atoms.
func (T *Topology) MaxID() int {
	m := 0
	for _, v := range T.Atoms {
		if v.ID > m {
			m = v.ID
		}
	}
	return m
}

// MaxType returns the largest numeric type in the topology, or 0 if it
// has no atoms.
func (T *Topology) MaxType() int {
	m := 0
	for _, v := range T.Atoms {
		if v.Type > m {
			m = v.Type
		}
	}
	return m
}

// Copy returns a deep copy of the topology.
func (T *Topology) Copy() *Topology {
	ats := make([]*Atom, len(T.Atoms))
	for i, v := range T.Atoms {
		ats[i] = v.Copy()
	}
	return &Topology{Atoms: ats}
}
