/*
 * options.go, part of apdap.
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

package ptm

// Options contains the parameters for the template matching.
type Options struct {
	rmsdCutoff float64
	structures []StructureType
}

// DefaultOptions returns the default options: an RMSD cutoff of 0.12
// and all the structure templates enabled.
func DefaultOptions() *Options {
	r := new(Options)
	r.rmsdCutoff = 0.12
	r.structures = append([]StructureType{}, AllStructures...)
	return r
}

// RMSDCutoff returns the largest RMSD for a particle to be assigned
// a structure, and sets it to a new value, if given. A cutoff of 0
// means no cutoff.
func (O *Options) RMSDCutoff(c ...float64) float64 {
	if len(c) > 0 && c[0] >= 0 {
		O.rmsdCutoff = c[0]
	}
	return O.rmsdCutoff
}

// Structures returns the enabled structure types,
// and sets them to new values, if those are given.
// Other is never a valid template and is ignored.
func (O *Options) Structures(s ...[]StructureType) []StructureType {
	if len(s) > 0 && len(s[0]) > 0 {
		st := make([]StructureType, 0, len(s[0]))
		for _, v := range s[0] {
			if _, ok := templates[v]; ok {
				st = append(st, v)
			}
		}
		O.structures = st
	}
	return O.structures
}
