/*
 * atomicdata.go, part of apdap.
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

import "strings"

// A map for assigning mass to elements.
// Common elements of metallic and covalent MD systems only.
var symbolMass = map[string]float64{
	"H":  1.008,
	"He": 4.003,
	"Li": 6.94,
	"Be": 9.012,
	"B":  10.81,
	"C":  12.01,
	"N":  14.01,
	"O":  16.00,
	"F":  18.998,
	"Ne": 20.18,
	"Na": 22.99,
	"Mg": 24.30,
	"Al": 26.98,
	"Si": 28.08,
	"P":  30.97,
	"S":  32.06,
	"Cl": 35.45,
	"Ar": 39.95,
	"K":  39.10,
	"Ca": 40.08,
	"Ti": 47.87,
	"V":  50.94,
	"Cr": 51.996,
	"Mn": 54.94,
	"Fe": 55.84,
	"Co": 58.93,
	"Ni": 58.69,
	"Cu": 63.55,
	"Zn": 65.38,
	"Ge": 72.63,
	"Se": 78.96,
	"Br": 79.904,
	"Kr": 83.80,
	"Zr": 91.22,
	"Nb": 92.91,
	"Mo": 95.95,
	"Pd": 106.42,
	"Ag": 107.87,
	"Sn": 118.71,
	"I":  126.90,
	"Xe": 131.29,
	"Ta": 180.95,
	"W":  183.84,
	"Pt": 195.08,
	"Au": 196.97,
	"Pb": 207.2,
}

// MassOf returns the standard atomic mass of the element with the given
// symbol, and whether the symbol is known. The symbol is not case-sensitive.
func MassOf(symbol string) (float64, bool) {
	if m, ok := symbolMass[symbol]; ok {
		return m, true
	}
	s := strings.TrimSpace(symbol)
	if s == "" {
		return 0, false
	}
	s = strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	m, ok := symbolMass[s]
	return m, ok
}
