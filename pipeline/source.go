/*
 * source.go, part of apdap.
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
	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/traj"
	"github.com/rmera/apdap/traj/dcd"
	"github.com/rmera/apdap/traj/lammps"
	"github.com/rmera/apdap/traj/stf"
	"github.com/rmera/apdap/traj/xyz"
)

// Input formats, as returned by InputFormat.
const (
	InputLAMMPS = "lammps/dump"
	InputXYZ    = "xyz"
	InputSTF    = "stf"
	InputDCD    = "dcd"
)

// InputFormat guesses the format of the trajectory name from its
// extension, ignoring .gz and .zst. Anything not recognized is taken
// as a LAMMPS dump.
func InputFormat(name string) string {
	switch traj.Ext(name) {
	case ".xyz", ".extxyz":
		return InputXYZ
	case ".stf", ".stz", ".stl", ".str":
		return InputSTF
	case ".dcd":
		return InputDCD
	}
	return InputLAMMPS
}

// Open opens the trajectory name with the reader for its format.
func Open(name string) (chem.Traj, error) {
	var t chem.Traj
	var err error
	switch InputFormat(name) {
	case InputXYZ:
		t, err = xyz.New(name)
	case InputSTF:
		t, _, err = stf.New(name)
	case InputDCD:
		t, err = dcd.New(name)
	default:
		t, err = lammps.New(name)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
