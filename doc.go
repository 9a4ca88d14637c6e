/*
 * doc.go, part of apdap.
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

/*
Package chem is the main package of apdap. It provides the particle,
topology, simulation box and frame structures shared by the analysis
packages, and some functions for geometric manipulations.

	**apdap capabilities**

	Reads LAMMPS text dumps and (extended) XYZ trajectories, plain or compressed.

	Classifies the local crystalline structure of each particle with
	polyhedral template matching (package ptm).

	Selects particles with boolean expressions (package selection).

	Finds clusters of particles, with centers of mass computed across
	periodic boundaries (package cluster).

	Inserts a marker particle at the center of mass of the largest
	clusters of disordered particles, wraps the frame back into the
	periodic cell, and writes the result as a LAMMPS dump, XYZ,
	attribute table, stf or DCD file (packages pipeline and export).

Frames are processed concurrently, and written in the order they were read.
*/
package chem
