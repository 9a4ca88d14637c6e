/*
 * reader.go, part of apdap.
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

// Package lammps reads and writes LAMMPS text dump files ("dump atom" and
// "dump custom"), with orthogonal or triclinic boxes.
package lammps

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/traj"
	v3 "github.com/rmera/apdap/v3"
)

const format = "lammps/dump"

// Reader is a LAMMPS dump file open for reading.
type Reader struct {
	r        *bufio.Reader
	c        io.Closer
	filename string
	line     int
	index    int
	readable bool
	peeked   *string
}

// New opens the LAMMPS dump file name. Files ending in .gz or .zst
// are decompressed on the fly.
func New(name string) (*Reader, error) {
	f, err := traj.Open(name)
	if err != nil {
		return nil, traj.Error{Message: err.Error(), Filename: name, Fmt: format, Deco: []string{"New"}, Crit: true}
	}
	R := NewReader(f, name)
	R.c = f
	return R, nil
}

// NewReader returns a Reader that reads the dump from r. name is
// only used in error messages.
func NewReader(r io.Reader, name string) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 1<<16), filename: name, readable: true}
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (R *Reader) Readable() bool { return R.readable }

// Close closes the reader, and marks it as unreadable.
func (R *Reader) Close() error {
	R.readable = false
	if R.c != nil {
		c := R.c
		R.c = nil
		return c.Close()
	}
	return nil
}

func (R *Reader) errorf(caller string, f string, args ...interface{}) error {
	return traj.Error{Message: fmt.Sprintf(f, args...), Filename: R.filename, Fmt: format, Line: R.line, Deco: []string{caller}, Crit: true}
}

// readLine returns the next non-empty line, without the trailing newline.
func (R *Reader) readLine() (string, error) {
	if R.peeked != nil {
		s := *R.peeked
		R.peeked = nil
		return s, nil
	}
	for {
		s, err := R.r.ReadString('\n')
		if len(s) > 0 || err == nil {
			R.line++
		}
		s = strings.TrimSpace(s)
		if s != "" {
			return s, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// Next reads the next frame of the dump. If discard is true, the frame
// is read and checked, but nil is returned.
func (R *Reader) Next(discard ...bool) (*chem.Frame, error) {
	if !R.readable {
		return nil, R.errorf("Next", "trajectory not readable")
	}
	var timestep int64
	natoms := -1
	var box *chem.Box
	for {
		l, err := R.readLine()
		if err == io.EOF {
			if natoms < 0 {
				R.Close()
				return nil, traj.NewLastFrameError(R.filename, format, "Next")
			}
			return nil, R.errorf("Next", "unexpected end of file")
		}
		if err != nil {
			return nil, R.errorf("Next", "%s", err)
		}
		if !strings.HasPrefix(l, "ITEM:") {
			return nil, R.errorf("Next", "expected an ITEM line, got %q", l)
		}
		item := strings.TrimSpace(strings.TrimPrefix(l, "ITEM:"))
		switch {
		case item == "TIMESTEP":
			v, err := R.readLine()
			if err != nil {
				return nil, R.errorf("Next", "missing timestep")
			}
			timestep, err = strconv.ParseInt(strings.Fields(v)[0], 10, 64)
			if err != nil {
				return nil, R.errorf("Next", "bad timestep %q", v)
			}
		case item == "NUMBER OF ATOMS":
			v, err := R.readLine()
			if err != nil {
				return nil, R.errorf("Next", "missing number of atoms")
			}
			natoms, err = strconv.Atoi(strings.Fields(v)[0])
			if err != nil || natoms < 0 {
				return nil, R.errorf("Next", "bad number of atoms %q", v)
			}
		case strings.HasPrefix(item, "BOX BOUNDS"):
			box, err = R.readBox(strings.Fields(strings.TrimPrefix(item, "BOX BOUNDS")))
			if err != nil {
				return nil, err
			}
		case strings.HasPrefix(item, "ATOMS"):
			if natoms < 0 {
				return nil, R.errorf("Next", "ATOMS section before NUMBER OF ATOMS")
			}
			cols := strings.Fields(strings.TrimPrefix(item, "ATOMS"))
			F, err := R.readAtoms(cols, natoms, box)
			if err != nil {
				return nil, err
			}
			R.index++
			if len(discard) > 0 && discard[0] {
				return nil, nil
			}
			F.Timestep = timestep
			F.Index = R.index - 1
			return F, nil
		default:
			//TIME, UNITS and any other single-line item. Skip its values.
			if err := R.skipValues(); err != nil {
				return nil, err
			}
		}
	}
}

// skipValues skips lines until the next ITEM line.
func (R *Reader) skipValues() error {
	for {
		l, err := R.readLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return R.errorf("skipValues", "%s", err)
		}
		if strings.HasPrefix(l, "ITEM:") {
			R.peeked = &l
			return nil
		}
	}
}

func (R *Reader) readBox(flags []string) (*chem.Box, error) {
	triclinic := false
	var pbc [3]bool
	var bf []string
	for _, v := range flags {
		switch v {
		case "xy", "xz", "yz":
			triclinic = true
		default:
			bf = append(bf, v)
		}
	}
	for i := 0; i < 3; i++ {
		pbc[i] = true
		if i < len(bf) && bf[i] != "pp" {
			pbc[i] = false
		}
	}
	var lo, hi, tilt [3]float64
	for i := 0; i < 3; i++ {
		l, err := R.readLine()
		if err != nil {
			return nil, R.errorf("readBox", "incomplete box")
		}
		f := strings.Fields(l)
		need := 2
		if triclinic {
			need = 3
		}
		if len(f) < need {
			return nil, R.errorf("readBox", "expected %d numbers in box line, got %q", need, l)
		}
		vals := make([]float64, need)
		for j := range vals {
			vals[j], err = strconv.ParseFloat(f[j], 64)
			if err != nil {
				return nil, R.errorf("readBox", "bad number %q", f[j])
			}
		}
		lo[i], hi[i] = vals[0], vals[1]
		if triclinic {
			tilt[i] = vals[2]
		}
	}
	xy, xz, yz := tilt[0], tilt[1], tilt[2]
	if triclinic {
		lo[0] -= math.Min(0, math.Min(xy, math.Min(xz, xy+xz)))
		hi[0] -= math.Max(0, math.Max(xy, math.Max(xz, xy+xz)))
		lo[1] -= math.Min(0, yz)
		hi[1] -= math.Max(0, yz)
	}
	vecs := [3][3]float64{
		{hi[0] - lo[0], 0, 0},
		{xy, hi[1] - lo[1], 0},
		{xz, yz, hi[2] - lo[2]},
	}
	box, err := chem.NewBox(lo, vecs, pbc)
	if err != nil {
		return nil, R.errorf("readBox", "%s", err)
	}
	return box, nil
}

type posKind int

const (
	posNone posKind = iota
	posCartesian
	posScaled
)

func (R *Reader) readAtoms(cols []string, natoms int, box *chem.Box) (*chem.Frame, error) {
	idcol, typecol, masscol, elemcol := -1, -1, -1, -1
	poscol := [3]int{-1, -1, -1}
	kinds := [3]posKind{}
	extra := make(map[int]string)
	var extraOrder []int
	for i, c := range cols {
		switch c {
		case "id":
			idcol = i
		case "type":
			typecol = i
		case "mass":
			masscol = i
		case "element":
			elemcol = i
		case "x", "xu":
			poscol[0], kinds[0] = i, posCartesian
		case "y", "yu":
			poscol[1], kinds[1] = i, posCartesian
		case "z", "zu":
			poscol[2], kinds[2] = i, posCartesian
		case "xs", "xsu":
			poscol[0], kinds[0] = i, posScaled
		case "ys", "ysu":
			poscol[1], kinds[1] = i, posScaled
		case "zs", "zsu":
			poscol[2], kinds[2] = i, posScaled
		default:
			extra[i] = c
			extraOrder = append(extraOrder, i)
		}
	}
	for d := 0; d < 3; d++ {
		if poscol[d] < 0 {
			return nil, R.errorf("readAtoms", "no position column for axis %d in %v", d, cols)
		}
		if kinds[d] == posScaled && box == nil {
			return nil, R.errorf("readAtoms", "scaled coordinates without a box")
		}
	}
	ats := make([]*chem.Atom, natoms)
	coords := v3.Zeros(natoms)
	extras := make(map[int][]float64, len(extra))
	for k := range extra {
		extras[k] = make([]float64, natoms)
	}
	for i := 0; i < natoms; i++ {
		l, err := R.readLine()
		if err != nil {
			return nil, R.errorf("readAtoms", "expected %d atoms, found %d", natoms, i)
		}
		f := strings.Fields(l)
		if len(f) != len(cols) {
			return nil, R.errorf("readAtoms", "expected %d columns, got %d", len(cols), len(f))
		}
		at := &chem.Atom{ID: i + 1, Type: 1}
		if idcol >= 0 {
			if at.ID, err = strconv.Atoi(f[idcol]); err != nil {
				return nil, R.errorf("readAtoms", "bad id %q", f[idcol])
			}
		}
		if typecol >= 0 {
			if at.Type, err = strconv.Atoi(f[typecol]); err != nil {
				//symbolic types are kept as the type name.
				at.Symbol = f[typecol]
				at.Type = 0
			}
		}
		if elemcol >= 0 {
			at.Symbol = f[elemcol]
		}
		if masscol >= 0 {
			if at.Mass, err = strconv.ParseFloat(f[masscol], 64); err != nil {
				return nil, R.errorf("readAtoms", "bad mass %q", f[masscol])
			}
		} else if at.Symbol != "" {
			at.Mass, _ = chem.MassOf(at.Symbol)
		}
		var p, s [3]float64
		scaled := false
		for d := 0; d < 3; d++ {
			v, err := strconv.ParseFloat(f[poscol[d]], 64)
			if err != nil {
				return nil, R.errorf("readAtoms", "bad coordinate %q", f[poscol[d]])
			}
			if kinds[d] == posScaled {
				s[d] = v
				scaled = true
			} else {
				p[d] = v
			}
		}
		if scaled {
			//mixed scaled and cartesian columns are not something LAMMPS writes.
			p = box.Cartesian(s)
		}
		coords.SetVec(i, p)
		for k, name := range extra {
			v, err := strconv.ParseFloat(f[k], 64)
			if err != nil {
				return nil, R.errorf("readAtoms", "bad value %q for column %s", f[k], name)
			}
			extras[k][i] = v
		}
		ats[i] = at
	}
	top, err := chem.NewTopology(ats)
	if err != nil {
		return nil, R.errorf("readAtoms", "%s", err)
	}
	F, err := chem.NewFrame(top, coords, box)
	if err != nil {
		return nil, R.errorf("readAtoms", "%s", err)
	}
	for _, k := range extraOrder {
		switch extra[k] {
		case columnName(chem.PropStructure):
			F.Structure = toInts(extras[k])
		case columnName(chem.PropCluster):
			F.Cluster = toInts(extras[k])
		case columnName(chem.PropSelection):
			F.Selection = toInts(extras[k])
		case columnName(chem.PropRMSD):
			F.RMSD = extras[k]
		default:
			F.SetExtra(extra[k], extras[k])
		}
	}
	F.SortByID()
	return F, nil
}

func toInts(f []float64) []int {
	ret := make([]int, len(f))
	for i, v := range f {
		ret[i] = int(math.Round(v))
	}
	return ret
}
