/*
 * xyz.go, part of apdap.
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

// Package xyz reads and writes multi-frame XYZ files, including the
// extended XYZ header (Lattice, Origin, pbc and Properties keys).
// Files without a Properties key are read as plain XYZ (symbol x y z).
package xyz

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/traj"
	v3 "github.com/rmera/apdap/v3"
)

const format = "xyz"

// Reader is an XYZ file open for reading.
type Reader struct {
	r        *bufio.Reader
	c        io.Closer
	filename string
	line     int
	index    int
	readable bool
	//types given to symbols without a type column, shared by all frames.
	types map[string]int
}

// New opens the XYZ file name. Files ending in .gz or .zst
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

// NewReader returns a Reader for the XYZ data in r. name is only
// used in error messages.
func NewReader(r io.Reader, name string) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 1<<16), filename: name, readable: true, types: make(map[string]int)}
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

func (R *Reader) readLine() (string, error) {
	s, err := R.r.ReadString('\n')
	if len(s) == 0 && err != nil {
		return "", err
	}
	R.line++
	return strings.TrimRight(s, "\r\n"), nil
}

// property is one entry of the extended XYZ Properties key.
type property struct {
	name  string
	kind  byte //S, R, I or L
	ncols int
}

var plainProperties = []property{{"species", 'S', 1}, {"pos", 'R', 3}}

// Next reads the next frame. If discard is true, the frame is read
// and checked, but nil is returned.
func (R *Reader) Next(discard ...bool) (*chem.Frame, error) {
	if !R.readable {
		return nil, R.errorf("Next", "trajectory not readable")
	}
	var l string
	var err error
	for {
		l, err = R.readLine()
		if err == io.EOF {
			R.Close()
			return nil, traj.NewLastFrameError(R.filename, format, "Next")
		}
		if err != nil {
			return nil, R.errorf("Next", "%s", err)
		}
		if strings.TrimSpace(l) != "" {
			break
		}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(l))
	if err != nil || natoms < 0 {
		return nil, R.errorf("Next", "bad number of atoms %q", l)
	}
	comment, err := R.readLine()
	if err != nil {
		return nil, R.errorf("Next", "missing comment line")
	}
	keys, err := ParseComment(comment)
	if err != nil {
		//free-form comments of plain XYZ files are not an error.
		if strings.Contains(strings.ToLower(comment), "properties=") {
			return nil, R.errorf("Next", "%s", err)
		}
		keys = map[string]string{}
	}
	props := plainProperties
	if p, ok := keys["properties"]; ok {
		if props, err = parseProperties(p); err != nil {
			return nil, R.errorf("Next", "%s", err)
		}
	}
	box, err := parseBox(keys)
	if err != nil {
		return nil, R.errorf("Next", "%s", err)
	}
	F, err := R.readAtoms(props, natoms, box)
	if err != nil {
		return nil, err
	}
	R.index++
	if len(discard) > 0 && discard[0] {
		return nil, nil
	}
	F.Index = R.index - 1
	for _, k := range []string{"timestep", "time"} {
		if v, ok := keys[k]; ok {
			if ts, err := strconv.ParseFloat(v, 64); err == nil {
				F.Timestep = int64(ts)
			}
			break
		}
	}
	return F, nil
}

func (R *Reader) readAtoms(props []property, natoms int, box *chem.Box) (*chem.Frame, error) {
	ncols := 0
	for _, p := range props {
		ncols += p.ncols
	}
	ats := make([]*chem.Atom, natoms)
	coords := v3.Zeros(natoms)
	extras := make(map[string][]float64)
	var extraOrder []string
	hasType := false
	for _, p := range props {
		if strings.EqualFold(p.name, "type") && p.kind == 'I' {
			hasType = true
		}
	}
	for i := 0; i < natoms; i++ {
		l, err := R.readLine()
		if err != nil {
			return nil, R.errorf("readAtoms", "expected %d atoms, found %d", natoms, i)
		}
		f := strings.Fields(l)
		if len(f) < ncols {
			return nil, R.errorf("readAtoms", "expected %d columns, got %d", ncols, len(f))
		}
		at := &chem.Atom{ID: i + 1, Type: 1}
		col := 0
		for _, p := range props {
			vals := f[col : col+p.ncols]
			col += p.ncols
			switch {
			case p.name == "species" || p.kind == 'S':
				if p.name == "species" || p.name == "element" {
					at.Symbol = vals[0]
				}
			case p.name == "pos":
				var v [3]float64
				for d := 0; d < 3 && d < p.ncols; d++ {
					if v[d], err = strconv.ParseFloat(vals[d], 64); err != nil {
						return nil, R.errorf("readAtoms", "bad coordinate %q", vals[d])
					}
				}
				coords.SetVec(i, v)
			case p.name == "id" && p.kind == 'I':
				if at.ID, err = strconv.Atoi(vals[0]); err != nil {
					return nil, R.errorf("readAtoms", "bad id %q", vals[0])
				}
			case strings.EqualFold(p.name, "type") && p.kind == 'I':
				if at.Type, err = strconv.Atoi(vals[0]); err != nil {
					return nil, R.errorf("readAtoms", "bad type %q", vals[0])
				}
			case (p.name == "mass" || p.name == "masses") && p.kind == 'R':
				if at.Mass, err = strconv.ParseFloat(vals[0], 64); err != nil {
					return nil, R.errorf("readAtoms", "bad mass %q", vals[0])
				}
			default:
				for k, s := range vals {
					name := extraName(p, k)
					if _, ok := extras[name]; !ok {
						extras[name] = make([]float64, natoms)
						extraOrder = append(extraOrder, name)
					}
					v, err := parseValue(s, p.kind)
					if err != nil {
						return nil, R.errorf("readAtoms", "bad value %q for property %s", s, p.name)
					}
					extras[name][i] = v
				}
			}
		}
		if at.Symbol != "" {
			if at.Mass == 0 {
				at.Mass, _ = chem.MassOf(at.Symbol)
			}
			if !hasType {
				t, ok := R.types[at.Symbol]
				if !ok {
					t = len(R.types) + 1
					R.types[at.Symbol] = t
				}
				at.Type = t
			}
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
	for _, name := range extraOrder {
		switch name {
		case propName(chem.PropStructure):
			F.Structure = toInts(extras[name])
		case propName(chem.PropCluster):
			F.Cluster = toInts(extras[name])
		case propName(chem.PropSelection):
			F.Selection = toInts(extras[name])
		case propName(chem.PropRMSD):
			F.RMSD = extras[name]
		default:
			F.SetExtra(name, extras[name])
		}
	}
	F.SortByID()
	return F, nil
}

func toInts(f []float64) []int {
	ret := make([]int, len(f))
	for i, v := range f {
		ret[i] = int(v)
	}
	return ret
}

func extraName(p property, k int) string {
	switch {
	case p.ncols == 1:
		return p.name
	case p.ncols == 3:
		return p.name + "." + string("XYZ"[k])
	}
	return fmt.Sprintf("%s.%d", p.name, k)
}

func parseValue(s string, kind byte) (float64, error) {
	switch kind {
	case 'L':
		switch strings.ToUpper(s) {
		case "T", "TRUE", "1":
			return 1, nil
		case "F", "FALSE", "0":
			return 0, nil
		}
		return 0, fmt.Errorf("bad logical %q", s)
	case 'I':
		v, err := strconv.ParseInt(s, 10, 64)
		return float64(v), err
	}
	return strconv.ParseFloat(s, 64)
}

func parseProperties(s string) ([]property, error) {
	f := strings.Split(s, ":")
	if len(f)%3 != 0 {
		return nil, fmt.Errorf("malformed Properties %q", s)
	}
	var ret []property
	hasPos := false
	for i := 0; i < len(f); i += 3 {
		kind := strings.ToUpper(f[i+1])
		if len(kind) != 1 || !strings.Contains("SRIL", kind) {
			return nil, fmt.Errorf("unknown type %q for property %s", f[i+1], f[i])
		}
		n, err := strconv.Atoi(f[i+2])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad column count %q for property %s", f[i+2], f[i])
		}
		p := property{name: f[i], kind: kind[0], ncols: n}
		if p.name == "pos" {
			if n != 3 || p.kind != 'R' {
				return nil, fmt.Errorf("pos must be R:3")
			}
			hasPos = true
		}
		ret = append(ret, p)
	}
	if !hasPos {
		return nil, fmt.Errorf("no pos property in %q", s)
	}
	return ret, nil
}

func parseBox(keys map[string]string) (*chem.Box, error) {
	lat, ok := keys["lattice"]
	if !ok {
		return nil, nil
	}
	f := strings.Fields(lat)
	if len(f) != 9 {
		return nil, fmt.Errorf("lattice needs 9 numbers, got %d", len(f))
	}
	var vecs [3][3]float64
	for i, s := range f {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad lattice number %q", s)
		}
		vecs[i/3][i%3] = v
	}
	var origin [3]float64
	if o, ok := keys["origin"]; ok {
		f := strings.Fields(o)
		if len(f) != 3 {
			return nil, fmt.Errorf("origin needs 3 numbers, got %d", len(f))
		}
		for i, s := range f {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("bad origin number %q", s)
			}
			origin[i] = v
		}
	}
	pbc := [3]bool{true, true, true}
	if p, ok := keys["pbc"]; ok {
		f := strings.Fields(p)
		if len(f) != 3 {
			return nil, fmt.Errorf("pbc needs 3 values, got %d", len(f))
		}
		for i, s := range f {
			v, err := parseValue(s, 'L')
			if err != nil {
				return nil, err
			}
			pbc[i] = v != 0
		}
	}
	return chem.NewBox(origin, vecs, pbc)
}

// ParseComment parses the key=value pairs of an extended XYZ comment
// line. Values can be quoted with double quotes or braces. Keys are
// returned in lower case. Bare words are keys with the value "T".
func ParseComment(s string) (map[string]string, error) {
	ret := make(map[string]string)
	i := 0
	for {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			return ret, nil
		}
		start := i
		for i < len(s) && s[i] != '=' && s[i] != ' ' && s[i] != '\t' {
			i++
		}
		key := strings.ToLower(s[start:i])
		if i >= len(s) || s[i] != '=' {
			ret[key] = "T"
			continue
		}
		i++
		if i >= len(s) {
			ret[key] = ""
			return ret, nil
		}
		var closing byte
		switch s[i] {
		case '"':
			closing = '"'
		case '{':
			closing = '}'
		}
		if closing != 0 {
			end := strings.IndexByte(s[i+1:], closing)
			if end < 0 {
				return nil, fmt.Errorf("unterminated value for key %s", key)
			}
			ret[key] = s[i+1 : i+1+end]
			i += end + 2
			continue
		}
		start = i
		for i < len(s) && s[i] != ' ' && s[i] != '\t' {
			i++
		}
		ret[key] = s[start:i]
	}
}
