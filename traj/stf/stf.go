/*
 * stf.go, part of apdap.
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

package stf

import (
	"bufio"
	"compress/lzw"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/traj"
	v3 "github.com/rmera/apdap/v3"
)

const (
	format      = "stf"
	lzwLitwidth = 8
	defaultPrec = 2
)

// Header keys written by this package, besides the ones given by the user.
const (
	KeyPrec     = "prec"
	KeyOrigin   = "origin"
	KeyPBC      = "pbc"
	KeyTopology = "topology"
)

// topAtom is the JSON form of an atom in the topology header.
type topAtom struct {
	ID     int     `json:"id"`
	Type   int     `json:"type"`
	Symbol string  `json:"symbol,omitempty"`
	Mass   float64 `json:"mass,omitempty"`
}

// compressor returns the writer compressing into a, chosen by the last
// character of name: l lzw, z gzip, r flate, anything else zstd.
func compressor(name string, level int) func(a io.Writer) (io.WriteCloser, error) {
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		return func(a io.Writer) (io.WriteCloser, error) { return lzw.NewWriter(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		return func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, level) }
	case 'r':
		return func(a io.Writer) (io.WriteCloser, error) { return flate.NewWriter(a, level) }
	}
	return func(a io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	}
}

// Writer writes an stf trajectory.
type Writer struct {
	h         io.WriteCloser
	b         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
	origin    [3]float64
	pbc       [3]bool
}

// NewWriter returns a Writer that writes F's trajectory to w. F is the first
// frame. It sets the number of atoms, the topology, the box origin and the
// periodicity written in the header, but it is not itself written. name
// selects the compression (see the package documentation). Only "prec" is
// interpreted among the header keys. Closing the Writer does not close w.
func NewWriter(w io.Writer, name string, F *chem.Frame, header map[string]string, compressionLevel ...int) (*Writer, error) {
	level := 11
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	if name == "" {
		name = "trajectory.stf"
	}
	S := &Writer{filename: name, prec: defaultPrec, natoms: F.Len(), origin: F.Box.Origin()}
	for i := range S.pbc {
		S.pbc[i] = F.Box.PBC(i)
	}
	clamped := level
	if last := strings.ToLower(name)[len(name)-1]; (last == 'z' || last == 'r') && clamped > 9 {
		//gzip and flate levels go up to 9.
		clamped = 9
	}
	var err error
	S.h, err = compressor(name, clamped)(w)
	if err != nil {
		return nil, Error{"Can't write header " + err.Error(), S.filename, []string{"NewWriter"}, true}
	}
	S.b = bufio.NewWriter(S.h)
	if p, ok := header[KeyPrec]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Warn().Str("file", S.filename).Str("prec", p).Msg("Invalid precision for trajectory. Will use the default")
		}
	}
	h := make(map[string]string, len(header)+4)
	for k, v := range header {
		h[k] = v
	}
	h[KeyPrec] = strconv.Itoa(S.prec)
	h[KeyOrigin] = fmt.Sprintf("%g %g %g", S.origin[0], S.origin[1], S.origin[2])
	h[KeyPBC] = fmt.Sprintf("%t %t %t", S.pbc[0], S.pbc[1], S.pbc[2])
	top := make([]topAtom, F.Len())
	for i, a := range F.Atoms {
		top[i] = topAtom{ID: a.ID, Type: a.Type, Symbol: a.Symbol, Mass: a.Mass}
	}
	js, err := json.Marshal(top)
	if err != nil {
		return nil, Error{"Can't encode topology " + err.Error(), S.filename, []string{"NewWriter"}, true}
	}
	h[KeyTopology] = string(js)
	//the order of the keys is irrelevant, but a fixed one makes files reproducible.
	for _, k := range sortedKeys(h) {
		fmt.Fprintf(S.b, "%s=%s\n", k, h[k])
	}
	fmt.Fprintf(S.b, "** %d\n", S.natoms)
	S.writeable = true
	return S, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of atoms per frame.
func (S *Writer) Len() int {
	return S.natoms
}

// WNext writes the coordinates and box of F as the next frame.
func (S *Writer) WNext(F *chem.Frame) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if F == nil || F.Coords == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	v := F.Coords.NVecs()
	if v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	if F.Box.Origin() != S.origin {
		log.Warn().Str("file", S.filename).Int("frame", F.Index).Msg("Box origin differs from the one in the header. It will not be stored")
	}
	var temp [3]int
	buf := make([]byte, 0, 64)
	for i := 0; i < v; i++ {
		buf = coordsEncode(buf[:0], F.Coords.Vec(i), temp, S.prec)
		if _, err := S.b.Write(buf); err != nil {
			return Error{err.Error(), S.filename, []string{"WNext"}, true}
		}
	}
	b := F.Box.Vectors()
	S.b.WriteString("*")
	for _, vec := range b {
		for _, c := range vec {
			S.b.WriteByte(' ')
			S.b.WriteString(strconv.FormatFloat(c, 'f', S.prec+2, 64))
		}
	}
	if _, err := S.b.WriteString("\n"); err != nil {
		return Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	return nil
}

// Close flushes and closes the compressor. The underlying writer is not closed.
func (S *Writer) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	if err := S.b.Flush(); err != nil {
		return Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	if err := S.h.Close(); err != nil {
		return Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

func coordsEncode(buf []byte, f [3]float64, temp [3]int, prec int) []byte {
	p := 100.0
	if prec > 0 && prec != 2 { //2 is the default value, so we do nothing in that case
		p = math.Pow(10.0, float64(prec))
	}
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	buf = strconv.AppendInt(buf, int64(temp[0]), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(temp[1]), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(temp[2]), 10)
	return append(buf, '\n')
}

// this wrapper is needed because *zstd.Decoder's Close doesn't return an error.
type zstdql struct {
	*zstd.Decoder
}

// Close Closes the object. It can not be used after this call
func (s zstdql) Close() error {
	s.Decoder.Close()
	return nil
}

// Reader reads stf trajectories.
type Reader struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
	header   map[string]string
	top      *chem.Topology
	origin   [3]float64
	pbc      [3]bool
	index    int
}

// New opens a STF trajectory for reading, and returns a pointer
// to the handle, a map with the metadata and error or nil.
func New(name string) (*Reader, map[string]string, error) {
	S := &Reader{natoms: -1, filename: name, prec: defaultPrec, header: make(map[string]string)}
	var err error
	S.f, err = os.Open(S.filename)
	if err != nil {
		return nil, nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	var anyNewReader func(io.Reader) (io.ReadCloser, error)
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		anyNewReader = func(a io.Reader) (io.ReadCloser, error) { return lzw.NewReader(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		anyNewReader = func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	case 'r':
		anyNewReader = func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	default:
		anyNewReader = func(a io.Reader) (io.ReadCloser, error) {
			r, err := zstd.NewReader(a)
			if err != nil {
				return nil, err
			}
			return zstdql{r}, nil
		}
	}
	S.dec, err = anyNewReader(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"Can't read header " + err.Error(), S.filename, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	if err := S.readHeader(); err != nil {
		S.dec.Close()
		S.f.Close()
		return nil, nil, errDecorate(err, "New")
	}
	S.readable = true
	return S, S.header, nil
}

func (S *Reader) readHeader() error {
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			return Error{"Can't read header " + err.Error(), S.filename, []string{"readHeader"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				return Error{fmt.Sprintf("Can't read atom number from '%s'", str), S.filename, []string{"readHeader"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil {
				return Error{fmt.Sprintf("Can't read atom number from '%s': %s", nat[1], err.Error()), S.filename, []string{"readHeader"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return Error{"Malformed header line " + str, S.filename, []string{"readHeader"}, true}
		}
		S.header[kv[0]] = kv[1]
	}
	if p, ok := S.header[KeyPrec]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Warn().Str("file", S.filename).Str("prec", p).Msg("Invalid precision for trajectory. Will assume the default")
		}
	}
	S.pbc = [3]bool{true, true, true}
	if o, ok := S.header[KeyOrigin]; ok {
		if _, err := fmt.Sscanf(o, "%g %g %g", &S.origin[0], &S.origin[1], &S.origin[2]); err != nil {
			return Error{"Malformed origin " + o, S.filename, []string{"readHeader"}, true}
		}
	}
	if p, ok := S.header[KeyPBC]; ok {
		if _, err := fmt.Sscanf(p, "%t %t %t", &S.pbc[0], &S.pbc[1], &S.pbc[2]); err != nil {
			return Error{"Malformed pbc " + p, S.filename, []string{"readHeader"}, true}
		}
	}
	ats := make([]*chem.Atom, S.natoms)
	if t, ok := S.header[KeyTopology]; ok {
		var top []topAtom
		if err := json.Unmarshal([]byte(t), &top); err != nil || len(top) != S.natoms {
			return Error{"Malformed topology in header", S.filename, []string{"readHeader"}, true}
		}
		for i, a := range top {
			ats[i] = &chem.Atom{ID: a.ID, Type: a.Type, Symbol: a.Symbol, Mass: a.Mass}
		}
	} else {
		for i := range ats {
			ats[i] = &chem.Atom{ID: i + 1, Type: 1}
		}
	}
	var err error
	S.top, err = chem.NewTopology(ats)
	if err != nil {
		return Error{err.Error(), S.filename, []string{"readHeader"}, true}
	}
	return nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *Reader) Readable() bool {
	return S.readable
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := 100.0
	if prec > 0 && prec != 2 { //2 is just the default value, so we can save the operation
		p = math.Pow(10.0, float64(prec))
	}
	s := strings.Fields(str)
	if len(s) < 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too few fields: %s", str)
	}
	if len(s) > 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too many fields: %s", str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

// Next returns the next frame of the trajectory, with a copy of the topology
// given in the header. If discard is true, the frame is read and checked, but nil
// is returned. At the end of the trajectory, a chem.LastFrameError is returned.
func (S *Reader) Next(discard ...bool) (*chem.Frame, error) {
	if !S.readable {
		return nil, Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	skip := len(discard) > 0 && discard[0]
	var c *v3.Matrix
	if !skip {
		c = v3.Zeros(S.natoms)
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			// EOF should only happen when reading the first atom
			if err == io.EOF && i == 0 && b == "" {
				//nothing bad happened here, the trajectory just ended.
				S.Close()
				return nil, traj.NewLastFrameError(S.filename, format, "Next")
			}
			return nil, Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if err = coordsDecode(strings.TrimSuffix(b, "\n"), &temp, S.prec); err != nil {
			return nil, Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if skip {
			continue //We still check the frame for correctness.
		}
		c.SetVec(i, temp)
	}
	s, err := S.h.ReadString('\n')
	if err != nil {
		return nil, Error{"Can't read the frame termination mark " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if s[0] != '*' {
		return nil, Error{"Wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	S.index++
	if skip {
		return nil, nil
	}
	var box *chem.Box
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) >= 10 { // The "*" and the 9 numbers
		var vecs [3][3]float64
		var errbox error
		for j, v := range fields[1:10] {
			vecs[j/3][j%3], errbox = strconv.ParseFloat(v, 64)
			if errbox != nil {
				break
			}
		}
		if errbox == nil {
			box, errbox = chem.NewBox(S.origin, vecs, S.pbc)
		}
		//A bad box is not an error, the frame just gets a bounding box.
		if errbox != nil {
			log.Warn().Str("file", S.filename).Int("frame", S.index-1).Msg("Failed to read box in a frame")
			box = nil
		}
	} else {
		log.Warn().Str("file", S.filename).Int("frame", S.index-1).Msg("Trajectory frame does not contain (correct) box information")
	}
	F, err := chem.NewFrame(S.top.Copy(), c, box)
	if err != nil {
		return nil, Error{err.Error(), S.filename, []string{"Next"}, true}
	}
	F.Index = S.index - 1
	return F, nil
}

// Close closes the object, and marks it as unreadable
func (S *Reader) Close() error {
	if !S.readable {
		return nil
	}
	S.readable = false
	err := S.dec.Close()
	if err2 := S.f.Close(); err == nil {
		err = err2
	}
	return err
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *Reader) Len() int {
	return S.natoms
}

// Errors

// errDecorate decorates the error with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	return chem.ErrDecorate(err, caller)
}

// Error is the general structure for stf trajectory errors. It fullfills  chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

// Format returns the format of the file (always "stf") associated to the error
func (err Error) Format() string { return format }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
)
