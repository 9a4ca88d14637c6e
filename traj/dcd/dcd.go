/*
 * dcd.go, part of apdap.
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

// Package dcd reads and writes Charmm/NAMD binary (DCD) trajectories,
// including the unit cell block.
package dcd

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/traj"
	v3 "github.com/rmera/apdap/v3"
)

const (
	format      = "dcd"
	mAXTITLE    = 80
	cellBlock   = 48 //6 float64
	headerBytes = 84
)

// Reader is a Charmm/NAMD binary trajectory file open for reading.
type Reader struct {
	natoms     int32
	readable   bool
	filename   string
	extrablock bool //unit cell information in each frame
	fourdim    bool
	fixed      int32 //Fixed atoms (not supported)
	frames     int32 //as declared in the header
	index      int
	r          *bufio.Reader
	c          io.Closer
	dcdFields  [3][]float32
	endian     binary.ByteOrder
}

// New opens the DCD file name for reading. Files ending in .gz or .zst
// are decompressed on the fly.
func New(name string) (*Reader, error) {
	f, err := traj.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"New"}, true}
	}
	D, err := NewReader(f, name)
	if err != nil {
		f.Close()
		return nil, errDecorate(err, "New")
	}
	D.c = f
	return D, nil
}

// NewReader reads the DCD header from r and returns a Reader for the
// frames. name is only used in error messages.
// It supports big and little endianness, charmm or (namd>=2.1) and no
// fixed atoms.
func NewReader(r io.Reader, name string) (*Reader, error) {
	D := &Reader{filename: name, r: bufio.NewReaderSize(r, 1<<16), endian: binary.LittleEndian}
	if err := D.initRead(); err != nil {
		return nil, errDecorate(err, "NewReader")
	}
	for i := range D.dcdFields {
		D.dcdFields[i] = make([]float32, int(D.natoms))
	}
	return D, nil
}

// Readable returns true if the object is ready to be read from
// false otherwise. It doesnt guarantee that there is something
// to read.
func (D *Reader) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame.
func (D *Reader) Len() int {
	return int(D.natoms)
}

// Frames returns the number of frames declared in the header.
func (D *Reader) Frames() int {
	return int(D.frames)
}

// Close closes the reader and marks it as unreadable.
func (D *Reader) Close() error {
	D.readable = false
	if D.c != nil {
		c := D.c
		D.c = nil
		return c.Close()
	}
	return nil
}

func (D *Reader) initRead() error {
	errf := func(f string, args ...interface{}) error {
		return Error{fmt.Sprintf(f, args...), D.filename, []string{"initRead"}, true}
	}
	NB := bytes.NewReader //shortness sake
	var check int32
	if err := binary.Read(D.r, D.endian, &check); err != nil {
		return errf("%s", err)
	}
	//The first thing we should read is an 84.
	//If this fails it means that the file is big endian.
	if check != headerBytes {
		D.endian = binary.BigEndian
	}
	//Then the magic number "CORD".
	magic := make([]byte, 4)
	if _, err := io.ReadFull(D.r, magic); err != nil {
		return errf("%s", err)
	}
	if string(magic) != "CORD" {
		return errf(WrongFormat + ": wrong magic number")
	}
	//We first read a big chuck for random access.
	buf := make([]byte, 80)
	if _, err := io.ReadFull(D.r, buf); err != nil {
		return errf("%s", err)
	}
	if err := binary.Read(NB(buf[0:]), D.endian, &D.frames); err != nil {
		return errf("%s", err)
	}
	//X-plor sets this last int to zero, charmm sets it to its version number.
	//if we have a charmm file we get some additional flags.
	if err := binary.Read(NB(buf[76:]), D.endian, &check); err != nil {
		return errf("%s", err)
	}
	if check == 0 {
		return errf("X-plor DCD not supported")
	}
	if err := binary.Read(NB(buf[40:]), D.endian, &check); err != nil {
		return errf("%s", err)
	}
	D.extrablock = check != 0
	if err := binary.Read(NB(buf[44:]), D.endian, &check); err != nil {
		return errf("%s", err)
	}
	D.fourdim = check == 1
	if err := binary.Read(NB(buf[32:]), D.endian, &D.fixed); err != nil {
		return errf("%s", err)
	}
	if D.fixed != 0 {
		return errf("Fixed atoms not supported")
	}
	if err := binary.Read(D.r, D.endian, &check); err != nil {
		return errf("%s", err)
	}
	if check != headerBytes {
		return errf(WrongFormat)
	}
	var titleBytes int32
	if err := binary.Read(D.r, D.endian, &titleBytes); err != nil {
		return errf("%s", err)
	}
	//how many units of mAXTITLE does the title have?
	var ntitle int32
	if err := binary.Read(D.r, D.endian, &ntitle); err != nil {
		return errf("%s", err)
	}
	if ntitle < 0 || ntitle > 1000 {
		return errf(WrongFormat+": %d title lines", ntitle)
	}
	if _, err := io.CopyN(io.Discard, D.r, int64(mAXTITLE*ntitle)); err != nil {
		return errf("%s", err)
	}
	if err := binary.Read(D.r, D.endian, &check); err != nil {
		return errf("%s", err)
	}
	if check != titleBytes {
		return errf(SecurityCheckFailed)
	}
	if err := binary.Read(D.r, D.endian, &check); err != nil {
		return errf("%s", err)
	}
	if check != 4 { //one must read a 4 before the natoms
		return errf(WrongFormat)
	}
	if err := binary.Read(D.r, D.endian, &D.natoms); err != nil {
		return errf("%s", err)
	}
	if err := binary.Read(D.r, D.endian, &check); err != nil {
		return errf("%s", err)
	}
	if check != 4 { //and one more 4
		return errf(WrongFormat)
	}
	D.readable = true
	return nil
}

// Next reads the next frame. Particles get identifiers from 1 and type 1, since
// DCD files carry no topology. If discard is true, the frame is read but nil is
// returned. At the end of the trajectory, a chem.LastFrameError is returned.
func (D *Reader) Next(discard ...bool) (*chem.Frame, error) {
	if !D.readable {
		return nil, Error{TrajUnIni, D.filename, []string{"Next"}, true}
	}
	cell, hasCell, err := D.nextRaw()
	if err == io.EOF {
		D.Close()
		return nil, traj.NewLastFrameError(D.filename, format, "Next")
	}
	if err != nil {
		return nil, errDecorate(err, "Next")
	}
	D.index++
	if len(discard) > 0 && discard[0] {
		return nil, nil
	}
	data := make([]float64, 3*int(D.natoms))
	for i := 0; i < int(D.natoms); i++ {
		data[3*i] = float64(D.dcdFields[0][i])
		data[3*i+1] = float64(D.dcdFields[1][i])
		data[3*i+2] = float64(D.dcdFields[2][i])
	}
	coords, err := v3.NewMatrix(data)
	if err != nil {
		return nil, Error{err.Error(), D.filename, []string{"Next"}, true}
	}
	var box *chem.Box
	if hasCell {
		box, err = cellToBox(cell)
		if err != nil {
			return nil, Error{err.Error(), D.filename, []string{"Next"}, true}
		}
	}
	ats := make([]*chem.Atom, D.natoms)
	for i := range ats {
		ats[i] = &chem.Atom{ID: i + 1, Type: 1}
	}
	top, err := chem.NewTopology(ats)
	if err != nil {
		return nil, Error{err.Error(), D.filename, []string{"Next"}, true}
	}
	F, err := chem.NewFrame(top, coords, box)
	if err != nil {
		return nil, Error{err.Error(), D.filename, []string{"Next"}, true}
	}
	F.Index = D.index - 1
	return F, nil
}

// nextRaw reads the next frame into D.dcdFields. It returns io.EOF, unwrapped,
// only if the trajectory ended cleanly before the frame.
func (D *Reader) nextRaw() ([6]float64, bool, error) {
	var cell [6]float64
	hasCell := false
	var blocksize int32
	if err := binary.Read(D.r, D.endian, &blocksize); err != nil {
		if err == io.EOF {
			return cell, false, io.EOF
		}
		return cell, false, Error{err.Error(), D.filename, []string{"nextRaw"}, true}
	}
	//Even when there is an extra block, it is not present in all
	//snapshots for some trajectories, so we use the block size to see if
	//there is an extra block or if the X block starts inmediately
	if D.extrablock && (blocksize == cellBlock || blocksize != D.natoms*4) {
		b, err := D.readByteBlock(blocksize)
		if err != nil {
			return cell, false, errDecorate(err, "nextRaw")
		}
		if blocksize == cellBlock {
			if err := binary.Read(bytes.NewReader(b), D.endian, &cell); err != nil {
				return cell, false, Error{err.Error(), D.filename, []string{"nextRaw"}, true}
			}
			hasCell = true
		}
		if err := binary.Read(D.r, D.endian, &blocksize); err != nil {
			return cell, false, Error{err.Error(), D.filename, []string{"nextRaw"}, true}
		}
	}
	for i := 0; i < 3; i++ {
		if i > 0 {
			if err := binary.Read(D.r, D.endian, &blocksize); err != nil {
				return cell, false, Error{err.Error(), D.filename, []string{"nextRaw"}, true}
			}
		}
		if blocksize != D.natoms*4 {
			return cell, false, Error{NotEnoughSpace, D.filename, []string{"nextRaw"}, true}
		}
		if err := D.readFloat32Block(blocksize, D.dcdFields[i]); err != nil {
			return cell, false, errDecorate(err, "nextRaw")
		}
	}
	//we skip the 4-D values if they exist.
	if D.fourdim {
		if err := binary.Read(D.r, D.endian, &blocksize); err != nil {
			if err != io.EOF {
				return cell, false, Error{err.Error(), D.filename, []string{"nextRaw"}, true}
			}
			//Apparently the block is not present in the last snapshot.
			return cell, hasCell, nil
		}
		if _, err := D.readByteBlock(blocksize); err != nil {
			return cell, false, errDecorate(err, "nextRaw")
		}
	}
	return cell, hasCell, nil
}

// reads block, which must have the appropiate size, and checks the closing size.
func (D *Reader) readFloat32Block(blocksize int32, block []float32) error {
	var check int32
	if err := binary.Read(D.r, D.endian, block); err != nil {
		return Error{err.Error(), D.filename, []string{"readFloat32Block"}, true}
	}
	if err := binary.Read(D.r, D.endian, &check); err != nil {
		return Error{err.Error(), D.filename, []string{"readFloat32Block"}, true}
	}
	if check != blocksize {
		return Error{SecurityCheckFailed, D.filename, []string{"readFloat32Block"}, true}
	}
	return nil
}

// reads blocksize bytes and checks the closing size.
func (D *Reader) readByteBlock(blocksize int32) ([]byte, error) {
	if blocksize < 0 || blocksize > 1<<30 {
		return nil, Error{fmt.Sprintf("%s: block of %d bytes", WrongFormat, blocksize), D.filename, []string{"readByteBlock"}, true}
	}
	var check int32
	block := make([]byte, blocksize)
	if _, err := io.ReadFull(D.r, block); err != nil {
		return nil, Error{err.Error(), D.filename, []string{"readByteBlock"}, true}
	}
	if err := binary.Read(D.r, D.endian, &check); err != nil {
		return nil, Error{err.Error(), D.filename, []string{"readByteBlock"}, true}
	}
	if check != blocksize {
		return nil, Error{SecurityCheckFailed, D.filename, []string{"readByteBlock"}, true}
	}
	return block, nil
}

// cellToBox builds a periodic box from the DCD unit cell [a, gamma, b, beta, alpha, c].
// Angles can be in degrees, or given as cosines, as NAMD does.
func cellToBox(cell [6]float64) (*chem.Box, error) {
	a, b, c := cell[0], cell[2], cell[5]
	cosines := [3]float64{cell[4], cell[3], cell[1]} //alpha, beta, gamma
	for i, v := range cosines {
		if math.Abs(v) > 1 {
			cosines[i] = math.Cos(v * math.Pi / 180)
		}
	}
	ca, cb, cg := cosines[0], cosines[1], cosines[2]
	sg := math.Sqrt(1 - cg*cg)
	if sg == 0 {
		return nil, fmt.Errorf("degenerate unit cell %v", cell)
	}
	cx := c * cb
	cy := c * (ca - cb*cg) / sg
	cz := math.Sqrt(math.Max(0, c*c-cx*cx-cy*cy))
	vecs := [3][3]float64{
		{a, 0, 0},
		{b * cg, b * sg, 0},
		{cx, cy, cz},
	}
	return chem.NewBox([3]float64{}, vecs, [3]bool{true, true, true})
}

// boxToCell returns the DCD unit cell, with angles in degrees, for B.
func boxToCell(B *chem.Box) [6]float64 {
	v := B.Vectors()
	norm := func(a [3]float64) float64 { return math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2]) }
	angle := func(a, b [3]float64) float64 {
		cos := (a[0]*b[0] + a[1]*b[1] + a[2]*b[2]) / (norm(a) * norm(b))
		return math.Acos(math.Max(-1, math.Min(1, cos))) * 180 / math.Pi
	}
	return [6]float64{norm(v[0]), angle(v[0], v[1]), norm(v[1]), angle(v[0], v[2]), angle(v[1], v[2]), norm(v[2])}
}

// errDecorate decorates the error with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	return chem.ErrDecorate(err, caller)
}

// Error is the general structure for DCD trajectory errors. It fullfills  chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
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

// Format returns the format of the file (always "dcd") associated to the error
func (err Error) Format() string { return format }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIni           = "Traj object uninitialized to read/write"
	SecurityCheckFailed = "Failed Security Check"
	WrongFormat         = "Wrong format in the DCD file or frame"
	NotEnoughSpace      = "Block size doesn't match the number of atoms"
)
