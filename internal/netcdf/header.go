package netcdf

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Format is a NetCDF container format.
type Format string

// Recognised formats.
const (
	FormatClassic      Format = "netcdf-classic"
	FormatOffset64     Format = "netcdf-64bit-offset"
	FormatData64       Format = "netcdf-64bit-data"
	FormatNetCDF4      Format = "netcdf4-hdf5"
	FormatUnrecognised Format = ""
)

// ErrNotNetCDF is returned for input that carries no NetCDF signature
// or whose header cannot be decoded.
var ErrNotNetCDF = errors.New("not a NetCDF file")

// Header tag values.
const (
	tagAbsent    = 0x00
	tagDimension = 0x0A
	tagAttribute = 0x0C
)

// External data types.
const (
	typeByte   = 1
	typeChar   = 2
	typeShort  = 3
	typeInt    = 4
	typeFloat  = 5
	typeDouble = 6
	typeUByte  = 7
	typeUShort = 8
	typeUInt   = 9
	typeInt64  = 10
	typeUInt64 = 11
)

// maxElems bounds any count read from a header.
const maxElems = 1 << 24

// preallocElems caps capacity reserved from a header count. Lists and
// values grow as elements are actually read, so a few bytes claiming a
// huge count cannot force a huge allocation.
const preallocElems = 64

var hdf5Signature = []byte("\x89HDF\r\n\x1a\n")

// hdf5Offsets are where an HDF5 superblock may start.
var hdf5Offsets = []int{0, 512, 1024, 2048}

// Header is the decoded leading part of a NetCDF file.
type Header struct {
	Format     Format
	NumRecs    int64
	Dimensions []Dimension

	// Attributes holds global attributes. Text attributes are kept verbatim;
	// numeric ones are rendered space-separated.
	Attributes map[string]string
}

// Dimension is a named dimension. Length 0 marks the record dimension.
type Dimension struct {
	Name   string
	Length int64
}

// ReadHeader decodes the header of r. For NetCDF-4 only the format is set.
func ReadHeader(r io.Reader) (*Header, error) {
	br := bufio.NewReader(r)

	peek, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotNetCDF, err)
	}

	var format Format
	switch {
	case bytes.Equal(peek, []byte("CDF\x01")):
		format = FormatClassic
	case bytes.Equal(peek, []byte("CDF\x02")):
		format = FormatOffset64
	case bytes.Equal(peek, []byte("CDF\x05")):
		format = FormatData64
	default:
		if isHDF5(br) {
			return &Header{Format: FormatNetCDF4, Attributes: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("%w: unknown signature %q", ErrNotNetCDF, peek)
	}

	if _, err := br.Discard(4); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotNetCDF, err)
	}

	d := &decoder{r: br, wide: format == FormatData64}
	h := &Header{Format: format}

	if h.NumRecs, err = d.count(true); err != nil {
		return nil, d.fail("numrecs", err)
	}
	if h.Dimensions, err = d.dimensions(); err != nil {
		return nil, d.fail("dimensions", err)
	}
	if h.Attributes, err = d.attributes(); err != nil {
		return nil, d.fail("global attributes", err)
	}
	return h, nil
}

func isHDF5(br *bufio.Reader) bool {
	last := hdf5Offsets[len(hdf5Offsets)-1] + len(hdf5Signature)
	buf, _ := br.Peek(last)
	for _, off := range hdf5Offsets {
		end := off + len(hdf5Signature)
		if end <= len(buf) && bytes.Equal(buf[off:end], hdf5Signature) {
			return true
		}
	}
	return false
}

// decoder reads big-endian header fields. CDF-5 widens counts to 64 bits.
type decoder struct {
	r    io.Reader
	wide bool
	buf  [8]byte
}

func (d *decoder) fail(what string, err error) error {
	return fmt.Errorf("%w: reading %s: %v", ErrNotNetCDF, what, err)
}

func (d *decoder) uint32() (uint32, error) {
	if _, err := io.ReadFull(d.r, d.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(d.buf[:4]), nil
}

func (d *decoder) uint64() (uint64, error) {
	if _, err := io.ReadFull(d.r, d.buf[:8]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(d.buf[:8]), nil
}

// count reads a NON_NEG or, when streaming is allowed, STREAMING value.
func (d *decoder) count(streaming bool) (int64, error) {
	if d.wide {
		v, err := d.uint64()
		if err != nil {
			return 0, err
		}
		if streaming && v == math.MaxUint64 {
			return -1, nil
		}
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("count %d out of range", v)
		}
		return int64(v), nil
	}
	v, err := d.uint32()
	if err != nil {
		return 0, err
	}
	if streaming && v == math.MaxUint32 {
		return -1, nil
	}
	if v > math.MaxInt32 {
		return 0, fmt.Errorf("count %d out of range", v)
	}
	return int64(v), nil
}

// elems reads a list element count and bounds it.
func (d *decoder) elems() (int, error) {
	n, err := d.count(false)
	if err != nil {
		return 0, err
	}
	if n > maxElems {
		return 0, fmt.Errorf("element count %d too large", n)
	}
	return int(n), nil
}

// list reads a list tag and its element count. ABSENT yields zero elements.
func (d *decoder) list(want uint32) (int, error) {
	tag, err := d.uint32()
	if err != nil {
		return 0, err
	}
	n, err := d.elems()
	if err != nil {
		return 0, err
	}
	switch tag {
	case tagAbsent:
		if n != 0 {
			return 0, fmt.Errorf("absent list with %d elements", n)
		}
		return 0, nil
	case want:
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected tag 0x%x", tag)
	}
}

// padded reads n bytes followed by padding to a 4-byte boundary.
func (d *decoder) padded(n int) ([]byte, error) {
	total := n + (4-n%4)%4
	if total <= 4*preallocElems {
		buf := make([]byte, total)
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return nil, err
		}
		return buf[:n], nil
	}

	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, d.r, int64(total)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes()[:n], nil
}

func (d *decoder) name() (string, error) {
	n, err := d.elems()
	if err != nil {
		return "", err
	}
	b, err := d.padded(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) dimensions() ([]Dimension, error) {
	n, err := d.list(tagDimension)
	if err != nil {
		return nil, err
	}
	dims := make([]Dimension, 0, min(n, preallocElems))
	for i := 0; i < n; i++ {
		name, err := d.name()
		if err != nil {
			return nil, err
		}
		length, err := d.count(false)
		if err != nil {
			return nil, err
		}
		dims = append(dims, Dimension{Name: name, Length: length})
	}
	return dims, nil
}

func (d *decoder) attributes() (map[string]string, error) {
	n, err := d.list(tagAttribute)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]string, min(n, preallocElems))
	for i := 0; i < n; i++ {
		name, err := d.name()
		if err != nil {
			return nil, err
		}
		typ, err := d.uint32()
		if err != nil {
			return nil, err
		}
		size, ok := typeSize(typ)
		if !ok {
			return nil, fmt.Errorf("attribute %q has unknown type %d", name, typ)
		}
		count, err := d.elems()
		if err != nil {
			return nil, err
		}
		if count*size > maxElems {
			return nil, fmt.Errorf("attribute %q too large", name)
		}
		raw, err := d.padded(count * size)
		if err != nil {
			return nil, err
		}
		attrs[name] = renderValues(typ, size, raw)
	}
	return attrs, nil
}

func typeSize(typ uint32) (int, bool) {
	switch typ {
	case typeByte, typeChar, typeUByte:
		return 1, true
	case typeShort, typeUShort:
		return 2, true
	case typeInt, typeFloat, typeUInt:
		return 4, true
	case typeDouble, typeInt64, typeUInt64:
		return 8, true
	default:
		return 0, false
	}
}

func renderValues(typ uint32, size int, raw []byte) string {
	if typ == typeChar {
		return string(bytes.TrimRight(raw, "\x00"))
	}
	var buf bytes.Buffer
	for i := 0; i+size <= len(raw); i += size {
		if i > 0 {
			buf.WriteByte(' ')
		}
		v := raw[i : i+size]
		switch typ {
		case typeByte:
			buf.WriteString(strconv.FormatInt(int64(int8(v[0])), 10))
		case typeUByte:
			buf.WriteString(strconv.FormatUint(uint64(v[0]), 10))
		case typeShort:
			buf.WriteString(strconv.FormatInt(int64(int16(binary.BigEndian.Uint16(v))), 10))
		case typeUShort:
			buf.WriteString(strconv.FormatUint(uint64(binary.BigEndian.Uint16(v)), 10))
		case typeInt:
			buf.WriteString(strconv.FormatInt(int64(int32(binary.BigEndian.Uint32(v))), 10))
		case typeUInt:
			buf.WriteString(strconv.FormatUint(uint64(binary.BigEndian.Uint32(v)), 10))
		case typeInt64:
			buf.WriteString(strconv.FormatInt(int64(binary.BigEndian.Uint64(v)), 10))
		case typeUInt64:
			buf.WriteString(strconv.FormatUint(binary.BigEndian.Uint64(v), 10))
		case typeFloat:
			f := math.Float32frombits(binary.BigEndian.Uint32(v))
			buf.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
		case typeDouble:
			f := math.Float64frombits(binary.BigEndian.Uint64(v))
			buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		}
	}
	return buf.String()
}
