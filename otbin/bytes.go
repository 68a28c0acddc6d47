package otbin

import (
	"errors"

	"github.com/tdewolff/parse/v2"
)

// Reading bytes from a table's binary representation

var errBufferBounds = errors.New("buffer bounds exceeded")

// segment is a sub-slice of a table's bytes, starting at the beginning of a
// structure. Offsets within a structure are relative to its segment.
type segment []byte

// view returns n bytes at the given offset.
func (b segment) view(offset, n int) (segment, error) {
	if offset < 0 || n < 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b segment) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// at returns the segment starting at an offset read from position i. A null
// offset is reported with ok = false.
func (b segment) at(i int) (seg segment, ok bool, err error) {
	offset, err := b.u16(i)
	if err != nil {
		return nil, false, err
	}
	if offset == 0 {
		return nil, false, nil
	}
	if int(offset) >= len(b) {
		return nil, false, errBufferBounds
	}
	return b[offset:], true, nil
}

// uint16Array reads a count-prefixed array of uint16 values starting at
// position i.
func (b segment) uint16Array(i int) ([]uint16, error) {
	if i < 0 || i+2 > len(b) {
		return nil, errBufferBounds
	}
	r := parse.NewBinaryReaderBytes(b[i:])
	n := r.ReadUint16()
	if r.Len() < 2*int64(n) {
		return nil, errBufferBounds
	}
	values := make([]uint16, n)
	for k := range values {
		values[k] = r.ReadUint16()
	}
	return values, nil
}

// offsetArray reads a count-prefixed array of 16-bit offsets starting at
// position i and resolves them against b.
func (b segment) offsetArray(i int) ([]segment, error) {
	offsets, err := b.uint16Array(i)
	if err != nil {
		return nil, err
	}
	segs := make([]segment, len(offsets))
	for k, offset := range offsets {
		if int(offset) >= len(b) {
			return nil, errBufferBounds
		}
		segs[k] = b[offset:]
	}
	return segs, nil
}

// tagRecord is a record of a tag and a 16-bit offset, as used by script,
// language system and feature lists.
type tagRecord struct {
	tag    string
	target segment
}

// tagRecords reads a count-prefixed array of tag records starting at
// position i. Offsets are resolved against base.
func (b segment) tagRecords(i int, base segment) ([]tagRecord, error) {
	if i < 0 || i+2 > len(b) {
		return nil, errBufferBounds
	}
	r := parse.NewBinaryReaderBytes(b[i:])
	n := r.ReadUint16()
	if r.Len() < 6*int64(n) {
		return nil, errBufferBounds
	}
	records := make([]tagRecord, n)
	for k := range records {
		tag := r.ReadString(4)
		offset := r.ReadUint16()
		if int(offset) >= len(base) {
			return nil, errBufferBounds
		}
		records[k] = tagRecord{tag: tag, target: base[offset:]}
	}
	return records, nil
}
