// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

import (
	"github.com/corylanou/apitrace/support/dataio"
)

// Value is a decoded argument, return value, or nested field. It is a sum
// type over the wire's tagged productions (spec §3/§4.4); exactly one of
// the accessors below is meaningful for a given Value, determined by Kind.
type Value struct {
	kind valueTag

	b   bool
	i   int64
	u   uint64
	f   float64
	s   string
	buf []byte

	enumSig    *EnumSig
	bitmaskSig *BitmaskSig
	structSig  *StructSig

	array []Value // ARRAY, and STRUCT member values in declared order
}

// Kind reports which variant this Value holds.
func (v Value) Kind() string {
	switch v.kind {
	case tagNull:
		return "null"
	case tagFalse, tagTrue:
		return "bool"
	case tagSInt:
		return "sint"
	case tagUInt:
		return "uint"
	case tagFloat, tagDouble:
		return "float"
	case tagString:
		return "string"
	case tagEnum:
		return "enum"
	case tagBitmask:
		return "bitmask"
	case tagArray:
		return "array"
	case tagStruct:
		return "struct"
	case tagBlob:
		return "blob"
	case tagOpaque:
		return "pointer"
	default:
		return "invalid"
	}
}

// IsNull reports whether this Value is the Null variant. The zero Value is
// not Null (its Kind is "invalid"); Call pads argument gaps with explicit
// Null Values.
func (v Value) IsNull() bool { return v.kind == tagNull }

// Bool returns the Bool variant's value.
func (v Value) Bool() bool { return v.b }

// SInt returns the SInt variant's value. Per spec §9, the wire encodes a
// signed value as the negation of an unsigned varint magnitude; there is no
// zig-zag, so SInt(0) and UInt(0) are indistinguishable and positive signed
// integers are never emitted as SInt. This accessor also serves EnumSig
// constants, which are stored as a bare int64.
func (v Value) SInt() int64 { return v.i }

// UInt returns the UInt variant's value, and the raw value of a Bitmask.
func (v Value) UInt() uint64 { return v.u }

// Float returns the Float variant's value, widened to float64 for the
// single-precision wire form.
func (v Value) Float() float64 { return v.f }

// String returns the String variant's bytes as a Go string.
func (v Value) String() string { return v.s }

// Blob returns the Blob variant's owned bytes.
func (v Value) Blob() []byte { return v.buf }

// Pointer returns the Opaque variant's address.
func (v Value) Pointer() uint64 { return v.u }

// EnumSig returns the signature backing an Enum variant.
func (v Value) EnumSig() *EnumSig { return v.enumSig }

// BitmaskSig returns the signature backing a Bitmask variant.
func (v Value) BitmaskSig() *BitmaskSig { return v.bitmaskSig }

// StructSig returns the signature backing a Struct variant.
func (v Value) StructSig() *StructSig { return v.structSig }

// Elements returns an Array variant's ordered values, or a Struct variant's
// ordered member values (one per StructSig.MemberNames entry).
func (v Value) Elements() []Value { return v.array }

func nullValue() Value           { return Value{kind: tagNull} }
func boolValue(b bool) Value     { return Value{kind: tagBoolFor(b), b: b} }
func sintValue(i int64) Value    { return Value{kind: tagSInt, i: i} }
func uintValue(u uint64) Value   { return Value{kind: tagUInt, u: u} }
func floatValue(f float64) Value { return Value{kind: tagFloat, f: f} }
func stringValue(s string) Value { return Value{kind: tagString, s: s} }
func blobValue(b []byte) Value   { return Value{kind: tagBlob, buf: b} }
func pointerValue(addr uint64) Value {
	return Value{kind: tagOpaque, u: addr}
}
func enumValue(sig *EnumSig) Value { return Value{kind: tagEnum, enumSig: sig} }
func bitmaskValue(sig *BitmaskSig, u uint64) Value {
	return Value{kind: tagBitmask, bitmaskSig: sig, u: u}
}
func arrayValue(elems []Value) Value { return Value{kind: tagArray, array: elems} }
func structValue(sig *StructSig, members []Value) Value {
	return Value{kind: tagStruct, structSig: sig, array: members}
}

func tagBoolFor(b bool) valueTag {
	if b {
		return tagTrue
	}
	return tagFalse
}

// parseValue reads one tagged Value production (spec §4.4). A -1 (EOF) tag
// returns (nil, io.EOF), which callers treat as truncation. Any other
// unrecognized tag is fatal: the stream is not resynchronizable past a
// corrupt or unknown discriminator.
func (p *Parser) parseValue(r offsetSource) (*Value, error) {
	c, err := readTagByte(r)
	if err != nil {
		return nil, err
	}

	switch valueTag(c) {
	case tagNull:
		v := nullValue()
		return &v, nil
	case tagFalse:
		v := boolValue(false)
		return &v, nil
	case tagTrue:
		v := boolValue(true)
		return &v, nil
	case tagSInt:
		u, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		v := sintValue(-int64(u))
		return &v, nil
	case tagUInt:
		u, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		v := uintValue(u)
		return &v, nil
	case tagFloat:
		f, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		v := floatValue(float64(f))
		return &v, nil
	case tagDouble:
		f, err := readFloat64(r)
		if err != nil {
			return nil, err
		}
		v := floatValue(f)
		return &v, nil
	case tagString:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		v := stringValue(s)
		return &v, nil
	case tagEnum:
		sig, err := p.sigs.parseEnumSig(p, r)
		if err != nil {
			return nil, err
		}
		v := enumValue(sig)
		return &v, nil
	case tagBitmask:
		sig, err := p.sigs.parseBitmaskSig(p, r)
		if err != nil {
			return nil, err
		}
		u, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		v := bitmaskValue(sig, u)
		return &v, nil
	case tagArray:
		n, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		elems := make([]Value, n)
		for i := range elems {
			ev, err := p.parseValue(r)
			if err != nil {
				return nil, err
			}
			elems[i] = *ev
		}
		v := arrayValue(elems)
		return &v, nil
	case tagStruct:
		sig, err := p.sigs.parseStructSig(r)
		if err != nil {
			return nil, err
		}
		members := make([]Value, len(sig.MemberNames))
		for i := range members {
			mv, err := p.parseValue(r)
			if err != nil {
				return nil, err
			}
			members[i] = *mv
		}
		v := structValue(sig, members)
		return &v, nil
	case tagBlob:
		n, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		var buf []byte
		if n > 0 {
			buf = make([]byte, n)
			if err := dataio.ReadFull(r, buf); err != nil {
				return nil, err
			}
		}
		v := blobValue(buf)
		return &v, nil
	case tagOpaque:
		addr, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		v := pointerValue(addr)
		return &v, nil
	default:
		return nil, &FatalError{Reason: "unknown type", Byte: c, Offset: r.CurrentOffset()}
	}
}

// scanValue consumes the same bytes as parseValue without constructing a
// Value. It is used when re-encountering a signature's embedded Value (an
// EnumSig constant) via a backward bookmark. It is a separate function that
// mirrors parseValue case by case; value_test.go checks that the two consume
// the same bytes for every tag.
func (p *Parser) scanValue(r offsetSource) error {
	c, err := readTagByte(r)
	if err != nil {
		return err
	}

	switch valueTag(c) {
	case tagNull, tagFalse, tagTrue:
		return nil
	case tagSInt, tagUInt:
		return skipUvarint(r)
	case tagFloat:
		return skipFloat32(r)
	case tagDouble:
		return skipFloat64(r)
	case tagString:
		return skipString(r)
	case tagEnum:
		_, err := p.sigs.parseEnumSig(p, r)
		return err
	case tagBitmask:
		if _, err := p.sigs.parseBitmaskSig(p, r); err != nil {
			return err
		}
		return skipUvarint(r)
	case tagArray:
		n, err := readUvarint(r)
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			if err := p.scanValue(r); err != nil {
				return err
			}
		}
		return nil
	case tagStruct:
		sig, err := p.sigs.parseStructSig(r)
		if err != nil {
			return err
		}
		for i := 0; i < len(sig.MemberNames); i++ {
			if err := p.scanValue(r); err != nil {
				return err
			}
		}
		return nil
	case tagBlob:
		n, err := readUvarint(r)
		if err != nil {
			return err
		}
		return skipN(r, n)
	case tagOpaque:
		return skipUvarint(r)
	default:
		return &FatalError{Reason: "unknown type", Byte: c, Offset: r.CurrentOffset()}
	}
}

// readTagByte reads a single tag byte, returning io.EOF (not an error
// wrapping it) when the source is exhausted, so callers can distinguish
// clean truncation from a real I/O failure using errors.Is.
func readTagByte(r offsetSource) (int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return -1, err
	}
	return int(b), nil
}

