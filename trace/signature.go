// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

import (
	"github.com/corylanou/apitrace/support/dataio"
)

// FunctionSig describes a traced function's name and argument names. It is
// interned by ID: the first ENTER that references a given ID carries the
// full descriptor, every later reference cites the ID alone.
type FunctionSig struct {
	ID              uint64
	Name            string
	ArgNames        []string
	FirstSeenOffset uint64
}

// StructSig describes a struct's name and member names.
type StructSig struct {
	ID              uint64
	Name            string
	MemberNames     []string
	FirstSeenOffset uint64
}

// EnumSig describes a single named enum constant. The trace format carries
// one constant per signature; callers building a symbol table keep one
// EnumSig per symbol they care about.
type EnumSig struct {
	ID              uint64
	Name            string
	Value           int64
	FirstSeenOffset uint64
}

// BitmaskFlag is one named, valued flag within a BitmaskSig.
type BitmaskFlag struct {
	Name  string
	Value uint64
}

// BitmaskSig describes the named flags making up a bitmask type.
type BitmaskSig struct {
	ID              uint64
	Flags           []BitmaskFlag
	FirstSeenOffset uint64
}

// signatureTables holds the four ID-interned signature maps. Once an entry
// is installed it never moves or is replaced; Values elsewhere in the
// parser hold plain pointers into these tables and rely on that guarantee
// living as long as the Parser that owns the tables.
type signatureTables struct {
	functions []*FunctionSig
	structs   []*StructSig
	enums     []*EnumSig
	bitmasks  []*BitmaskSig
}

func (t *signatureTables) reset() {
	t.functions = nil
	t.structs = nil
	t.enums = nil
	t.bitmasks = nil
}

// lookupSlot resizes table to index+1 if needed and returns a pointer to the
// (possibly nil) slot at index, mirroring the original parser's
// vector-resizing lookup<T> helper.
func lookupSlot[T any](table *[]*T, index uint64) **T {
	if index >= uint64(len(*table)) {
		grown := make([]*T, index+1)
		copy(grown, *table)
		*table = grown
	}
	return &(*table)[index]
}

// offsetSource is the subset of bytesource.Source the signature/value
// readers need: byte-oriented reads plus the current logical offset.
type offsetSource interface {
	dataio.Reader
	CurrentOffset() uint64
}

// parseFunctionSig implements the three-way signature rule from spec §4.3:
// first occurrence parses and installs the descriptor; a re-occurrence
// reached by seeking backward (currentOffset < FirstSeenOffset) re-consumes
// the descriptor bytes without replacing the cached signature; any other
// re-occurrence consumes nothing beyond the ID.
func (t *signatureTables) parseFunctionSig(r offsetSource) (*FunctionSig, error) {
	id, err := readUvarint(r)
	if err != nil {
		return nil, err
	}

	slot := lookupSlot(&t.functions, id)
	switch {
	case *slot == nil:
		sig := &FunctionSig{ID: id}
		if sig.Name, err = readString(r); err != nil {
			return nil, err
		}
		numArgs, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		sig.ArgNames = make([]string, numArgs)
		for i := range sig.ArgNames {
			if sig.ArgNames[i], err = readString(r); err != nil {
				return nil, err
			}
		}
		sig.FirstSeenOffset = r.CurrentOffset()
		*slot = sig

	case r.CurrentOffset() < (*slot).FirstSeenOffset:
		if err := skipString(r); err != nil {
			return nil, err
		}
		numArgs, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		for i := uint64(0); i < numArgs; i++ {
			if err := skipString(r); err != nil {
				return nil, err
			}
		}
	}
	return *slot, nil
}

func (t *signatureTables) parseStructSig(r offsetSource) (*StructSig, error) {
	id, err := readUvarint(r)
	if err != nil {
		return nil, err
	}

	slot := lookupSlot(&t.structs, id)
	switch {
	case *slot == nil:
		sig := &StructSig{ID: id}
		if sig.Name, err = readString(r); err != nil {
			return nil, err
		}
		numMembers, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		sig.MemberNames = make([]string, numMembers)
		for i := range sig.MemberNames {
			if sig.MemberNames[i], err = readString(r); err != nil {
				return nil, err
			}
		}
		sig.FirstSeenOffset = r.CurrentOffset()
		*slot = sig

	case r.CurrentOffset() < (*slot).FirstSeenOffset:
		if err := skipString(r); err != nil {
			return nil, err
		}
		numMembers, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		for i := uint64(0); i < numMembers; i++ {
			if err := skipString(r); err != nil {
				return nil, err
			}
		}
	}
	return *slot, nil
}

func (t *signatureTables) parseEnumSig(p *Parser, r offsetSource) (*EnumSig, error) {
	id, err := readUvarint(r)
	if err != nil {
		return nil, err
	}

	slot := lookupSlot(&t.enums, id)
	switch {
	case *slot == nil:
		sig := &EnumSig{ID: id}
		if sig.Name, err = readString(r); err != nil {
			return nil, err
		}
		v, err := p.parseValue(r)
		if err != nil {
			return nil, err
		}
		// Non-negative constants are written as UInt (see Value.SInt).
		if v.Kind() == "uint" {
			sig.Value = int64(v.UInt())
		} else {
			sig.Value = v.SInt()
		}
		sig.FirstSeenOffset = r.CurrentOffset()
		*slot = sig

	case r.CurrentOffset() < (*slot).FirstSeenOffset:
		if err := skipString(r); err != nil {
			return nil, err
		}
		if err := p.scanValue(r); err != nil {
			return nil, err
		}
	}
	return *slot, nil
}

func (t *signatureTables) parseBitmaskSig(p *Parser, r offsetSource) (*BitmaskSig, error) {
	id, err := readUvarint(r)
	if err != nil {
		return nil, err
	}

	slot := lookupSlot(&t.bitmasks, id)
	switch {
	case *slot == nil:
		sig := &BitmaskSig{ID: id}
		numFlags, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		sig.Flags = make([]BitmaskFlag, numFlags)
		for i := range sig.Flags {
			if sig.Flags[i].Name, err = readString(r); err != nil {
				return nil, err
			}
			if sig.Flags[i].Value, err = readUvarint(r); err != nil {
				return nil, err
			}
			if sig.Flags[i].Value == 0 && i != 0 {
				p.warnf("bitmask %s is zero but is not first flag", sig.Flags[i].Name)
			}
		}
		sig.FirstSeenOffset = r.CurrentOffset()
		*slot = sig

	case r.CurrentOffset() < (*slot).FirstSeenOffset:
		numFlags, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		for i := uint64(0); i < numFlags; i++ {
			if err := skipString(r); err != nil {
				return nil, err
			}
			if err := skipUvarint(r); err != nil {
				return nil, err
			}
		}
	}
	return *slot, nil
}
