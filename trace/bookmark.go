// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

// ParseBookmark is a saved parse position: a byte source offset plus the
// call-numbering state needed to resume consistently from it (spec §4.6).
type ParseBookmark struct {
	ByteOffset uint64
	NextCallNo uint32
}

// GetBookmark captures the parser's current position. It fails with
// ErrBookmarkUnsupported if the byte source cannot report a restorable
// offset (gzip streams).
func (p *Parser) GetBookmark() (ParseBookmark, error) {
	if p.closed {
		return ParseBookmark{}, ErrParserClosed
	}
	if !p.source.SupportsOffsets() {
		return ParseBookmark{}, ErrBookmarkUnsupported
	}
	return ParseBookmark{
		ByteOffset: p.source.CurrentOffset(),
		NextCallNo: p.nextCallNo,
	}, nil
}

// SetBookmark restores a previously captured position. Any calls currently
// pending (ENTERs without a matching LEAVE) belong to a future the stream
// is about to un-do, so they are dropped rather than carried forward (spec
// §4.6). Restoring to an offset before a signature's first occurrence is
// safe: the signature tables are keyed by ID and never shrink, and
// re-encountering that occurrence re-scans (not re-parses) it, per the
// three-way rule in signature.go.
func (p *Parser) SetBookmark(bm ParseBookmark) error {
	if p.closed {
		return ErrParserClosed
	}
	if !p.source.SupportsOffsets() {
		return ErrBookmarkUnsupported
	}
	if err := p.source.SetCurrentOffset(bm.ByteOffset); err != nil {
		return err
	}
	p.nextCallNo = bm.NextCallNo
	p.pending = nil
	bookmarkRestores.Inc()
	return nil
}
