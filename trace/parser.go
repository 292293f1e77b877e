// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

import (
	"io"

	"github.com/corylanou/apitrace/support/logging"
	"github.com/corylanou/apitrace/trace/bytesource"

	"github.com/pkg/errors"
)

// OpenOptions carries the knobs Open accepts. The zero value is the default
// configuration: the package's own TraceVersion ceiling and a no-op logger.
type OpenOptions struct {
	// MaxVersion overrides the highest trace format version Open will
	// accept. Zero means TraceVersion.
	MaxVersion uint64

	// Logger receives diagnostics (incomplete-call and bitmask-shape
	// warnings). Nil means logging.Nop.
	Logger logging.L
}

// Parser decodes a single trace stream. It is single-threaded and
// non-suspending: every method runs to completion on the caller's
// goroutine; there is no background work and nothing to cancel beyond
// simply not calling ParseCall again.
//
// A Parser owns its byte source and signature tables for its lifetime. It
// hands out *Call values whose storage is independent of the Parser, but
// whose Sig field is a borrowed pointer into the Parser's signature
// tables: those tables, and therefore every Call's Sig, remain valid until
// Close.
type Parser struct {
	source bytesource.Source
	logger logging.L

	maxVersion uint64
	version    uint64

	sigs       signatureTables
	pending    []*Call
	nextCallNo uint32

	closed bool
}

// Open opens path, detects its compression, and reads the format header.
// opts may be nil to accept defaults.
func Open(path string, opts *OpenOptions) (*Parser, error) {
	src, err := bytesource.Open(path)
	if err != nil {
		return nil, err
	}

	p := &Parser{
		source:     src,
		logger:     logging.Nop,
		maxVersion: TraceVersion,
	}
	if opts != nil {
		if opts.MaxVersion != 0 {
			p.maxVersion = opts.MaxVersion
		}
		p.logger = logging.Must(opts.Logger)
	}

	version, err := readUvarint(p.source)
	if err != nil {
		src.Close()
		return nil, errors.Wrap(err, "reading trace header")
	}
	if version > p.maxVersion {
		src.Close()
		return nil, &VersionUnsupportedError{Version: version}
	}
	p.version = version

	return p, nil
}

// Version returns the trace format version declared by the stream's header.
func (p *Parser) Version() uint64 { return p.version }

// PercentRead returns the underlying byte source's advisory read progress.
func (p *Parser) PercentRead() int {
	if p.closed {
		return 100
	}
	return p.source.PercentRead()
}

// Close releases the byte source and drops the signature tables and any
// still-pending (ENTER without LEAVE) calls, mirroring the original
// parser's explicit teardown. A closed Parser must not be used again.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.sigs.reset()
	p.pending = nil
	p.nextCallNo = 0
	return p.source.Close()
}

func (p *Parser) warnf(format string, args ...interface{}) {
	p.logger.Warnf(format, args...)
}

// ParseCall returns the next completed Call in LEAVE order, or (nil, io.EOF)
// once the stream and all pending calls are exhausted.
//
// Two distinct empty outcomes exist, matching trace_parser.cpp's parse_call:
// a clean end of stream returns (nil, io.EOF); a LEAVE that names a call_no
// with no matching pending ENTER, or whose own detail record is truncated,
// returns (nil, nil) immediately — the event loop does not keep scanning
// past it for another call, exactly as the original's
// "case EVENT_LEAVE: return parse_leave(mode);" returns whatever parse_leave
// produced, including NULL, rather than looping again.
func (p *Parser) ParseCall() (*Call, error) {
	if p.closed {
		return nil, ErrParserClosed
	}

	for {
		c, err := p.source.ReadByte()
		if err != nil {
			if err == io.EOF {
				if call := p.flushPending(); call != nil {
					return call, nil
				}
				return nil, io.EOF
			}
			return nil, err
		}

		switch event(c) {
		case eventEnter:
			if err := p.parseEnter(); err != nil {
				p.noteFatal(err)
				return nil, err
			}
		case eventLeave:
			call, err := p.parseLeave()
			if err != nil {
				p.noteFatal(err)
				return nil, err
			}
			if call != nil {
				callsParsed.Inc()
			}
			bytesReadGauge.Set(float64(p.source.CurrentOffset()))
			return call, nil
		default:
			err := &FatalError{Reason: "unknown event", Byte: int(c), Offset: p.source.CurrentOffset()}
			fatalAborts.Inc()
			return nil, err
		}
	}
}

// noteFatal increments the fatal-abort counter if err is a *FatalError.
func (p *Parser) noteFatal(err error) {
	if _, ok := err.(*FatalError); ok {
		fatalAborts.Inc()
	}
}

// flushPending pops and returns the oldest pending call, marked Incomplete,
// once the stream itself is exhausted. It returns nil once pending is empty.
func (p *Parser) flushPending() *Call {
	if len(p.pending) == 0 {
		return nil
	}
	call := p.pending[0]
	p.pending = p.pending[1:]
	call.Incomplete = true
	incompleteCallsFlushed.Inc()
	p.warnf("%d: warning: incomplete call %s", call.No, call.Name())
	return call
}

// parseEnter reads a function signature reference, allocates a Call, parses
// its details, and appends it to pending on success. A truncated signature
// reference or detail record drops the call silently, matching the
// "partial record dropped" truncation policy (spec §7).
func (p *Parser) parseEnter() error {
	sig, err := p.sigs.parseFunctionSig(p.source)
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	call := &Call{No: p.nextCallNo, Sig: sig}
	p.nextCallNo++

	complete, err := p.parseCallDetails(call)
	if err != nil {
		return err
	}
	if complete {
		p.pending = append(p.pending, call)
	}
	return nil
}

// parseLeave reads a call_no, finds and removes the matching pending call,
// and parses its remaining details. It returns (nil, nil) if call_no names
// nothing pending (spec's UnmatchedLeave: silent drop) or if the call's
// details are truncated before CALL_END.
func (p *Parser) parseLeave() (*Call, error) {
	callNo, err := readUvarint(p.source)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	idx := -1
	for i, c := range p.pending {
		if uint64(c.No) == callNo {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}

	call := p.pending[idx]
	p.pending = append(p.pending[:idx], p.pending[idx+1:]...)

	complete, err := p.parseCallDetails(call)
	if err != nil {
		return nil, err
	}
	if !complete {
		return nil, nil
	}
	return call, nil
}

// parseCallDetails reads tagged sub-records (CALL_ARG, CALL_RET) until
// CALL_END. It returns complete=false, err=nil on truncation, so callers
// drop the call without treating truncation as a hard error.
func (p *Parser) parseCallDetails(call *Call) (complete bool, err error) {
	for {
		c, err := p.source.ReadByte()
		if err != nil {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}

		switch callDetail(c) {
		case callEnd:
			return true, nil
		case callArg:
			if err := p.parseArg(call); err != nil {
				if err == io.EOF {
					return false, nil
				}
				return false, err
			}
		case callRet:
			v, err := p.parseValue(p.source)
			if err != nil {
				if err == io.EOF {
					return false, nil
				}
				return false, err
			}
			call.Ret = v
		default:
			return false, &FatalError{
				Reason: "(" + call.Name() + ") unknown call detail",
				Byte:   int(c),
				Offset: p.source.CurrentOffset(),
			}
		}
	}
}

// parseArg reads one CALL_ARG body: a uvarint index and a Value, stored at
// that argument position.
func (p *Parser) parseArg(call *Call) error {
	index, err := readUvarint(p.source)
	if err != nil {
		return err
	}
	v, err := p.parseValue(p.source)
	if err != nil {
		return err
	}
	call.setArg(int(index), *v)
	return nil
}
