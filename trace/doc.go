// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package trace decodes API-trace capture files into a lazy stream of typed
// Calls.
//
// A capture file is a tagged binary stream: a header declares a format
// version, and the body interleaves ENTER/LEAVE events that bracket
// individual function invocations. Function, struct, enum, and bitmask
// signatures are interned by a small writer-assigned ID and are only
// spelled out in full the first time that ID is seen; every later
// occurrence cites the ID alone.
//
// Parser is the entry point. It owns a byte source (see the bytesource
// subpackage), the four signature tables, and the set of calls that have
// seen an ENTER but not yet a matching LEAVE. ParseCall returns Calls one at
// a time, in LEAVE order, until the stream is exhausted.
package trace
