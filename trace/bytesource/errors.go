// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytesource

import "github.com/pkg/errors"

// ErrOffsetsUnsupported is returned by SetCurrentOffset when the underlying
// Source cannot reposition (currently: GzipSource, always; SnappySource,
// when asked to jump to a block it has never visited).
var ErrOffsetsUnsupported = errors.New("byte source does not support seeking to this offset")
