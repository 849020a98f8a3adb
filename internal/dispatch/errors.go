// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import "errors"

var (
	// ErrSourceUnavailable aborts a loop invocation: the frame source could not be opened.
	ErrSourceUnavailable = errors.New("frame source unavailable")
	// ErrDispatchFailure marks a frame the scorer did not answer usefully. Per-frame only.
	ErrDispatchFailure = errors.New("dispatch failure")
	// ErrDecodeFailure marks a frame that could not be prepared for submission. Per-frame only.
	ErrDecodeFailure = errors.New("decode failure")
)
