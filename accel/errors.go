// SPDX-License-Identifier: MIT

package accel

import "errors"

// ErrContextClosed is returned when a closed Context is asked for a stream.
var ErrContextClosed = errors.New("accel: context closed")
