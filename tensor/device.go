// SPDX-License-Identifier: MIT

package tensor

import "fmt"

// DeviceKind selects the execution backend that owns a buffer.
type DeviceKind uint8

const (
	// CPU buffers are processed by the host worker pool.
	CPU DeviceKind = iota
	// Accel buffers are processed by an accel.Context stream.
	Accel
)

// String returns the lower-case backend name.
func (k DeviceKind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case Accel:
		return "accel"
	default:
		return fmt.Sprintf("device(%d)", uint8(k))
	}
}

// Device identifies one execution context. Two tensors may be combined only
// when their Devices compare equal.
type Device struct {
	Kind    DeviceKind // backend family
	Ordinal int        // device number within the family
}

// Host is the default CPU device.
var Host = Device{Kind: CPU}

// AccelDevice returns the accelerator device with the given ordinal.
func AccelDevice(ordinal int) Device { return Device{Kind: Accel, Ordinal: ordinal} }

// String renders "kind:ordinal", e.g. "accel:1".
func (d Device) String() string { return fmt.Sprintf("%s:%d", d.Kind, d.Ordinal) }
