// Package gpiod backs pin.Driver through libgpiod via cgo, for hosts where
// /dev/gpiomem register access (pin/rpio) isn't available or desired (e.g.
// kernels that require the character-device GPIO uAPI).
package gpiod

// #cgo pkg-config: libgpiod
// #include <gpiod.h>
// #include <stdlib.h>
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/gremwell/jtagctl/jerr"
	"github.com/gremwell/jtagctl/pin"
)

// Driver drives the four JTAG pins through a single gpiod chip.
type Driver struct {
	Chip uint

	ctx   *C.struct_gpiod_chip
	lines map[pin.ID]*C.struct_gpiod_line
}

// New returns an unopened gpiod-backed driver for the given /dev/gpiochipN.
func New(chip uint) *Driver {
	return &Driver{Chip: chip}
}

func (d *Driver) Open(assignment map[pin.ID]int) error {
	d.ctx = C.gpiod_chip_open_by_number(C.uint(d.Chip))
	if d.ctx == nil {
		return &jerr.IoError{Msg: fmt.Sprintf("pin/gpiod: can't open gpio chip #%d", d.Chip)}
	}
	d.lines = make(map[pin.ID]*C.struct_gpiod_line, len(assignment))

	consumer := C.CString("jtagctl")
	defer C.free(unsafe.Pointer(consumer))

	for id, num := range assignment {
		line := C.gpiod_chip_get_line(d.ctx, C.uint(num))
		if line == nil {
			return &jerr.IoError{Msg: fmt.Sprintf("pin/gpiod: can't reserve pin #%d", num)}
		}
		if id == pin.TDO {
			if C.gpiod_line_request_input(line, consumer) != 0 {
				return &jerr.IoError{Msg: fmt.Sprintf("pin/gpiod: can't request pin #%d as input", num)}
			}
		} else {
			initial := C.int(1)
			if id == pin.TCK || id == pin.TDI {
				initial = 0
			}
			if C.gpiod_line_request_output(line, consumer, initial) != 0 {
				return &jerr.IoError{Msg: fmt.Sprintf("pin/gpiod: can't request pin #%d as output", num)}
			}
		}
		d.lines[id] = line
	}
	return nil
}

func (d *Driver) Write(id pin.ID, level bool) {
	line, ok := d.lines[id]
	if !ok {
		return
	}
	v := C.int(0)
	if level {
		v = 1
	}
	C.gpiod_line_set_value(line, v)
}

func (d *Driver) Read(id pin.ID) bool {
	line, ok := d.lines[id]
	if !ok {
		return false
	}
	return C.gpiod_line_get_value(line) == 1
}

func (d *Driver) Close() {
	for _, line := range d.lines {
		C.gpiod_line_release(line)
	}
	d.lines = nil
	if d.ctx != nil {
		C.gpiod_chip_close(d.ctx)
		d.ctx = nil
	}
}
