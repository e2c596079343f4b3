// Package rpio backs pin.Driver with direct /dev/gpiomem register access via
// github.com/stianeikeland/go-rpio.
package rpio

import (
	"github.com/stianeikeland/go-rpio/v4"

	"github.com/gremwell/jtagctl/jerr"
	"github.com/gremwell/jtagctl/pin"
)

// Driver drives the four JTAG pins through go-rpio.
type Driver struct {
	lines  map[pin.ID]rpio.Pin
	opened bool
}

// New returns an unopened rpio-backed driver.
func New() *Driver {
	return &Driver{}
}

// Open maps the host BCM pin numbers, configures directions (TCK/TMS/TDI
// output, TDO input), and drives the failsafe idle state (TCK=0, TMS=1,
// TDI=0) before returning.
func (d *Driver) Open(assignment map[pin.ID]int) error {
	if err := rpio.Open(); err != nil {
		return &jerr.IoError{Msg: "pin/rpio: open", Err: err}
	}
	d.opened = true
	d.lines = make(map[pin.ID]rpio.Pin, len(assignment))
	for id, num := range assignment {
		line := rpio.Pin(num)
		if id == pin.TDO {
			line.Input()
		} else {
			line.Output()
		}
		d.lines[id] = line
	}
	if line, ok := d.lines[pin.TCK]; ok {
		line.Low()
	}
	if line, ok := d.lines[pin.TMS]; ok {
		line.High()
	}
	if line, ok := d.lines[pin.TDI]; ok {
		line.Low()
	}
	return nil
}

func (d *Driver) Write(id pin.ID, level bool) {
	line, ok := d.lines[id]
	if !ok {
		return
	}
	if level {
		line.High()
	} else {
		line.Low()
	}
}

func (d *Driver) Read(id pin.ID) bool {
	line, ok := d.lines[id]
	if !ok {
		return false
	}
	return line.Read() == rpio.High
}

func (d *Driver) Close() {
	if !d.opened {
		return
	}
	rpio.Close()
	d.opened = false
}
