// Package phy implements the single-TCK-cycle primitive every JTAG
// operation in this module is built from.
package phy

import "github.com/gremwell/jtagctl/pin"

// Sync drives one TCK cycle and returns the TDO value sampled just before
// the cycle began — the bus state established by the previous cycle.
//
// Write order is TCK=0, TDI, TMS, TCK=1, TCK=0: TDI/TMS settle before the
// rising edge latches them, and TCK returns low so TDO can update for the
// next sample. No delay is inserted here. The XVC path does not use Sync:
// xvc.Shift writes the pins itself, with a busy-wait between updates.
func Sync(d pin.Driver, tdi, tms bool) bool {
	tdo := d.Read(pin.TDO)

	d.Write(pin.TCK, false)
	d.Write(pin.TDI, tdi)
	d.Write(pin.TMS, tms)

	d.Write(pin.TCK, true)
	d.Write(pin.TCK, false)

	return tdo
}
