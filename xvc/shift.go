// Package xvc implements the Xilinx Virtual Cable v1.0 protocol on top of
// pin.Driver, bypassing tap.Walker entirely: the XVC host drives TMS itself,
// so this package's job is raw bit shifting, not TAP-state bookkeeping.
package xvc

import (
	"github.com/gremwell/jtagctl/pin"
)

// Delay spins busy-wait iterations between pin updates, standing in for the
// original's asm no-op loop (spec.md §4.8/§9: a compiled port has no
// equivalent instruction-count timing, so the knob is kept and reinterpreted
// as a plain iteration count rather than a fixed nanosecond sleep).
type Delay uint

func (d Delay) spin() {
	for i := Delay(0); i < d; i++ {
	}
}

// Shift performs one XVC shift transfer: nbits bits of tms and tdi, LSB of
// byte 0 first, are clocked out one at a time, and the sampled tdo bits are
// packed the same way. Every pin update is followed by a Delay.spin().
func Shift(d pin.Driver, delay Delay, nbits int, tms, tdi []byte) []byte {
	numBytes := (nbits + 7) / 8
	tdo := make([]byte, numBytes)

	d.Write(pin.TCK, false)
	d.Write(pin.TMS, true)
	d.Write(pin.TDI, true)
	delay.spin()

	for i := 0; i < nbits; i++ {
		byteIdx, bitIdx := i/8, uint(i%8)
		tmsBit := tms[byteIdx]&(1<<bitIdx) != 0
		tdiBit := tdi[byteIdx]&(1<<bitIdx) != 0

		d.Write(pin.TCK, false)
		d.Write(pin.TMS, tmsBit)
		d.Write(pin.TDI, tdiBit)
		delay.spin()

		d.Write(pin.TCK, true)
		delay.spin()

		if d.Read(pin.TDO) {
			tdo[byteIdx] |= 1 << bitIdx
		}

		d.Write(pin.TCK, false)
		delay.spin()
	}

	d.Write(pin.TMS, true)
	d.Write(pin.TDI, false)
	delay.spin()

	return tdo
}
