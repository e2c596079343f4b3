package xvc

import (
	"bytes"
	"testing"

	"github.com/gremwell/jtagctl/pin"
)

func TestShiftBitOrderAndTraces(t *testing.T) {
	rec := &pin.Recorder{}
	tms := []byte{0x55} // 01010101
	tdi := []byte{0xaa} // 10101010

	Shift(rec, 0, 8, tms, tdi)

	// Reconstruct the TMS/TDI bit sequence actually presented to the pins
	// during the 8 shift cycles: each cycle writes TCK=0,TMS,TDI,TCK=1,TCK=0,
	// so the TMS and TDI writes immediately preceding a TCK=1 write are the
	// bits sampled for that cycle.
	var shiftedTMS, shiftedTDI []bool
	for i := 1; i+1 < len(rec.Writes); i++ {
		if rec.Writes[i+1].ID == pin.TCK && rec.Writes[i+1].Level {
			switch rec.Writes[i].ID {
			case pin.TDI:
				shiftedTDI = append(shiftedTDI, rec.Writes[i].Level)
				if rec.Writes[i-1].ID == pin.TMS {
					shiftedTMS = append(shiftedTMS, rec.Writes[i-1].Level)
				}
			}
		}
	}
	if len(shiftedTDI) != 8 {
		t.Fatalf("captured %d shifted TDI bits, want 8", len(shiftedTDI))
	}
	for i, want := range []bool{false, true, false, true, false, true, false, true} {
		if shiftedTDI[i] != want {
			t.Fatalf("tdi bit %d = %v, want %v (0xaa LSB first)", i, shiftedTDI[i], want)
		}
	}
	if len(shiftedTMS) != 8 {
		t.Fatalf("captured %d shifted TMS bits, want 8", len(shiftedTMS))
	}
	for i, want := range []bool{true, false, true, false, true, false, true, false} {
		if shiftedTMS[i] != want {
			t.Fatalf("tms bit %d = %v, want %v (0x55 LSB first)", i, shiftedTMS[i], want)
		}
	}
}

func TestShiftBitSymmetry(t *testing.T) {
	// A target that shorts TDI to TDO must echo exactly the TDI buffer
	// back as TDO, truncated to nbits, per spec.md §8's loopback scenario.
	tms := []byte{0xff, 0xff}
	tdi := []byte{0x5a, 0xc3}
	rec := newLoopbackDriver()

	tdo := Shift(rec, 0, 16, tms, tdi)
	if !bytes.Equal(tdo, tdi) {
		t.Fatalf("tdo = % x, want % x (loopback symmetry)", tdo, tdi)
	}
}

// loopbackDriver is a pin.Driver whose Read(TDO) returns the value most
// recently written to TDI, modeling a target that shorts TDI to TDO.
type loopbackDriver struct {
	tdi bool
}

func newLoopbackDriver() *loopbackDriver { return &loopbackDriver{} }

func (l *loopbackDriver) Open(map[pin.ID]int) error { return nil }
func (l *loopbackDriver) Write(id pin.ID, level bool) {
	if id == pin.TDI {
		l.tdi = level
	}
}
func (l *loopbackDriver) Read(id pin.ID) bool {
	if id == pin.TDO {
		return l.tdi
	}
	return false
}
func (l *loopbackDriver) Close() {}
