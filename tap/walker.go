package tap

import (
	"log"
	"math/big"
	"time"

	"github.com/gremwell/jtagctl/pin"
	"github.com/gremwell/jtagctl/phy"
)

// idleDelay is the real sleep a KindDL leg performs in Run-Test-Idle.
const idleDelay = 5 * time.Millisecond

// Walker drives pin.Driver through the IEEE 1149.1 TAP state machine one
// TCK cycle at a time, consuming a FIFO of Legs. It holds no hardware
// state of its own beyond what phy.Sync needs — all the bookkeeping in
// this struct is the TAP's own (current state, in-flight leg, captured
// bits, result history).
type Walker struct {
	drv pin.Driver
	log *log.Logger

	state State

	pending []Leg
	active  *Leg

	tdoAccum []bool
	readout  bool
	doPause  bool

	// Results holds one entry per completed scan leg, in FIFO
	// completion order, each that leg's captured TDO bits read LSB-first
	// (the first bit shifted is bit 0).
	Results []*big.Int

	// LastReadData is the most recently captured KindDRR/KindDRS result.
	// It stays nil in practice: those kinds panic on reaching Shift (see
	// Kind.unimplemented).
	LastReadData *big.Int

	// LastIRValue caches the most recently shifted total IR value for
	// ChainAccess's redundant-scan elision. Nil is the reset sentinel.
	LastIRValue *big.Int

	// TMSResetCycles is the number of TMS=1 cycles a KindRS leg emits.
	TMSResetCycles int
}

// NewWalker returns a Walker in Run-Test-Idle with an empty leg queue,
// driving pins through drv. logger may be nil, in which case log.Default
// is used.
func NewWalker(drv pin.Driver, logger *log.Logger) *Walker {
	if logger == nil {
		logger = log.Default()
	}
	return &Walker{
		drv:            drv,
		log:            logger,
		state:          RunTestIdle,
		TMSResetCycles: 7,
	}
}

// State reports the walker's current TAP state.
func (w *Walker) State() State {
	return w.state
}

// Enqueue appends legs to the pending FIFO.
func (w *Walker) Enqueue(legs ...Leg) {
	w.pending = append(w.pending, legs...)
}

// ClearResults discards any accumulated Results. ChainAccess calls this
// before each batch so PopResult always observes the batch it just ran,
// mirroring the source's per-batch jtag_results reset.
func (w *Walker) ClearResults() {
	w.Results = w.Results[:0]
}

// sync is a short alias kept at the call sites that mirror spec.md's
// phy_sync(tdi, tms) notation.
func (w *Walker) sync(tdi, tms bool) bool {
	return phy.Sync(w.drv, tdi, tms)
}

func (w *Walker) popPending() {
	if len(w.pending) == 0 {
		w.active = nil
		return
	}
	leg := w.pending[0]
	w.pending = w.pending[1:]
	w.active = &leg
}

// Step advances the walker by exactly one dispatch of the current state's
// exit action, per spec.md §4.3.
func (w *Walker) Step() {
	switch w.state {
	case TestLogicReset:
		w.stepTestLogicReset()
	case RunTestIdle:
		w.stepRunTestIdle()
	case SelectScan:
		w.sync(false, false)
		w.state = Capture
	case Capture:
		w.sync(false, false)
		w.tdoAccum = w.tdoAccum[:0]
		w.state = Shift
	case Shift:
		w.stepShift()
	case Exit1:
		w.stepExit1()
	case Pause:
		w.sync(false, true)
		w.state = Exit2
	case Exit2:
		w.sync(false, true)
		w.state = Update
	case Update:
		w.stepUpdate()
	default:
		panic(&InvariantViolation{Msg: "tap: walker in unreachable state"})
	}
}

// stepTestLogicReset only advances to RunTestIdle when there is more work
// queued. A batch that ends on an RS leg with nothing pending after it
// settles here and stays here — RunUntilIdle's terminal-state check
// accepts TestLogicReset for exactly this reason (spec.md §9 Open
// Question 3: preserve the source's silent fall-through rather than
// force an extra cycle no leg ever asked for).
func (w *Walker) stepTestLogicReset() {
	if len(w.pending) > 0 || w.active != nil {
		w.sync(false, false)
		w.state = RunTestIdle
		w.LastIRValue = nil
	}
}

func (w *Walker) stepRunTestIdle() {
	if w.active == nil {
		if len(w.pending) > 0 {
			w.popPending()
		} else {
			w.sync(false, false)
		}
		w.state = RunTestIdle
		return
	}

	switch w.active.Kind {
	case KindDR, KindDRC, KindDRR, KindDRS:
		w.sync(false, true)
		w.readout = w.active.Kind.capturesTDO()
		w.state = SelectScan
	case KindIR, KindIRD:
		w.sync(false, true)
		w.sync(false, true)
		w.doPause = false
		w.state = SelectScan
	case KindIRP:
		w.sync(false, true)
		w.sync(false, true)
		w.doPause = true
		w.state = SelectScan
	case KindRS:
		w.log.Println("[info] TMS reset")
		for i := 0; i < w.TMSResetCycles; i++ {
			w.sync(false, true)
		}
		w.state = TestLogicReset
		w.LastIRValue = nil
		w.popPending()
	case KindDL:
		time.Sleep(idleDelay)
		w.popPending()
	case KindID:
		w.sync(false, false)
		w.popPending()
	default:
		panic(&InvariantViolation{Msg: "tap: leg with unknown kind reached Run-Test-Idle"})
	}
}

func (w *Walker) stepShift() {
	if w.active == nil {
		panic(&InvariantViolation{Msg: "tap: Shift state with no active leg"})
	}
	if w.active.Kind.unimplemented() {
		panic(&InvariantViolation{Msg: "tap: " + w.active.Kind.String() + " shift path is not implemented"})
	}

	bits := w.active.Bits
	n := len(bits)
	if n == 0 {
		panic(&InvariantViolation{Msg: "tap: scan leg with zero-length bit vector"})
	}

	// DR/IR/IRP/IRD all shift LSB-first: bits[n-1] goes out first. Each
	// cycle consumes the tail of the remaining vector.
	bit := bits[n-1]
	if n > 1 {
		tdo := w.sync(bit, false)
		w.tdoAccum = append(w.tdoAccum, tdo)
		w.active.Bits = bits[:n-1]
		w.state = Shift
		return
	}

	tdo := w.sync(bit, true)
	w.tdoAccum = append(w.tdoAccum, tdo)
	w.active = nil
	w.state = Exit1
}

func (w *Walker) stepExit1() {
	if w.doPause {
		w.sync(false, false)
		w.state = Pause
		w.doPause = false
		return
	}
	w.sync(false, true)
	w.state = Update
}

func (w *Walker) stepUpdate() {
	w.Results = append(w.Results, bitsToInt(w.tdoAccum))
	if w.readout {
		w.LastReadData = bitsToInt(w.tdoAccum)
		w.readout = false
	}
	w.tdoAccum = w.tdoAccum[:0]

	if len(w.pending) > 0 && shortcutEligible(w.pending[0].Kind) {
		head := w.pending[0]
		if head.Kind == KindIRP || head.Kind == KindIRD {
			w.sync(false, true)
			w.log.Println("[info] IR bypassing wait state")
		}
		if head.Kind == KindIRP {
			w.doPause = true
		}
		w.popPending()
		w.sync(false, true)
		w.state = SelectScan
		return
	}

	w.sync(false, false)
	w.state = RunTestIdle
}

func shortcutEligible(k Kind) bool {
	return k == KindDR || k == KindIRP || k == KindIRD
}

// bitsToInt interprets bits — captured in shift order, first-shifted bit
// first — as the little-endian (LSB-first) bit pattern of an integer, so
// that the first bit shifted out contributes 2^0.
func bitsToInt(bits []bool) *big.Int {
	v := new(big.Int)
	for i, b := range bits {
		if b {
			v.SetBit(v, i, 1)
		}
	}
	return v
}

// RunUntilIdle steps the walker until both the active leg is empty and the
// current state is TestLogicReset or RunTestIdle.
func (w *Walker) RunUntilIdle() {
	for {
		w.Step()
		if w.active == nil && (w.state == TestLogicReset || w.state == RunTestIdle) {
			return
		}
	}
}

// Run drains the pending queue entirely, running every leg to completion.
func (w *Walker) Run() {
	for len(w.pending) > 0 || w.active != nil {
		w.RunUntilIdle()
	}
}

// PopResult removes and returns the most recently completed scan result.
// It panics with InvariantViolation if Results is empty, mirroring the
// source's unchecked list.pop() — callers are expected to know a result
// is waiting (ChainAccess always is, right after Run).
func (w *Walker) PopResult() *big.Int {
	if len(w.Results) == 0 {
		panic(&InvariantViolation{Msg: "tap: PopResult called with no results pending"})
	}
	v := w.Results[len(w.Results)-1]
	w.Results = w.Results[:len(w.Results)-1]
	return v
}
