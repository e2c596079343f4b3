package tap

import "fmt"

// Kind tags one atomic TAP excursion. The walker's dispatch in Step is
// exhaustive over these values; an unrecognized Kind is a construction bug
// caught by NewScanLeg or NewControlLeg, never a runtime surprise mid-walk.
type Kind uint8

const (
	// KindDR shifts the data register, LSB-first, capturing TDO.
	KindDR Kind = iota
	// KindIR shifts the instruction register, LSB-first, capturing TDO.
	KindIR
	// KindIRP is KindIR but pauses in Pause-IR after Exit1 instead of
	// going straight to Update.
	KindIRP
	// KindIRD is KindIR but eligible for the Update-state shortcut that
	// skips the Run-Test-Idle dwell before the next leg.
	KindIRD
	// KindDRC is a DR scan for configuration payloads: MSB-first,
	// write-only, no TDO capture.
	KindDRC
	// KindDRR is a DR scan for recovery reads, wire-identical to KindDR.
	// Walker.stepUpdate copies a DRR/DRS result into LastReadData, but no
	// such leg gets that far: DRC, DRR and DRS legs panic with an
	// InvariantViolation on reaching Shift (see unimplemented).
	KindDRR
	// KindDRS is a DR scan for SPI-style payloads: MSB-first, fast path,
	// captures TDO.
	KindDRS
	// KindRS drives TMS high for a fixed number of cycles to force
	// Test-Logic-Reset.
	KindRS
	// KindDL is an idle delay (5ms) with no pin activity.
	KindDL
	// KindID is one idle cycle spent in Run-Test-Idle.
	KindID
)

func (k Kind) String() string {
	switch k {
	case KindDR:
		return "DR"
	case KindIR:
		return "IR"
	case KindIRP:
		return "IRP"
	case KindIRD:
		return "IRD"
	case KindDRC:
		return "DRC"
	case KindDRR:
		return "DRR"
	case KindDRS:
		return "DRS"
	case KindRS:
		return "RS"
	case KindDL:
		return "DL"
	case KindID:
		return "ID"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// isScan reports whether the leg kind walks Select->Capture->Shift->...
func (k Kind) isScan() bool {
	switch k {
	case KindDR, KindIR, KindIRP, KindIRD, KindDRC, KindDRR, KindDRS:
		return true
	default:
		return false
	}
}

// isDR reports whether the leg kind shifts a data register.
func (k Kind) isDR() bool {
	switch k {
	case KindDR, KindDRC, KindDRR, KindDRS:
		return true
	default:
		return false
	}
}

// capturesTDO reports whether the leg's shift phase should be recorded as
// the caller-visible "readout" value (§3 readout_flag).
func (k Kind) capturesTDO() bool {
	return k == KindDRR || k == KindDRS
}

// msbFirst reports whether the leg's Bits are consumed starting at index 0
// (DRC/DRS fast paths) rather than LSB-first (index len-1 first).
func (k Kind) msbFirst() bool {
	return k == KindDRC || k == KindDRS
}

// unimplemented reports whether this kind's shift semantics are described
// by the specification but intentionally not executed by this walker; see
// the Open Questions in spec.md §9. Hitting one of these during Step is an
// InvariantViolation, not a silent no-op.
func (k Kind) unimplemented() bool {
	return k == KindDRC || k == KindDRR || k == KindDRS
}

// TagShortcutID is the Leg.Tag value chain.Access puts on its IR legs. The
// walker does not read Leg.Tag: stepUpdate takes the Update-state shortcut
// whenever the next pending leg is DR, IRP or IRD, whatever its tag.
const TagShortcutID = "id"

// Leg is one queued TAP excursion: a Kind, its bit payload (for scan
// kinds), and an optional tag, which the walker carries but does not read.
//
// Bits is stored MSB-first at index 0, exactly as a normal binary literal
// reads — RowParser and ChainAccess both build it that way. The Kind
// determines shift direction: LSB-first kinds (DR/IR/IRP/IRD) shift the
// last element first; MSB-first kinds (DRC/DRS) shift the first element
// first.
type Leg struct {
	Kind Kind
	Bits []bool
	Tag  string
}

// NewScanLeg constructs a DR/IR-family leg. It returns an InvariantViolation
// if called with a non-scan kind or a zero-length bit vector — per spec.md
// §4.3's failure model, malformed leg bits must be caught here, at
// construction time, never discovered later by the walker mid-Shift.
func NewScanLeg(kind Kind, bits []bool, tag string) (Leg, error) {
	if !kind.isScan() {
		return Leg{}, &InvariantViolation{Msg: fmt.Sprintf("tap: %s is not a scan leg kind", kind)}
	}
	if len(bits) == 0 {
		return Leg{}, &InvariantViolation{Msg: fmt.Sprintf("tap: %s leg has a zero-length bit vector", kind)}
	}
	return Leg{Kind: kind, Bits: bits, Tag: tag}, nil
}

// NewControlLeg constructs an RS/DL/ID leg, which carries no bit payload.
func NewControlLeg(kind Kind) (Leg, error) {
	switch kind {
	case KindRS, KindDL, KindID:
		return Leg{Kind: kind}, nil
	default:
		return Leg{}, &InvariantViolation{Msg: fmt.Sprintf("tap: %s is not a control leg kind", kind)}
	}
}
