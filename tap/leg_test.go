package tap

import "testing"

func TestNewScanLegRejectsNonScanKind(t *testing.T) {
	if _, err := NewScanLeg(KindRS, []bool{true}, ""); err == nil {
		t.Fatal("expected an error for a non-scan kind")
	}
}

func TestNewScanLegRejectsZeroLengthBits(t *testing.T) {
	_, err := NewScanLeg(KindDR, nil, "")
	if err == nil {
		t.Fatal("expected an error for a zero-length bit vector")
	}
	if _, ok := err.(*InvariantViolation); !ok {
		t.Fatalf("err = %T, want *InvariantViolation", err)
	}
}

func TestNewControlLegRejectsScanKind(t *testing.T) {
	if _, err := NewControlLeg(KindDR); err == nil {
		t.Fatal("expected an error for a scan kind passed to NewControlLeg")
	}
}
