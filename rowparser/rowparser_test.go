package rowparser

import (
	"errors"
	"math/big"
	"testing"

	"github.com/gremwell/jtagctl/jerr"
	"github.com/gremwell/jtagctl/tap"
)

func TestParseRowComment(t *testing.T) {
	legs, err := ParseRow([]string{"# a note", "0", "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if legs != nil {
		t.Fatalf("legs = %v, want nil", legs)
	}
}

func TestParseRowTooShort(t *testing.T) {
	legs, err := ParseRow([]string{"dr", "3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if legs != nil {
		t.Fatalf("legs = %v, want nil", legs)
	}
}

func TestParseRowUnknownChain(t *testing.T) {
	_, err := ParseRow([]string{"xyz", "3", "0"})
	var pe *jerr.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *jerr.ParseError", err)
	}
}

func TestParseRowZeroWidthIsParseError(t *testing.T) {
	// A zero-length scan leg must be rejected here, at parse time, never
	// discovered later by the walker mid-Shift (spec.md §4.3's failure
	// model).
	for _, chain := range []string{"dr", "ir", "irp", "ird"} {
		_, err := ParseRow([]string{chain, "0", "0"})
		var pe *jerr.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("chain %s, length 0: err = %v, want *jerr.ParseError", chain, err)
		}
	}
}

func TestParseRowUnimplementedKinds(t *testing.T) {
	for _, chain := range []string{"drc", "drr", "drs"} {
		_, err := ParseRow([]string{chain, "8", "0"})
		var pe *jerr.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("chain %s: err = %v, want *jerr.ParseError", chain, err)
		}
	}
}

func TestParseRowControlLegsIgnoreLengthValue(t *testing.T) {
	legs, err := ParseRow([]string{"rs", "0", "0"})
	if err != nil {
		t.Fatal(err)
	}
	if len(legs) != 1 || legs[0].Kind != tap.KindRS {
		t.Fatalf("legs = %v, want one KindRS leg", legs)
	}
}

func TestParseRowHexBinDecimal(t *testing.T) {
	cases := []struct {
		value string
		want  int64
	}{
		{"0x09", 9},
		{"0b1001", 9},
		{"9", 9},
	}
	for _, tc := range cases {
		legs, err := ParseRow([]string{"ir", "6", tc.value})
		if err != nil {
			t.Fatalf("value %s: %v", tc.value, err)
		}
		got := bitsToBigInt(legs[0].Bits)
		if got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("value %s: got %s, want %d", tc.value, got, tc.want)
		}
	}
}

func TestParseRowsAtomicOnError(t *testing.T) {
	rows := [][]string{
		{"dr", "4", "0x5"},
		{"bogus", "4", "0x5"},
	}
	legs, err := ParseRows(rows)
	if err == nil {
		t.Fatal("expected an error from the malformed second row")
	}
	if legs != nil {
		t.Fatalf("legs = %v, want nil on batch failure", legs)
	}
}

// bitsToBigInt reinterprets a leg's MSB-first bit vector as a plain
// unsigned integer for test comparisons.
func bitsToBigInt(bits []bool) *big.Int {
	v := new(big.Int)
	for i, b := range bits {
		if b {
			v.SetBit(v, len(bits)-1-i, 1)
		}
	}
	return v
}
