// Package rowparser turns the textual row format of spec.md §4.6/§6 into
// typed tap.Legs, and exposes the same leg-building logic to chain.Access
// so the two callers share one notion of "what a row means" without
// ChainAccess having to round-trip its already-known integers through
// text.
package rowparser

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/gremwell/jtagctl/jerr"
	"github.com/gremwell/jtagctl/tap"
)

var kindByChain = map[string]tap.Kind{
	"dr":  tap.KindDR,
	"ir":  tap.KindIR,
	"rs":  tap.KindRS,
	"dl":  tap.KindDL,
	"id":  tap.KindID,
	"irp": tap.KindIRP,
	"ird": tap.KindIRD,
	"drc": tap.KindDRC,
	"drr": tap.KindDRR,
	"drs": tap.KindDRS,
}

// ParseRow parses one already-split row of 3 or 4 fields: chain, length,
// value, and an optional tag. A row with fewer than 3 fields, or whose
// first field starts with '#', yields no legs and no error (a comment or
// blank line). An unknown chain kind is a *jerr.ParseError.
func ParseRow(fields []string) ([]tap.Leg, error) {
	if len(fields) < 3 {
		return nil, nil
	}
	chain := strings.ToLower(strings.TrimSpace(fields[0]))
	if strings.HasPrefix(chain, "#") {
		return nil, nil
	}

	kind, ok := kindByChain[chain]
	if !ok {
		return nil, &jerr.ParseError{Msg: fmt.Sprintf("unknown chain type %q", fields[0])}
	}

	switch kind {
	case tap.KindDRC, tap.KindDRR, tap.KindDRS:
		return nil, &jerr.ParseError{Msg: fmt.Sprintf("%s is not implemented", chain)}
	}

	if kind == tap.KindRS || kind == tap.KindDL || kind == tap.KindID {
		leg, err := tap.NewControlLeg(kind)
		if err != nil {
			return nil, &jerr.ParseError{Msg: "building control leg", Err: err}
		}
		return []tap.Leg{leg}, nil
	}

	length, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return nil, &jerr.ParseError{Msg: fmt.Sprintf("invalid length %q", fields[1]), Err: err}
	}
	value, err := parseValue(fields[2])
	if err != nil {
		return nil, &jerr.ParseError{Msg: fmt.Sprintf("invalid value %q", fields[2]), Err: err}
	}

	tag := " "
	if len(fields) > 3 {
		tag = fields[3]
	}

	leg, err := BuildScanLeg(kind, length, value, tag)
	if err != nil {
		return nil, &jerr.ParseError{Msg: "building scan leg", Err: err}
	}
	return []tap.Leg{leg}, nil
}

// ParseRows parses every row and concatenates the resulting legs. The
// whole batch is rejected atomically: on the first error, no legs from
// any row (including ones already parsed) are returned.
func ParseRows(rows [][]string) ([]tap.Leg, error) {
	var legs []tap.Leg
	for _, row := range rows {
		rowLegs, err := ParseRow(row)
		if err != nil {
			return nil, err
		}
		legs = append(legs, rowLegs...)
	}
	return legs, nil
}

// BuildScanLeg builds a DR/IR-family leg from an already-resolved integer
// value, zero-padding it to width bits (MSB at index 0) exactly as the
// text parser does for a literal row. chain.Access calls this directly
// with its computed total_ir_val/total_dr_val instead of re-deriving them
// from a formatted string.
func BuildScanLeg(kind tap.Kind, width int, value *big.Int, tag string) (tap.Leg, error) {
	var bits []bool
	if width > 0 {
		bits = make([]bool, width)
		for i := 0; i < width; i++ {
			shift := width - 1 - i
			bits[i] = value.Bit(shift) == 1
		}
	}
	return tap.NewScanLeg(kind, bits, tag)
}

func parseValue(field string) (*big.Int, error) {
	field = strings.TrimSpace(field)
	v := new(big.Int)
	var ok bool
	switch {
	case strings.HasPrefix(field, "0x"), strings.HasPrefix(field, "0X"):
		v, ok = v.SetString(field[2:], 16)
	case strings.HasPrefix(field, "0b"), strings.HasPrefix(field, "0B"):
		v, ok = v.SetString(field[2:], 2)
	default:
		v, ok = v.SetString(field, 10)
	}
	if !ok {
		return nil, fmt.Errorf("rowparser: cannot parse %q as an integer", field)
	}
	return v, nil
}
