package chain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gremwell/jtagctl/jerr"
)

// registerFile and deviceFile mirror the JSON catalog format: an ordered
// array of devices, each with its IR length, IDCODE, and register table,
// in chain order: the first entry becomes position 0, the device closest
// to TDO (§3).
type registerFile struct {
	Name    string `json:"name"`
	Address uint32 `json:"address"`
	Width   int    `json:"width"`
}

type deviceFile struct {
	Name      string         `json:"name"`
	IRLen     int            `json:"ir_len"`
	IDCode    uint32         `json:"idcode"`
	Registers []registerFile `json:"registers"`
}

// LoadCatalog reads a JSON device catalog from path, following the
// teacher's -pins/-known-pins JSON flag convention, and builds the Chain
// it describes.
func LoadCatalog(path string) (Chain, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &jerr.IoError{Msg: fmt.Sprintf("chain: reading catalog %q", path), Err: err}
	}

	var files []deviceFile
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, &jerr.ParseError{Msg: fmt.Sprintf("chain: decoding catalog %q", path), Err: err}
	}

	c := make(Chain, 0, len(files))
	for _, df := range files {
		regs := make([]Register, len(df.Registers))
		for i, rf := range df.Registers {
			regs[i] = Register{Name: rf.Name, Address: rf.Address, Width: rf.Width}
		}
		dev, err := NewDevice(df.Name, df.IRLen, df.IDCode, regs)
		if err != nil {
			return nil, err
		}
		c = append(c, dev)
	}
	return c, nil
}
