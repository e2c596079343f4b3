package rowparser

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gremwell/jtagctl/jerr"
	"github.com/gremwell/jtagctl/tap"
)

// LoadRows reads a row-script file (one row per line, fields separated by
// whitespace or commas, per spec.md §6) and parses it with ParseRows.
func LoadRows(path string) ([]tap.Leg, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &jerr.IoError{Msg: fmt.Sprintf("rowparser: opening %q", path), Err: err}
	}
	defer f.Close()

	var rows [][]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, &jerr.IoError{Msg: fmt.Sprintf("rowparser: reading %q", path), Err: err}
	}
	return ParseRows(rows)
}
