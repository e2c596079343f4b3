// Command jtagctl drives a JTAG target over GPIO, either as a TAP walker
// for row-scripted register access or as an XVC server for Vivado/OpenOCD.
package main

import "github.com/gremwell/jtagctl/cmd/jtagctl/cmd"

func main() {
	cmd.Execute()
}
