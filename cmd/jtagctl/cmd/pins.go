package cmd

import (
	"fmt"

	"github.com/gremwell/jtagctl/pin"
	"github.com/gremwell/jtagctl/pin/gpiod"
	"github.com/gremwell/jtagctl/pin/rpio"
)

// pinFlags holds the BCM pin assignment and backend selection flags shared
// by every subcommand that opens a pin.Driver.
type pinFlags struct {
	driver             string
	gpiochip           uint
	tck, tms, tdi, tdo int
}

func openDriver(f pinFlags) (pin.Driver, error) {
	var drv pin.Driver
	switch f.driver {
	case "rpio", "":
		drv = rpio.New()
	case "gpiod":
		drv = gpiod.New(f.gpiochip)
	default:
		return nil, fmt.Errorf("jtagctl: unknown --driver %q (want rpio or gpiod)", f.driver)
	}

	assignment := map[pin.ID]int{
		pin.TCK: f.tck,
		pin.TMS: f.tms,
		pin.TDI: f.tdi,
		pin.TDO: f.tdo,
	}
	if err := drv.Open(assignment); err != nil {
		return nil, err
	}
	return drv, nil
}
