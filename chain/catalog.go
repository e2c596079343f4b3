// Package chain composes per-device register access (ChainAccess) on top
// of a read-only device catalog (DeviceCatalog), walking the shared TAP
// through the tap package.
package chain

import "fmt"

// Register names one addressable IR opcode and the DR it selects.
type Register struct {
	Name    string
	Address uint32
	Width   int
}

// BypassName is the register every compliant device must expose: a 1-bit
// DR selected to make the device transparent in a multi-device chain.
const BypassName = "BYPASS"

// Device is one read-only catalog entry: IR length, IDCODE, and
// bidirectional name/address lookup for its registers.
type Device struct {
	Name      string
	IRLen     int
	IDCode    uint32
	ByName    map[string]Register
	ByAddress map[uint32]Register
}

// NewDevice builds a catalog Device from its register list, validating
// that a BYPASS entry of width 1 is present, per spec.md §4.5.
func NewDevice(name string, irLen int, idcode uint32, registers []Register) (*Device, error) {
	d := &Device{
		Name:      name,
		IRLen:     irLen,
		IDCode:    idcode,
		ByName:    make(map[string]Register, len(registers)),
		ByAddress: make(map[uint32]Register, len(registers)),
	}
	for _, r := range registers {
		d.ByName[r.Name] = r
		d.ByAddress[r.Address] = r
	}
	bypass, ok := d.ByName[BypassName]
	if !ok {
		return nil, fmt.Errorf("chain: device %q is missing a BYPASS register", name)
	}
	if bypass.Width != 1 {
		return nil, fmt.Errorf("chain: device %q BYPASS width = %d, want 1", name, bypass.Width)
	}
	return d, nil
}

// Resolve looks up a register by symbolic name.
func (d *Device) Resolve(name string) (Register, error) {
	r, ok := d.ByName[name]
	if !ok {
		return Register{}, fmt.Errorf("chain: device %q has no register %q", d.Name, name)
	}
	return r, nil
}

// RegisterAt looks up a register by its IR opcode.
func (d *Device) RegisterAt(addr uint32) (Register, error) {
	r, ok := d.ByAddress[addr]
	if !ok {
		return Register{}, fmt.Errorf("chain: device %q has no register at address 0x%x", d.Name, addr)
	}
	return r, nil
}

// BypassAddress returns this device's BYPASS opcode.
func (d *Device) BypassAddress() uint32 {
	return d.ByName[BypassName].Address
}

// Chain is an ordered sequence of devices. Position 0 is the device
// closest to TDO; the last position is closest to TDI — see spec.md §3.
type Chain []*Device

// Len is the number of devices in the chain.
func (c Chain) Len() int { return len(c) }
