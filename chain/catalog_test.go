package chain

import "testing"

func TestNewDeviceRequiresBypass(t *testing.T) {
	_, err := NewDevice("dev", 6, 0x12345678, []Register{
		{Name: "IDCODE", Address: 0x09, Width: 32},
	})
	if err == nil {
		t.Fatal("expected an error for a device missing BYPASS")
	}
}

func TestNewDeviceRejectsWideBypass(t *testing.T) {
	_, err := NewDevice("dev", 6, 0x12345678, []Register{
		{Name: "BYPASS", Address: 0x3f, Width: 2},
	})
	if err == nil {
		t.Fatal("expected an error for a BYPASS register wider than 1 bit")
	}
}

func TestDeviceResolveAndRegisterAt(t *testing.T) {
	dev, err := NewDevice("dev", 6, 0x12345678, []Register{
		{Name: "BYPASS", Address: 0x3f, Width: 1},
		{Name: "IDCODE", Address: 0x09, Width: 32},
	})
	if err != nil {
		t.Fatal(err)
	}
	reg, err := dev.Resolve("IDCODE")
	if err != nil || reg.Address != 0x09 {
		t.Fatalf("Resolve(IDCODE) = %+v, %v", reg, err)
	}
	byAddr, err := dev.RegisterAt(0x3f)
	if err != nil || byAddr.Name != "BYPASS" {
		t.Fatalf("RegisterAt(0x3f) = %+v, %v", byAddr, err)
	}
	if dev.BypassAddress() != 0x3f {
		t.Fatalf("BypassAddress() = %#x, want 0x3f", dev.BypassAddress())
	}
}
