package socbus

import "testing"

func TestRegisterDeviceResolvesAddress(t *testing.T) {
	bus := NewDeviceBus(32)
	ram := NewRAMMemory("ram", 0x20, LittleEndian)
	if _, err := bus.RegisterDevice(ram, 0x1000); err != nil {
		t.Fatalf("register device: %v", err)
	}

	if err := bus.Write(0x1000, []byte{0xAA, 0xBB}, AccessCPU); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := make([]byte, 2)
	if err := bus.Read(0x1000, out, AccessCPU); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0] != 0xAA || out[1] != 0xBB {
		t.Fatalf("unexpected bytes: %v", out)
	}
}

func TestUnmappedAddressFails(t *testing.T) {
	bus := NewDeviceBus(32)
	out := make([]byte, 1)
	err := bus.Read(0x4000, out, AccessCPU)
	if err == nil {
		t.Fatal("expected NotMapped error")
	}
	busErr, ok := err.(*Error)
	if !ok || busErr.Kind != NotMapped {
		t.Fatalf("expected NotMapped, got %v", err)
	}
}

func TestOverlapAtEqualPriorityRejected(t *testing.T) {
	bus := NewDeviceBus(32)
	a := NewRAMMemory("a", 0x10, LittleEndian)
	b := NewRAMMemory("b", 0x10, LittleEndian)
	if _, err := bus.RegisterDevice(a, 0); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if _, err := bus.RegisterDevice(b, 0x8); err == nil {
		t.Fatal("expected overlap error")
	}
}

func TestHigherPriorityWinsOverlap(t *testing.T) {
	bus := NewDeviceBus(32)
	low := NewRAMMemory("low", 0x10, LittleEndian)
	high := NewRAMMemory("high", 0x10, LittleEndian)
	if _, err := bus.MapDevice(low, 0, 0); err != nil {
		t.Fatalf("map low: %v", err)
	}
	if _, err := bus.MapDevice(high, 0, 5); err != nil {
		t.Fatalf("map high: %v", err)
	}
	if err := bus.Write(0x4, []byte{0x42}, AccessCPU); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := make([]byte, 1)
	if err := low.Read(0x4, out, AccessDebug); err != nil {
		t.Fatalf("read low directly: %v", err)
	}
	if out[0] != 0 {
		t.Fatalf("expected low device untouched, got %v", out)
	}
	if err := high.Read(0x4, out, AccessDebug); err != nil {
		t.Fatalf("read high directly: %v", err)
	}
	if out[0] != 0x42 {
		t.Fatalf("expected high priority device to win, got %v", out)
	}
}

func TestRedirectTranslatesAddress(t *testing.T) {
	bus := NewDeviceBus(32)
	ram := NewRAMMemory("ram", 0x20, LittleEndian)
	if _, err := bus.RegisterDevice(ram, 0x2000); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := bus.AddRedirect(0x0, 0x10, 0x2000); err != nil {
		t.Fatalf("redirect: %v", err)
	}
	if err := bus.Write(0x4, []byte{0x7}, AccessCPU); err != nil {
		t.Fatalf("write through redirect: %v", err)
	}
	out := make([]byte, 1)
	if err := bus.Read(0x2004, out, AccessCPU); err != nil {
		t.Fatalf("read direct: %v", err)
	}
	if out[0] != 0x7 {
		t.Fatalf("redirect should have written through to target, got %v", out)
	}
}

func TestRedirectCycleDetected(t *testing.T) {
	bus := NewDeviceBus(32)
	if err := bus.AddRedirect(0x0, 0x10, 0x100); err != nil {
		t.Fatalf("redirect 1: %v", err)
	}
	if err := bus.AddRedirect(0x100, 0x10, 0x0); err != nil {
		t.Fatalf("redirect 2: %v", err)
	}
	out := make([]byte, 1)
	err := bus.Read(0x0, out, AccessCPU)
	if err == nil {
		t.Fatal("expected cycle detection error")
	}
	busErr, ok := err.(*Error)
	if !ok || busErr.Kind != RedirectInvalid {
		t.Fatalf("expected RedirectInvalid, got %v", err)
	}
}

func TestRedirectSelfReferentialRejected(t *testing.T) {
	bus := NewDeviceBus(32)
	if err := bus.AddRedirect(0x10, 0x10, 0x18); err == nil {
		t.Fatal("expected rejection of self-overlapping redirect")
	}
}

func TestReserveCommitMutualExclusion(t *testing.T) {
	bus := NewDeviceBus(32)
	ram := NewRAMMemory("ram", 0x10, LittleEndian)
	if _, err := bus.RegisterDevice(ram, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := bus.Reserve(0x0, 4); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := bus.Reserve(0x2, 4); err == nil {
		t.Fatal("expected overlapping reserve to fail")
	}
	if err := bus.Commit(0x0); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := bus.Reserve(0x2, 4); err != nil {
		t.Fatalf("reserve after commit should succeed: %v", err)
	}
}
