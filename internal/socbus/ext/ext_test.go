package ext

import (
	"encoding/hex"
	"testing"

	"github.com/intuitionamiga/socrt/internal/socbus"
)

func makeCursor(t *testing.T, data []byte, endian socbus.Endianness) *socbus.BusCursor {
	t.Helper()
	bus := socbus.NewDeviceBus(32)
	ram := socbus.NewRAMMemory("ram", uint64(len(data))+8, endian)
	if _, err := bus.RegisterDevice(ram, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	cur := socbus.AttachToBus(bus, 0, socbus.AccessCPU)
	if err := cur.WriteBytes(data); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cur.Jump(0)
	return cur
}

func TestReadI8SignExtends(t *testing.T) {
	cur := makeCursor(t, []byte{0xFE}, socbus.LittleEndian)
	v, err := ReadI8(cur)
	if err != nil || v != -2 {
		t.Fatalf("expected -2, got %d err=%v", v, err)
	}
}

func TestReadI32BigEndian(t *testing.T) {
	cur := makeCursor(t, []byte{0xFE, 0xDC, 0xBA, 0x98}, socbus.BigEndian)
	v, err := ReadI32(cur)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := int32(-0x01234568) // two's complement of 0xFEDCBA98
	if v != want {
		t.Fatalf("expected %d, got %d", want, v)
	}
}

func TestULEB128DecodesDwarfExample(t *testing.T) {
	cur := makeCursor(t, []byte{0xE5, 0x8E, 0x26}, socbus.LittleEndian)
	v, n, err := ReadULEB128(cur)
	if err != nil {
		t.Fatalf("uleb: %v", err)
	}
	if v != 624485 || n != 3 {
		t.Fatalf("expected (624485, 3), got (%d, %d)", v, n)
	}
}

func TestSLEB128DecodesNegativeExample(t *testing.T) {
	cur := makeCursor(t, []byte{0x9B, 0xF1, 0x59}, socbus.LittleEndian)
	v, n, err := ReadSLEB128(cur)
	if err != nil {
		t.Fatalf("sleb: %v", err)
	}
	if v != -624485 || n != 3 {
		t.Fatalf("expected (-624485, 3), got (%d, %d)", v, n)
	}
}

func TestReadUTF8TrimsNul(t *testing.T) {
	cur := makeCursor(t, []byte("RPM\x00garbage"), socbus.LittleEndian)
	s, err := ReadUTF8(cur, 8)
	if err != nil {
		t.Fatalf("utf8: %v", err)
	}
	if s != "RPM" {
		t.Fatalf("expected RPM, got %q", s)
	}
}

func TestReadCStringStopsAtTerminator(t *testing.T) {
	cur := makeCursor(t, []byte("hello\x00world"), socbus.LittleEndian)
	s, err := ReadCString(cur, 32)
	if err != nil {
		t.Fatalf("cstring: %v", err)
	}
	if s != "hello" {
		t.Fatalf("expected hello, got %q", s)
	}
}

func TestSHA256MatchesKnownVector(t *testing.T) {
	cur := makeCursor(t, []byte("abc"), socbus.LittleEndian)
	digest, err := SHA256(cur, 3)
	if err != nil {
		t.Fatalf("sha256: %v", err)
	}
	want, _ := hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"[:64])
	for i, b := range want {
		if digest[i] != b {
			t.Fatalf("digest mismatch at %d: want %02x got %02x", i, b, digest[i])
		}
	}
}

func TestReadHexRendersUppercasePairs(t *testing.T) {
	cur := makeCursor(t, []byte{0x0A, 0xFF}, socbus.LittleEndian)
	s, err := ReadHex(cur, 2)
	if err != nil {
		t.Fatalf("hex: %v", err)
	}
	if s != "0A FF" {
		t.Fatalf("expected '0A FF', got %q", s)
	}
}

func TestReadASCIIMasksNonGraphic(t *testing.T) {
	cur := makeCursor(t, []byte{'A', 0x01, 'B'}, socbus.LittleEndian)
	s, err := ReadASCII(cur, 3)
	if err != nil {
		t.Fatalf("ascii: %v", err)
	}
	if s != "A.B" {
		t.Fatalf("expected 'A.B', got %q", s)
	}
}
