package permission

import "testing"

func TestAllowsFailClosed(t *testing.T) {
	var s Set

	for _, cap := range Capabilities() {
		if s.Allows(cap) {
			t.Errorf("empty set granted %q", cap)
		}
	}
	if s.Allows(Capability("canDoAnything")) {
		t.Error("empty set granted unknown capability")
	}
}

func TestAllowsIndividualGrants(t *testing.T) {
	s := Set{Edit: true, ViewLogs: true}

	if !s.Allows(CapEdit) {
		t.Error("Edit grant not honored")
	}
	if !s.Allows(CapViewLogs) {
		t.Error("ViewLogs grant not honored")
	}
	if s.Allows(CapDelete) {
		t.Error("Delete granted without flag")
	}
	if s.Allows(CapManageUsers) {
		t.Error("ManageUsers granted without flag")
	}
}

func TestGodOverridesEverything(t *testing.T) {
	s := Set{God: true}

	for _, cap := range Capabilities() {
		if !s.Allows(cap) {
			t.Errorf("god set denied %q", cap)
		}
	}
	// unknown names included
	if !s.Allows(Capability("canLaunchRockets")) {
		t.Error("god set denied unknown capability")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	// exhaustive over all 32 valid combinations
	for b := byte(0); b < 1<<5; b++ {
		s, err := Decode(b)
		if err != nil {
			t.Fatalf("Decode(%#x): %v", b, err)
		}
		if got := Encode(s); got != b {
			t.Fatalf("round trip %#x -> %#x", b, got)
		}
	}
}

func TestDecodeRejectsUnknownBits(t *testing.T) {
	if _, err := Decode(0x80); err != ErrUnknownBits {
		t.Fatalf("Decode(0x80) = %v, want ErrUnknownBits", err)
	}
}
