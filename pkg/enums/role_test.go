package enums

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "vendor", want: RoleVendor},
		{in: " Supplier ", want: RoleSupplier},
		{in: "admin", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseRole(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRole(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoleHomeRoute(t *testing.T) {
	if got := RoleVendor.HomeRoute(); got != "/vendor" {
		t.Fatalf("vendor route = %q", got)
	}
	if got := RoleSupplier.HomeRoute(); got != "/supplier" {
		t.Fatalf("supplier route = %q", got)
	}
	if got := Role("unknown").HomeRoute(); got != "/" {
		t.Fatalf("unknown role should land on /, got %q", got)
	}
}

func TestGateStateValidity(t *testing.T) {
	for _, state := range []GateState{GateStateNoStore, GateStateNoProfile, GateStateReady} {
		if !state.IsValid() {
			t.Fatalf("expected %q to be valid", state)
		}
	}
	if _, err := ParseGateState("pending"); err == nil {
		t.Fatal("expected unknown gate state to fail")
	}
}
