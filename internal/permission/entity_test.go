package permission

import (
	"testing"
	"time"
)

func TestLevelOrdering(t *testing.T) {
	tests := []struct {
		name    string
		l       Level
		min     Level
		atLeast bool
	}{
		{"none is below read", None, Read, false},
		{"read meets read", Read, Read, true},
		{"read is below write", Read, Write, false},
		{"write meets read", Write, Read, true},
		{"write meets write", Write, Write, true},
		{"admin meets write", Admin, Write, true},
		{"admin meets admin", Admin, Admin, true},
		{"none meets none", None, None, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.l.AtLeast(tt.min); got != tt.atLeast {
				t.Errorf("Level(%q).AtLeast(%q) = %v, want %v", tt.l, tt.min, got, tt.atLeast)
			}
		})
	}
}

func TestLevelMax(t *testing.T) {
	if got := Max(Read, Write); got != Write {
		t.Errorf("Max(Read, Write) = %q, want %q", got, Write)
	}
	if got := Max(Admin, Read); got != Admin {
		t.Errorf("Max(Admin, Read) = %q, want %q", got, Admin)
	}
	if got := Max(None, None); got != None {
		t.Errorf("Max(None, None) = %q, want %q", got, None)
	}
}

func TestLevelValid(t *testing.T) {
	for _, l := range []Level{Read, Write, Admin} {
		if !l.Valid() {
			t.Errorf("Level(%q).Valid() = false, want true", l)
		}
	}
	if None.Valid() {
		t.Error("None.Valid() = true, want false")
	}
	if Level("owner").Valid() {
		t.Error(`Level("owner").Valid() = true, want false`)
	}
}

func TestGrantEffectiveAt(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	g := &Grant{Permission: Read, GrantedAt: past}
	if !g.EffectiveAt(now) {
		t.Error("grant without expiry should always be effective")
	}

	g.ExpiresAt = &future
	if !g.EffectiveAt(now) {
		t.Error("grant expiring in the future should be effective now")
	}
	if g.EffectiveAt(future) {
		t.Error("grant should not be effective at its exact expiry instant")
	}

	g.ExpiresAt = &past
	if g.EffectiveAt(now) {
		t.Error("expired grant should not be effective")
	}
}

func TestGrantClone(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	g := &Grant{ID: "g1", Permission: Write, ExpiresAt: &exp}
	cp := g.Clone()

	cp.Permission = Read
	*cp.ExpiresAt = exp.Add(time.Hour)

	if g.Permission != Write {
		t.Errorf("mutating the clone changed the original permission: %q", g.Permission)
	}
	if !g.ExpiresAt.Equal(exp) {
		t.Error("mutating the clone changed the original expiry")
	}
}
