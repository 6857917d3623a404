package targets

import (
	"errors"
	"testing"
)

func TestFindByName(t *testing.T) {
	tests := []struct {
		name     string
		profile  string
		arch     string
		mainline bool
		expected error
	}{
		{"baseline", "thumbv6m-none-eabi", "armv6-m", false, nil},
		{"mainline m3", "thumbv7m-none-eabi", "armv7-m", true, nil},
		{"mainline m4", "thumbv7em-none-eabi", "armv7e-m", true, nil},
		{"hard float", "thumbv7em-none-eabihf", "armv7e-m", true, nil},
		{"uppercase", "THUMBV6M-NONE-EABI", "armv6-m", false, nil},
		{"unknown", "thumbv8m.main-none-eabi", "", false, ErrUnknownProfile},
		{"empty", "", "", false, ErrUnknownProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := FindByName(tt.profile)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected error %v, got %v", tt.expected, err)
			}
			if err != nil {
				return
			}
			if profile.Architecture != tt.arch {
				t.Errorf("expected architecture %q, got %q", tt.arch, profile.Architecture)
			}
			if profile.Mainline != tt.mainline {
				t.Errorf("expected mainline=%v", tt.mainline)
			}
		})
	}
}

func TestProfileSet(t *testing.T) {
	// The profile set is closed at four variants.
	if len(All()) != 4 {
		t.Fatalf("expected 4 profiles, got %d", len(All()))
	}
	for _, profile := range All() {
		if profile.Rank() < 0 {
			t.Errorf("profile %s has unknown architecture %q", profile.Name, profile.Architecture)
		}
		if profile.MaxInterrupts <= 0 {
			t.Errorf("profile %s has no interrupt limit", profile.Name)
		}
		if len(profile.RunnerArgs()) == 0 {
			t.Errorf("profile %s has no runner", profile.Name)
		}
	}
}

func TestFormatFeatureString(t *testing.T) {
	profile, err := FindByName("thumbv7em-none-eabi")
	if err != nil {
		t.Fatal(err)
	}
	if got := profile.FormatFeatureString(); got != "+hwdiv,+dsp" {
		t.Errorf("expected +hwdiv,+dsp, got %q", got)
	}
}

func TestRankOrdering(t *testing.T) {
	v6, _ := FindByName("thumbv6m-none-eabi")
	v7, _ := FindByName("thumbv7m-none-eabi")
	v7e, _ := FindByName("thumbv7em-none-eabi")
	if !(v6.Rank() < v7.Rank() && v7.Rank() < v7e.Rank()) {
		t.Error("architecture ranks must ascend from baseline to armv7e-m")
	}
}
