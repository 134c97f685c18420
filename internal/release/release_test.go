package release

import "testing"

func TestNew_DefaultsToStandardCoefficients(t *testing.T) {
	r := New()
	fast, slow := r.Snapshot()
	if fast != DefaultFast {
		t.Errorf("fast = %v, want %v", fast, DefaultFast)
	}
	if slow != DefaultSlow {
		t.Errorf("slow = %v, want %v", slow, DefaultSlow)
	}
}

func TestRegistry_SetOverwritesBothAtOnce(t *testing.T) {
	r := New()
	r.Set(0.5, 0.75)

	fast, slow := r.Snapshot()
	if fast != 0.5 || slow != 0.75 {
		t.Errorf("Snapshot() = (%v, %v), want (0.5, 0.75)", fast, slow)
	}
}

func TestFromDescriptorSettings_FallsBackToDefaults(t *testing.T) {
	lookup := func(string) (float64, bool) { return 0, false }

	fast, slow := FromDescriptorSettings(lookup)
	if fast != DefaultFast || slow != DefaultSlow {
		t.Errorf("FromDescriptorSettings() = (%v, %v), want defaults", fast, slow)
	}
}

func TestFromDescriptorSettings_UsesProvidedValues(t *testing.T) {
	values := map[string]float64{"fast_release": 0.99, "slow_release": 0.999}
	lookup := func(key string) (float64, bool) {
		v, ok := values[key]
		return v, ok
	}

	fast, slow := FromDescriptorSettings(lookup)
	if fast != 0.99 {
		t.Errorf("fast = %v, want 0.99", fast)
	}
	if slow != 0.999 {
		t.Errorf("slow = %v, want 0.999", slow)
	}
}

func TestFromDescriptorSettings_PartialOverride(t *testing.T) {
	lookup := func(key string) (float64, bool) {
		if key == "fast_release" {
			return 0.5, true
		}
		return 0, false
	}

	fast, slow := FromDescriptorSettings(lookup)
	if fast != 0.5 {
		t.Errorf("fast = %v, want 0.5", fast)
	}
	if slow != DefaultSlow {
		t.Errorf("slow = %v, want default %v", slow, DefaultSlow)
	}
}
