package util

import "testing"

func TestBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		expected     bool
	}{
		{name: "unset uses default", value: "", defaultValue: true, expected: true},
		{name: "true literal", value: "true", defaultValue: false, expected: true},
		{name: "numeric on", value: "1", defaultValue: false, expected: true},
		{name: "yes with padding", value: " YES ", defaultValue: false, expected: true},
		{name: "false literal", value: "false", defaultValue: true, expected: false},
		{name: "off", value: "off", defaultValue: true, expected: false},
		{name: "garbage uses default", value: "maybe", defaultValue: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("JEKLETUBE_TEST_BOOL", tt.value)
			}
			if got := BoolEnv("JEKLETUBE_TEST_BOOL", tt.defaultValue); got != tt.expected {
				t.Errorf("BoolEnv(%q, %v) = %v, expected %v", tt.value, tt.defaultValue, got, tt.expected)
			}
		})
	}
}

func TestEnvOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "unset uses default", value: "", expected: "fallback"},
		{name: "blank uses default", value: "   ", expected: "fallback"},
		{name: "set value wins", value: ":8080", expected: ":8080"},
		{name: "set value is trimmed", value: " :8080 ", expected: ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("JEKLETUBE_TEST_STRING", tt.value)
			}
			if got := EnvOrDefault("JEKLETUBE_TEST_STRING", "fallback"); got != tt.expected {
				t.Errorf("EnvOrDefault(%q) = %q, expected %q", tt.value, got, tt.expected)
			}
		})
	}
}
