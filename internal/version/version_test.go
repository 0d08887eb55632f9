package version_test

import (
	"testing"

	"github.com/edumarques81/stellar-hero/internal/version"
)

func TestGetInfo(t *testing.T) {
	info := version.GetInfo()

	if info.Name != "Stellar Hero" {
		t.Errorf("expected name 'Stellar Hero', got %q", info.Name)
	}
	if info.Version == "" {
		t.Error("version should not be empty")
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name     string
		info     version.Info
		expected string
	}{
		{"plain", version.Info{Name: "Stellar Hero", Version: "1.2.0"}, "Stellar Hero v1.2.0"},
		{"short commit", version.Info{Name: "Stellar Hero", Version: "1.2.0", GitCommit: "abc"}, "Stellar Hero v1.2.0 (abc)"},
		{
			"long commit and build time",
			version.Info{Name: "Stellar Hero", Version: "1.2.0", GitCommit: "0123456789abcdef", BuildTime: "2025-01-02"},
			"Stellar Hero v1.2.0 (0123456) built 2025-01-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
