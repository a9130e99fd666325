package matching

import (
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Lowercase", "Wireless Mouse", "wireless mouse"},
		{"Trademark glyphs", "SuperBrand™ Mouse®", "superbrand mouse"},
		{"Brackets spaced", "Mouse[2024](Black)", "mouse 2024 black"},
		{"Diacritics folded", "Café Générale", "cafe generale"},
		{"Charset strip", "Mouse!!! @Home #1", "mouse home 1"},
		{"Whitespace collapse", "  a   b\t c ", "a b c"},
		{"Keeps dash and plus", "usb-c 3+1 hub", "usb-c 3+1 hub"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeTitle(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"Tokens sorted and joined",
			"Acme Wireless Mouse X200",
			"acme_mouse_wireless_x200",
		},
		{
			"Order independent",
			"Mouse Wireless Acme X200",
			"acme_mouse_wireless_x200",
		},
		{
			"Stopwords dropped",
			"New Original Acme Wireless Mouse X200 Free Shipping Hot Sale",
			"acme_mouse_wireless_x200",
		},
		{
			"Capacity collapsed",
			"Portable SSD 2 TB Drive",
			"2tb_drive_portable_ssd",
		},
		{
			"Capacity already joined",
			"Portable SSD 2tb Drive",
			"2tb_drive_portable_ssd",
		},
		{
			"Duplicate tokens deduplicated",
			"mouse mouse mouse pad",
			"mouse_pad",
		},
		{
			"Alpha token cap",
			"alpha bravo charlie delta echo foxtrot golf",
			"alpha_bravo_charlie_delta_echo",
		},
		{
			"Numeric token cap",
			"x1 y2 z3 w4",
			"x1_y2_z3",
		},
		{
			"Only stopwords",
			"new hot sale deal",
			"",
		},
		{
			"Empty",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Fingerprint(tt.input)
			if result != tt.expected {
				t.Errorf("Fingerprint(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	title := "SuperBrand™ Gaming Laptop 16GB (2024 Edition) - Free Shipping"
	first := Fingerprint(title)
	for i := 0; i < 100; i++ {
		if got := Fingerprint(title); got != first {
			t.Fatalf("Fingerprint not deterministic: %q vs %q", got, first)
		}
	}
}
