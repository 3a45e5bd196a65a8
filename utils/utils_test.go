package utils_test

import (
	"testing"

	"socialnet/utils"
)

var intFromStringTests = []struct {
	input        string
	defaultValue int
	expected     int
}{
	{"42", 0, 42},
	{"-7", 0, -7},
	{"", 13, 13},
	{"abc", 13, 13},
	{"1.5", 13, 13},
}

func TestIntFromString(t *testing.T) {
	for _, tt := range intFromStringTests {
		t.Run(tt.input, func(t *testing.T) {
			got := utils.IntFromString(tt.input, tt.defaultValue)
			if got != tt.expected {
				t.Errorf("got %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestStringOrDefault(t *testing.T) {
	if got := utils.StringOrDefault("", "fallback"); got != "fallback" {
		t.Errorf("got %q, want %q", got, "fallback")
	}
	if got := utils.StringOrDefault("value", "fallback"); got != "value" {
		t.Errorf("got %q, want %q", got, "value")
	}
}
