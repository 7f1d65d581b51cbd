package jsonutil

import (
	"errors"
	"testing"
)

func TestObjectSpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose around object", `Sure! {"a":1} thanks`, `{"a":1}`, true},
		{"markdown fence", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`, true},
		{"no braces", "nothing here", "", false},
		{"only open brace", "oops {", "", false},
		{"reversed braces", "} {", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ObjectSpan(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ObjectSpan(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDecodeObject(t *testing.T) {
	t.Run("recovers embedded object", func(t *testing.T) {
		obj, err := DecodeObject(`Sure! {"compliance_status":"compliant"} thanks`)
		if err != nil {
			t.Fatalf("DecodeObject() error = %v", err)
		}
		if obj["compliance_status"] != "compliant" {
			t.Errorf("got %v, want compliant", obj["compliance_status"])
		}
	})

	t.Run("fails on unparseable text", func(t *testing.T) {
		_, err := DecodeObject("not json at all { still not json")
		if !errors.Is(err, ErrNoObject) {
			t.Errorf("expected ErrNoObject, got %v", err)
		}
	})
}
