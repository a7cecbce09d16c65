package handlers

import (
	"encoding/json"
	"testing"
)

func TestFieldValueUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{"value":"7"}`, want: "7"},
		{in: `{"value":7}`, want: "7"},
		{in: `{"value":2.5}`, want: "2.5"},
		{in: `{"value":null}`, want: ""},
		{in: `{"value":"X"}`, want: "X"},
	}
	for _, tt := range tests {
		var got updateInningInput
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if string(got.Value) != tt.want {
			t.Fatalf("%s decoded to %q, want %q", tt.in, got.Value, tt.want)
		}
	}

	var bad updateInningInput
	if err := json.Unmarshal([]byte(`{"value":true}`), &bad); err == nil {
		t.Fatalf("boolean value must be rejected")
	}
}
