package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestScalar_AcceptsStringAndNumber(t *testing.T) {
	cases := []struct {
		in   string
		want Scalar
	}{
		{`{"x":"42","y":"7","visible":true}`, "42"},
		{`{"x":150,"y":-10,"visible":true}`, "150"},
		{`{"x":12.5,"y":0,"visible":false}`, "12.5"},
	}
	for _, tc := range cases {
		var p CursorPayload
		if err := json.Unmarshal([]byte(tc.in), &p); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tc.in, err)
		}
		if p.X != tc.want {
			t.Errorf("Unmarshal(%s).X = %q, want %q", tc.in, p.X, tc.want)
		}
	}
}

func TestScalar_RejectsObject(t *testing.T) {
	var p CursorPayload
	if err := json.Unmarshal([]byte(`{"x":{},"y":"1"}`), &p); err == nil {
		t.Fatal("expected error for object coordinate")
	}
}

func TestParticipant_NameValidation(t *testing.T) {
	if _, err := NewParticipant(""); !errors.Is(err, ErrNameEmpty) {
		t.Fatalf("empty name: err = %v, want ErrNameEmpty", err)
	}
	if _, err := NewParticipant(strings.Repeat("a", MaxNameLen+1)); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("long name: err = %v, want ErrNameTooLong", err)
	}
	p, err := NewParticipant("brave-otter")
	if err != nil {
		t.Fatalf("NewParticipant: %v", err)
	}
	if p.ID == "" || p.Name != "brave-otter" {
		t.Fatalf("participant = %+v", p)
	}
}

func TestConnectionState_String(t *testing.T) {
	if Connected.String() != "connected" || Reconnecting.String() != "reconnecting" {
		t.Fatal("unexpected state names")
	}
	if ConnectionState(99).String() != "unknown" {
		t.Fatal("out of range state should be unknown")
	}
}
