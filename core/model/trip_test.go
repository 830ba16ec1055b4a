package model

import "testing"

func TestParseCount(t *testing.T) {
	cases := map[string]int{
		"7":    7,
		" 33 ": 33,
		"":     0,
		"abc":  0,
		"1.5":  0,
		"-2":   -2,
	}
	for in, want := range cases {
		if got := ParseCount(in); got != want {
			t.Errorf("ParseCount(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestTripRequestGetSet(t *testing.T) {
	var r TripRequest
	for _, f := range Fields {
		if !r.Set(f, string(f)+"-v") {
			t.Fatalf("set %s rejected", f)
		}
		if got := r.Get(f); got != string(f)+"-v" {
			t.Fatalf("get %s = %q", f, got)
		}
	}
	if r.Set("budget", "1") {
		t.Fatalf("unknown field accepted")
	}
	if Field("budget").Valid() {
		t.Fatalf("unknown field reported valid")
	}
}

func TestDefaultTripRequest(t *testing.T) {
	r := DefaultTripRequest()
	if r.DurationDays() != 7 || r.AgeYears() != 33 {
		t.Fatalf("unexpected defaults %+v", r)
	}
	if r.Accommodation != "Airbnb" || r.Transportation != "Train" {
		t.Fatalf("unexpected defaults %+v", r)
	}
}

func TestOptions(t *testing.T) {
	if got := Options(FieldAccommodation); len(got) != 4 || got[0] != "Hotel" {
		t.Fatalf("accommodation options %v", got)
	}
	if Options(FieldDestination) != nil {
		t.Fatalf("free text field should have no options")
	}
}
