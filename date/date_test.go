package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-01-05", New(2024, time.January, 5), true},
		{"2024-1-5", New(2024, time.January, 5), true},
		{"2024-13-01", Date{}, false},
		{"yesterday", Date{}, false},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.ok != (err == nil) {
			t.Errorf("Parse(%q) error = %v, want ok=%v", c.in, err, c.ok)
			continue
		}
		if c.ok && got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDateNormalization(t *testing.T) {
	// Adding days across a month boundary must normalize.
	got := New(2024, time.January, 31).Add(1)
	want := New(2024, time.February, 1)
	if got != want {
		t.Errorf("Add(1) = %v, want %v", got, want)
	}
	// 2024 is a leap year.
	if got := New(2024, time.February, 28).Add(1); got != New(2024, time.February, 29) {
		t.Errorf("leap day = %v", got)
	}
}

func TestSub(t *testing.T) {
	a := MustParse("2024-01-01")
	b := MustParse("2024-01-10")
	if got := b.Sub(a); got != 9 {
		t.Errorf("Sub = %d, want 9", got)
	}
	if got := a.Sub(b); got != -9 {
		t.Errorf("Sub = %d, want -9", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := MustParse("2024-06-30")
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"2024-06-30"` {
		t.Errorf("Marshal = %s", data)
	}
	var out Date
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %v, want %v", out, in)
	}
}

func TestRangeDays(t *testing.T) {
	r := NewRange(MustParse("2024-01-01"), MustParse("2024-01-10"))
	if r.Len() != 10 {
		t.Fatalf("Len = %d, want 10", r.Len())
	}
	var days []Date
	for d := range r.Days() {
		days = append(days, d)
	}
	if len(days) != 10 {
		t.Fatalf("Days yielded %d days, want 10", len(days))
	}
	if days[0] != r.From || days[9] != r.To {
		t.Errorf("Days boundaries = %v..%v, want %v..%v", days[0], days[9], r.From, r.To)
	}
	if !r.Contains(MustParse("2024-01-05")) || r.Contains(MustParse("2024-01-11")) {
		t.Error("Contains boundaries wrong")
	}
}

func TestRangeSingleDay(t *testing.T) {
	d := MustParse("2024-03-15")
	r := NewRange(d, d)
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
	n := 0
	for range r.Days() {
		n++
	}
	if n != 1 {
		t.Errorf("Days yielded %d, want 1", n)
	}
}
