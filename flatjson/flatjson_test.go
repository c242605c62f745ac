package flatjson_test

import (
	"strings"
	"testing"

	"github.com/nabbar/networkd/flatjson"
)

func TestNext(t *testing.T) {
	value, rest, ok, err := flatjson.Next(`["em0", "dhcp"]`)
	if err != nil || !ok {
		t.Fatalf("Next() = (%q, %q, %v, %v)", value, rest, ok, err)
	}
	if value != "em0" {
		t.Errorf("value = %q, want em0", value)
	}

	value, rest, ok, err = flatjson.Next(rest)
	if err != nil || !ok {
		t.Fatalf("Next() = (%q, %q, %v, %v)", value, rest, ok, err)
	}
	if value != "dhcp" {
		t.Errorf("value = %q, want dhcp", value)
	}

	_, _, ok, err = flatjson.Next(rest)
	if err != nil || ok {
		t.Fatalf("Next() on exhausted input = (ok=%v, err=%v), want (false, nil)", ok, err)
	}
}

func TestNextEscapes(t *testing.T) {
	cases := map[string]string{
		`"a\nb"`: "a\nb",
		`"a\"b"`: `a"b`,
		`"a\\b"`: `a\b`,
		`"a\/b"`: "a/b",
		`"a\bb"`: "a\bb",
		`"a\rb"`: "a\rb",
	}
	for in, want := range cases {
		got, _, ok, err := flatjson.Next(in)
		if err != nil || !ok {
			t.Fatalf("Next(%q) errored: ok=%v err=%v", in, ok, err)
		}
		if got != want {
			t.Errorf("Next(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNextInvalidEscape(t *testing.T) {
	if _, _, _, err := flatjson.Next(`"a\qb"`); err != flatjson.ErrInvalidEscape {
		t.Errorf("Next() err = %v, want ErrInvalidEscape", err)
	}
}

func TestNextSkipsSurroundingArraySyntax(t *testing.T) {
	value, _, ok, err := flatjson.Next(`  [ "em0"`)
	if err != nil || !ok || value != "em0" {
		t.Fatalf("Next() = (%q, ok=%v, err=%v)", value, ok, err)
	}
}

func TestElements(t *testing.T) {
	got, err := flatjson.Elements(`["configure", "em0", "dhcp"]`)
	if err != nil {
		t.Fatalf("Elements() error = %v", err)
	}
	want := []string{"configure", "em0", "dhcp"}
	if len(got) != len(want) {
		t.Fatalf("Elements() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Elements()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEscape(t *testing.T) {
	if got := flatjson.Escape("a\"b\nc"); got != `a\"b\nc` {
		t.Errorf("Escape() = %q, want %q", got, `a\"b\nc`)
	}
}

func TestSendSingleton(t *testing.T) {
	var sb strings.Builder
	if err := flatjson.SendSingleton(&sb, `has "quote"`); err != nil {
		t.Fatalf("SendSingleton() error = %v", err)
	}
	want := `["has \"quote\""]` + "\n"
	if sb.String() != want {
		t.Errorf("SendSingleton() = %q, want %q", sb.String(), want)
	}
}

func TestSendArray(t *testing.T) {
	var sb strings.Builder
	if err := flatjson.SendArray(&sb, "ok", "em0"); err != nil {
		t.Fatalf("SendArray() error = %v", err)
	}
	if want := "[\"ok\", \"em0\"]\n"; sb.String() != want {
		t.Errorf("SendArray() = %q, want %q", sb.String(), want)
	}
}

func TestSendArrayEscapesEveryElement(t *testing.T) {
	var sb strings.Builder
	if err := flatjson.SendArray(&sb, "line\nbreak", "quote\"mark"); err != nil {
		t.Fatalf("SendArray() error = %v", err)
	}
	if want := "[\"line\\nbreak\", \"quote\\\"mark\"]\n"; sb.String() != want {
		t.Errorf("SendArray() = %q, want %q", sb.String(), want)
	}
}
