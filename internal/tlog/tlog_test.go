package tlog

import (
	"bytes"
	"log"
	"testing"
)

// Test that trimNewline() works as expected
func TestTrimNewline(t *testing.T) {
	testTable := []struct {
		in   string
		want string
	}{
		{"...\n", "..."},
		{"\n...\n", "\n..."},
		{"", ""},
		{"\n", ""},
		{"\n\n", "\n"},
		{"   ", "   "},
	}
	for _, v := range testTable {
		have := trimNewline(v.in)
		if v.want != have {
			t.Errorf("want=%q have=%q", v.want, have)
		}
	}
}

func TestToggle(t *testing.T) {
	var buf bytes.Buffer
	l := &toggledLogger{Logger: log.New(&buf, "", 0)}
	l.Printf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
	l.Enabled = true
	l.prefix = "<"
	l.postfix = ">"
	l.Printf("shown %d\n", 2)
	l.Println("again")
	if want := "<shown 2>\n<again>\n"; buf.String() != want {
		t.Errorf("want=%q have=%q", want, buf.String())
	}
}

func TestWpanic(t *testing.T) {
	var buf bytes.Buffer
	l := &toggledLogger{Enabled: true, Wpanic: true, Logger: log.New(&buf, "", 0)}
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("The code did not panic")
		}
	}()
	l.Printf("boom")
}

func TestJSONDump(t *testing.T) {
	have := JSONDump(struct{ A int }{A: 1})
	if want := "{\n\t\"A\": 1\n}"; have != want {
		t.Errorf("want=%q have=%q", want, have)
	}
}
