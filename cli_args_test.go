package main

import (
	"testing"

	"github.com/remotefs/symauth/internal/aesni"
	"github.com/remotefs/symauth/internal/exitcodes"
	"github.com/remotefs/symauth/internal/symauth"
)

// TestParseCliOpts checks that options end up in the right fields and that
// invalid combinations are rejected with a usage error.
func TestParseCliOpts(t *testing.T) {
	testcases := []struct {
		// i is the input
		i []string
		// o is the expected output
		o argContainer
		// Do we expect an error?
		e bool
	}{
		{
			i: []string{"symauth"},
			o: argContainer{backend: "auto", _backend: symauth.BackendAuto},
		},
		{
			i: []string{"symauth", "-speed"},
			o: argContainer{speed: true, backend: "auto", _backend: symauth.BackendAuto},
		},
		{
			i: []string{"symauth", "-d", "-selftest", "-backend", "software"},
			o: argContainer{debug: true, selftest: true, backend: "software", _backend: symauth.BackendSoftware},
		},
		{
			i: []string{"symauth", "--info", "--json", "-q"},
			o: argContainer{info: true, json: true, quiet: true, backend: "auto", _backend: symauth.BackendAuto},
		},
		{
			i: []string{"symauth", "-backend=aesni", "-info"},
			o: argContainer{info: true, backend: "aesni", _backend: symauth.BackendHardware},
		},
		// Two operations
		{
			i: []string{"symauth", "-speed", "-info"},
			e: true,
		},
		// -json without -info
		{
			i: []string{"symauth", "-json", "-selftest"},
			e: true,
		},
		{
			i: []string{"symauth", "-backend", "openssl"},
			e: true,
		},
	}
	for _, tc := range testcases {
		o, err := parseCliOpts(tc.i)
		e := (err != nil)
		if e != tc.e {
			t.Errorf("in=%q: want err=%v, got err=%v", tc.i, tc.e, err)
			continue
		}
		if e {
			if exitcodes.Code(err) != exitcodes.Usage {
				t.Errorf("in=%q: want exit code %d, got %d", tc.i, exitcodes.Usage, exitcodes.Code(err))
			}
			continue
		}
		if o != tc.o {
			t.Errorf("\n  in=%q\nwant=%+v\n got=%+v", tc.i, tc.o, o)
		}
	}
}

func TestParseBackend(t *testing.T) {
	testTable := []struct {
		in   string
		want symauth.BackendTypeEnum
		e    bool
	}{
		{"auto", symauth.BackendAuto, false},
		{"", symauth.BackendAuto, false},
		{"software", symauth.BackendSoftware, false},
		{"Go", symauth.BackendSoftware, false},
		{"AESNI", symauth.BackendHardware, false},
		{"aes-ni", symauth.BackendHardware, false},
		{"gcm", 0, true},
	}
	for _, v := range testTable {
		have, err := parseBackend(v.in)
		if (err != nil) != v.e || have != v.want {
			t.Errorf("in=%q: want=%v,%v have=%v,%v", v.in, v.want, v.e, have, err)
		}
	}
}

func TestSelftest(t *testing.T) {
	if err := selftest(symauth.BackendAuto); err != nil {
		t.Fatal(err)
	}
	if err := selftest(symauth.BackendSoftware); err != nil {
		t.Fatal(err)
	}
	err := selftest(symauth.BackendHardware)
	if aesni.HasHardwareSupport() {
		if err != nil {
			t.Fatal(err)
		}
	} else if exitcodes.Code(err) != exitcodes.NoHardware {
		t.Errorf("want exit code %d, got %v", exitcodes.NoHardware, err)
	}
}

func TestSelftestBackends(t *testing.T) {
	b, err := selftestBackends(symauth.BackendAuto)
	if err != nil {
		t.Fatal(err)
	}
	want := 1
	if aesni.HasHardwareSupport() {
		want = 2
	}
	if len(b) != want {
		t.Errorf("want %d backends, have %v", want, b)
	}
	if b[0] != symauth.BackendSoftware {
		t.Errorf("software backend missing: %v", b)
	}
}

func TestGetInfo(t *testing.T) {
	r := getInfo(symauth.BackendSoftware)
	if r.Backend != "software" {
		t.Errorf("want software backend, have %q", r.Backend)
	}
	r = getInfo(symauth.BackendAuto)
	if r.HardwareBackend != aesni.HasHardwareSupport() {
		t.Errorf("HardwareBackend=%v", r.HardwareBackend)
	}
	if r.HardwareBackend && r.Backend != symauth.BackendHardware.String() {
		t.Errorf("auto mode: have %q", r.Backend)
	}
	r = getInfo(symauth.BackendHardware)
	if !r.HardwareBackend && r.Backend != "unavailable" {
		t.Errorf("hardware without AES-NI: have %q", r.Backend)
	}
}
