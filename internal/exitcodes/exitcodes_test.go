package exitcodes

import (
	"errors"
	"fmt"
	"testing"
)

func TestCode(t *testing.T) {
	selftest := NewErr("selftest failed", SelfTest)
	testTable := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("plain"), Other},
		{selftest, SelfTest},
		{fmt.Errorf("wrapped: %w", selftest), SelfTest},
		{NewErr("usage", Usage), Usage},
	}
	for _, v := range testTable {
		if have := Code(v.err); have != v.want {
			t.Errorf("err=%v: want=%d have=%d", v.err, v.want, have)
		}
	}
	if selftest.Error() != "selftest failed" {
		t.Errorf("wrong message %q", selftest.Error())
	}
}
