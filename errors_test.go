package botdriver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tebeka/selenium"
)

func TestIsNoSuchElement(t *testing.T) {
	tests := []struct {
		desc string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"W3C", &selenium.Error{Err: "no such element"}, true},
		{"legacy code", &selenium.Error{Err: "unknown error", LegacyCode: 7}, true},
		{"legacy message", errors.New("no such element: Unable to locate element"), true},
		{"wrapped W3C", fmt.Errorf("finding: %w", &selenium.Error{Err: "no such element"}), true},
		{"wrapped legacy message", fmt.Errorf("finding: %w", errors.New("no such element")), true},
		{"other W3C error", &selenium.Error{Err: "stale element reference"}, false},
		{"timeout", errors.New("timeout"), false},
		{"disposed", ErrDisposed, false},
	}
	for _, test := range tests {
		if got := IsNoSuchElement(test.err); got != test.want {
			t.Errorf("%s: IsNoSuchElement(%v) = %t, want %t", test.desc, test.err, got, test.want)
		}
	}
}
