package botdriver

import (
	"github.com/golang/glog"
	"github.com/tebeka/selenium"
)

// SetDebug enables wire-level tracing of every WebDriver request and reply.
func SetDebug(debug bool) {
	selenium.SetDebug(debug)
	if debug {
		glog.V(1).Info("botdriver: WebDriver wire tracing enabled")
	}
}

func debugLog(format string, args ...interface{}) {
	glog.V(2).Infof(format, args...)
}
