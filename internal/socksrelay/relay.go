// Package socksrelay runs a SOCKS5 server inside the process, so that a
// browser can be given a proxy whose lifetime matches its session.
package socksrelay

import (
	"bytes"
	"fmt"
	stdlog "log"
	"net"
	"sync"

	socks5 "github.com/armon/go-socks5"
	"github.com/golang/glog"
)

// Relay is a running SOCKS5 server.
type Relay struct {
	ln   net.Listener
	done chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Start listens on addr and serves SOCKS5 connections until Close is called.
// Use port 0 to listen on a free port and Addr to find out which.
func Start(addr string) (*Relay, error) {
	srv, err := socks5.New(&socks5.Config{
		Logger: stdlog.New(glogWriter{}, "socksrelay: ", 0),
	})
	if err != nil {
		return nil, fmt.Errorf("creating SOCKS5 server: %v", err)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %v", addr, err)
	}
	r := &Relay{
		ln:   ln,
		done: make(chan struct{}),
	}
	go func() {
		defer close(r.done)
		// Serve returns once the listener is closed.
		if err := srv.Serve(ln); err != nil {
			glog.V(1).Infof("socksrelay: %s stopped: %v", ln.Addr(), err)
		}
	}()
	glog.V(1).Infof("socksrelay: serving on %s", ln.Addr())
	return r, nil
}

// Addr returns the host:port the relay listens on.
func (r *Relay) Addr() string {
	return r.ln.Addr().String()
}

// Close stops accepting connections and waits for the accept loop to end.
// Connections already relayed are not interrupted.
func (r *Relay) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.ln.Close()
		<-r.done
	})
	return r.closeErr
}

// glogWriter forwards the SOCKS server's log lines to glog.
type glogWriter struct{}

func (glogWriter) Write(p []byte) (int, error) {
	glog.V(2).Info(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}
