package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/golang/glog"
)

// session is the part of *botdriver.Session the handlers use.
type session interface {
	NavigateTo(url string) error
	CurrentPageSource() (string, error)
	ExportCookies(w io.Writer) error
	Close() error
}

type server struct {
	open func() (session, error)
}

func (s *server) register(mux *http.ServeMux) {
	mux.HandleFunc("/source", s.handleSource)
	mux.HandleFunc("/cookies", s.handleCookies)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})
}

// withPage opens a session, loads the url query parameter and hands the
// session to f. The session is closed before withPage returns.
func (s *server) withPage(w http.ResponseWriter, r *http.Request, f func(session) error) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	target := r.URL.Query().Get("url")
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		http.Error(w, fmt.Sprintf("invalid url %q", target), http.StatusBadRequest)
		return
	}

	sess, err := s.open()
	if err != nil {
		glog.Errorf("Opening session: %v", err)
		http.Error(w, fmt.Sprintf("Error starting the browser: %v", err), http.StatusInternalServerError)
		return
	}
	defer sess.Close()

	if err := sess.NavigateTo(target); err != nil {
		http.Error(w, fmt.Sprintf("NavigateTo(%q) returned error: %v", target, err), http.StatusBadGateway)
		return
	}
	if err := f(sess); err != nil {
		glog.Errorf("Serving %s for %q: %v", r.URL.Path, target, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *server) handleSource(w http.ResponseWriter, r *http.Request) {
	s.withPage(w, r, func(sess session) error {
		src, err := sess.CurrentPageSource()
		if err != nil {
			return fmt.Errorf("CurrentPageSource() returned error: %v", err)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, err = io.WriteString(w, src)
		return err
	})
}

func (s *server) handleCookies(w http.ResponseWriter, r *http.Request) {
	s.withPage(w, r, func(sess session) error {
		w.Header().Set("Content-Type", "application/json")
		return sess.ExportCookies(w)
	})
}
