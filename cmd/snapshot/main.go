// Binary snapshot serves the live DOM and cookies of pages loaded in a real
// browser. Every request gets a fresh session built from a YAML config.
package main

import (
	"flag"
	"net/http"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wanmail/botdriver"
)

var (
	configPath = flag.String("config", "botdriver.yaml", "Path to the session configuration.")
	addr       = flag.String("addr", ":8080", "Address to listen on.")
)

func main() {
	flag.Parse()
	cfg, err := botdriver.LoadConfig(*configPath)
	if err != nil {
		glog.Exit(err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := botdriver.NewMetrics(reg)

	srv := &server{
		open: func() (session, error) {
			return cfg.Open(botdriver.WithMetrics(metrics))
		},
	}
	mux := http.NewServeMux()
	srv.register(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	glog.Infof("Listening on %s", *addr)
	glog.Exit(http.ListenAndServe(*addr, mux))
}
