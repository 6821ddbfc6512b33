package botdriver

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DefaultRemotePort is the port of a Selenium server reached by bare host
// name.
const DefaultRemotePort = 4444

// ResolveEndpoint turns a remote configuration string into a WebDriver
// endpoint URL. An absolute URI is used verbatim. Anything else is taken to be
// the host of a Selenium server, optionally with a port; DefaultRemotePort is
// used when the port is omitted.
func ResolveEndpoint(config string) string {
	if u, err := url.Parse(config); err == nil && u.IsAbs() && u.Host != "" {
		return config
	}
	host, port, err := net.SplitHostPort(config)
	if err != nil {
		host = strings.TrimSuffix(strings.TrimPrefix(config, "["), "]")
		port = strconv.Itoa(DefaultRemotePort)
	}
	return fmt.Sprintf("http://%s/wd/hub", net.JoinHostPort(host, port))
}
