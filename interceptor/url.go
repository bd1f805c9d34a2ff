package interceptor

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// target is the normalized form of a request URL that matchers are evaluated against.
// Query and fragment are not part of it.
type target struct {
	full string // scheme://host[:port]/path, or just the path for a relative URL
	path string
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

func normalizeTarget(u *url.URL) target {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.Host == "" {
		return target{full: path, path: path}
	}

	scheme := strings.ToLower(u.Scheme)
	host := normalizeHost(u.Hostname())
	if strings.Contains(host, ":") { // IPv6 literal
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && port != defaultPorts[scheme] {
		host = host + ":" + port
	}
	return target{full: scheme + "://" + host + path, path: path}
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	if net.ParseIP(host) != nil {
		return host
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

func normalizeRawURL(raw string) (target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return target{}, err
	}
	return normalizeTarget(u), nil
}
