package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Duration is a time.Duration written as "30s" or "1m30s" in the
// configuration file. Negative durations are rejected
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Std().String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("config: negative duration %q", text)
	}
	*d = Duration(parsed)
	return nil
}

// URL is an absolute http or https endpoint. The empty URL is allowed and
// means the endpoint isn't configured
type URL string

func parseEndpoint(s string) (*url.URL, error) {
	uri, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if uri.Scheme != "http" && uri.Scheme != "https" {
		return nil, fmt.Errorf("config: endpoint %q is not http or https", s)
	}
	if uri.Host == "" {
		return nil, fmt.Errorf("config: endpoint %q has no host", s)
	}
	return uri, nil
}

// URL returns u parsed, u was validated when it was decoded so an error here
// means the defaults are broken
func (u URL) URL() *url.URL {
	uri, err := parseEndpoint(string(u))
	if err != nil {
		panic(err)
	}
	return uri
}

func (u URL) String() string { return string(u) }

func (u URL) MarshalText() ([]byte, error) { return []byte(u), nil }

func (u *URL) UnmarshalText(text []byte) error {
	if len(text) > 0 {
		if _, err := parseEndpoint(string(text)); err != nil {
			return err
		}
	}
	*u = URL(text)
	return nil
}

// ListenAddr is a host:port pair to listen on. The host may be a name such as
// localhost, or empty to listen on every interface
type ListenAddr struct {
	host string
	port uint16
}

func ParseListenAddr(s string) (ListenAddr, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return ListenAddr{}, err
	}
	n, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return ListenAddr{}, fmt.Errorf("config: invalid port in %q", s)
	}
	return ListenAddr{host: host, port: uint16(n)}, nil
}

func MustParseListenAddr(s string) ListenAddr {
	addr, err := ParseListenAddr(s)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a ListenAddr) Port() uint16 { return a.port }

func (a ListenAddr) String() string {
	return net.JoinHostPort(a.host, strconv.FormatUint(uint64(a.port), 10))
}

func (a ListenAddr) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText keeps the current value when text is empty
func (a *ListenAddr) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		return nil
	}
	addr, err := ParseListenAddr(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
