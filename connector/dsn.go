package connector

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// DSNBuilder assembles URL-style connection strings. Query parameters are
// encoded in key order, so equal settings give equal DSNs.
type DSNBuilder struct {
	u      url.URL
	host   string
	port   int
	params url.Values
}

func NewDSNBuilder(scheme string) *DSNBuilder {
	return &DSNBuilder{
		u:      url.URL{Scheme: scheme},
		params: url.Values{},
	}
}

// Auth sets the user info. An empty username leaves it out.
func (b *DSNBuilder) Auth(username, password string) *DSNBuilder {
	switch {
	case username == "":
		b.u.User = nil
	case password == "":
		b.u.User = url.User(username)
	default:
		b.u.User = url.UserPassword(username, password)
	}
	return b
}

func (b *DSNBuilder) Host(host string, port int) *DSNBuilder {
	b.host = host
	b.port = port
	return b
}

func (b *DSNBuilder) Database(name string) *DSNBuilder {
	b.u.Path = ""
	if name != "" {
		b.u.Path = "/" + name
	}
	return b
}

// Param sets key, ignoring empty values.
func (b *DSNBuilder) Param(key, value string) *DSNBuilder {
	if value != "" {
		b.params.Set(key, value)
	}
	return b
}

func (b *DSNBuilder) Params(params map[string]string) *DSNBuilder {
	for k, v := range params {
		b.Param(k, v)
	}
	return b
}

// DefaultParam sets key only when no value was given for it.
func (b *DSNBuilder) DefaultParam(key, value string) *DSNBuilder {
	if !b.params.Has(key) {
		b.Param(key, value)
	}
	return b
}

func (b *DSNBuilder) Validate() error {
	if b.host == "" {
		return fmt.Errorf("host is required")
	}
	if b.port <= 0 || b.port > 65535 {
		return fmt.Errorf("invalid port: %d", b.port)
	}
	return nil
}

func (b *DSNBuilder) Build() string {
	u := b.u
	u.Host = b.host
	if b.port > 0 {
		u.Host = net.JoinHostPort(b.host, strconv.Itoa(b.port))
	}
	u.RawQuery = b.params.Encode()
	return u.String()
}
