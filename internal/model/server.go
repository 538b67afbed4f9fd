package model

import (
	"context"
	"net"
)

// SecurityLayer abstracts how the listening socket is opened, so TLS
// and plain transports are interchangeable at wiring time.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a network server with a graceful lifecycle.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
