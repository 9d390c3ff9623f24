package utils

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// Listen binds host:port. A port of 0 lets the OS choose; the bound port is returned.
func Listen(host string, port int) (net.Listener, int, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to listen on %s:%d", host, port)
	}
	return listener, listener.Addr().(*net.TCPAddr).Port, nil
}
