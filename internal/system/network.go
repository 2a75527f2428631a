package system

import (
	"context"
	"errors"
	"net"
	"strings"
)

// NetInfo reports the address other devices on the network can reach us at.
type NetInfo interface {
	IP(ctx context.Context) (string, error)
}

type NoopNetInfo struct{}

func (NoopNetInfo) IP(ctx context.Context) (string, error) { return "", nil }

// InterfaceNetInfo picks the first IPv4 address of an interface that is up and not a
// loopback.
type InterfaceNetInfo struct{}

func (InterfaceNetInfo) IP(ctx context.Context) (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				return ip4.String(), nil
			}
		}
	}
	return "", errors.New("no non-loopback IPv4 address")
}

// BaseURL builds http://host[:port] for a listen address such as ":80" or
// "0.0.0.0:8080". An empty or unspecified host is replaced by the address from info.
func BaseURL(ctx context.Context, info NetInfo, listenAddr string) (string, error) {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "", err
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		if host, err = info.IP(ctx); err != nil {
			return "", err
		}
		if host == "" {
			return "", errors.New("no address to share")
		}
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port == "80" {
		return "http://" + host, nil
	}
	return "http://" + host + ":" + port, nil
}
