// Package discovery announces the server on the local network over mDNS.
package discovery

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_scrawl._tcp"

// Announcer advertises one server instance until closed.
type Announcer struct {
	server   *mdns.Server
	instance string
}

// Service describes the record set for an instance. An empty instance name
// uses the host name.
func Service(instance string, port int) (*mdns.MDNSService, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("get hostname: %w", err)
		}
		instance = host
	}
	info := []string{"scrawl", "path=/rooms"}
	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("create mdns service: %w", err)
	}
	return service, nil
}

func Announce(instance string, port int, logger *slog.Logger) (*Announcer, error) {
	service, err := Service(instance, port)
	if err != nil {
		return nil, err
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}
	logger.Info("announcing on lan", "service", ServiceType, "instance", service.Instance, "port", port)
	return &Announcer{server: server, instance: service.Instance}, nil
}

func (a *Announcer) Instance() string { return a.instance }

func (a *Announcer) Close() error {
	return a.server.Shutdown()
}

// Browse reports host:port addresses of servers found on the network until
// mdns.Lookup's timeout passes.
func Browse(found func(addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port))
		}
	}()
	err := mdns.Lookup(ServiceType, entries)
	close(entries)
	<-done
	return err
}
