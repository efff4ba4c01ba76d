package main

import (
	"log/slog"
	"net/netip"

	"github.com/wifiprov/wifiprov-go/pkg/config"
	"github.com/wifiprov/wifiprov-go/pkg/netif"
)

// newSimulator creates the simulated radio with the configured networks.
// Addresses were validated with the configuration.
func newSimulator(cfg config.SimulatorConfig, logger *slog.Logger) *netif.Simulator {
	sim := netif.NewSimulator(netif.SimulatorConfig{
		AssociationDelay: cfg.AssociationDelay,
		Logger:           logger,
	})
	for _, n := range cfg.Networks {
		network := netif.Network{Secret: n.Secret, Unreachable: n.Unreachable}
		if n.Address != "" {
			network.Addr, _ = netip.ParseAddr(n.Address)
		}
		sim.AddNetwork(n.Name, network)
		logger.Debug("simulated network added", "name", n.Name, "unreachable", n.Unreachable)
	}
	return sim
}
