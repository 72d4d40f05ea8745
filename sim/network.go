// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package sim

import (
	"fmt"
	"net"
	"strconv"

	"github.com/pion/logging"
	"github.com/pion/transport/v3/vnet"
)

const (
	networkCIDR = "10.0.0.0/24"
	senderIP    = "10.0.0.1"
	peerIP      = "10.0.0.2"

	senderBasePort = 10000
	peerBasePort   = 20000
)

// network is a virtual LAN with one sender host and one peer host. Each
// simulated path uses its own pair of ports.
type network struct {
	wan       *vnet.Router
	senderNet *vnet.Net
	peerNet   *vnet.Net
}

func newNetwork(loggerFactory logging.LoggerFactory) (*network, error) {
	wan, err := vnet.NewRouter(&vnet.RouterConfig{
		CIDR:          networkCIDR,
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return nil, fmt.Errorf("new router: %w", err)
	}

	senderNet, err := vnet.NewNet(&vnet.NetConfig{StaticIPs: []string{senderIP}})
	if err != nil {
		return nil, fmt.Errorf("new sender net: %w", err)
	}
	if err = wan.AddNet(senderNet); err != nil {
		return nil, fmt.Errorf("add sender net: %w", err)
	}

	peerNet, err := vnet.NewNet(&vnet.NetConfig{StaticIPs: []string{peerIP}})
	if err != nil {
		return nil, fmt.Errorf("new peer net: %w", err)
	}
	if err = wan.AddNet(peerNet); err != nil {
		return nil, fmt.Errorf("add peer net: %w", err)
	}

	if err = wan.Start(); err != nil {
		return nil, fmt.Errorf("start router: %w", err)
	}

	return &network{
		wan:       wan,
		senderNet: senderNet,
		peerNet:   peerNet,
	}, nil
}

// listenPath opens the sender and peer sockets of path id.
func (n *network) listenPath(id int) (sender, peer net.PacketConn, err error) {
	peer, err = n.peerNet.ListenPacket("udp4", net.JoinHostPort(peerIP, strconv.Itoa(peerBasePort+id)))
	if err != nil {
		return nil, nil, fmt.Errorf("listen peer: %w", err)
	}
	sender, err = n.senderNet.ListenPacket("udp4", net.JoinHostPort(senderIP, strconv.Itoa(senderBasePort+id)))
	if err != nil {
		_ = peer.Close()

		return nil, nil, fmt.Errorf("listen sender: %w", err)
	}

	return sender, peer, nil
}

func (n *network) close() error {
	return n.wan.Stop()
}
