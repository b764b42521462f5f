// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package nic

import (
	"regexp"
	"strings"

	"hostreport/internal/extract"
)

// nicRecord holds the per-interface attributes parsed from ip -d link show.
type nicRecord struct {
	name  string
	state string
	mtu   string
	mac   string
	bond  string
	vlan  string
}

var (
	ifaceHeaderRegex = regexp.MustCompile(`^\d+:\s+([^:@]+)(@\S+)?:\s+<([^>]*)>\s+mtu\s+(\d+)`)
	masterRegex      = regexp.MustCompile(`\bmaster\s+(\S+)`)
	stateRegex       = regexp.MustCompile(`\bstate\s+(\S+)`)
	vlanRegex        = regexp.MustCompile(`^vlan protocol \S+ id (\d+)`)
)

// parseIpLink parses ip -d link show output into interface records.
// Loopback and bond master devices are excluded, the report covers the
// member and standalone interfaces.
func parseIpLink(output string) []nicRecord {
	var nics []nicRecord
	var current *nicRecord
	flush := func() {
		if current != nil && current.name != "lo" {
			nics = append(nics, *current)
		}
		current = nil
	}
	for _, line := range strings.Split(output, "\n") {
		if match := ifaceHeaderRegex.FindStringSubmatch(line); match != nil {
			flush()
			current = &nicRecord{name: match[1], mtu: match[4], state: linkState(line, match[3])}
			if masterMatch := masterRegex.FindStringSubmatch(line); masterMatch != nil {
				current.bond = masterMatch[1]
			}
			continue
		}
		if current == nil {
			continue
		}
		detail := strings.TrimSpace(line)
		if strings.HasPrefix(detail, "link/ether") {
			fields := strings.Fields(detail)
			if len(fields) > 1 {
				current.mac = fields[1]
			}
		} else if strings.HasPrefix(detail, "bond ") || detail == "bond" {
			// this is a bond master device, not a member interface
			current = nil
		} else if vlanMatch := vlanRegex.FindStringSubmatch(detail); vlanMatch != nil {
			current.vlan = vlanMatch[1]
		}
	}
	flush()
	return nics
}

// linkState derives the UP/DOWN state from the "state" keyword, falling
// back to the angle-bracket flags for devices without an operstate.
func linkState(line string, flags string) string {
	if match := stateRegex.FindStringSubmatch(line); match != nil && match[1] != "UNKNOWN" {
		return match[1]
	}
	for _, f := range strings.Split(flags, ",") {
		if f == "UP" {
			return "UP"
		}
	}
	return "DOWN"
}

// linkSettings holds the negotiated link attributes from ethtool.
type linkSettings struct {
	speed  string
	duplex string
}

// parseEthtoolLink parses plain ethtool output. A down link reports
// "Unknown!" values, mapped to the N/A sentinel.
func parseEthtoolLink(output string) linkSettings {
	speed := extract.ValAfterColon(output, "Speed", naSentinel)
	duplex := extract.ValAfterColon(output, "Duplex", naSentinel)
	if strings.HasPrefix(speed, "Unknown") || speed == "" {
		speed = naSentinel
	}
	if strings.HasPrefix(duplex, "Unknown") || duplex == "" {
		duplex = naSentinel
	}
	return linkSettings{speed: speed, duplex: duplex}
}

// driverInfo holds the driver attributes from ethtool -i.
type driverInfo struct {
	name string
	bus  string
}

func parseEthtoolDriver(output string) driverInfo {
	return driverInfo{
		name: orNA(extract.ValFromRegexSubmatch(output, `^driver:\s*(\S+)`)),
		bus:  orNA(extract.ValFromRegexSubmatch(output, `^bus-info:\s*(\S+)`)),
	}
}

// lldpPeer holds the switch identity discovered via LLDP.
type lldpPeer struct {
	chassis string
	port    string
}

// parseLldp parses lldpctl -f keyvalue output, e.g.
// lldp.eth0.chassis.name=switch01. Only the chassis name and port
// description are kept.
func parseLldp(output string) map[string]lldpPeer {
	peers := make(map[string]lldpPeer)
	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}
		parts := strings.Split(key, ".")
		if len(parts) < 4 || parts[0] != "lldp" {
			continue
		}
		iface := parts[1]
		peer := peers[iface]
		attr := strings.Join(parts[2:], ".")
		switch attr {
		case "chassis.name":
			peer.chassis = value
		case "port.descr":
			peer.port = value
		case "port.ifname":
			if peer.port == "" {
				peer.port = value
			}
		}
		peers[iface] = peer
	}
	return peers
}

// bondState holds the bonding attributes from /proc/net/bonding/<bond>.
type bondState struct {
	mode          string
	lacpRate      string
	permanentMacs map[string]string // slave interface to permanent HW addr
}

// parseBonding parses a kernel bonding status file. The LACP rate is only
// present for 802.3ad bonds.
func parseBonding(output string) bondState {
	state := bondState{
		mode:          extract.ValAfterColon(output, "Bonding Mode", ""),
		lacpRate:      extract.ValAfterColon(output, "LACP rate", ""),
		permanentMacs: make(map[string]string),
	}
	var slave string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if name, found := strings.CutPrefix(trimmed, "Slave Interface: "); found {
			slave = name
		} else if mac, found := strings.CutPrefix(trimmed, "Permanent HW addr: "); found && slave != "" {
			state.permanentMacs[slave] = mac
		}
	}
	return state
}
