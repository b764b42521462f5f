package script

// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

// script_defs.go defines the external tool invocations that are used to
// collect information from hosts.

import "fmt"

const (
	// ESXi memory report
	VsishMemoryScriptName   = "vsish memory"
	VimCmdGetAllVmsName     = "vim-cmd getallvms"
	EsxcliHardwareMemName   = "esxcli hardware memory"
	EsxcliSystemVersionName = "esxcli system version"

	// KVM memory report
	VirshListScriptName = "virsh list"
	FreeScriptName      = "free"
	KsmPagesSharingName = "ksm pages sharing"

	// NIC inventory
	IpLinkScriptName  = "ip link"
	LldpctlScriptName = "lldpctl"
	EthtoolCheckName  = "ethtool check"

	// OpenStack summary
	OpenStackProjectsName = "openstack projects"
	OpenStackServersName  = "openstack servers"
	OpenStackFlavorsName  = "openstack flavors"
)

// scriptDefinitions are the fixed invocations, i.e., those that do not depend
// on a discovered entity name.
var scriptDefinitions = map[string]ScriptDefinition{
	VsishMemoryScriptName: {
		Name:      VsishMemoryScriptName,
		Command:   "vsish",
		Args:      []string{"-e", "get", "/memory/comprehensive"},
		Superuser: true,
	},
	VimCmdGetAllVmsName: {
		Name:      VimCmdGetAllVmsName,
		Command:   "vim-cmd",
		Args:      []string{"vmsvc/getallvms"},
		Superuser: true,
	},
	EsxcliHardwareMemName: {
		Name:      EsxcliHardwareMemName,
		Command:   "esxcli",
		Args:      []string{"hardware", "memory", "get"},
		Superuser: true,
	},
	EsxcliSystemVersionName: {
		Name:    EsxcliSystemVersionName,
		Command: "esxcli",
		Args:    []string{"system", "version", "get"},
	},
	VirshListScriptName: {
		Name:      VirshListScriptName,
		Command:   "virsh",
		Args:      []string{"list"},
		Superuser: true,
	},
	FreeScriptName: {
		Name:    FreeScriptName,
		Command: "free",
		Args:    []string{"-m"},
	},
	KsmPagesSharingName: {
		Name:    KsmPagesSharingName,
		Command: "cat",
		Args:    []string{"/sys/kernel/mm/ksm/pages_sharing"},
	},
	IpLinkScriptName: {
		Name:    IpLinkScriptName,
		Command: "ip",
		Args:    []string{"-d", "link", "show"},
	},
	LldpctlScriptName: {
		Name:      LldpctlScriptName,
		Command:   "lldpctl",
		Args:      []string{"-f", "keyvalue"},
		Superuser: true,
	},
	// used only for the prerequisite check, the per-interface invocations
	// are built by EthtoolScript and EthtoolDriverScript
	EthtoolCheckName: {
		Name:      EthtoolCheckName,
		Command:   "ethtool",
		Superuser: true,
	},
	OpenStackProjectsName: {
		Name:    OpenStackProjectsName,
		Command: "openstack",
		Args:    []string{"project", "list", "-f", "csv"},
		Timeout: 300,
	},
	OpenStackServersName: {
		Name:    OpenStackServersName,
		Command: "openstack",
		Args:    []string{"server", "list", "--all-projects", "-f", "csv", "-c", "ID", "-c", "Name", "-c", "Status", "-c", "Flavor", "-c", "Project ID"},
		Timeout: 300,
	},
	OpenStackFlavorsName: {
		Name:    OpenStackFlavorsName,
		Command: "openstack",
		Args:    []string{"flavor", "list", "--all", "-f", "csv"},
		Timeout: 300,
	},
}

// GetScriptByName returns the script definition with the given name. It will
// panic if the script is not found.
func GetScriptByName(name string) ScriptDefinition {
	if script, ok := scriptDefinitions[name]; ok {
		return script
	}
	panic(fmt.Sprintf("script not found: %s", name))
}

// VmSummaryScript returns the invocation that dumps the configuration and
// quick stats of one ESXi VM.
func VmSummaryScript(vmid string) ScriptDefinition {
	return ScriptDefinition{
		Name:      fmt.Sprintf("vim-cmd get.summary %s", vmid),
		Command:   "vim-cmd",
		Args:      []string{"vmsvc/get.summary", vmid},
		Superuser: true,
	}
}

// DomMemStatScript returns the invocation that reports the memory statistics
// of one KVM domain.
func DomMemStatScript(domain string) ScriptDefinition {
	return ScriptDefinition{
		Name:      fmt.Sprintf("virsh dommemstat %s", domain),
		Command:   "virsh",
		Args:      []string{"dommemstat", domain},
		Superuser: true,
	}
}

// DomInfoScript returns the invocation that reports the configuration of one
// KVM domain.
func DomInfoScript(domain string) ScriptDefinition {
	return ScriptDefinition{
		Name:      fmt.Sprintf("virsh dominfo %s", domain),
		Command:   "virsh",
		Args:      []string{"dominfo", domain},
		Superuser: true,
	}
}

// EthtoolScript returns the invocation that reports link settings of one
// network interface.
func EthtoolScript(iface string) ScriptDefinition {
	return ScriptDefinition{
		Name:      fmt.Sprintf("ethtool %s", iface),
		Command:   "ethtool",
		Args:      []string{iface},
		Superuser: true,
	}
}

// EthtoolDriverScript returns the invocation that reports the driver of one
// network interface.
func EthtoolDriverScript(iface string) ScriptDefinition {
	return ScriptDefinition{
		Name:      fmt.Sprintf("ethtool -i %s", iface),
		Command:   "ethtool",
		Args:      []string{"-i", iface},
		Superuser: true,
	}
}

// BondingScript returns the invocation that dumps the kernel bonding state of
// one bond master.
func BondingScript(bond string) ScriptDefinition {
	return ScriptDefinition{
		Name:    fmt.Sprintf("bonding %s", bond),
		Command: "cat",
		Args:    []string{fmt.Sprintf("/proc/net/bonding/%s", bond)},
	}
}
