// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package openstack

import (
	"encoding/csv"
	"log/slog"
	"strings"

	"hostreport/internal/extract"
)

// The openstack CLI is invoked with -f csv, so the listings arrive as
// quoted CSV with a header row.

type project struct {
	id   string
	name string
}

type server struct {
	id        string
	name      string
	status    string
	flavor    string
	projectID string
}

type flavor struct {
	vcpus  int64
	ramMiB int64
}

// parseCsvListing reads a CSV listing into records keyed by the header row's
// column names. Malformed listings yield no records, a missing listing is a
// missing metric, not a fatal condition.
func parseCsvListing(output string) []map[string]string {
	reader := csv.NewReader(strings.NewReader(output))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		slog.Warn("failed to parse CSV listing", slog.String("error", err.Error()))
		return nil
	}
	if len(rows) < 2 {
		return nil
	}
	header := rows[0]
	var records []map[string]string
	for _, row := range rows[1:] {
		record := make(map[string]string)
		for i, name := range header {
			if i < len(row) {
				record[name] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

func parseProjects(output string) []project {
	var projects []project
	for _, record := range parseCsvListing(output) {
		if record["ID"] == "" {
			continue
		}
		projects = append(projects, project{id: record["ID"], name: record["Name"]})
	}
	return projects
}

func parseServers(output string) []server {
	var servers []server
	for _, record := range parseCsvListing(output) {
		if record["ID"] == "" {
			continue
		}
		servers = append(servers, server{
			id:        record["ID"],
			name:      record["Name"],
			status:    record["Status"],
			flavor:    record["Flavor"],
			projectID: record["Project ID"],
		})
	}
	return servers
}

// parseFlavors returns the flavors keyed by name, which is how the server
// listing references them.
func parseFlavors(output string) map[string]flavor {
	flavors := make(map[string]flavor)
	for _, record := range parseCsvListing(output) {
		if record["Name"] == "" {
			continue
		}
		flavors[record["Name"]] = flavor{
			vcpus:  extract.ParseInt(record["VCPUs"], 0),
			ramMiB: extract.ParseInt(record["RAM"], 0),
		}
	}
	return flavors
}
