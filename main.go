// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"hostreport/cmd"
)

func main() {
	cmd.Execute()
}
