// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

/*
Package progress provides CLI progress status options.
*/
package progress

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinChars = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// MultiSpinnerUpdateFunc updates the status line associated with a label.
type MultiSpinnerUpdateFunc func(label string, status string) error

type spinnerState struct {
	label       string
	status      string
	statusIsNew bool
	spinIndex   int
}

type multiSpinner struct {
	spinners []spinnerState
	mutex    sync.Mutex
	ticker   *time.Ticker
	done     chan bool
	spinning bool
}

// NewMultiSpinner creates a new multiSpinner.
func NewMultiSpinner() *multiSpinner {
	return &multiSpinner{done: make(chan bool)}
}

// AddSpinner adds a status line with the given label.
func (ms *multiSpinner) AddSpinner(label string) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	for _, spinner := range ms.spinners {
		if spinner.label == label {
			return fmt.Errorf("spinner with label %s already exists", label)
		}
	}
	ms.spinners = append(ms.spinners, spinnerState{label: label, status: "?"})
	return nil
}

// Start begins drawing status lines to stderr.
func (ms *multiSpinner) Start() {
	ms.draw(true)
	ms.ticker = time.NewTicker(250 * time.Millisecond)
	ms.spinning = true
	go ms.onTick()
}

// Finish stops the spinner and draws the final status.
func (ms *multiSpinner) Finish() {
	if ms.spinning {
		ms.ticker.Stop()
		ms.done <- true
		ms.draw(false)
		ms.spinning = false
	}
}

// Status updates the status of the spinner with the given label.
func (ms *multiSpinner) Status(label string, status string) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	for i := range ms.spinners {
		if ms.spinners[i].label == label {
			if status != ms.spinners[i].status {
				ms.spinners[i].status = status
				ms.spinners[i].statusIsNew = true
			}
			return nil
		}
	}
	return fmt.Errorf("did not find spinner with label %s", label)
}

func (ms *multiSpinner) onTick() {
	for {
		select {
		case <-ms.done:
			return
		case <-ms.ticker.C:
			ms.draw(true)
		}
	}
}

func (ms *multiSpinner) draw(goUp bool) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	for i := range ms.spinners {
		// when output is piped, only print status changes
		if !isTerminal && !ms.spinners[i].statusIsNew {
			continue
		}
		fmt.Fprintf(os.Stderr, "%-20s  %s  %-40s\n", ms.spinners[i].label, spinChars[ms.spinners[i].spinIndex], ms.spinners[i].status)
		ms.spinners[i].statusIsNew = false
		ms.spinners[i].spinIndex = (ms.spinners[i].spinIndex + 1) % len(spinChars)
	}
	if goUp && isTerminal {
		for range ms.spinners {
			fmt.Fprintf(os.Stderr, "\x1b[1A")
		}
	}
}
