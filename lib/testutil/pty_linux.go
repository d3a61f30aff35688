// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package testutil

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"
)

// OpenPTY allocates a PTY pair and returns the master and the opened
// slave. Both are closed when the test completes. The test is skipped
// if the host has no /dev/ptmx.
//
//	master, slave := testutil.OpenPTY(t)
//	b := &bridge.Bridge{Input: slave, Output: slave}
func OpenPTY(t *testing.T) (master, slave *os.File) {
	t.Helper()

	master, slavePath, err := openPTY()
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		t.Skipf("pseudo-terminals unavailable: %v", err)
	}
	if err != nil {
		t.Fatalf("allocating PTY: %v", err)
	}
	t.Cleanup(func() { master.Close() })

	slave, err = os.OpenFile(slavePath, os.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		t.Fatalf("opening PTY slave %s: %v", slavePath, err)
	}
	t.Cleanup(func() { slave.Close() })

	return master, slave
}

// openPTY allocates a PTY master/slave pair using the Linux devpts
// interface. Returns the master as an *os.File and the filesystem path
// to the slave.
func openPTY() (master *os.File, slavePath string, err error) {
	master, err = os.OpenFile("/dev/ptmx", os.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		return nil, "", fmt.Errorf("open /dev/ptmx: %w", err)
	}

	fd := int(master.Fd())

	ptyNumber, err := unix.IoctlGetInt(fd, unix.TIOCGPTN)
	if err != nil {
		master.Close()
		return nil, "", fmt.Errorf("get PTY number (TIOCGPTN): %w", err)
	}

	if err := unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0); err != nil {
		master.Close()
		return nil, "", fmt.Errorf("unlock PTY slave (TIOCSPTLCK): %w", err)
	}

	slavePath = fmt.Sprintf("/dev/pts/%d", ptyNumber)
	return master, slavePath, nil
}
