// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Mode selects how an interactive input terminal is reconfigured.
// Redirected input (pipes, files) is never reconfigured regardless of
// mode.
type Mode int

const (
	// ModeCbreak disables canonical line buffering and echo and leaves
	// every other terminal setting alone. Ctrl-C still raises SIGINT
	// and output post-processing (newline to CR-LF) stays on.
	ModeCbreak Mode = iota

	// ModeRaw puts the terminal fully into raw mode: no signals from
	// control characters, no output post-processing, 8-bit clean.
	ModeRaw

	// ModeNone applies only the non-blocking flag.
	ModeNone
)

func (m Mode) String() string {
	switch m {
	case ModeCbreak:
		return "cbreak"
	case ModeRaw:
		return "raw"
	case ModeNone:
		return "none"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText encodes the mode by name, so structured logs and config
// dumps show "cbreak" rather than its number.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMode parses the configuration spelling of a Mode. The empty
// string selects ModeCbreak.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "cbreak":
		return ModeCbreak, nil
	case "raw":
		return ModeRaw, nil
	case "none":
		return ModeNone, nil
	default:
		return 0, fmt.Errorf("unknown terminal mode %q (want cbreak, raw, or none)", name)
	}
}

// terminalState records everything Start changed on the input
// descriptor so restore can put it back.
type terminalState struct {
	fd int

	// wasNonblocking is the descriptor's O_NONBLOCK flag before Start.
	wasNonblocking bool

	// cbreak holds the original termios when ModeCbreak was applied.
	cbreak *unix.Termios

	// raw holds the original state when ModeRaw was applied.
	raw *term.State
}

// acquireTerminal switches fd to non-blocking mode and, if fd is a
// terminal, applies mode. A nil state means the descriptor is unusable
// for non-blocking input. A non-nil state with an error means input
// works but the terminal could not be reconfigured.
func acquireTerminal(fd int, mode Mode) (*terminalState, error) {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor flags: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("setting non-blocking mode: %w", err)
	}
	state := &terminalState{fd: fd, wasNonblocking: flags&unix.O_NONBLOCK != 0}

	if mode == ModeNone || !term.IsTerminal(fd) {
		return state, nil
	}

	switch mode {
	case ModeRaw:
		saved, err := term.MakeRaw(fd)
		if err != nil {
			return state, fmt.Errorf("entering raw mode: %w", err)
		}
		state.raw = saved
	default:
		saved, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
		if err != nil {
			return state, fmt.Errorf("reading terminal attributes: %w", err)
		}
		modified := *saved
		modified.Lflag &^= unix.ICANON | unix.ECHO
		if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &modified); err != nil {
			return state, fmt.Errorf("entering cbreak mode: %w", err)
		}
		state.cbreak = saved
	}
	return state, nil
}

// interactive reports whether the terminal line discipline was changed.
func (s *terminalState) interactive() bool {
	return s.cbreak != nil || s.raw != nil
}

// restore undoes acquireTerminal. Every step is attempted even if an
// earlier one fails.
func (s *terminalState) restore() error {
	var errs []error
	if s.raw != nil {
		if err := term.Restore(s.fd, s.raw); err != nil {
			errs = append(errs, fmt.Errorf("restoring terminal: %w", err))
		}
	}
	if s.cbreak != nil {
		if err := unix.IoctlSetTermios(s.fd, ioctlWriteTermios, s.cbreak); err != nil {
			errs = append(errs, fmt.Errorf("restoring terminal: %w", err))
		}
	}
	if !s.wasNonblocking {
		if err := unix.SetNonblock(s.fd, false); err != nil {
			errs = append(errs, fmt.Errorf("clearing non-blocking mode: %w", err))
		}
	}
	return errors.Join(errs...)
}
