// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Source is the input channel. ReadByte must not block: it returns
// [ErrNoData] (or io.EOF once the stream has ended) when nothing is
// pending.
type Source interface {
	io.ByteReader
}

// Sink is the output channel. A byte passed to WriteByte must be
// visible to the host by the time Deliver returns; sinks that buffer
// implement Flush, which Deliver calls after every byte.
type Sink interface {
	io.ByteWriter
}

type flusher interface {
	Flush() error
}

// fileSource reads single bytes from a descriptor that has been put in
// non-blocking mode. It calls read(2) directly: the os.File wrapper was
// created while the descriptor was blocking and would not treat EAGAIN
// as "no data".
type fileSource struct {
	// file keeps the *os.File reachable so its finalizer does not
	// close the descriptor while the bridge still reads from it.
	file   *os.File
	fd     int
	buffer [1]byte
}

func newFileSource(file *os.File, fd int) *fileSource {
	return &fileSource{file: file, fd: fd}
}

func (s *fileSource) ReadByte() (byte, error) {
	count, err := unix.Read(s.fd, s.buffer[:])
	switch {
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
		return 0, ErrNoData
	case err != nil:
		return 0, err
	case count == 0:
		return 0, io.EOF
	}
	return s.buffer[0], nil
}

// fileSink writes single bytes straight to a descriptor. There is no
// user-space buffering, so a successful write is already flushed.
//
// The output descriptor often shares its open file description with a
// terminal input that Start made non-blocking, so write(2) can return
// EAGAIN when the terminal's output queue is full. The sink waits for
// POLLOUT up to timeout before giving up.
type fileSink struct {
	file    *os.File
	fd      int
	timeout time.Duration
	buffer  [1]byte
}

func newFileSink(file *os.File, timeout time.Duration) *fileSink {
	return &fileSink{file: file, fd: int(file.Fd()), timeout: timeout}
}

func (s *fileSink) WriteByte(c byte) error {
	s.buffer[0] = c
	for {
		count, err := unix.Write(s.fd, s.buffer[:])
		switch {
		case count == 1:
			return nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			if waitErr := s.waitWritable(); waitErr != nil {
				return waitErr
			}
		case err != nil:
			return err
		default:
			return io.ErrShortWrite
		}
	}
}

// waitWritable blocks until the descriptor accepts output or the
// timeout expires.
func (s *fileSink) waitWritable() error {
	descriptors := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLOUT}}
	for {
		ready, err := unix.Poll(descriptors, int(s.timeout.Milliseconds()))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("waiting for output: %w", err)
		}
		if ready == 0 {
			return fmt.Errorf("output not writable after %s", s.timeout)
		}
		return nil
	}
}
