// Package remote implements the networked client/server shell (spec
// §4.8, §4.9, §6): a request is a command-line string followed by a
// single NUL byte; a response is arbitrary output bytes followed by a
// single EOFByte.
package remote

import (
	"bufio"
	"fmt"
)

// EOFByte marks the end of a response (spec §6's EOF_BYTE).
const EOFByte byte = 0x04

// ExitSentinel is the literal response body the server sends for an
// "exit" or "stop-server" request (spec §4.8 steps 2-3).
const ExitSentinel = "exit"

// readFrame reads bytes from r until it sees delim, returning
// everything before it. 8-bit clean: the shell imposes no character
// set on the payload (spec §6).
func readFrame(r *bufio.Reader, delim byte) (string, error) {
	raw, err := r.ReadBytes(delim)
	if err != nil {
		return "", err
	}
	return string(raw[:len(raw)-1]), nil
}

// ReadRequest reads one NUL-terminated request frame.
func ReadRequest(r *bufio.Reader) (string, error) {
	return readFrame(r, 0x00)
}

// WriteRequest sends cmd as a NUL-terminated request frame.
func WriteRequest(w interface{ Write([]byte) (int, error) }, cmd string) error {
	_, err := w.Write(append([]byte(cmd), 0x00))
	return err
}

// WriteEOF writes the single end-of-response marker byte.
func WriteEOF(w interface{ Write([]byte) (int, error) }) error {
	_, err := w.Write([]byte{EOFByte})
	return err
}

// WriteExitSentinel sends the literal "exit" response body followed
// by EOFByte (spec §4.8 steps 2-3, §6).
func WriteExitSentinel(w interface{ Write([]byte) (int, error) }) error {
	if _, err := w.Write([]byte(ExitSentinel)); err != nil {
		return err
	}
	return WriteEOF(w)
}

// SplitEOF reports whether chunk ends with EOFByte, and returns the
// printable prefix with the marker removed (spec §6, used by the
// client's recv loop).
func SplitEOF(chunk []byte) (data []byte, isLast bool) {
	if len(chunk) == 0 {
		return chunk, false
	}
	if chunk[len(chunk)-1] == EOFByte {
		return chunk[:len(chunk)-1], true
	}
	return chunk, false
}

// errString gives remote protocol errors a stable identity (spec §7).
type errString string

func (e errString) Error() string { return string(e) }

// ErrCommunication is ERR_RDSH_COMMUNICATION: a send/recv/accept
// failure that terminates the current session.
const ErrCommunication errString = "communication error"

// ErrClient is ERR_RDSH_CLIENT: a connect failure, fatal for the
// client run.
const ErrClient errString = "client connection error"

func wrapf(base errString, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), base)
}
