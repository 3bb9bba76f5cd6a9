package remote

import (
	"bufio"
	"fmt"
	"io"
	"net"

	"github.com/go-dsh/dsh/internal/shell"
)

// Client is the thin remote-shell client (spec §4.9): it forwards
// trimmed lines to the server and streams the response back until the
// EOFByte marker.
type Client struct {
	Addr string
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, wrapf(ErrClient, "dial %s", addr)
	}
	return &Client{Addr: addr, conn: conn, r: bufio.NewReaderSize(conn, 4096)}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Alive reports whether the connection still looks usable. The spec
// calls for a non-blocking poll on the socket for HUP/ERR before each
// send; net.Conn exposes no portable poll primitive, so Go's idiomatic
// substitute is to rely on the next Write/Read returning an error,
// which RunOnce already surfaces to the caller (see DESIGN.md).
func (c *Client) Alive() bool {
	return c.conn != nil
}

// RunOnce sends one command line and copies the response to out until
// the EOFByte marker, excluding the marker from the printed output
// (spec §6). It reports whether the server's sentinel "exit" response
// was received, in which case the caller should disconnect.
func (c *Client) RunOnce(line string, out io.Writer) (shouldExit bool, err error) {
	if err := WriteRequest(c.conn, line); err != nil {
		return false, wrapf(ErrCommunication, "send")
	}

	var body []byte
	buf := make([]byte, 4096)
	for {
		n, err := c.r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			data, isLast := SplitEOF(chunk)
			body = append(body, data...)
			if isLast {
				break
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return false, wrapf(ErrCommunication, "receive")
		}
	}

	if string(body) == ExitSentinel {
		return true, nil
	}
	fmt.Fprint(out, string(body))
	return false, nil
}

// RunREPL drives the client's read-send-receive loop (spec §4.9):
// read one line from in, trim it, warn and loop on empty input,
// otherwise forward it and print the response until the server's
// "exit" sentinel or in reaches EOF.
func RunREPL(c *Client, in io.Reader, out, warn io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := shell.Normalize(scanner.Text())
		if line == "" {
			fmt.Fprintln(warn, "warning: no commands provided")
			continue
		}

		shouldExit, err := c.RunOnce(line, out)
		if err != nil {
			return err
		}
		if shouldExit {
			return nil
		}
	}
	return scanner.Err()
}
