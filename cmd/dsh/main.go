// Command dsh is the dsh shell binary: a local interactive shell, a
// remote server, or a remote client, selected by flags (spec §6).
package main

import (
	"fmt"
	"os"

	"github.com/go-dsh/dsh/internal/build"
	"github.com/go-dsh/dsh/internal/remote"
	"github.com/go-dsh/dsh/internal/session"
	"github.com/go-dsh/dsh/internal/shell"
	"github.com/spf13/pflag"
)

func main() {
	var (
		connect string
		serve   string
		showVer bool
	)

	pflag.StringVarP(&connect, "connect", "c", "", "run as remote client connecting to HOST:PORT")
	pflag.StringVarP(&serve, "serve", "s", "", "run as remote server binding [IFACE:]PORT (default 0.0.0.0:1234)")
	pflag.BoolVar(&showVer, "version", false, "print version and exit")
	pflag.Parse()

	if showVer {
		fmt.Println(build.Version)
		os.Exit(0)
	}

	switch {
	case connect != "" && serve != "":
		fmt.Fprintln(os.Stderr, "dsh: -c and -s are mutually exclusive")
		os.Exit(1)

	case connect != "":
		os.Exit(runClient(connect))

	case pflag.CommandLine.Changed("serve"):
		os.Exit(runServer(normalizeServeAddr(serve)))

	default:
		os.Exit(runLocal())
	}
}

// normalizeServeAddr fills in the spec's defaults for "-s [IFACE:]PORT":
// bare "1234" means 0.0.0.0:1234; an empty value means the full default.
func normalizeServeAddr(addr string) string {
	if addr == "" {
		return "0.0.0.0:1234"
	}
	if i := lastColon(addr); i < 0 {
		return "0.0.0.0:" + addr
	}
	return addr
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}

func runLocal() int {
	sess := session.New()
	sh, err := shell.New(sess)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dsh: failed to start shell: %v\n", err)
		return 1
	}
	return sh.Run()
}

func runServer(addr string) int {
	srv := remote.NewServer(addr)
	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "dsh: %v\n", err)
		return 1
	}
	return 0
}

func runClient(addr string) int {
	c, err := remote.Dial(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dsh: %v\n", err)
		return 1
	}
	defer c.Close()

	if err := remote.RunREPL(c, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "dsh: %v\n", err)
		return 1
	}
	return 0
}
