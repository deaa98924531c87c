package main

//
// connect subcommand
//

import (
	"crypto/sha256"
	"crypto/x509"
	"fmt"
	"io"
	"strconv"

	"github.com/apex/log"
	"github.com/onedata/etls/internal/erroror"
	"github.com/onedata/etls/internal/etls"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// connectCommand is the configuration of the connect subcommand.
type connectCommand struct {
	g    *globalOptions
	recv int
	send string
}

func connectSubcommand(g *globalOptions) *cobra.Command {
	c := &connectCommand{g: g}
	cmd := &cobra.Command{
		Use:   "connect HOST PORT",
		Short: "Connects to a TLS server and prints its certificate chain",
		Args:  cobra.ExactArgs(2),
		RunE:  c.main,
	}
	cmd.Flags().StringVar(&c.send, "send", "", "text to send after the handshake")
	cmd.Flags().IntVar(&c.recv, "recv", -1, "bytes to receive after sending (0 means any)")
	return cmd
}

// parsePort parses a TCP port.
func parsePort(s string) (uint16, error) {
	port, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid port %q", s)
	}
	return uint16(port), nil
}

func (c *connectCommand) main(cmd *cobra.Command, args []string) error {
	host := args[0]
	port, err := parsePort(args[1])
	if err != nil {
		return err
	}
	cfg, err := c.g.loadConfig()
	if err != nil {
		return err
	}
	loop, stop := startLoop(cfg)
	defer stop()

	sock := etls.NewSocket(loop, cfg.EtlsOptions(log.Log)...)
	if _, err := wait(func(h func(erroror.Value[*etls.Socket])) error {
		return sock.Connect(host, port, h)
	}); err != nil {
		return errors.Wrapf(err, "connect %s:%d", host, port)
	}
	defer waitErr(sock.Close)

	out := cmd.OutOrStdout()
	local, err := wait(sock.LocalEndpoint)
	if err != nil {
		return errors.Wrap(err, "sockname")
	}
	remote, err := wait(sock.RemoteEndpoint)
	if err != nil {
		return errors.Wrap(err, "peername")
	}
	fmt.Fprintf(out, "connected %s -> %s\n", local, remote)
	printChain(out, sock.CertificateChain())

	if c.send != "" {
		if err := waitErr(func(h func(error)) error {
			return sock.Send([]byte(c.send), h)
		}); err != nil {
			return errors.Wrap(err, "send")
		}
	}
	if c.recv < 0 {
		return nil
	}
	data, err := receive(sock, c.recv, cfg.Recv.DefaultSize)
	if err != nil {
		return errors.Wrap(err, "recv")
	}
	fmt.Fprintf(out, "received %d bytes: %q\n", len(data), data)
	return nil
}

// receive receives exactly size bytes or, if size is zero, whatever
// is available up to defaultSize bytes.
func receive(sock *etls.Socket, size, defaultSize int) ([]byte, error) {
	return wait(func(h func(erroror.Value[[]byte])) error {
		if size == 0 {
			return sock.RecvAny(make([]byte, defaultSize), h)
		}
		return sock.Recv(make([]byte, size), h)
	})
}

// printChain prints a summary of each certificate in the chain.
func printChain(w io.Writer, chain [][]byte) {
	fmt.Fprintf(w, "certificate chain: %d certificate(s)\n", len(chain))
	for idx, der := range chain {
		fingerprint := sha256.Sum256(der)
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			fmt.Fprintf(w, "  #%d: cannot parse (%d bytes): %s\n", idx, len(der), err.Error())
			continue
		}
		fmt.Fprintf(w, "  #%d: subject=%q issuer=%q not_after=%s sha256=%x\n",
			idx, cert.Subject.String(), cert.Issuer.String(),
			cert.NotAfter.UTC().Format("2006-01-02"), fingerprint)
	}
}
