package main

//
// bench subcommand
//

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/apex/log"
	"github.com/montanaflynn/stats"
	"github.com/onedata/etls/internal/erroror"
	"github.com/onedata/etls/internal/etls"
	"github.com/onedata/etls/internal/eventloop"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// benchCommand is the configuration of the bench subcommand.
type benchCommand struct {
	cert        string
	g           *globalOptions
	key         string
	messageSize int
	port        uint16
	smallTotal  int64
	total       int64
}

func benchSubcommand(g *globalOptions) *cobra.Command {
	c := &benchCommand{g: g}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measures the throughput of a TLS connection over localhost",
		Args:  cobra.NoArgs,
		RunE:  c.main,
	}
	cmd.Flags().StringVar(&c.cert, "cert", "server.pem", "PEM certificate chain")
	cmd.Flags().StringVar(&c.key, "key", "server.key", "PEM private key")
	cmd.Flags().Uint16Var(&c.port, "port", 5555, "port where to listen (0 means any)")
	cmd.Flags().IntVar(&c.messageSize, "message-size", 1<<20, "size of each message in bytes")
	cmd.Flags().Int64Var(&c.total, "total", 1<<30, "total bytes to transfer")
	cmd.Flags().Int64Var(&c.smallTotal, "small-total", 1<<20,
		"number of 1-byte messages for the message rate pass (0 disables it)")
	return cmd
}

func (c *benchCommand) main(cmd *cobra.Command, args []string) error {
	cfg, err := c.g.loadConfig()
	if err != nil {
		return err
	}
	loop, stop := startLoop(cfg)
	defer stop()

	params := &benchParams{
		CertPath:    c.cert,
		KeyPath:     c.key,
		MessageSize: c.messageSize,
		Options:     cfg.EtlsOptions(log.Log),
		Port:        c.port,
		Progress:    true,
		Total:       c.total,
	}
	result, err := runBench(loop, params)
	if err != nil {
		return err
	}
	result.Print(cmd.OutOrStdout())
	if c.smallTotal <= 0 {
		return nil
	}

	// second pass: 1-byte messages measure the per-message overhead
	params.MessageSize, params.Total = 1, c.smallTotal
	result, err = runBench(loop, params)
	if err != nil {
		return errors.Wrap(err, "message rate")
	}
	result.PrintRate(cmd.OutOrStdout())
	return nil
}

// benchParams contains the benchmark parameters.
type benchParams struct {
	CertPath    string
	KeyPath     string
	MessageSize int
	Options     []etls.Option
	Port        uint16
	Progress    bool
	Total       int64
}

// benchResult is the result of a benchmark.
type benchResult struct {
	Bytes    int64
	Elapsed  time.Duration
	Messages int

	// Latencies contains the time to send each message in microseconds.
	Latencies []float64
}

// runBench sends Total bytes in messages of MessageSize bytes from a
// client socket to a socket accepted on localhost and measures how long
// it takes for the reader to receive everything.
func runBench(loop *eventloop.Loop, params *benchParams) (*benchResult, error) {
	if params.MessageSize <= 0 || params.Total < int64(params.MessageSize) {
		return nil, errors.New("bench: message size must be positive and not larger than total")
	}
	messages := int(params.Total / int64(params.MessageSize))

	acceptor, err := etls.Listen(loop, params.Port, params.CertPath, params.KeyPath, params.Options...)
	if err != nil {
		return nil, errors.Wrap(err, "listen")
	}
	defer acceptor.Close()

	accepted := make(chan erroror.Value[*etls.Socket], 1)
	if err := acceptor.Accept(func(result erroror.Value[*etls.Socket]) {
		sock, err := result.Unwrap()
		if err != nil {
			accepted <- result
			return
		}
		if err := sock.Handshake(func(err error) {
			accepted <- erroror.Value[*etls.Socket]{Value: sock, Err: err}
		}); err != nil {
			accepted <- erroror.Fail[*etls.Socket](err)
		}
	}); err != nil {
		return nil, errors.Wrap(err, "accept")
	}

	port := uint16(acceptor.Addr().(*net.TCPAddr).Port)
	writer := etls.NewSocket(loop, params.Options...)
	if _, err := wait(func(h func(erroror.Value[*etls.Socket])) error {
		return writer.Connect("127.0.0.1", port, h)
	}); err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	defer waitErr(writer.Close)
	reader, err := (<-accepted).Unwrap()
	if err != nil {
		return nil, errors.Wrap(err, "handshake")
	}
	defer waitErr(reader.Close)

	var bar *progressbar.ProgressBar
	if params.Progress {
		bar = progressbar.DefaultBytes(int64(messages*params.MessageSize), "transferring")
	} else {
		bar = progressbar.DefaultBytesSilent(int64(messages * params.MessageSize))
	}
	readerDone := make(chan error, 1)
	go func() {
		buf := make([]byte, params.MessageSize)
		for idx := 0; idx < messages; idx++ {
			if _, err := wait(func(h func(erroror.Value[[]byte])) error {
				return reader.Recv(buf, h)
			}); err != nil {
				readerDone <- err
				return
			}
			_ = bar.Add(params.MessageSize)
		}
		readerDone <- nil
	}()

	data := bytes.Repeat([]byte("a"), params.MessageSize)
	result := &benchResult{Messages: messages}
	start := time.Now()
	for idx := 0; idx < messages; idx++ {
		t0 := time.Now()
		if err := waitErr(func(h func(error)) error {
			return writer.Send(data, h)
		}); err != nil {
			return nil, errors.Wrap(err, "send")
		}
		result.Latencies = append(result.Latencies, float64(time.Since(t0).Microseconds()))
	}
	if err := <-readerDone; err != nil {
		return nil, errors.Wrap(err, "recv")
	}
	result.Elapsed = time.Since(start)
	result.Bytes = int64(messages * params.MessageSize)
	_ = bar.Finish()
	return result, nil
}

// Print prints the results.
func (r *benchResult) Print(w io.Writer) {
	seconds := r.Elapsed.Seconds()
	fmt.Fprintf(w, "transferred %d bytes in %d messages in %s\n", r.Bytes, r.Messages, r.Elapsed)
	if seconds > 0 {
		fmt.Fprintf(w, "throughput: %.2f MB/s, %.0f messages/s\n",
			float64(r.Bytes)/(1<<20)/seconds, float64(r.Messages)/seconds)
	}
	median, _ := stats.Median(r.Latencies)
	p90, _ := stats.Percentile(r.Latencies, 90)
	p99, _ := stats.Percentile(r.Latencies, 99)
	fmt.Fprintf(w, "send latency (us): median=%.0f p90=%.0f p99=%.0f\n", median, p90, p99)
}

// PrintRate prints the message rate.
func (r *benchResult) PrintRate(w io.Writer) {
	rate := 0.0
	if seconds := r.Elapsed.Seconds(); seconds > 0 {
		rate = float64(r.Messages) / seconds
	}
	fmt.Fprintf(w, "transferred %d messages of %d bytes in %s: %.0f messages/s\n",
		r.Messages, r.Bytes/int64(max(r.Messages, 1)), r.Elapsed, rate)
}
