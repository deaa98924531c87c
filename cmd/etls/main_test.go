package main

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/onedata/etls/internal/erroror"
	"github.com/onedata/etls/internal/etls"
	"github.com/onedata/etls/internal/eventloop"
	"github.com/onedata/etls/internal/model"
	"github.com/onedata/etls/internal/testingx"
)

func newLoop(t *testing.T) *eventloop.Loop {
	loop := eventloop.New(model.DiscardLogger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		loop.Stop(ctx)
	})
	return loop
}

func TestParsePort(t *testing.T) {
	if port, err := parsePort("9443"); err != nil || port != 9443 {
		t.Fatal("unexpected result", port, err)
	}
	for _, input := range []string{"", "-1", "65536", "https"} {
		if _, err := parsePort(input); err == nil {
			t.Fatal("expected an error for", input)
		}
	}
}

func TestPrintChain(t *testing.T) {
	chain := testingx.MustNewCertChain(3)
	buffer := &bytes.Buffer{}
	printChain(buffer, append(chain.DER, []byte("garbage")))
	output := buffer.String()
	if !strings.HasPrefix(output, "certificate chain: 4 certificate(s)\n") {
		t.Fatalf("unexpected output %q", output)
	}
	if !strings.Contains(output, `#1: subject="CN=etls test intermediate #2,O=etls testing"`) {
		t.Fatalf("unexpected output %q", output)
	}
	if !strings.Contains(output, "#3: cannot parse (7 bytes)") {
		t.Fatalf("unexpected output %q", output)
	}
}

func TestConnectCommand(t *testing.T) {
	chain := testingx.MustNewCertChain(2)
	server := testingx.MustNewTLSServer(testingx.TLSHandlerEcho(chain))
	defer server.Close()

	output := &bytes.Buffer{}
	root := newRootCommand()
	root.SetOut(output)
	root.SetArgs([]string{
		"connect", "127.0.0.1", strconv.Itoa(int(server.Port())), "--send", "hi", "--recv", "2",
	})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output.String(), "certificate chain: 2 certificate(s)") {
		t.Fatalf("unexpected output %q", output.String())
	}
	if !strings.Contains(output.String(), `received 2 bytes: "hi"`) {
		t.Fatalf("unexpected output %q", output.String())
	}
}

func TestEchoServer(t *testing.T) {
	loop := newLoop(t)
	chain := testingx.MustNewCertChain(1)
	certPath, keyPath := chain.MustWriteFiles(t.TempDir())
	acceptor, err := etls.Listen(loop, 0, certPath, keyPath)
	if err != nil {
		t.Fatal(err)
	}
	srv := newEchoServer(acceptor, 1024, model.DiscardLogger)
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	defer srv.Stop()

	endpoint, err := wait(acceptor.LocalEndpoint)
	if err != nil {
		t.Fatal(err)
	}
	for idx := 0; idx < 2; idx++ {
		sock := etls.NewSocket(loop)
		if _, err := wait(func(h func(erroror.Value[*etls.Socket])) error {
			return sock.Connect("127.0.0.1", endpoint.Port, h)
		}); err != nil {
			t.Fatal(err)
		}
		message := []byte("hello, world")
		if err := waitErr(func(h func(error)) error {
			return sock.Send(message, h)
		}); err != nil {
			t.Fatal(err)
		}
		data, err := receive(sock, len(message), 0)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(message, data); diff != "" {
			t.Fatal(diff)
		}
		if err := waitErr(sock.Close); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRunBench(t *testing.T) {
	loop := newLoop(t)
	chain := testingx.MustNewCertChain(1)
	certPath, keyPath := chain.MustWriteFiles(t.TempDir())

	t.Run("with valid parameters", func(t *testing.T) {
		result, err := runBench(loop, &benchParams{
			CertPath:    certPath,
			KeyPath:     keyPath,
			MessageSize: 1024,
			Total:       64 * 1024,
		})
		if err != nil {
			t.Fatal(err)
		}
		if result.Messages != 64 || result.Bytes != 64*1024 || len(result.Latencies) != 64 {
			t.Fatal("unexpected result", result.Messages, result.Bytes, len(result.Latencies))
		}
		output := &bytes.Buffer{}
		result.Print(output)
		if !strings.Contains(output.String(), "send latency (us): median=") {
			t.Fatalf("unexpected output %q", output.String())
		}
	})

	t.Run("with 1-byte messages", func(t *testing.T) {
		result, err := runBench(loop, &benchParams{
			CertPath:    certPath,
			KeyPath:     keyPath,
			MessageSize: 1,
			Total:       256,
		})
		if err != nil {
			t.Fatal(err)
		}
		if result.Messages != 256 || result.Bytes != 256 {
			t.Fatal("unexpected result", result.Messages, result.Bytes)
		}
		output := &bytes.Buffer{}
		result.PrintRate(output)
		if !strings.HasPrefix(output.String(), "transferred 256 messages of 1 bytes in ") ||
			!strings.HasSuffix(output.String(), " messages/s\n") {
			t.Fatalf("unexpected output %q", output.String())
		}
	})

	t.Run("with invalid parameters", func(t *testing.T) {
		if _, err := runBench(loop, &benchParams{MessageSize: 0, Total: 10}); err == nil {
			t.Fatal("expected an error")
		}
	})
}
