package hostbind

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/onedata/etls/internal/erroror"
	"github.com/onedata/etls/internal/etls"
	"github.com/onedata/etls/internal/eventloop"
	"github.com/onedata/etls/internal/model"
	"github.com/onedata/etls/internal/runtimex"
)

var (
	// ErrBadArgument indicates an invalid argument such as an
	// unknown shutdown direction or a negative receive size.
	ErrBadArgument = errors.New("hostbind: bad argument")

	// ErrUnknownHandle indicates a handle that is not registered.
	ErrUnknownHandle = errors.New("hostbind: unknown handle")
)

// DefaultRecvSize is the buffer size used when Recv is called with a zero size.
const DefaultRecvSize = 10 * 1024

// Option configures a [*Binding].
type Option func(b *Binding)

// WithSocketOptions sets the options for every socket and acceptor.
func WithSocketOptions(options ...etls.Option) Option {
	return func(b *Binding) {
		b.options = append(b.options, options...)
	}
}

// WithRecvDefaultSize sets the buffer size for Recv with zero size.
// Values lower than one select DefaultRecvSize.
func WithRecvDefaultSize(size int) Option {
	return func(b *Binding) {
		b.recvDefaultSize = size
	}
}

// WithLogger sets the logger.
func WithLogger(logger model.Logger) Option {
	return func(b *Binding) {
		b.logger = logger
	}
}

// Binding maps handles to sockets and acceptors and turns
// completions into messages. Construct using [New].
type Binding struct {
	acceptors       map[Handle]*etls.Acceptor
	logger          model.Logger
	loop            *eventloop.Loop
	mailbox         Mailbox
	mu              sync.Mutex
	options         []etls.Option
	recvDefaultSize int
	sockets         map[Handle]*etls.Socket
}

// New creates a new [*Binding] using the given loop and delivering
// messages to the given mailbox. A nil loop selects the process-wide
// loop, hence [eventloop.Init] must have been called. This function
// panics if mailbox is nil.
func New(loop *eventloop.Loop, mailbox Mailbox, options ...Option) *Binding {
	runtimex.PanicIfNil(mailbox, "hostbind: nil mailbox")
	if loop == nil {
		loop = eventloop.Default()
	}
	b := &Binding{
		acceptors: map[Handle]*etls.Acceptor{},
		loop:      loop,
		mailbox:   mailbox,
		sockets:   map[Handle]*etls.Socket{},
	}
	for _, option := range options {
		option(b)
	}
	b.logger = model.ValidLoggerOrDefault(b.logger)
	if b.recvDefaultSize < 1 {
		b.recvDefaultSize = DefaultRecvSize
	}
	b.options = append([]etls.Option{etls.WithLogger(b.logger)}, b.options...)
	return b
}

func newHandle() Handle {
	return Handle(uuid.Must(uuid.NewRandom()).String())
}

func (b *Binding) registerSocket(sock *etls.Socket) Handle {
	h := newHandle()
	b.mu.Lock()
	b.sockets[h] = sock
	b.mu.Unlock()
	return h
}

func (b *Binding) forgetSocket(h Handle) {
	b.mu.Lock()
	delete(b.sockets, h)
	b.mu.Unlock()
}

func (b *Binding) socket(h Handle) (*etls.Socket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sock, found := b.sockets[h]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return sock, nil
}

func (b *Binding) acceptor(h Handle) (*etls.Acceptor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acceptor, found := b.acceptors[h]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return acceptor, nil
}

// deliver sends msg to the mailbox filling Reason from Err.
func (b *Binding) deliver(msg Message) {
	if msg.Err != nil {
		msg.Reason = msg.Err.Error()
		b.logger.Debugf("hostbind: ref %s failed: %s", msg.Ref, msg.Reason)
	}
	b.mailbox.Deliver(msg)
}

// done returns a handler for operations without a payload.
func (b *Binding) done(ref Ref) func(error) {
	return func(err error) {
		b.deliver(Message{Ref: ref, Err: err})
	}
}

// endpoint returns a handler for endpoint queries.
func (b *Binding) endpoint(ref Ref) func(erroror.Value[model.Endpoint]) {
	return func(result erroror.Value[model.Endpoint]) {
		b.deliver(Message{
			Ref:     ref,
			Err:     result.Err,
			Address: result.Value.Address,
			Port:    result.Value.Port,
		})
	}
}

// newSocket returns a handler registering an accepted socket on success.
func (b *Binding) newSocket(ref Ref) func(erroror.Value[*etls.Socket]) {
	return func(result erroror.Value[*etls.Socket]) {
		if result.Err != nil {
			b.deliver(Message{Ref: ref, Err: result.Err})
			return
		}
		b.deliver(Message{Ref: ref, Handle: b.registerSocket(result.Value)})
	}
}

// Connect connects to host:port and returns the handle of the socket,
// which is valid while the connection is pending, so that Close can
// interrupt it. On success the message carries the same handle. On
// failure the message has no handle and the handle is released.
func (b *Binding) Connect(ref Ref, host string, port uint16) (Handle, error) {
	sock := etls.NewSocket(b.loop, b.options...)
	h := b.registerSocket(sock)
	err := sock.Connect(host, port, func(result erroror.Value[*etls.Socket]) {
		if result.Err != nil {
			b.forgetSocket(h)
			b.deliver(Message{Ref: ref, Err: result.Err})
			return
		}
		b.deliver(Message{Ref: ref, Handle: h})
	})
	if err != nil {
		b.forgetSocket(h)
		return "", err
	}
	return h, nil
}

// Send sends a copy of data.
func (b *Binding) Send(ref Ref, h Handle, data []byte) error {
	sock, err := b.socket(h)
	if err != nil {
		return err
	}
	return sock.Send(append([]byte(nil), data...), b.done(ref))
}

// Recv receives exactly size bytes or, when size is zero, whatever is
// available up to the default receive size. The message carries the data.
func (b *Binding) Recv(ref Ref, h Handle, size int) error {
	if size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrBadArgument, size)
	}
	sock, err := b.socket(h)
	if err != nil {
		return err
	}
	handler := func(result erroror.Value[[]byte]) {
		b.deliver(Message{Ref: ref, Err: result.Err, Data: result.Value})
	}
	if size == 0 {
		return sock.RecvAny(make([]byte, b.recvDefaultSize), handler)
	}
	return sock.Recv(make([]byte, size), handler)
}

// Listen creates an acceptor and returns its handle.
func (b *Binding) Listen(port uint16, certPath, keyPath string) (Handle, error) {
	acceptor, err := etls.Listen(b.loop, port, certPath, keyPath, b.options...)
	if err != nil {
		return "", err
	}
	h := newHandle()
	b.mu.Lock()
	b.acceptors[h] = acceptor
	b.mu.Unlock()
	return h, nil
}

// Accept accepts a connection on the acceptor lh. The message carries
// the handle of a socket on which the caller must call Handshake.
func (b *Binding) Accept(ref Ref, lh Handle) error {
	acceptor, err := b.acceptor(lh)
	if err != nil {
		return err
	}
	return acceptor.Accept(b.newSocket(ref))
}

// Handshake performs the server handshake on an accepted socket.
func (b *Binding) Handshake(ref Ref, h Handle) error {
	sock, err := b.socket(h)
	if err != nil {
		return err
	}
	return sock.Handshake(b.done(ref))
}

// Peername queries the remote endpoint of a socket.
func (b *Binding) Peername(ref Ref, h Handle) error {
	sock, err := b.socket(h)
	if err != nil {
		return err
	}
	return sock.RemoteEndpoint(b.endpoint(ref))
}

// Sockname queries the local endpoint of a socket.
func (b *Binding) Sockname(ref Ref, h Handle) error {
	sock, err := b.socket(h)
	if err != nil {
		return err
	}
	return sock.LocalEndpoint(b.endpoint(ref))
}

// AcceptorSockname queries the local endpoint of an acceptor.
func (b *Binding) AcceptorSockname(ref Ref, lh Handle) error {
	acceptor, err := b.acceptor(lh)
	if err != nil {
		return err
	}
	return acceptor.LocalEndpoint(b.endpoint(ref))
}

// Shutdown shuts down "read", "write" or "read_write". Any other
// direction fails immediately with ErrBadArgument.
func (b *Binding) Shutdown(ref Ref, h Handle, direction string) error {
	parsed, err := etls.ParseShutdownDirection(direction)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadArgument, err)
	}
	sock, err := b.socket(h)
	if err != nil {
		return err
	}
	return sock.Shutdown(parsed, b.done(ref))
}

// Close closes a socket. The handle stays valid until Release.
func (b *Binding) Close(ref Ref, h Handle) error {
	sock, err := b.socket(h)
	if err != nil {
		return err
	}
	return sock.Close(b.done(ref))
}

// CertificateChain returns the chain captured by the socket.
func (b *Binding) CertificateChain(h Handle) ([][]byte, error) {
	sock, err := b.socket(h)
	if err != nil {
		return nil, err
	}
	return sock.CertificateChain(), nil
}

// Release forgets a handle. Releasing an acceptor also closes it. Releasing
// a socket does not close it: pending operations still complete and
// the caller should Close the socket before releasing it.
func (b *Binding) Release(h Handle) error {
	b.mu.Lock()
	_, isSocket := b.sockets[h]
	acceptor, isAcceptor := b.acceptors[h]
	delete(b.sockets, h)
	delete(b.acceptors, h)
	b.mu.Unlock()
	switch {
	case isSocket:
		return nil
	case isAcceptor:
		return acceptor.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
}
