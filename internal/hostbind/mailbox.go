package hostbind

// Ref correlates a request with the [Message] carrying its result.
type Ref string

// Handle identifies a socket or an acceptor registered with a [*Binding].
type Handle string

// Message is the result of an asynchronous request.
type Message struct {
	// Ref is the Ref of the request.
	Ref Ref

	// Err is nil on success.
	Err error

	// Reason is Err.Error() or the empty string on success.
	Reason string

	// Handle is the new handle for Connect and Accept.
	Handle Handle

	// Data contains the received bytes for Recv.
	Data []byte

	// Address and Port are set by Peername, Sockname and AcceptorSockname.
	Address string
	Port    uint16
}

// OK returns whether the request succeeded.
func (m Message) OK() bool {
	return m.Err == nil
}

// Mailbox receives the messages. Deliver runs on an event loop worker:
// it should not block for long because it delays other completions.
type Mailbox interface {
	Deliver(msg Message)
}

// MailboxFunc adapts a func to the [Mailbox] interface.
type MailboxFunc func(msg Message)

// Deliver implements Mailbox.
func (fx MailboxFunc) Deliver(msg Message) {
	fx(msg)
}

// ChanMailbox is a [Mailbox] backed by a buffered channel.
type ChanMailbox struct {
	// C is the channel from which to read messages.
	C chan Message
}

// NewChanMailbox creates a [*ChanMailbox] whose channel buffers n messages.
// Once the buffer is full, delivering blocks until the host reads.
func NewChanMailbox(n int) *ChanMailbox {
	return &ChanMailbox{C: make(chan Message, n)}
}

// Deliver implements Mailbox.
func (mb *ChanMailbox) Deliver(msg Message) {
	mb.C <- msg
}
