// Package hostbind exposes the socket engine to a host runtime that
// refers to sockets by opaque handles and receives results as messages.
//
// Each asynchronous call takes a caller-chosen [Ref] and returns only an
// error telling whether the request was accepted. When the request was
// accepted, exactly one [Message] carrying the same Ref is eventually
// delivered to the [Mailbox]. When it was not, no message is ever sent.
package hostbind
