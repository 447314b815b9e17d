package externals

import (
	"net"

	"golang.org/x/net/netutil"

	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// maxConnsPerListener bounds concurrent accepted connections per listener
// (SPEC_FULL.md §6 sockets row: "listener wrapped in a netutil.LimitListener
// bounding concurrent accepted connections per process"). A single
// process's mailbox and local heap are not built to absorb unbounded
// concurrent socket fan-in, so this is a blunt but effective backstop.
const maxConnsPerListener = 256

// registerSockets wires tcp_listen/tcp_dial onto stdlib net plus
// golang.org/x/net/netutil (SPEC_FULL.md §6 sockets row).
func registerSockets(r *Registry) error {
	if err := r.Add("tcp_listen", tcpListen); err != nil {
		return err
	}
	return r.Add("tcp_dial", tcpDial)
}

func tcpListen(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	addr, err := argString(args, 0)
	if err != nil {
		return object.Nil, err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return object.Nil, vmerrors.IoErrorFrom(0, err)
	}
	limited := netutil.LimitListener(ln, maxConnsPerListener)

	o := object.New(object.Local)
	o.Kind = object.KindSocket
	o.Any = limited
	return allocate(ctx, o)
}

func tcpDial(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	addr, err := argString(args, 0)
	if err != nil {
		return object.Nil, err
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return object.Nil, vmerrors.IoErrorFrom(0, err)
	}
	o := object.New(object.Local)
	o.Kind = object.KindSocket
	o.Any = conn
	return allocate(ctx, o)
}
