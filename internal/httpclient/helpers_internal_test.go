package httpclient

import (
	"net"
	"os"
	"syscall"
)

func syscallRefused() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
}
