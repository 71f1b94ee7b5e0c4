//go:build !unix

package tcp

import "syscall"

var transientErrnos = []error{
	syscall.ETIMEDOUT,
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	syscall.EHOSTUNREACH,
	syscall.ENETUNREACH,
}
