//go:build unix

package tcp

import "golang.org/x/sys/unix"

var transientErrnos = []error{
	unix.ETIMEDOUT,
	unix.ECONNRESET,
	unix.ECONNREFUSED,
	unix.EHOSTDOWN,
	unix.EHOSTUNREACH,
	unix.ENETUNREACH,
}
