package relay

import "errors"

var (
	// ErrBufferNotEmpty 缓冲区仍有未写出的数据
	ErrBufferNotEmpty = errors.New("relay: buffer not empty")

	// ErrZeroWrite 写操作未写出任何字节且未返回错误
	ErrZeroWrite = errors.New("relay: zero-length write")
)
