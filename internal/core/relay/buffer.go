package relay

import (
	"io"
)

// DefaultBufferSize 默认缓冲区大小
const DefaultBufferSize = 8192

// ============================================================================
//                              Buffer - 单槽缓冲区
// ============================================================================

// Buffer 一个方向的转发缓冲区
//
// 不变量：offset+length <= cap；只有 length == 0 时才允许 Fill。
//
// Buffer 不是并发安全的，由所属方向的 pump 独占使用。
type Buffer struct {
	buf    []byte
	offset int
	length int
	total  uint64
}

// NewBuffer 创建指定容量的缓冲区
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Buffer{buf: make([]byte, size)}
}

// Fill 从 r 读取一次，填充缓冲区
//
// 缓冲区非空时返回 ErrBufferNotEmpty，不读取 r。
// 读取到的字节数和 r 返回的错误一并返回，调用方应先处理数据再处理错误。
func (b *Buffer) Fill(r io.Reader) (int, error) {
	if b.length != 0 {
		return 0, ErrBufferNotEmpty
	}
	n, err := r.Read(b.buf)
	if n < 0 {
		n = 0
	}
	b.offset = 0
	b.length = n
	return n, err
}

// Drain 向 w 写出一次缓冲区中的待写数据
//
// 部分写出时 offset 前移、length 减少；累计写出量增加实际写出的字节数。
func (b *Buffer) Drain(w io.Writer) (int, error) {
	if b.length == 0 {
		return 0, nil
	}
	n, err := w.Write(b.buf[b.offset : b.offset+b.length])
	if n < 0 {
		n = 0
	}
	if n > b.length {
		n = b.length
	}
	b.offset += n
	b.length -= n
	b.total += uint64(n)
	if b.length == 0 {
		b.offset = 0
	}
	if err == nil && n == 0 {
		err = ErrZeroWrite
	}
	return n, err
}

// Empty 是否没有待写数据
func (b *Buffer) Empty() bool {
	return b.length == 0
}

// Len 返回待写字节数
func (b *Buffer) Len() int {
	return b.length
}

// Cap 返回缓冲区容量
func (b *Buffer) Cap() int {
	return len(b.buf)
}

// Total 返回累计写出的字节数
func (b *Buffer) Total() uint64 {
	return b.total
}
