// Package types 定义 mclanproxy 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              Endpoint 相关错误
// ============================================================================

var (
	// ErrInvalidEndpoint 无效的端点
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)
