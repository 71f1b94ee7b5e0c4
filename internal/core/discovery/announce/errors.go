package announce

import (
	"errors"
	"fmt"
)

// 解析错误
//
// 所有解析错误都包装 ErrNoEndpoint，可以用 errors.Is(err, ErrNoEndpoint) 统一判断。
var (
	// ErrNoEndpoint 数据报不包含有效端点
	ErrNoEndpoint = errors.New("announce: no endpoint")

	// ErrNoAdvertisement 缺少 [AD] 开始标记
	ErrNoAdvertisement = fmt.Errorf("%w: missing [AD] tag", ErrNoEndpoint)

	// ErrUnterminatedAdvertisement 缺少 [/AD] 结束标记
	ErrUnterminatedAdvertisement = fmt.Errorf("%w: missing [/AD] tag", ErrNoEndpoint)

	// ErrInvalidAddress 地址部分不是合法 IP
	ErrInvalidAddress = fmt.Errorf("%w: invalid address", ErrNoEndpoint)

	// ErrInvalidPort 端口部分不是十进制数字或超出范围
	ErrInvalidPort = fmt.Errorf("%w: invalid port", ErrNoEndpoint)
)

// 监听器错误
var (
	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("announce: listener closed")

	// ErrInterfaceNotFound 指定的网络接口不存在
	ErrInterfaceNotFound = errors.New("announce: interface not found")
)
