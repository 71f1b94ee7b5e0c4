package relay

import (
	"fmt"
	"time"
)

// FormatDuration 以 h:m:s 格式输出会话时长，如 "01:02:03"
func FormatDuration(d time.Duration) string {
	secs := uint64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// FormatThroughput 输出一个方向的转发量和平均速率
//
// 速率按整秒计算，超过 10000 bytes/s 时以 K 为单位。
// 会话不足一秒时只输出转发量。
func FormatThroughput(total uint64, d time.Duration) string {
	secs := uint64(d / time.Second)
	if secs == 0 {
		return fmt.Sprintf("%d bytes transferred", total)
	}
	rate := total / secs
	unit := ""
	if rate > 10000 {
		rate /= 1000
		unit = "K"
	}
	return fmt.Sprintf("%d bytes transferred, %d %sbytes/s", total, rate, unit)
}
