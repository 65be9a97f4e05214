package task

import (
	"time"
)

// ==================== 历史回归窗口计算 ====================

// 历史回归最多向前追溯 550 天，再早的数据查询量价值比太低
const maxLookbackDays = 550

// HistoricalWindow 计算当天要回归的历史时间窗口
//
// offset = 星期几 + 2（月数乘数），窗口为 [今天-(offset+1)*30天, 今天-offset*30天]。
// offset 随星期轮转，一周内依次扫过 2~8 个月前的 30 天切片，
// 窗口是墙钟日期的纯函数，不需要持久化游标，重启安全。
// 窗口起点早于 550 天上限时返回 ok=false，本轮整体跳过
func HistoricalWindow(today time.Time) (start, end time.Time, ok bool) {
	offset := int(today.Weekday()) + 2

	end = today.AddDate(0, 0, -offset*30)
	start = today.AddDate(0, 0, -(offset+1)*30)

	maxLookback := today.AddDate(0, 0, -maxLookbackDays)
	if start.Before(maxLookback) {
		return start, end, false
	}
	return start, end, true
}

// PlanAccountWindow 按账户的出生边界裁剪候选窗口
//
// birth 是账户已存交易的最早 order_time：
//   - birth 为 nil（账户无任何交易）→ 跳过该账户；
//   - 窗口终点早于 birth → 整个窗口都在账户出生前，查了也是空载，跳过；
//   - 窗口起点早于 birth → 起点向后裁剪到 birth，避免空查
func PlanAccountWindow(start, end time.Time, birth *time.Time) (effectiveStart time.Time, ok bool) {
	if birth == nil {
		return time.Time{}, false
	}
	if end.Before(*birth) {
		return time.Time{}, false
	}
	if start.Before(*birth) {
		return *birth, true
	}
	return start, true
}
