package period

// Selector 报告筛选条件：精确周期或同月
type Selector struct {
	value     string
	sameMonth bool
}

// Exact 仅匹配完全相同的周期
func Exact(p string) Selector {
	return Selector{value: p}
}

// SameMonth 匹配归属于月份 m 的所有周期（周按周四规则归月）
func SameMonth(m string) Selector {
	return Selector{value: m, sameMonth: true}
}

// Match 判断周期是否命中
func (s Selector) Match(p string) bool {
	if !s.sameMonth {
		return p == s.value
	}
	return p != "" && MonthOf(p) == s.value
}

// Exclusive 每个提交人至多命中一份报告
func (s Selector) Exclusive() bool {
	return !s.sameMonth
}

// Value 返回筛选的周期或月份
func (s Selector) Value() string {
	return s.value
}

// String 便于日志输出
func (s Selector) String() string {
	if s.sameMonth {
		return "month:" + s.value
	}
	return "period:" + s.value
}
