package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	monthLayout = "2006-01"
	dateLayout  = "2006-01-02"
)

// Month 年月，边界格式固定为 YYYY-MM，字符串比较即时间先后
type Month string

// ParseMonth 解析 YYYY-MM
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("月份格式错误，应为 YYYY-MM: %q", s)
	}
	return Month(t.Format(monthLayout)), nil
}

// MustMonth 解析失败则 panic，仅用于常量和测试数据
func MustMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMonth 由年、月构造
func NewMonth(year int, month time.Month) Month {
	return MonthOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// MonthOf 取时间所在的月份
func MonthOf(t time.Time) Month {
	return Month(t.Format(monthLayout))
}

func (m Month) String() string {
	return string(m)
}

// Valid 是否为合法的 YYYY-MM
func (m Month) Valid() bool {
	_, err := time.Parse(monthLayout, string(m))
	return err == nil
}

// Start 当月第一天 00:00 UTC
func (m Month) Start() time.Time {
	t, _ := time.Parse(monthLayout, string(m))
	return t
}

func (m Month) Year() int {
	return m.Start().Year()
}

// Number 月份序号 1..12
func (m Month) Number() time.Month {
	return m.Start().Month()
}

// AddMonths 偏移 n 个月
func (m Month) AddMonths(n int) Month {
	return MonthOf(m.Start().AddDate(0, n, 0))
}

func (m Month) Before(other Month) bool {
	return m < other
}

// Date 日期（无时分秒），边界格式固定为 YYYY-MM-DD
type Date struct {
	time.Time
}

// NewDate 由年月日构造
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("日期格式错误，应为 YYYY-MM-DD: %q", s)
	}
	return Date{Time: t}, nil
}

// DateOf 截断到当天
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// YearMonth 日期所在月份
func (d Date) YearMonth() Month {
	return MonthOf(d.Time)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// After 严格晚于
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Before 严格早于
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan 实现 sql.Scanner
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("无法将 %T 转换为日期", value)
}

func (d *Date) scanString(s string) error {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value 实现 driver.Valuer
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// GormDataType 建表时使用 date 类型
func (Date) GormDataType() string {
	return "date"
}
