package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"budget/models"
)

// ElapsedPolicy 当年已过去月份实际线的计算方式
type ElapsedPolicy string

const (
	// PolicyEffective 按类别取 max(实际, 预算)，与当月预测口径一致
	PolicyEffective ElapsedPolicy = "effective"
	// PolicyRecorded 只用已记录的交易
	PolicyRecorded ElapsedPolicy = "recorded"
)

// Valid 是否为已知口径
func (p ElapsedPolicy) Valid() bool {
	return p == PolicyEffective || p == PolicyRecorded
}

// Point 预测序列中的一个点，三条线各自可为空
type Point struct {
	Label    string           `json:"label"`
	Month    models.Month     `json:"month"`
	Actual   *decimal.Decimal `json:"actual"`
	Plan     *decimal.Decimal `json:"plan"`
	Forecast *decimal.Decimal `json:"forecast"`
}

// Forecast 一年的余额走势：上年末锚点 + 12 个月
type Forecast struct {
	Year   int     `json:"year"`
	Points []Point `json:"points"`
}

// ForecastInput 预测所需的快照
type ForecastInput struct {
	Year          int
	Now           models.Month
	Accounts      []models.Account
	Transactions  []models.Transaction
	Budgets       []models.Budget
	CategoryTypes map[uint]models.CategoryType
	// CategoryVisible 为空时全部预算都计入；否则类别在该月不可见的预算不计入计划
	CategoryVisible func(categoryID uint, m models.Month) bool
	Policy          ElapsedPolicy
}

// BuildForecast 计算某年的实际线、计划线和预测线。
// 只统计普通账户，储蓄账户通过专用类别体现在预算里
func BuildForecast(in ForecastInput) (*Forecast, error) {
	if in.Year < 1 {
		return nil, Invalid("year", "年份不合法: %d", in.Year)
	}
	if !in.Now.Valid() {
		return nil, Invalid("now", "当前月份不合法: %q", in.Now)
	}
	if in.Policy == "" {
		in.Policy = PolicyEffective
	}
	if !in.Policy.Valid() {
		return nil, Invalid("elapsed_policy", "未知的预测口径: %q", in.Policy)
	}

	e := newEngine(in)
	nowYear := in.Now.Year()
	points := make([]Point, 13)
	points[0] = Point{Label: "期初", Month: models.NewMonth(in.Year-1, time.December)}
	for i := 1; i <= 12; i++ {
		points[i] = Point{Label: fmt.Sprintf("%d月", i), Month: models.NewMonth(in.Year, time.Month(i))}
	}

	var anchor decimal.Decimal
	if in.Year > nowYear {
		anchor = e.carryForward(in.Year)
	} else {
		anchor = e.anchor(in.Year)
	}

	plan := anchor
	points[0].Plan = rounded(anchor)
	for i := 1; i <= 12; i++ {
		m := points[i].Month
		plan = plan.Add(e.initialIn(m)).Add(e.plannedDelta(m))
		points[i].Plan = rounded(plan)
	}
	if in.Year > nowYear {
		return &Forecast{Year: in.Year, Points: points}, nil
	}

	points[0].Actual = rounded(anchor)
	actual := anchor
	for i := 1; i <= 12; i++ {
		m := points[i].Month
		if in.Year == nowYear && !m.Before(in.Now) {
			break
		}
		delta := e.recordedDelta(m)
		if in.Year == nowYear && in.Policy == PolicyEffective {
			delta = e.effectiveDelta(m)
		}
		actual = actual.Add(e.initialIn(m)).Add(delta)
		points[i].Actual = rounded(actual)
	}
	if in.Year < nowYear {
		return &Forecast{Year: in.Year, Points: points}, nil
	}

	if in.Now.Number() == time.January {
		points[0].Forecast = rounded(anchor)
	}
	e.forecastFrom(actual, in.Now, func(m models.Month, v decimal.Decimal) {
		points[int(m.Number())].Forecast = rounded(v)
	})
	return &Forecast{Year: in.Year, Points: points}, nil
}

type catMonth struct {
	categoryID uint
	month      models.Month
}

type engine struct {
	in        ForecastInput
	scope     map[uint]bool
	initial   map[models.Month]decimal.Decimal
	recorded  map[models.Month]decimal.Decimal
	planned   map[models.Month]decimal.Decimal
	catPlan   map[catMonth]decimal.Decimal
	catActual map[catMonth]decimal.Decimal
	// byMonth 当月有预算或实际的类别
	byMonth map[models.Month]map[uint]bool
}

func newEngine(in ForecastInput) *engine {
	e := &engine{
		in:        in,
		scope:     make(map[uint]bool),
		initial:   make(map[models.Month]decimal.Decimal),
		recorded:  make(map[models.Month]decimal.Decimal),
		planned:   make(map[models.Month]decimal.Decimal),
		catPlan:   make(map[catMonth]decimal.Decimal),
		catActual: make(map[catMonth]decimal.Decimal),
		byMonth:   make(map[models.Month]map[uint]bool),
	}
	for _, a := range in.Accounts {
		if a.AccountType == models.AccountTypeStandard {
			e.scope[a.ID] = true
			m := a.InitialBalanceDate.YearMonth()
			e.initial[m] = e.initial[m].Add(a.InitialBalance)
		}
	}
	for i := range in.Transactions {
		tx := &in.Transactions[i]
		m := tx.TransactionDate.YearMonth()
		e.recorded[m] = e.recorded[m].Add(e.scopedDelta(tx))
		if !tx.OnBudget || tx.CategoryID == nil || tx.Type == models.TransactionTypeTransfer || !e.scope[tx.AccountID] {
			continue
		}
		typ, ok := in.CategoryTypes[*tx.CategoryID]
		if !ok {
			continue
		}
		k := catMonth{*tx.CategoryID, m}
		if tx.Type == string(typ) {
			e.catActual[k] = e.catActual[k].Add(tx.Amount)
		} else {
			e.catActual[k] = e.catActual[k].Sub(tx.Amount)
		}
		e.mark(k)
	}
	for _, b := range in.Budgets {
		typ, ok := in.CategoryTypes[b.CategoryID]
		if !ok {
			continue
		}
		if in.CategoryVisible != nil && !in.CategoryVisible(b.CategoryID, b.Month) {
			continue
		}
		k := catMonth{b.CategoryID, b.Month}
		e.catPlan[k] = e.catPlan[k].Add(b.Amount)
		e.planned[b.Month] = e.planned[b.Month].Add(signed(typ, b.Amount))
		e.mark(k)
	}
	return e
}

func (e *engine) mark(k catMonth) {
	set, ok := e.byMonth[k.month]
	if !ok {
		set = make(map[uint]bool)
		e.byMonth[k.month] = set
	}
	set[k.categoryID] = true
}

func signed(typ models.CategoryType, v decimal.Decimal) decimal.Decimal {
	if typ == models.CategoryTypeExpense {
		return v.Neg()
	}
	return v
}

func (e *engine) scopedDelta(tx *models.Transaction) decimal.Decimal {
	d := decimal.Zero
	if e.scope[tx.AccountID] {
		d = d.Add(Delta(tx, tx.AccountID))
	}
	if tx.Type == models.TransactionTypeTransfer && tx.DestinationAccountID != nil && e.scope[*tx.DestinationAccountID] {
		d = d.Add(Delta(tx, *tx.DestinationAccountID))
	}
	return d
}

// anchor Y-01-01 之前的余额合计
func (e *engine) anchor(year int) decimal.Decimal {
	cutoff := models.NewMonth(year, time.January)
	total := decimal.Zero
	for m, v := range e.initial {
		if m.Before(cutoff) {
			total = total.Add(v)
		}
	}
	for m, v := range e.recorded {
		if m.Before(cutoff) {
			total = total.Add(v)
		}
	}
	return total
}

func (e *engine) initialIn(m models.Month) decimal.Decimal {
	return e.initial[m]
}

func (e *engine) recordedDelta(m models.Month) decimal.Decimal {
	return e.recorded[m]
}

func (e *engine) plannedDelta(m models.Month) decimal.Decimal {
	return e.planned[m]
}

// effectiveDelta 每个类别取 max(实际, 预算) 按方向求和，再加上不属于任何预算类别的记录
// （转账、非预算交易等）。没有预算但有实际的类别同样计入
func (e *engine) effectiveDelta(m models.Month) decimal.Decimal {
	total := e.recorded[m]
	for id := range e.byMonth[m] {
		typ := e.in.CategoryTypes[id]
		k := catMonth{id, m}
		act := e.catActual[k]
		total = total.Sub(signed(typ, act))
		total = total.Add(signed(typ, decimal.Max(act, e.catPlan[k])))
	}
	return total
}

// forecastFrom 从 start 月起的预测：当月用有效变动，之后用预算
func (e *engine) forecastFrom(last decimal.Decimal, start models.Month, emit func(models.Month, decimal.Decimal)) decimal.Decimal {
	v := last.Add(e.initialIn(start)).Add(e.effectiveDelta(start))
	emit(start, v)
	for m := start.AddMonths(1); m.Year() == start.Year(); m = m.AddMonths(1) {
		v = v.Add(e.initialIn(m)).Add(e.plannedDelta(m))
		emit(m, v)
	}
	return v
}

// carryForward 未来年份的期初：当年年末预测，再逐年按预算推到 year 之前
func (e *engine) carryForward(year int) decimal.Decimal {
	now := e.in.Now
	v := e.anchor(now.Year())
	first := models.NewMonth(now.Year(), time.January)
	for m := first; m.Before(now); m = m.AddMonths(1) {
		delta := e.recordedDelta(m)
		if e.in.Policy == PolicyEffective {
			delta = e.effectiveDelta(m)
		}
		v = v.Add(e.initialIn(m)).Add(delta)
	}
	v = e.forecastFrom(v, now, func(models.Month, decimal.Decimal) {})
	for y := now.Year() + 1; y < year; y++ {
		for m := models.NewMonth(y, time.January); m.Year() == y; m = m.AddMonths(1) {
			v = v.Add(e.initialIn(m)).Add(e.plannedDelta(m))
		}
	}
	return v
}

func rounded(v decimal.Decimal) *decimal.Decimal {
	r := v.Round(2)
	return &r
}
