package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/models"
)

func monthlyBudgets(cat uint, year, amount string) []models.Budget {
	var out []models.Budget
	m := models.MustMonth(year + "-01")
	for i := 0; i < 12; i++ {
		out = append(out, budget(uint(i+1)+cat*100, cat, m.AddMonths(i).String(), amount))
	}
	return out
}

func scenarioInput(now string, policy ElapsedPolicy) ForecastInput {
	snap := sampleSnapshot()
	return ForecastInput{
		Year:          2024,
		Now:           models.MustMonth(now),
		Accounts:      []models.Account{account(1, "工资卡", models.AccountTypeStandard, "1000", "2024-01-01")},
		Budgets:       monthlyBudgets(11, "2024", "200"),
		CategoryTypes: snap.CategoryTypes(),
		Policy:        policy,
	}
}

func values(points []Point, pick func(Point) *decimal.Decimal) []string {
	out := make([]string, len(points))
	for i, p := range points {
		if v := pick(p); v != nil {
			out[i] = v.StringFixed(2)
		}
	}
	return out
}

func actualOf(p Point) *decimal.Decimal   { return p.Actual }
func planOf(p Point) *decimal.Decimal     { return p.Plan }
func forecastOf(p Point) *decimal.Decimal { return p.Forecast }

func TestBuildForecast_MidYearScenario(t *testing.T) {
	f, err := BuildForecast(scenarioInput("2024-06", PolicyEffective))
	require.NoError(t, err)
	require.Len(t, f.Points, 13)
	assert.Equal(t, models.Month("2023-12"), f.Points[0].Month)

	assert.Equal(t, []string{"0.00", "800.00", "600.00", "400.00", "200.00", "0.00", "-200.00",
		"-400.00", "-600.00", "-800.00", "-1000.00", "-1200.00", "-1400.00"}, values(f.Points, planOf))
	assert.Equal(t, []string{"0.00", "800.00", "600.00", "400.00", "200.00", "0.00",
		"", "", "", "", "", "", ""}, values(f.Points, actualOf))
	assert.Equal(t, []string{"", "", "", "", "", "", "-200.00",
		"-400.00", "-600.00", "-800.00", "-1000.00", "-1200.00", "-1400.00"}, values(f.Points, forecastOf))
}

func TestBuildForecast_RecordedPolicy(t *testing.T) {
	f, err := BuildForecast(scenarioInput("2024-06", PolicyRecorded))
	require.NoError(t, err)

	// 没有交易：实际线保持初始余额，预测从 6 月起按预算下降
	assert.Equal(t, []string{"0.00", "1000.00", "1000.00", "1000.00", "1000.00", "1000.00",
		"", "", "", "", "", "", ""}, values(f.Points, actualOf))
	assert.Equal(t, "800.00", f.Points[6].Forecast.StringFixed(2))
	assert.Equal(t, "-400.00", f.Points[12].Forecast.StringFixed(2))
}

func TestBuildForecast_CurrentMonthUsesLargerOfActualAndPlan(t *testing.T) {
	in := scenarioInput("2024-06", PolicyRecorded)
	in.Transactions = []models.Transaction{
		expense(1, 1, 11, "350", "2024-06-03"), // 超出预算 200
		expense(2, 1, 12, "30", "2024-06-04"),  // 没有预算的类别
		income(3, 1, 2, "100", "2024-06-05"),
	}
	f, err := BuildForecast(in)
	require.NoError(t, err)

	// 1000 - 350 - 30 + 100
	assert.Equal(t, "720.00", f.Points[6].Forecast.StringFixed(2))
	assert.Equal(t, "520.00", f.Points[7].Forecast.StringFixed(2))
	assert.Nil(t, f.Points[6].Actual)
}

func TestBuildForecast_EffectiveDeltaIncludesUnbudgetedRest(t *testing.T) {
	in := scenarioInput("2024-02", PolicyEffective)
	in.Accounts = append(in.Accounts,
		account(2, "旅行基金", models.AccountTypeSavings, "0", "2024-01-01"),
		account(3, "零钱", models.AccountTypeStandard, "50", "2024-01-01"))
	in.Transactions = []models.Transaction{
		expense(1, 1, 11, "50", "2024-01-10"), // 低于预算，按预算 200 计
		{ // 转入储蓄账户，不在统计范围
			ID: 2, Type: models.TransactionTypeTransfer, Amount: dec("100"), TransactionDate: date("2024-01-11"),
			AccountID: 1, DestinationAccountID: uintPtr(2),
		},
		{ // 普通账户之间转账互相抵消
			ID: 3, Type: models.TransactionTypeTransfer, Amount: dec("10"), TransactionDate: date("2024-01-12"),
			AccountID: 1, DestinationAccountID: uintPtr(3),
		},
	}
	f, err := BuildForecast(in)
	require.NoError(t, err)
	// 1050 - 200 - 100
	assert.Equal(t, "750.00", f.Points[1].Actual.StringFixed(2))
	assert.Equal(t, "550.00", f.Points[2].Forecast.StringFixed(2))
}

func TestBuildForecast_JanuaryForecastStartsAtAnchor(t *testing.T) {
	in := scenarioInput("2024-01", PolicyEffective)
	in.Accounts[0].InitialBalanceDate = date("2023-06-01")
	f, err := BuildForecast(in)
	require.NoError(t, err)

	assert.Equal(t, "1000.00", f.Points[0].Actual.StringFixed(2))
	assert.Equal(t, "1000.00", f.Points[0].Forecast.StringFixed(2))
	assert.Equal(t, "800.00", f.Points[1].Forecast.StringFixed(2))
	assert.Nil(t, f.Points[1].Actual)
}

func TestBuildForecast_PastYear(t *testing.T) {
	in := scenarioInput("2025-03", PolicyEffective)
	in.Transactions = []models.Transaction{expense(1, 1, 11, "100", "2024-02-01")}
	f, err := BuildForecast(in)
	require.NoError(t, err)

	for _, p := range f.Points {
		assert.NotNil(t, p.Actual)
		assert.Nil(t, p.Forecast)
	}
	// 过去年份实际线只用已记录的交易
	assert.Equal(t, "900.00", f.Points[12].Actual.StringFixed(2))
	assert.Equal(t, "-1400.00", f.Points[12].Plan.StringFixed(2))
}

func TestBuildForecast_FutureYearCarriesForecast(t *testing.T) {
	in := scenarioInput("2024-06", PolicyEffective)
	in.Budgets = append(in.Budgets, monthlyBudgets(11, "2025", "100")...)
	in.Budgets = append(in.Budgets, monthlyBudgets(2, "2026", "50")...)

	in.Year = 2025
	f, err := BuildForecast(in)
	require.NoError(t, err)
	assert.Equal(t, "-1400.00", f.Points[0].Plan.StringFixed(2))
	assert.Equal(t, "-2600.00", f.Points[12].Plan.StringFixed(2))
	for _, p := range f.Points {
		assert.Nil(t, p.Actual)
		assert.Nil(t, p.Forecast)
	}

	in.Year = 2026
	f, err = BuildForecast(in)
	require.NoError(t, err)
	assert.Equal(t, "-2600.00", f.Points[0].Plan.StringFixed(2))
	assert.Equal(t, "-2000.00", f.Points[12].Plan.StringFixed(2))
}

func TestBuildForecast_MirrorLegsStayOffBudget(t *testing.T) {
	in := scenarioInput("2024-04", PolicyRecorded)
	in.Accounts = append(in.Accounts, account(2, "旅行基金", models.AccountTypeSavings, "0", "2024-01-01"))
	primary := expense(1, 1, 13, "300", "2024-03-02")
	primary.LinkedTransactionID = uintPtr(2)
	in.Transactions = []models.Transaction{primary, {
		ID: 2, Type: models.TransactionTypeIncome, Amount: dec("300"), TransactionDate: date("2024-03-02"),
		AccountID: 2, LinkedTransactionID: uintPtr(1),
	}}
	f, err := BuildForecast(in)
	require.NoError(t, err)
	assert.Equal(t, "700.00", f.Points[3].Actual.StringFixed(2))
}

func TestBuildForecast_RoundsOnOutput(t *testing.T) {
	in := scenarioInput("2024-06", PolicyRecorded)
	in.Budgets = []models.Budget{}
	for i := 0; i < 12; i++ {
		in.Budgets = append(in.Budgets, budget(uint(i+1), 11, models.MustMonth("2024-01").AddMonths(i).String(), "0.004"))
	}
	f, err := BuildForecast(in)
	require.NoError(t, err)
	// 逐月四舍五入会得到 1000.00，全精度累计为 999.952
	assert.Equal(t, "999.95", f.Points[12].Plan.StringFixed(2))
}

func TestBuildForecast_Invalid(t *testing.T) {
	in := scenarioInput("2024-06", "guess")
	_, err := BuildForecast(in)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestBuildForecast_SkipsBudgetsOfHiddenCategory(t *testing.T) {
	in := scenarioInput("2024-06", PolicyEffective)
	in.CategoryVisible = func(_ uint, m models.Month) bool {
		return m.Before("2024-07")
	}
	f, err := BuildForecast(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"0.00", "800.00", "600.00", "400.00", "200.00", "0.00", "0.00",
		"0.00", "0.00", "0.00", "0.00", "0.00", "0.00"}, values(f.Points, planOf))
	assert.Equal(t, "0.00", f.Points[12].Forecast.StringFixed(2))
}
