package report

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/period"
)

func renewalReport(p string, total, expiring, renewed int) model.AEReport {
	return model.AEReport{
		Period:        p,
		SubmittedDate: "2025-01-15",
		ByChannel: []model.RenewalChannelReport{
			{Channel: model.ChannelPerformance, TotalClients: total, ExpiringClients: expiring, RenewedClients: renewed, RenewalRevenue: 1000000},
			{Channel: model.ChannelBrandBlog, TotalClients: 5, ExpiringClients: 0, RenewedClients: 0},
		},
	}
}

// TestSubmitAEIdempotent 测试重复提交同一周期
func TestSubmitAEIdempotent(t *testing.T) {
	c := model.AEContributor{Name: "AE-B", ClientCount: 99, Reports: []model.AEReport{}}
	r := renewalReport("2025-W03", 10, 4, 2)

	once := SubmitAE(c, r)
	twice := SubmitAE(once, r)

	require.Len(t, twice.Reports, 1)
	assert.Equal(t, once.Reports, twice.Reports)
	assert.Equal(t, "2025-W03", twice.Reports[0].Period)
	assert.Equal(t, 15, twice.ClientCount, "ClientCount 取本次提交各渠道负责客户数之和")
	assert.Equal(t, 50.0, twice.Reports[0].ByChannel[0].RenewalRate)
	assert.Equal(t, 0.0, twice.Reports[0].ByChannel[1].RenewalRate)
}

// TestSubmitAEReplace 测试同周期替换
func TestSubmitAEReplace(t *testing.T) {
	c := SubmitAE(model.AEContributor{Name: "a"}, renewalReport("2025-W02", 10, 2, 1))
	c = SubmitAE(c, renewalReport("2025-W03", 10, 2, 1))
	c = SubmitAE(c, renewalReport("2025-W02", 20, 4, 4))

	require.Len(t, c.Reports, 2)
	assert.Equal(t, "2025-W03", c.Reports[0].Period)
	assert.Equal(t, 20, c.Reports[1].ByChannel[0].TotalClients)
	assert.Equal(t, 25, c.ClientCount, "最近一次提交决定 ClientCount")
}

// TestSubmitDoesNotMutateInput 测试不修改入参
func TestSubmitDoesNotMutateInput(t *testing.T) {
	reports := []model.AEReport{renewalReport("2025-W01", 1, 1, 1)}
	c := model.AEContributor{Name: "a", Reports: reports}
	r := renewalReport("2025-W01", 9, 9, 9)
	_ = SubmitAE(c, r)

	assert.Equal(t, 1, reports[0].ByChannel[0].TotalClients)
	assert.Equal(t, 0.0, r.ByChannel[0].RenewalRate)
}

// TestSortInvariant 测试任意提交序列后保持严格倒序
func TestSortInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := model.SalesContributor{Name: "Sales-A"}
	for i := 0; i < 300; i++ {
		var p string
		if rng.Intn(4) == 0 {
			p = period.FormatYearMonth(2024+rng.Intn(2), time.Month(1+rng.Intn(12)))
		} else {
			p = period.FormatWeek(2024+rng.Intn(2), 1+rng.Intn(52))
		}
		s = SubmitSales(s, model.SalesReport{
			Period:    p,
			ByChannel: []model.NewBusinessChannelReport{{Channel: model.ChannelMedia, NewClients: i, NewRevenue: float64(i)}},
		})
		for j := 1; j < len(s.Reports); j++ {
			if s.Reports[j-1].Period <= s.Reports[j].Period {
				t.Fatalf("step %d: reports not strictly descending at %d: %s, %s", i, j, s.Reports[j-1].Period, s.Reports[j].Period)
			}
		}
	}
}

// TestUpsertCollapsesDuplicates 测试历史重复数据被合并
func TestUpsertCollapsesDuplicates(t *testing.T) {
	reports := []model.SalesReport{{Period: "2025-W01"}, {Period: "2025-W01"}, {Period: "2025-W02"}}
	out := Upsert(reports, model.SalesReport{Period: "2025-W01", Note: "new"})
	require.Len(t, out, 2)
	assert.Equal(t, "2025-W02", out[0].Period)
	assert.Equal(t, "new", out[1].Note)
}

// TestValidateAE 测试 AE 表单校验
func TestValidateAE(t *testing.T) {
	ok := renewalReport("2025-W03", 10, 4, 2)
	assert.NoError(t, ValidateAE(ok))

	tests := []struct {
		name   string
		mutate func(r *model.AEReport)
	}{
		{"续约数超过到期数", func(r *model.AEReport) { r.ByChannel[0].RenewedClients = 5 }},
		{"负数", func(r *model.AEReport) { r.ByChannel[0].TotalClients = -1 }},
		{"周期格式错误", func(r *model.AEReport) { r.Period = "2025-W3" }},
		{"空周期", func(r *model.AEReport) { r.Period = "" }},
		{"未知渠道", func(r *model.AEReport) { r.ByChannel[0].Channel = "라디오" }},
		{"重复渠道", func(r *model.AEReport) { r.ByChannel[1].Channel = r.ByChannel[0].Channel }},
		{"无渠道", func(r *model.AEReport) { r.ByChannel = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := renewalReport("2025-W03", 10, 4, 2)
			tt.mutate(&r)
			err := ValidateAE(r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidReport))
		})
	}
}

// TestValidateSales 测试销售表单校验
func TestValidateSales(t *testing.T) {
	r := model.SalesReport{
		Period:    "2025-01",
		ByChannel: []model.NewBusinessChannelReport{{Channel: model.ChannelCarrot, NewClients: 1, NewRevenue: 100}},
	}
	assert.NoError(t, ValidateSales(r))

	r.ByChannel[0].NewRevenue = -1
	assert.ErrorIs(t, ValidateSales(r), ErrInvalidReport)
}

// TestSanitizeNote 测试备注清洗
func TestSanitizeNote(t *testing.T) {
	assert.Equal(t, "", SanitizeNote("   "))
	assert.Equal(t, "매출 증가", SanitizeNote("<b>매출</b> 증가"))
	assert.Equal(t, "ok", SanitizeNote("<script>alert(1)</script>ok"))
}
