package discount

import (
	"errors"
	"testing"
	"time"

	"fashion-shop/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now       = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	productA  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	productB  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	productC  = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	buyer     = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	sampleCap = decimal.NewFromInt(30)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// sampleLines is A x2 @100 and B x1 @50.
func sampleLines() []Line {
	return []Line{
		{ProductID: productA, Price: dec("100"), Quantity: 2},
		{ProductID: productB, Price: dec("50"), Quantity: 1},
	}
}

func activeCode(t model.DiscountType, value string) *model.DiscountCode {
	return &model.DiscountCode{
		ID:        uuid.New(),
		Code:      "SPRING25",
		Type:      t,
		Discount:  dec(value),
		StartDate: now.Add(-24 * time.Hour),
		EndDate:   now.Add(24 * time.Hour),
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		eligible string
		want     string
	}{
		{name: "flat below subtotal", rule: FlatAmount{Value: dec("50")}, eligible: "250", want: "50"},
		{name: "flat capped at subtotal", rule: FlatAmount{Value: dec("400")}, eligible: "250", want: "250"},
		{name: "percent without cap", rule: Percent{Value: dec("10")}, eligible: "250", want: "25"},
		{name: "percent keeps fractions", rule: Percent{Value: dec("15")}, eligible: "255", want: "38.25"},
		{name: "percent of half unit", rule: Percent{Value: dec("15")}, eligible: "250", want: "37.5"},
		{name: "percent rounds to cents", rule: Percent{Value: dec("12.5")}, eligible: "99.99", want: "12.5"},
		{name: "percent capped", rule: Percent{Value: dec("50"), Cap: &sampleCap}, eligible: "250", want: "30"},
		{name: "nothing eligible", rule: FlatAmount{Value: dec("50")}, eligible: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(tt.rule, dec(tt.eligible))
			assert.True(t, dec(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestRuleOf(t *testing.T) {
	rule, err := RuleOf(activeCode(model.DiscountTypeMoney, "50"))
	require.NoError(t, err)
	assert.IsType(t, FlatAmount{}, rule)

	code := activeCode(model.DiscountTypePercent, "10")
	code.MaximumDiscount = &sampleCap
	rule, err = RuleOf(code)
	require.NoError(t, err)
	require.IsType(t, Percent{}, rule)
	assert.True(t, sampleCap.Equal(*rule.(Percent).Cap))

	_, err = RuleOf(activeCode(model.DiscountType("bogus"), "1"))
	assert.Error(t, err)
}

func TestEligibleSubtotal(t *testing.T) {
	code := activeCode(model.DiscountTypeMoney, "50")

	total, matched := EligibleSubtotal(code, sampleLines())
	assert.True(t, matched)
	assert.True(t, dec("250").Equal(total))

	code.ApplicableProducts = []uuid.UUID{productB}
	total, matched = EligibleSubtotal(code, sampleLines())
	assert.True(t, matched)
	assert.True(t, dec("50").Equal(total))

	code.ApplicableProducts = []uuid.UUID{productC}
	_, matched = EligibleSubtotal(code, sampleLines())
	assert.False(t, matched)
}

func TestEvaluate_FlatDiscountExample(t *testing.T) {
	amount, err := Evaluate(activeCode(model.DiscountTypeMoney, "50"), buyer, sampleLines(), now)

	require.NoError(t, err)
	assert.True(t, dec("50").Equal(amount))
}

func TestEvaluate_RestrictedPercent(t *testing.T) {
	code := activeCode(model.DiscountTypePercent, "20")
	code.ApplicableProducts = []uuid.UUID{productA}

	amount, err := Evaluate(code, buyer, sampleLines(), now)

	require.NoError(t, err)
	assert.True(t, dec("40").Equal(amount))
}

func TestCheckEligibility(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *model.DiscountCode)
		wantErr error
	}{
		{name: "disabled code reads as missing", mutate: func(c *model.DiscountCode) { c.Disabled = true }, wantErr: model.ErrDiscountNotFound},
		{name: "not started", mutate: func(c *model.DiscountCode) { c.StartDate = now.Add(time.Hour) }, wantErr: model.ErrDiscountNotStarted},
		{name: "expired", mutate: func(c *model.DiscountCode) { c.EndDate = now.Add(-time.Hour) }, wantErr: model.ErrDiscountExpired},
		{
			name: "exhausted",
			mutate: func(c *model.DiscountCode) {
				c.IsUsageLimit = true
				c.UsageLimit = 2
				c.Used = 2
			},
			wantErr: model.ErrDiscountExhausted,
		},
		{
			name: "unlimited code ignores used counter",
			mutate: func(c *model.DiscountCode) {
				c.UsageLimit = 1
				c.Used = 5
			},
		},
		{name: "already used by buyer", mutate: func(c *model.DiscountCode) { c.UsedBy = []uuid.UUID{uuid.New(), buyer} }, wantErr: model.ErrDiscountAlreadyUsed},
		{name: "no applicable product", mutate: func(c *model.DiscountCode) { c.ApplicableProducts = []uuid.UUID{productC} }, wantErr: model.ErrDiscountNotApplied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := activeCode(model.DiscountTypeMoney, "50")
			tt.mutate(code)

			err := CheckEligibility(code, buyer, sampleLines(), now)

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestCheckEligibility_NilCode(t *testing.T) {
	err := CheckEligibility(nil, buyer, sampleLines(), now)
	assert.ErrorIs(t, err, model.ErrDiscountNotFound)
}

func TestValidateDefinition(t *testing.T) {
	valid := func() *model.DiscountCodeRequest {
		return &model.DiscountCodeRequest{
			Code:      " spring25 ",
			Type:      model.DiscountTypePercent,
			Discount:  dec("10"),
			StartDate: now,
			EndDate:   now.Add(48 * time.Hour),
		}
	}

	req := valid()
	require.NoError(t, ValidateDefinition(req))
	assert.Equal(t, "SPRING25", req.Code)

	tests := []struct {
		name   string
		mutate func(r *model.DiscountCodeRequest)
		msg    string
	}{
		{name: "short code", mutate: func(r *model.DiscountCodeRequest) { r.Code = "AB" }, msg: "between"},
		{name: "unknown type", mutate: func(r *model.DiscountCodeRequest) { r.Type = "gift" }, msg: "discount type"},
		{name: "percent above 100", mutate: func(r *model.DiscountCodeRequest) { r.Discount = dec("120") }, msg: "cannot exceed 100"},
		{name: "zero discount", mutate: func(r *model.DiscountCodeRequest) { r.Discount = decimal.Zero }, msg: "greater than zero"},
		{name: "end before start", mutate: func(r *model.DiscountCodeRequest) { r.EndDate = now.Add(-time.Hour) }, msg: "end date"},
		{
			name: "limit without uses",
			mutate: func(r *model.DiscountCodeRequest) {
				r.IsUsageLimit = true
				r.UsageLimit = 0
			},
			msg: "usage limit",
		},
		{
			name: "cap on money code",
			mutate: func(r *model.DiscountCodeRequest) {
				r.Type = model.DiscountTypeMoney
				r.MaximumDiscount = &sampleCap
			},
			msg: "maximum discount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			err := ValidateDefinition(r)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
