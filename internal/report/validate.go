package report

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/period"
)

// ErrInvalidReport 报告未通过表单校验
var ErrInvalidReport = errors.New("invalid report")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("period", validatePeriod)
		_ = validate.RegisterValidation("channel", validateChannel)
	})
	return validate
}

// validatePeriod 周 "YYYY-Www" 或月 "YYYY-MM"
func validatePeriod(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return period.IsWeek(s) || period.IsMonth(s)
}

func validateChannel(fl validator.FieldLevel) bool {
	return model.Channel(fl.Field().String()).Known()
}

// ValidateAE 校验 AE 报告（续约数不得超过到期数、数值非负、周期格式合法、渠道不重复）
func ValidateAE(r model.AEReport) error {
	if err := getValidator().Struct(r); err != nil {
		return wrapValidation(err)
	}
	seen := map[model.Channel]bool{}
	for _, ch := range r.ByChannel {
		if err := getValidator().Var(string(ch.Channel), "channel"); err != nil {
			return fmt.Errorf("%w: unknown channel %q", ErrInvalidReport, ch.Channel)
		}
		if seen[ch.Channel] {
			return fmt.Errorf("%w: duplicate channel %q", ErrInvalidReport, ch.Channel)
		}
		seen[ch.Channel] = true
	}
	return nil
}

// ValidateSales 校验销售报告
func ValidateSales(r model.SalesReport) error {
	if err := getValidator().Struct(r); err != nil {
		return wrapValidation(err)
	}
	seen := map[model.Channel]bool{}
	for _, ch := range r.ByChannel {
		if err := getValidator().Var(string(ch.Channel), "channel"); err != nil {
			return fmt.Errorf("%w: unknown channel %q", ErrInvalidReport, ch.Channel)
		}
		if seen[ch.Channel] {
			return fmt.Errorf("%w: duplicate channel %q", ErrInvalidReport, ch.Channel)
		}
		seen[ch.Channel] = true
	}
	return nil
}

func wrapValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidReport, strings.Join(parts, "; "))
}
