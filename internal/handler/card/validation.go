package cardhandler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/fazamuttaqien/cards/internal/domain"
	"github.com/fazamuttaqien/cards/pkg/common"
	"github.com/go-playground/validator/v10"
)

const MobileNumberMessage = "Mobile number must be 10 digits"

// mobilePattern accepts the empty string as well as exactly ten digits.
// Callers depend on the empty-string boundary.
var mobilePattern = regexp.MustCompile(`^(|[0-9]{10})$`)

func IsValidMobileNumber(mobileNumber string) bool {
	return mobilePattern.MatchString(mobileNumber)
}

func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return IsValidMobileNumber(fl.Field().String())
	})

	return v
}

// checkMobileNumber runs the mobile tag and reports failures as ErrInvalidMobile.
func checkMobileNumber(v *validator.Validate, mobileNumber string) error {
	if err := v.Var(mobileNumber, "mobile"); err != nil {
		return fmt.Errorf("%w: %q", common.ErrInvalidMobile, mobileNumber)
	}
	return nil
}

// validationMessage turns validator output into the client-facing message.
func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "mobile":
			messages = append(messages, MobileNumberMessage)
		case "required":
			messages = append(messages, fe.Field()+" can not be a null or empty")
		case "len", "number":
			messages = append(messages, fe.Field()+" must be "+strconv.Itoa(domain.CardNumberLength)+" digits")
		case "gt":
			messages = append(messages, fe.Field()+" should be greater than zero")
		case "gte":
			messages = append(messages, fe.Field()+" should be equal or greater than zero")
		default:
			messages = append(messages, fe.Field()+" is invalid")
		}
	}
	return strings.Join(messages, "; ")
}
