package orders

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/angelmondragon/refabry-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/refabry-storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// CheckoutForm holds the shopper-supplied checkout fields.
type CheckoutForm struct {
	Name    string        `json:"c_name" validate:"min=3"`
	Phone   string        `json:"c_phone" validate:"min=10"`
	Address string        `json:"address" validate:"min=10"`
	Courier enums.Courier `json:"courier" validate:"oneof=steadfast pathao redx paperfly"`
}

// DefaultCheckoutForm is the blank form shown before and after a successful order.
func DefaultCheckoutForm() CheckoutForm {
	return CheckoutForm{Courier: enums.DefaultCourier}
}

var formMessages = map[string]string{
	"c_name":  "Name must be at least 3 characters",
	"c_phone": "Please enter a valid phone number",
	"address": "Address must be at least 10 characters",
	"courier": "Please choose a supported courier",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

func (f CheckoutForm) normalized() CheckoutForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.Courier = enums.Courier(strings.ToLower(strings.TrimSpace(string(f.Courier))))
	if f.Courier == "" {
		f.Courier = enums.DefaultCourier
	}
	return f
}

// Validate checks the form and reports each failing field in the error details.
func (f CheckoutForm) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout form")
	}
	details := map[string]string{}
	for _, fieldErr := range errs {
		msg, known := formMessages[fieldErr.Field()]
		if !known {
			msg = fmt.Sprintf("failed %s", fieldErr.Tag())
		}
		details[fieldErr.Field()] = msg
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout form").WithDetails(details)
}
