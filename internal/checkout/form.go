package checkout

import (
	"errors"
	"reflect"
	"strings"

	"github.com/angelmondragon/its27-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

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
	_ = v.RegisterValidation("province", func(fl validator.FieldLevel) bool {
		_, err := enums.ParseProvince(fl.Field().String())
		return err == nil
	})
	return v
}

// ShippingForm is the delivery information collected at checkout.
type ShippingForm struct {
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"required,max=40"`
	Province string `json:"province" validate:"required,province"`
	Canton   string `json:"canton" validate:"required,max=80"`
	District string `json:"district" validate:"required,max=80"`
	Address  string `json:"address" validate:"required,max=500"`
}

// Normalize trims every field and canonicalizes the province spelling.
func (f ShippingForm) Normalize() ShippingForm {
	out := ShippingForm{
		Name:     strings.TrimSpace(f.Name),
		Phone:    strings.TrimSpace(f.Phone),
		Province: strings.TrimSpace(f.Province),
		Canton:   strings.TrimSpace(f.Canton),
		District: strings.TrimSpace(f.District),
		Address:  strings.TrimSpace(f.Address),
	}
	if p, err := enums.ParseProvince(out.Province); err == nil {
		out.Province = p.String()
	}
	return out
}

// Validate checks the normalized form and reports every failing field.
func (f ShippingForm) Validate() error {
	err := validate.Struct(f.Normalize())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping details")
	}
	fields := pkgerrors.FieldErrors{}
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return pkgerrors.Validation("invalid shipping details", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "province":
		return "must be a Costa Rica province"
	}
	return "is invalid"
}
