package checkout

import (
	"testing"

	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() ShippingForm {
	return ShippingForm{
		Name:     "María Solís",
		Phone:    "8888-1234",
		Province: "San José",
		Canton:   "Escazú",
		District: "San Rafael",
		Address:  "200 m norte de la iglesia, casa blanca",
	}
}

func TestShippingFormValid(t *testing.T) {
	require.NoError(t, validForm().Validate())

	form := validForm()
	form.Province = "  limón "
	require.NoError(t, form.Validate())
	assert.Equal(t, "Limón", form.Normalize().Province)
}

func TestShippingFormRequiresEveryField(t *testing.T) {
	fields := map[string]func(*ShippingForm){
		"name":     func(f *ShippingForm) { f.Name = "" },
		"phone":    func(f *ShippingForm) { f.Phone = "  " },
		"province": func(f *ShippingForm) { f.Province = "" },
		"canton":   func(f *ShippingForm) { f.Canton = "" },
		"district": func(f *ShippingForm) { f.District = "\t" },
		"address":  func(f *ShippingForm) { f.Address = "" },
	}
	for field, mutate := range fields {
		form := validForm()
		mutate(&form)
		err := form.Validate()
		require.Error(t, err, field)

		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		details, ok := typed.Details().(pkgerrors.FieldErrors)
		require.True(t, ok)
		assert.Equal(t, "is required", details[field])
	}
}

func TestShippingFormRejectsUnknownProvince(t *testing.T) {
	form := validForm()
	form.Province = "Panamá"
	err := form.Validate()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details := typed.Details().(pkgerrors.FieldErrors)
	assert.Equal(t, "must be a Costa Rica province", details["province"])
}
