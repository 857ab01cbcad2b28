package enums

import (
	"fmt"
	"strings"
)

// Province is one of the seven Costa Rica provinces accepted for shipping.
type Province string

const (
	ProvinceSanJose    Province = "San José"
	ProvinceAlajuela   Province = "Alajuela"
	ProvinceCartago    Province = "Cartago"
	ProvinceHeredia    Province = "Heredia"
	ProvinceGuanacaste Province = "Guanacaste"
	ProvincePuntarenas Province = "Puntarenas"
	ProvinceLimon      Province = "Limón"
)

var validProvinces = []Province{
	ProvinceSanJose,
	ProvinceAlajuela,
	ProvinceCartago,
	ProvinceHeredia,
	ProvinceGuanacaste,
	ProvincePuntarenas,
	ProvinceLimon,
}

// Provinces returns the shipping provinces in display order.
func Provinces() []Province {
	out := make([]Province, len(validProvinces))
	copy(out, validProvinces)
	return out
}

func (p Province) String() string {
	return string(p)
}

func (p Province) IsValid() bool {
	for _, candidate := range validProvinces {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProvince matches case-insensitively so "limón" and "LIMÓN" both resolve.
func ParseProvince(value string) (Province, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validProvinces {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid province %q", value)
}
