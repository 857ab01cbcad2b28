package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/its27-backend/pkg/security"
)

const orderCodeRandomLength = 4

// OrderCodeGenerator issues human readable order references such as
// ITS-7KQ2-4821. Codes are not checked for uniqueness.
type OrderCodeGenerator struct {
	prefix string
	now    func() time.Time
	random func(length int) (string, error)
}

// NewOrderCodeGenerator builds a generator for prefix using the wall clock.
func NewOrderCodeGenerator(prefix string) *OrderCodeGenerator {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "ITS"
	}
	return &OrderCodeGenerator{
		prefix: prefix,
		now:    time.Now,
		random: func(length int) (string, error) {
			return security.RandomString(security.UpperAlphaNumeric, length)
		},
	}
}

// Generate returns prefix, a random segment, and the last four digits of the
// current unix time in milliseconds.
func (g *OrderCodeGenerator) Generate() (string, error) {
	segment, err := g.random(orderCodeRandomLength)
	if err != nil {
		return "", fmt.Errorf("generate order code: %w", err)
	}
	millis := g.now().UnixMilli() % 10000
	if millis < 0 {
		millis = -millis
	}
	return fmt.Sprintf("%s-%s-%04d", g.prefix, segment, millis), nil
}
