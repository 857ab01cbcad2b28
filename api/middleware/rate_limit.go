package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/its27-backend/api/responses"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

// RateCounter is a fixed-window counter; the first hit starts the window.
type RateCounter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// RateLimitPolicy throttles one route. Requests are counted per client IP and,
// when EmailLimit is set, per normalized "email" field of the JSON body.
type RateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

func (p RateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.EmailLimit > 0)
}

type rateDimension struct {
	name  string
	value string
	limit int
}

// RateLimit rejects requests over policy with 429 and a Retry-After header.
// A counter failure is reported as a dependency error rather than letting the
// request through.
func RateLimit(policy RateLimitPolicy, counter RateCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	name := strings.ToLower(strings.TrimSpace(policy.Name))
	if name == "" {
		name = "default"
	}
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || counter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			dims, err := dimensionsFor(policy, r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			for _, dim := range dims {
				key := counter.RateLimitKey(dim.name + ":" + name + ":" + dim.value)
				count, err := counter.IncrWithTTL(ctx, key, policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(dim.limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":    name,
							"dimension": dim.name,
							"attempts":  count,
							"limit":     dim.limit,
						}), "rate_limit.blocked")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Round(time.Second).Seconds())))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Demasiados intentos, espera un momento e intenta de nuevo"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func dimensionsFor(policy RateLimitPolicy, r *http.Request) ([]rateDimension, error) {
	var dims []rateDimension
	if ip := clientIP(r); policy.IPLimit > 0 && ip != "" {
		dims = append(dims, rateDimension{name: "ip", value: ip, limit: policy.IPLimit})
	}
	if policy.EmailLimit <= 0 || r.Body == nil {
		return dims, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		Email string `json:"email"`
	}
	// malformed bodies are the handler's to reject
	if json.Unmarshal(body, &payload) == nil {
		if email := strings.ToLower(strings.TrimSpace(payload.Email)); email != "" {
			// emails never reach redis in clear text
			sum := sha256.Sum256([]byte(email))
			dims = append(dims, rateDimension{name: "email", value: hex.EncodeToString(sum[:]), limit: policy.EmailLimit})
		}
	}
	return dims, nil
}

// clientIP trusts the first X-Forwarded-For hop; the API only runs behind
// the platform router.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
