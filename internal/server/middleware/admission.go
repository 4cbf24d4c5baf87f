package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/fulmenhq/gofulmen/errors"

	"github.com/stellium/stellium/internal/config"
	"github.com/stellium/stellium/internal/core/admission"
	"github.com/stellium/stellium/internal/metrics"
)

// Admission returns a per-class admission middleware factory. Each wrapped
// route charges the caller's budget for the named class before the handler
// runs; exhausted budgets get a 429 and the handler never executes.
func Admission(ctrl *admission.Controller, classes map[string]config.AdmissionClass) func(class string) func(http.Handler) http.Handler {
	return func(class string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				budget, ok := classes[class]
				if !ok {
					// Unconfigured classes admit everything. Budgets are
					// defaulted at config load, so this only happens for a
					// class name typo in code.
					next.ServeHTTP(w, r)
					return
				}

				result := ctrl.Check(admission.CallerKey(r), class, budget.Limit, budget.Window)
				metrics.RecordAdmission(class, result.Allowed)

				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(budget.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

				if !result.Allowed {
					envelope := errors.NewErrorEnvelope("RATE_LIMITED",
						fmt.Sprintf("too many %s requests, retry after %s", class, result.ResetAt.UTC().Format(http.TimeFormat))).
						WithCorrelationID(GetRequestID(r.Context()))
					writeErrorResponse(w, envelope, http.StatusTooManyRequests)
					return
				}

				next.ServeHTTP(w, r)
			})
		}
	}
}
