package auth

import (
	"net/http"

	"github.com/selivanovm/creatorpay/pkg/utils"
)

// OperatorMiddleware guards operator-only endpoints with an API key checked
// against a bcrypt hash from configuration. An empty hash disables the
// endpoint entirely.
func OperatorMiddleware(keyHash string) func(http.Handler) http.Handler {
	hashService := &HashService{}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Api-Key")
			if keyHash == "" || key == "" || !hashService.ComparePassword(keyHash, key) {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(r.Context()))
		})
	}
}
