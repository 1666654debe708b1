package admin

import (
	"net/http"

	"go.uber.org/zap"

	"anonboard/internal/common"
)

// Guard rejects requests that do not carry a token of a current admin and
// attaches the admin identity to the context of the rest.
func Guard(svc Service, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := common.BearerToken(r)
			if err != nil {
				common.RespondError(w, logger, err, "")
				return
			}

			identity, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				common.RespondError(w, logger, err, "Server error during authentication")
				return
			}

			next.ServeHTTP(w, r.WithContext(common.WithAdmin(r.Context(), identity)))
		})
	}
}
