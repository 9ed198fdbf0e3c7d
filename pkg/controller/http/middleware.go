package http

import (
	"net/http"
	"strings"

	"github.com/mnemo-lab/mnemosyne/pkg/domain/model/auth"
	"github.com/mnemo-lab/mnemosyne/pkg/usecase"
)

// authMiddleware validates the bearer credential "tokenID:tokenSecret" and
// puts the resolved token into the request context.
func authMiddleware(uc *usecase.UseCases) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			credential, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			tokenID, secret, ok := strings.Cut(credential, ":")
			if !ok {
				http.Error(w, "Invalid authentication token", http.StatusUnauthorized)
				return
			}

			token, err := uc.ValidateToken(r.Context(), auth.TokenID(tokenID), auth.TokenSecret(secret))
			if err != nil {
				http.Error(w, "Invalid authentication token", http.StatusUnauthorized)
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
