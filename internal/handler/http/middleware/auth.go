package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
	"github.com/ozziework/contracts-backend-go/internal/handler/http/response"
)

// AuthRequired rejects requests without a valid access token. Actor identity
// itself is resolved per handler via ActorFromRequest.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.Unauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// ActorFromRequest resolves the authenticated actor from the verified JWT
// claims. The bool is false when the claims are missing or malformed.
func ActorFromRequest(r *http.Request) (contract.Actor, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return contract.Actor{}, false
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return contract.Actor{}, false
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return contract.Actor{}, false
	}

	role := contract.Role(roleStr)
	if role != contract.RoleEmployer && role != contract.RoleTraveller {
		return contract.Actor{}, false
	}

	return contract.Actor{UserID: userID, Role: role}, true
}
