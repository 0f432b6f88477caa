package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anu-devcode/deploy-test-sub001/internal/api/httpx"
	"github.com/anu-devcode/deploy-test-sub001/internal/auth"
)

const (
	authorizationHeader = "Authorization"
	bearerScheme        = "bearer"
	TenantHeader        = "X-Tenant-Id"
)

// Authenticate verifies a bearer token when one is sent and stores the
// principal in the context. Requests without an Authorization header pass
// through anonymously; a header that does not verify is rejected.
func Authenticate(maker *auth.Maker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(authorizationHeader)
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			fields := strings.Fields(header)
			if len(fields) != 2 || strings.ToLower(fields[0]) != bearerScheme {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_authorization_header", "expected a bearer token")
				return
			}
			principal, err := maker.VerifyToken(fields[1])
			if err != nil {
				if errors.Is(err, auth.ErrExpiredToken) {
					httpx.WriteError(w, http.StatusUnauthorized, "token_expired", "token has expired")
					return
				}
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "token is invalid")
				return
			}

			annotate(r.Context(), principal.UserID, principal.TenantID)
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// Tenant resolves the tenant of the request. For authenticated calls the
// token's tenant wins and a disagreeing X-Tenant-Id header is refused.
// Anonymous calls must name their tenant in the header.
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get(TenantHeader))
		tenantID := header

		if p, ok := auth.PrincipalFrom(r.Context()); ok {
			if header != "" && header != p.TenantID {
				httpx.WriteError(w, http.StatusForbidden, "tenant_mismatch", "token tenant does not match X-Tenant-Id")
				return
			}
			tenantID = p.TenantID
		}
		if tenantID == "" {
			httpx.WriteError(w, http.StatusBadRequest, "tenant_required", "X-Tenant-Id header is required")
			return
		}

		annotate(r.Context(), "", tenantID)
		next.ServeHTTP(w, r.WithContext(httpx.WithTenant(r.Context(), tenantID)))
	})
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFrom(r.Context()); !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff admits principals whose role is marked as staff.
func RequireStaff(policy *auth.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFrom(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
				return
			}
			if !policy.IsStaff(p.Role) {
				httpx.WriteError(w, http.StatusForbidden, "staff_only", "staff role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequirePermission(policy *auth.Policy, perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := auth.PrincipalFrom(r.Context())
			if !policy.Allows(p, perm) {
				httpx.WriteError(w, http.StatusForbidden, "missing_permission", "missing permission "+perm)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
