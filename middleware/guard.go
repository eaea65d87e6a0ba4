package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	authkern "github.com/kernworks/authkern"
)

// TenantHeader is the request header consulted for the tenant the caller
// wants to act in. When absent, the token's own tenant claim applies.
const TenantHeader = "X-Tenant-ID"

type authResultContextKey struct{}

// AuthResultFromContext returns the authorization result a [Guard]
// stored for the current request.
func AuthResultFromContext(ctx context.Context) (*authkern.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*authkern.AuthResult)
	return res, ok
}

// Guard returns middleware that rejects requests whose bearer token does
// not authorize against kernel for the request's tenant. Dependency
// outages map to 503 so clients can distinguish "retry later" from
// "re-authenticate".
func Guard(kernel *authkern.Kernel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if kernel == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := requestContext(r)
			res, err := kernel.Authorize(ctx, token, r.Header.Get(TenantHeader))
			if err != nil {
				http.Error(w, statusText(err), statusCode(err))
				return
			}

			ctx = context.WithValue(ctx, authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware that additionally requires the resolved
// role to be one of allowed. An empty allow-list behaves like [Guard].
func RequireRole(kernel *authkern.Kernel, allowed ...authkern.Role) func(http.Handler) http.Handler {
	allowedSet := make(map[authkern.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	guard := Guard(kernel)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowedSet) > 0 {
				res, ok := AuthResultFromContext(r.Context())
				if !ok {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				if _, ok := allowedSet[res.Role]; !ok {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// requestContext decorates the request context with the client metadata
// the kernel records in audit events.
func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if ip := clientIP(r); ip != "" {
		ctx = authkern.WithClientIP(ctx, ip)
	}
	if ua := r.Header.Get("User-Agent"); ua != "" {
		ctx = authkern.WithUserAgent(ctx, ua)
	}
	return ctx
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, authkern.ErrNoRoleAssigned):
		return http.StatusForbidden
	case errors.Is(err, authkern.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}

func statusText(err error) string {
	switch statusCode(err) {
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusServiceUnavailable:
		return "service unavailable"
	default:
		return "unauthorized"
	}
}
