package middleware

import (
	"net"
	"net/http"
	"strings"

	"triptrek-backend/pkg/common"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Owner resolves the calling user and stores it in the request context.
//
// Tokens are validated by the API Gateway JWT authorizer before the request
// reaches the function, so the middleware only reads claims. The owner comes
// from, in order: the authorizer context of a proxied Lambda request, the
// `sub` claim of the bearer token, and the X-User-ID header used in local
// development. Requests without any of them continue anonymously.
func Owner(logger *zap.Logger) func(next http.Handler) http.Handler {
	parser := jwt.NewParser()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID := ownerFromProxyContext(r)
			if ownerID == "" {
				ownerID = ownerFromBearer(parser, r, logger)
			}
			if ownerID == "" {
				ownerID = strings.TrimSpace(r.Header.Get("X-User-ID"))
			}

			ctx := r.Context()
			if ownerID != "" {
				ctx = common.WithUserID(ctx, ownerID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ownerFromProxyContext(r *http.Request) string {
	proxyCtx, ok := core.GetAPIGatewayV2ContextFromContext(r.Context())
	if !ok || proxyCtx.Authorizer == nil {
		return ""
	}
	if proxyCtx.Authorizer.JWT != nil {
		if sub := proxyCtx.Authorizer.JWT.Claims["sub"]; sub != "" {
			return sub
		}
	}
	if sub, ok := proxyCtx.Authorizer.Lambda["sub"].(string); ok {
		return sub
	}
	return ""
}

func ownerFromBearer(parser *jwt.Parser, r *http.Request, logger *zap.Logger) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(strings.TrimSpace(header[7:]), claims); err != nil {
		logger.Debug("Ignoring unparseable bearer token", zap.Error(err))
		return ""
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// clientIP returns the address used to key per-client limits. RealIP has
// already replaced RemoteAddr with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
