package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/metricsx"
	"github.com/aussiebroadwan/crm/pkg/slogx"

	_ "github.com/aussiebroadwan/crm/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

const serviceName = "auth"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store      store.Store
	cacheCheck CheckFunc

	LoginService *service.LoginService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// SetCacheCheck adds the directory cache to the readiness report.
func (r *Router) SetCacheCheck(fn CheckFunc) {
	r.cacheCheck = fn
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("GET /metrics", metricsx.Handler())
	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			CRM Authentication Service API
//	@version		1.0.0
//	@description	Issues and verifies the bearer tokens every CRM service accepts.
//	@description
//	@description				Tokens are HMAC-signed with a secret shared by all services and carry the user id, username, name, department and role.
//
//	@contact.name				AussieBroadWAN Team
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from /auth/login. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern with per-route metrics.
func (r *Router) handle(pattern string, h http.Handler) {
	r.Mux.Handle(pattern, metricsx.InstrumentRoute(serviceName, pattern, h))
}

func (r *Router) registerAuth() {
	observe := metricsx.VerifyObserver(serviceName)

	// POST /auth/login - strict rate limit by IP + username (prevent brute force)
	r.handle("POST /auth/login",
		httpx.Chain(&LoginHandler{LoginService: r.LoginService},
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
		),
	)

	// GET /auth/me - authenticated, lenient rate limit by user
	r.handle("GET /auth/me",
		httpx.Chain(&MeHandler{LoginService: r.LoginService},
			httpx.AuthnMiddleware(r.verifier, observe),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// POST /auth/validate - public, answers true/false only
	r.handle("POST /auth/validate",
		httpx.Chain(&ValidateHandler{LoginService: r.LoginService, Observe: observe},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.handle("POST /auth/logout",
		httpx.Chain(&LogoutHandler{LoginService: r.LoginService, Verifier: r.verifier},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cacheCheck),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
