package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/crm/pkg/authsdk"
	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/metricsx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// Router serves the gateway's own endpoints and hands everything else to the
// Gateway.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	gateway      *Gateway
	routes       []Route
	client       *http.Client
	buildVersion string
	startTime    time.Time
}

func NewRouter(
	gateway *Gateway,
	routes []Route,
	transport http.RoundTripper,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		gateway:      gateway,
		routes:       routes,
		client:       &http.Client{Transport: transport, Timeout: 2 * time.Second},
		buildVersion: buildVersion,
		startTime:    time.Now(),
	}
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(logger),
	}

	r.Mux.Handle("GET /livez", http.HandlerFunc(r.livez))
	r.Mux.Handle("GET /readyz", http.HandlerFunc(r.readyz))
	r.Mux.Handle("GET /metrics", metricsx.Handler())
	r.Mux.Handle("/", gateway)
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) livez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(r.startTime).Round(time.Second).String(),
		Version: r.buildVersion,
	})
}

// readyz pings each upstream's /livez. The gateway is unready only when no
// upstream answers at all.
func (r *Router) readyz(w http.ResponseWriter, req *http.Request) {
	results := make(map[string]string, len(r.routes))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, rt := range r.routes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := r.pingUpstream(req.Context(), rt)
			mu.Lock()
			results[rt.Prefix] = status
			mu.Unlock()
		}()
	}
	wg.Wait()

	overallStatus := "degraded"
	statusCode := http.StatusServiceUnavailable
	for _, status := range results {
		if status == "ok" {
			overallStatus = "ok"
			statusCode = http.StatusOK
			break
		}
	}

	httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
		Status:  overallStatus,
		Uptime:  time.Since(r.startTime).Round(time.Second).String(),
		Version: r.buildVersion,
		Checks:  &authsdk.HealthChecks{Upstreams: results},
	})
}

func (r *Router) pingUpstream(ctx context.Context, rt Route) string {
	u := *rt.Target
	u.Path = "/livez"
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "error: " + err.Error()
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "error: " + err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "error: " + resp.Status
	}
	return "ok"
}
