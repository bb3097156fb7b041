package http

import (
	"net/http"
	"net/http/httputil"
	"path"
	"strings"

	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/metricsx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

const serviceName = "gateway"

type upstream struct {
	route   Route
	public  http.Handler
	private http.Handler
}

// Gateway verifies bearer tokens in front of every upstream service and
// forwards the caller identity as headers. Identity headers sent by clients
// are always discarded.
type Gateway struct {
	upstreams []upstream
	public    publicPaths
}

func NewGateway(
	routes []Route,
	public []string,
	verifier jwtx.Verifier,
	transport http.RoundTripper,
) *Gateway {
	g := &Gateway{public: public}
	authn := httpx.AuthnMiddleware(verifier, metricsx.VerifyObserver(serviceName))

	for _, rt := range routes {
		proxy := newProxy(rt, transport)
		g.upstreams = append(g.upstreams, upstream{
			route:   rt,
			public:  metricsx.InstrumentRoute(serviceName, rt.Prefix, proxy),
			private: metricsx.InstrumentRoute(serviceName, rt.Prefix, authn(proxy)),
		})
	}
	return g
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.StripIdentityHeaders(r.Header)

	p := path.Clean("/" + r.URL.Path)
	for _, up := range g.upstreams {
		if !matches(up.route.Prefix, p) {
			continue
		}
		if g.public.allows(p) {
			up.public.ServeHTTP(w, r)
		} else {
			up.private.ServeHTTP(w, r)
		}
		return
	}

	httpx.WriteFail(w, http.StatusNotFound, "no route")
}

func newProxy(rt Route, transport http.RoundTripper) *httputil.ReverseProxy {
	target := rt.Target
	return &httputil.ReverseProxy{
		Transport: transport,
		Rewrite: func(pr *httputil.ProxyRequest) {
			rest := path.Clean("/" + pr.In.URL.Path)
			if rt.Prefix != "/" {
				rest = strings.TrimPrefix(rest, rt.Prefix)
			}

			pr.Out.URL.Scheme = target.Scheme
			pr.Out.URL.Host = target.Host
			pr.Out.URL.Path = target.Path + rest
			pr.Out.URL.RawPath = ""
			pr.Out.Host = ""
			pr.SetXForwarded()

			httpx.StripIdentityHeaders(pr.Out.Header)
			if id, ok := httpx.IdentityFromContext(pr.In.Context()); ok {
				httpx.SetIdentityHeaders(pr.Out.Header, id)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slogx.FromContext(r.Context()).Error("upstream request failed",
				"prefix", rt.Prefix,
				"target", target.Host,
				"err", err,
			)
			httpx.WriteFail(w, http.StatusBadGateway, "upstream unavailable")
		},
	}
}
