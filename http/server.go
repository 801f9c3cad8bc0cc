package http

import (
	"context"
	"expvar"
	"net"
	"net/http"
	"net/http/pprof"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/acme/autocert"

	"greeter"
)

// ShutdownTimeout is the time given for outstanding requests to finish before shutdown.
const ShutdownTimeout = 1 * time.Second

// DefaultAppName prefixes the alert headers when no application name is configured.
const DefaultAppName = "greeterApp"

// Server represents an HTTP server. It is meant to wrap all HTTP functionality
// used by the application so that dependent packages (such as cmd/greeterd)
// do not need to reference the "net/http" package at all.
type Server struct {
	ln      net.Listener
	server  *http.Server
	router  *mux.Router
	handler http.Handler

	// Bind address & domain for the server's listener.
	// If domain is specified, server is run on TLS using acme/autocert.
	Addr   string
	Domain string

	// Application name used in alert headers.
	AppName string

	// Origins allowed to make cross-origin requests.
	CORSOrigins []string

	// Logger receives internal errors.
	Logger log.Logger

	// Services
	GreeterService greeter.GreeterService
}

// NewServer returns a new instance of Server.
func NewServer() *Server {
	s := &Server{
		router:  mux.NewRouter(),
		server:  &http.Server{},
		AppName: DefaultAppName,
		Logger:  log.NewNopLogger(),
	}

	// Our router is wrapped by another function handler to perform some
	// middleware-like tasks that cannot be performed by actual middleware.
	// This includes changing route paths for JSON endpoints & request IDs.
	s.server.Handler = http.HandlerFunc(s.serveHTTP)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.encodeError(r.Context(), greeter.Errorf(greeter.ENOTFOUND, "Not found."), w)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = encodeJSON(w, http.StatusMethodNotAllowed, &ErrorResponse{Error: "Method not allowed."})
	})

	return s
}

// UseTLS returns true if a domain is set for autocert.
func (s *Server) UseTLS() bool {
	return s.Domain != ""
}

// Scheme returns the URL scheme for the server.
func (s *Server) Scheme() string {
	if s.UseTLS() {
		return "https"
	}
	return "http"
}

// Port returns the TCP port for the running server.
// This is useful in tests where we allocate a random port by using ":0".
func (s *Server) Port() int {
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// URL returns the local base URL of the running server.
func (s *Server) URL() string {
	scheme, port := s.Scheme(), s.Port()

	// Use localhost unless a domain is specified.
	domain := "localhost"
	if s.Domain != "" {
		domain = s.Domain
	}

	// Return without port if using standard ports.
	if (scheme == "http" && port == 80) || (scheme == "https" && port == 443) {
		return scheme + "://" + domain
	}
	return scheme + "://" + net.JoinHostPort(domain, strconv.Itoa(port))
}

// Open validates the server options and begins listening on the bind address.
func (s *Server) Open() (err error) {
	if s.GreeterService == nil {
		return greeter.Errorf(greeter.EINTERNAL, "Greeter service required.")
	}
	s.registerRoutes()

	// Allow CORS
	allowedHeaders := handlers.AllowedHeaders([]string{"Content-Type", "Authorization", RequestIDHeader})
	allowedOrigins := handlers.AllowedOrigins(s.CORSOrigins)
	allowedMethods := handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "OPTIONS", "DELETE"})
	exposedHeaders := handlers.ExposedHeaders([]string{
		"Location",
		RequestIDHeader,
		"X-" + s.AppName + "-alert",
		"X-" + s.AppName + "-error",
		"X-" + s.AppName + "-params",
	})
	s.handler = handlers.CORS(allowedOrigins, allowedHeaders, allowedMethods, exposedHeaders)(s.router)

	// Open a listener on our bind address.
	if s.Domain != "" {
		s.ln = autocert.NewListener(s.Domain)
	} else {
		if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
			return err
		}
	}

	// Begin serving requests on the listener. We use Serve() instead of
	// ListenAndServe() because it allows us to check for listen errors (such
	// as trying to use an already open port) synchronously.
	go s.server.Serve(s.ln)

	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	// Override content-type for certain extensions.
	// This allows us to easily cURL API endpoints with a ".json"
	// extension instead of having to explicitly set Content-type & Accept headers.
	// The extension is removed so it doesn't appear in the routes.
	if path.Ext(r.URL.Path) == ".json" {
		r.Header.Set("Accept", "application/json")
		r.Header.Set("Content-type", "application/json")
		r.URL.Path = strings.TrimSuffix(r.URL.Path, ".json")
	}

	// Tag the request with an ID, reusing the caller's if one was sent.
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)
	r = r.WithContext(greeter.NewContextWithRequestID(r.Context(), id))

	// Delegate remaining HTTP handling to the CORS-wrapped gorilla router.
	s.handler.ServeHTTP(w, r)
}

// ListenAndServeTLSRedirect runs an HTTP server on port 80 to redirect users
// to the TLS-enabled port 443 server.
func ListenAndServeTLSRedirect(domain string) error {
	return http.ListenAndServe(":80", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://"+domain, http.StatusFound)
	}))
}

// ListenAndServeDebug runs an HTTP server with /debug endpoints (e.g. pprof, vars).
func ListenAndServeDebug(addr string) error {
	h := http.NewServeMux()
	h.Handle("/debug/vars", expvar.Handler())
	h.HandleFunc("/debug/pprof/", pprof.Index)
	h.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	h.HandleFunc("/debug/pprof/profile", pprof.Profile)
	h.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	h.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return http.ListenAndServe(addr, h)
}
