package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router wraps the standard mux. Route groups register themselves with
// explicit method checks; no third-party router needed at this surface size.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuthRoutes mounts login/logout plus the authenticated profile
// route.
func (r *Router) RegisterAuthRoutes(h *AuthHandler, auth *AuthMiddleware) {
	r.Handle("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Login(w, req)
	})

	r.Handle("/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Logout(w, req)
	})

	r.Handle("/auth/me", auth.Wrap(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Me(w, req)
	}))
}

// RegisterContentRoutes mounts the content CRUD and export routes, all
// behind the auth middleware. /content/export is an exact pattern, so the
// mux prefers it over the /content/{id} prefix route.
func (r *Router) RegisterContentRoutes(h *ContentHandler, auth *AuthMiddleware) {
	r.Handle("/content", auth.Wrap(func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.List(w, req)
		case http.MethodPost:
			h.Create(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	r.Handle("/content/export", auth.Wrap(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Export(w, req)
	}))

	r.Handle("/content/", auth.Wrap(func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, "/content/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodGet:
			h.Get(w, req, id)
		case http.MethodPatch:
			h.Update(w, req, id)
		case http.MethodDelete:
			h.Delete(w, req, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

// RegisterBusinessRoutes mounts the read-only business directory behind the
// auth middleware.
func (r *Router) RegisterBusinessRoutes(h *BusinessHandler, auth *AuthMiddleware) {
	r.Handle("/businesses", auth.Wrap(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.List(w, req)
	}))

	r.Handle("/businesses/", auth.Wrap(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(req.URL.Path, "/businesses/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.Get(w, req, id)
	}))
}

// RegisterHealthRoutes mounts the unauthenticated liveness probe.
func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Health(w, req)
	})
}
