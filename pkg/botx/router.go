package botx

import (
	"context"
	"strings"
)

type route struct {
	prefix string
	h      Handler
}

// Router multiplexes requests to handlers by command prefix. Routes are
// matched in registration order, so more specific prefixes must be
// registered first.
type Router struct {
	notFound    Handler
	routes      []route
	middlewares []Middleware
}

// NewRouter returns a multiplexer for handlers.
func NewRouter() *Router {
	return &Router{notFound: NotFound}
}

// Add adds a handler to the router. Re-adding a prefix replaces the
// previous handler.
func (r *Router) Add(prefix string, h Handler) {
	for i := range r.routes {
		if r.routes[i].prefix == prefix {
			r.routes[i].h = h
			return
		}
	}
	r.routes = append(r.routes, route{prefix: prefix, h: h})
}

// Use applies middleware to all handlers.
func (r *Router) Use(mvs ...Middleware) *Router {
	r.middlewares = append(r.middlewares, mvs...)
	return r
}

// With returns a new router with middleware applied.
func (r *Router) With(mvs ...Middleware) *Router {
	return r.Clone().Use(mvs...)
}

// Clone returns a copy of the router.
func (r *Router) Clone() *Router {
	rtr := NewRouter()
	rtr.notFound = r.notFound

	rtr.routes = make([]route, len(r.routes))
	copy(rtr.routes, r.routes)

	rtr.middlewares = make([]Middleware, len(r.middlewares))
	copy(rtr.middlewares, r.middlewares)

	return rtr
}

// Group registers handlers with their own middleware stack.
func (r *Router) Group(f func(rtr *Router)) {
	nested := NewRouter()
	f(nested)

	for _, rt := range nested.routes {
		h := rt.h
		for i := len(nested.middlewares) - 1; i >= 0; i-- {
			h = nested.middlewares[i](h)
		}
		r.Add(rt.prefix, h)
	}
}

// NotFound sets a not found handler to the router.
func (r *Router) NotFound(h Handler) {
	r.notFound = h
}

// Handle handles request.
func (r *Router) Handle(ctx context.Context, req Request) ([]Response, error) {
	if req.Text == "" {
		return nil, nil
	}

	h := r.notFound
	for _, rt := range r.routes {
		if rt.prefix == "" {
			continue
		}
		if strings.HasPrefix(req.Text, rt.prefix) {
			h = rt.h
			break
		}
	}

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}

	return h(ctx, req)
}
