package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts a handler's endpoints on a route group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouteRegistrarFunc adapts a function to RouteRegistrar
type RouteRegistrarFunc func(rg *gin.RouterGroup)

// RegisterRoutes calls f(rg)
func (f RouteRegistrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

// Group is a set of registrars mounted under one prefix behind shared
// middleware. A Group is itself a RouteRegistrar, so groups nest.
type Group struct {
	prefix     string
	middleware gin.HandlersChain
	registrars []RouteRegistrar
}

// NewGroup creates a group under prefix ("" keeps the parent path)
func NewGroup(prefix string, middleware ...gin.HandlerFunc) *Group {
	return &Group{prefix: prefix, middleware: middleware}
}

// Register appends registrars to the group
func (g *Group) Register(registrars ...RouteRegistrar) *Group {
	g.registrars = append(g.registrars, registrars...)
	return g
}

// RegisterRoutes mounts the group on rg
func (g *Group) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(g.prefix, g.middleware...)
	for _, r := range g.registrars {
		r.RegisterRoutes(group)
	}
}

// Router is the root group of the versioned API, /api/{version}
type Router struct {
	*Group
	engine     *gin.Engine
	apiVersion string
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the API prefix, "v1" by default
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

// NewRouter creates a Router for engine
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	r.Group = NewGroup("/api/" + r.apiVersion)
	return r
}

// Setup mounts every registered registrar on the engine
func (r *Router) Setup() {
	r.RegisterRoutes(&r.engine.RouterGroup)
}
