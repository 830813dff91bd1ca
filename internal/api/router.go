package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/magicstays/villa-api/internal/api/handler"
	"github.com/magicstays/villa-api/internal/api/middleware"
	"github.com/magicstays/villa-api/internal/core/domain"
	"github.com/magicstays/villa-api/internal/core/ports"
	"github.com/magicstays/villa-api/internal/infrastructure/cache"
)

// RouterConfig carries everything the router needs. Handlers are shared by
// every API line; the Versions table decides prefixes, guards and caching.
type RouterConfig struct {
	Villas       ports.Repository[domain.Villa]
	VillaSeq     ports.Sequencer
	VillaNumbers ports.Repository[domain.VillaNumber]
	AuthService  ports.AuthService
	Cache        cache.Store
	JWTSecret    string
	Versions     []Version

	Mongo  *mongo.Database
	Redis  *redis.Client
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("villa"))

	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Auth routes (version-neutral) ---
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	e.POST("/api/users/login", authHandler.Login)
	e.POST("/api/users/register", authHandler.Register)

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	if cfg.Mongo != nil {
		e.GET("/health/ready", handler.NewReadinessHandler(cfg.Mongo, cfg.Redis).Readiness)
	}

	// --- Versioned resource routes ---
	villaHandler := handler.NewVillaHandler(cfg.Villas, cfg.VillaSeq, cfg.Logger)
	villaNumberHandler := handler.NewVillaNumberHandler(cfg.VillaNumbers, cfg.Villas, cfg.Logger)

	for _, v := range cfg.Versions {
		g := e.Group(v.Prefix)
		registerResource(g, "/villas", resourceHandlers{
			List:   villaHandler.List,
			Get:    villaHandler.Get,
			Create: villaHandler.Create,
			Update: villaHandler.Update,
			Patch:  villaHandler.Patch,
			Delete: villaHandler.Delete,
		}, v, cfg)
		registerResource(g, "/villa-numbers", resourceHandlers{
			List:   villaNumberHandler.List,
			Get:    villaNumberHandler.Get,
			Create: villaNumberHandler.Create,
			Update: villaNumberHandler.Update,
			Patch:  villaNumberHandler.Patch,
			Delete: villaNumberHandler.Delete,
		}, v, cfg)
	}

	return e
}

// resourceHandlers groups the capability set of one resource so all resources
// register identically.
type resourceHandlers struct {
	List   echo.HandlerFunc
	Get    echo.HandlerFunc
	Create echo.HandlerFunc
	Update echo.HandlerFunc
	Patch  echo.HandlerFunc
	Delete echo.HandlerFunc
}

func registerResource(g *echo.Group, path string, h resourceHandlers, v Version, cfg RouterConfig) {
	read := func(cap Capability) []echo.MiddlewareFunc {
		chain := guardChain(v.guard(cap), cfg.JWTSecret)
		if v.CacheTTL > 0 && cfg.Cache != nil {
			chain = append(chain, middleware.Cache(cfg.Cache, v.CacheTTL))
		}
		return chain
	}

	g.GET(path, h.List, read(CapList)...)
	g.GET(path+"/:id", h.Get, read(CapGet)...)
	g.POST(path, h.Create, guardChain(v.guard(CapCreate), cfg.JWTSecret)...)
	g.PUT(path+"/:id", h.Update, guardChain(v.guard(CapUpdate), cfg.JWTSecret)...)
	g.PATCH(path+"/:id", h.Patch, guardChain(v.guard(CapPatch), cfg.JWTSecret)...)
	g.DELETE(path+"/:id", h.Delete, guardChain(v.guard(CapDelete), cfg.JWTSecret)...)
}

// guardChain converts a declarative requirement into the middleware enforcing
// it: token validation first, then the role gate.
func guardChain(req Requirement, jwtSecret string) []echo.MiddlewareFunc {
	var chain []echo.MiddlewareFunc
	if req.Auth || len(req.Roles) > 0 {
		chain = append(chain, middleware.Auth(jwtSecret))
	}
	if len(req.Roles) > 0 {
		chain = append(chain, middleware.RBAC(req.Roles...))
	}
	return chain
}
