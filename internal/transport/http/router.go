package http

import (
	"net/http"
	"time"

	"iam/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Auth       service.AuthService
	Users      service.UserService
	Roles      service.RoleService
	Privileges service.PrivilegeService
	Tokens     service.TokenService

	// UserStore backs the auth middleware's active-role lookup.
	UserStore service.UserRepository

	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(httprate.LimitByIP(100, 1*time.Minute))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(CountRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	auth := &AuthHandler{Auth: cfg.Auth, Users: cfg.Users}
	users := &UserHandler{Users: cfg.Users, Roles: cfg.Roles}
	roles := &RoleHandler{Roles: cfg.Roles, Privileges: cfg.Privileges}
	privileges := &PrivilegeHandler{Privileges: cfg.Privileges}

	requireAuth := RequireAuth(cfg.Tokens, cfg.UserStore)

	r.Route("/v1/auth", func(r chi.Router) {
		// Stricter limit on the credential-bearing endpoints.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(10, 1*time.Minute))
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
		})
		r.Post("/refresh", auth.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", auth.Me)
			r.Post("/logout", auth.Logout)
			r.Post("/verify", auth.VerifyAccount)
			r.Post("/reset-password", auth.ResetPassword)
			r.Post("/change-password", auth.ChangePassword)
			r.Post("/check-privilege", auth.CheckPrivilege)
			r.Post("/switch-role", roles.SwitchRole)
		})
	})

	r.Route("/v1/users", func(r chi.Router) {
		r.Use(requireAuth)
		r.With(RequirePrivilege(cfg.Auth, "user:read")).Get("/", users.List)
		r.With(RequirePrivilege(cfg.Auth, "user:read")).Get("/{id}", users.Get)
		r.With(RequirePrivilege(cfg.Auth, "user:update")).Patch("/{id}", users.Update)
		r.With(RequirePrivilege(cfg.Auth, "user:delete")).Delete("/{id}", users.Delete)

		r.With(RequirePrivilege(cfg.Auth, "role:read")).Get("/{id}/roles", users.ListRoles)
		r.With(RequirePrivilege(cfg.Auth, "role:update")).Post("/{id}/roles", users.AssignRoles)
		r.With(RequirePrivilege(cfg.Auth, "role:update")).Delete("/{id}/roles/{roleId}", users.RemoveRole)
	})

	r.Route("/v1/roles", func(r chi.Router) {
		r.Use(requireAuth)
		r.With(RequirePrivilege(cfg.Auth, "role:create")).Post("/", roles.Create)
		r.With(RequirePrivilege(cfg.Auth, "role:read")).Get("/", roles.List)
		r.With(RequirePrivilege(cfg.Auth, "role:read")).Get("/{id}", roles.Get)
		r.With(RequirePrivilege(cfg.Auth, "role:update")).Patch("/{id}", roles.Update)
		r.With(RequirePrivilege(cfg.Auth, "role:delete")).Delete("/{id}", roles.Delete)

		r.With(RequirePrivilege(cfg.Auth, "role:read")).Get("/{id}/privileges", roles.ListPrivileges)
		r.With(RequirePrivilege(cfg.Auth, "role:update")).Post("/{id}/privileges/{privilegeId}", roles.GrantPrivilege)
		r.With(RequirePrivilege(cfg.Auth, "role:update")).Delete("/{id}/privileges/{privilegeId}", roles.RevokePrivilege)
	})

	r.Route("/v1/privileges", func(r chi.Router) {
		r.Use(requireAuth)
		r.With(RequirePrivilege(cfg.Auth, "system:manage")).Post("/", privileges.Create)
		r.With(RequirePrivilege(cfg.Auth, "role:read")).Get("/", privileges.List)
		r.With(RequirePrivilege(cfg.Auth, "role:read")).Get("/{id}", privileges.Get)
		r.With(RequirePrivilege(cfg.Auth, "system:manage")).Patch("/{id}", privileges.Update)
		r.With(RequirePrivilege(cfg.Auth, "system:manage")).Delete("/{id}", privileges.Delete)
	})

	return r
}
