package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"orgroles/internal/auth"
	"orgroles/internal/config"
	"orgroles/internal/events"
	"orgroles/internal/gating"
	"orgroles/internal/http/handlers"
	"orgroles/internal/metrics"
	"orgroles/internal/models"
	"orgroles/internal/onboarding"
	"orgroles/internal/orgcsv"
	"orgroles/internal/rbac"
	"orgroles/internal/store"
)

type Deps struct {
	DB     *gorm.DB
	Config config.Config
	Log    *zap.Logger
	Events *events.Dispatcher
}

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	st := store.New(d.DB)
	reg := rbac.Registry{DB: d.DB}
	chk := rbac.Checker{DB: d.DB}
	nonces := auth.NewNonces(cfg.JWTSecret, cfg.TokenTTL)
	svc := onboarding.New(st, reg, d.Events, d.Log.Named("onboarding"))
	gate := gating.Gate{MyAccountURL: cfg.MyAccountURL}
	structure := handlers.Structure{
		Importer:       orgcsv.NewImporter(st, reg, d.Log.Named("import")),
		Exporter:       orgcsv.NewExporter(st, reg),
		Nonces:         nonces,
		Events:         d.Events,
		Log:            d.Log.Named("structure"),
		NoticeURL:      cfg.AdminNoticeURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	r := gin.New()
	r.Use(gin.Recovery(), metrics.Middleware(), auth.Identify(d.DB, cfg.JWTSecret), requestLogger(d.Log.Named("http")))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/logout", handlers.LogoutHandler())

	// Public routes
	pub := r.Group("/api/v1")
	{
		pub.POST("/auth/login", handlers.LoginHandler(st, cfg.JWTSecret, cfg.SessionTTL))
		pub.POST("/auth/register", handlers.RegisterHandler(svc, cfg.JWTSecret, cfg.SessionTTL))
		pub.GET("/registration/form", handlers.RegistrationForm(svc))

		// Dependent dropdowns
		pub.GET("/lookups/token", handlers.LookupToken(nonces))
		pub.GET("/lookups/departments", handlers.DepartmentsForCompany(st, nonces))
		pub.POST("/lookups/departments", handlers.DepartmentsForCompany(st, nonces))
		pub.POST("/lookups/job-roles", handlers.JobRolesForDepartment(st, nonces))

		pub.GET("/storefront/policy", handlers.StorefrontPolicy(st, gate))
	}

	api := r.Group("/api/v1", auth.RequireLogin())
	{
		api.GET("/me", handlers.MeHandler(st, reg, chk))
		api.GET("/account/organization", handlers.AccountOrganization(svc))
		api.PUT("/account/organization", handlers.UpdateAccountOrganization(svc))
	}

	admin := r.Group("/api/v1/admin", auth.RequireLogin(), require(chk, rbac.CapManageOptions))
	{
		// Companies
		admin.GET("/companies", handlers.ListCompanies(st))
		admin.POST("/companies", handlers.CreateCompany(st, d.Events))
		admin.PUT("/companies/:id", handlers.UpdateCompany(st, d.Events))
		admin.DELETE("/companies/:id", handlers.DeleteCompany(st, d.Events))

		// Departments
		admin.GET("/departments", handlers.ListDepartments(st))
		admin.POST("/departments", handlers.CreateDepartment(st, d.Events))
		admin.PUT("/departments/:id", handlers.UpdateDepartment(st, d.Events))
		admin.DELETE("/departments/:id", handlers.DeleteDepartment(st, d.Events))

		// Job roles
		admin.GET("/job-roles", handlers.ListJobRoles(st))
		admin.POST("/job-roles", handlers.CreateJobRole(st, reg, d.Events))
		admin.PUT("/job-roles/:id", handlers.UpdateJobRole(st, reg, d.Events))
		admin.DELETE("/job-roles/:id", handlers.DeleteJobRole(st, d.Events))

		// Access roles
		admin.GET("/access-roles", handlers.ListAccessRoles(reg))
		admin.POST("/access-roles", handlers.CreateAccessRole(reg))

		// Users
		admin.GET("/users", handlers.ListUsers(st))
		admin.GET("/users/:id/organization", handlers.UserOrganization(svc))
		admin.PUT("/users/:id/organization", handlers.UpdateUserOrganization(svc))
		admin.GET("/users/:id/roles", handlers.ListUserRoles(reg))
		admin.POST("/users/:id/roles", handlers.AssignRoles(st, reg))
		admin.POST("/users/:id/deactivate", handlers.SetUserStatus(st, models.UserSuspended))
		admin.POST("/users/:id/activate", handlers.SetUserStatus(st, models.UserActive))

		// Import / export
		admin.GET("/structure/tokens", structure.Tokens())
		admin.POST("/structure/import", structure.Import())
		admin.GET("/structure/export", structure.Export())

		admin.GET("/settings", handlers.GetSettings(st))
		admin.PUT("/settings", handlers.UpdateSettings(st))

		// Audit Trail
		admin.GET("/audit", handlers.ListAudit(st))
	}

	return r
}
