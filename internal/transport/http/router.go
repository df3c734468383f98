package http

import (
	"net/http"

	"github.com/bloodcamp-api/internal/application/admin"
	"github.com/bloodcamp-api/internal/application/adminrequest"
	"github.com/bloodcamp-api/internal/application/attachment"
	"github.com/bloodcamp-api/internal/application/auth"
	"github.com/bloodcamp-api/internal/application/donor"
	"github.com/bloodcamp-api/internal/application/form"
	"github.com/bloodcamp-api/internal/application/notice"
	"github.com/bloodcamp-api/internal/config"
	"github.com/bloodcamp-api/internal/pkg/authz"
	"github.com/bloodcamp-api/internal/transport/http/handler"
	appmiddleware "github.com/bloodcamp-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Services holds the application services the router exposes.
type Services struct {
	Auth         auth.Service
	Admin        admin.Service
	AdminRequest adminrequest.Service
	Donor        donor.Service
	Notice       notice.Service
	Form         form.Service
	Attachment   attachment.Service
}

// NewServices wires application services onto infrastructure.
func NewServices(cfg *config.Config, deps *Deps) *Services {
	attachSvc := attachment.NewService(attachment.ServiceDeps{Store: deps.S3Store, MaxBytes: cfg.MaxUploadBytes})
	return &Services{
		Auth: auth.NewService(auth.ServiceDeps{
			UserRepo: deps.UserRepo, Mailer: deps.Mailer, JWTProvider: deps.JWTProvider,
		}),
		Admin: admin.NewService(admin.ServiceDeps{
			AdminRepo: deps.AdminRepo, JWTProvider: deps.JWTProvider,
		}),
		AdminRequest: adminrequest.NewService(adminrequest.ServiceDeps{
			RequestRepo: deps.AdminRequestRepo,
			AdminRepo:   deps.AdminRepo,
			Mailer:      deps.Mailer,
			SMSSender:   deps.SMSSender,
		}),
		Donor:      donor.NewService(donor.ServiceDeps{DonorRepo: deps.DonorRepo, MinAge: cfg.DonorMinAge}),
		Notice:     notice.NewService(notice.ServiceDeps{NoticeRepo: deps.NoticeRepo, Attachments: attachSvc}),
		Form:       form.NewService(form.ServiceDeps{FormRepo: deps.FormRepo, Attachments: attachSvc}),
		Attachment: attachSvc,
	}
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps, svcs *Services) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(appmiddleware.Auth(deps.JWTProvider, appmiddleware.NewStoreResolver(deps.UserRepo, deps.AdminRepo)))

	// 5 requests/second, burst of 10. Applied to OTP and login endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10, cfg.TrustedProxies...)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(svcs.Auth)
	adminH := handler.NewAdminHandler(svcs.Admin)
	requestH := handler.NewAdminRequestHandler(svcs.AdminRequest)
	donorH := handler.NewDonorHandler(svcs.Donor)
	noticeH := handler.NewNoticeHandler(svcs.Notice, cfg.MaxUploadBytes)
	formH := handler.NewFormHandler(svcs.Form, cfg.MaxUploadBytes)
	attachH := handler.NewAttachmentHandler(svcs.Attachment)

	userOnly := appmiddleware.RequireRoles(authz.TokenUser)
	userOrAdmin := appmiddleware.RequireRoles(authz.TokenUser, authz.TokenAdmin)
	adminOnly := appmiddleware.RequireRoles(authz.TokenAdmin)
	superAdmin := appmiddleware.RequireRoles(authz.TokenAdmin, authz.TokenSuperAdmin)

	r.Get("/health-check/{action}", healthH.Ping)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/signup", authH.Signup)
			r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
			r.With(sensitiveRL.Limit).Post("/resend-otp", authH.ResendOTP)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.With(sensitiveRL.Limit).Post("/login-otp/request", authH.RequestLoginOTP)
			r.With(sensitiveRL.Limit).Post("/login-otp/verify", authH.LoginWithOTP)
			r.With(userOnly).Get("/me", authH.Me)
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/login", adminH.Login)
			r.With(adminOnly).Get("/me", adminH.Me)
		})

		r.Route("/admins", func(r chi.Router) {
			r.With(adminOnly).Get("/", adminH.List)
			r.With(adminOnly).Get("/{id}", adminH.Get)
			r.With(superAdmin).Put("/{id}/role", adminH.ChangeRole)
			r.With(superAdmin).Delete("/{id}", adminH.Delete)
		})

		r.Route("/admin-requests", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/send-otp", requestH.SendOTP)
			r.With(sensitiveRL.Limit).Post("/verify-otp", requestH.VerifyOTP)
			r.With(sensitiveRL.Limit).Post("/submit", requestH.Submit)
			r.With(adminOnly).Get("/", requestH.List)
			r.With(adminOnly).Get("/{id}", requestH.Get)
			r.With(superAdmin).Post("/{id}/{decision}", requestH.Decide)
		})

		r.Route("/donors", func(r chi.Router) {
			r.With(adminOnly).Get("/", donorH.List)
			r.With(adminOnly).Post("/", donorH.Create)
			r.With(adminOnly).Get("/{id}", donorH.Get)
			r.With(adminOnly).Put("/{id}", donorH.Update)
			r.With(adminOnly).Delete("/{id}", donorH.Delete)
			r.With(adminOnly).Post("/{id}/donations", donorH.RecordDonation)
			r.With(userOrAdmin).Get("/{id}/eligibility", donorH.Eligibility)
		})

		r.Route("/notices", func(r chi.Router) {
			r.Get("/", noticeH.List)
			r.Get("/{id}", noticeH.Get)
			r.With(adminOnly).Post("/", noticeH.Create)
			r.With(adminOnly).Put("/{id}", noticeH.Update)
			r.With(adminOnly).Delete("/{id}", noticeH.Delete)
			r.With(adminOnly).Post("/{id}/attachments", noticeH.AddAttachment)
			r.With(adminOnly).Delete("/{id}/attachments/{attachmentID}", noticeH.RemoveAttachment)
		})

		r.Route("/forms", func(r chi.Router) {
			r.Get("/", formH.List)
			r.Get("/{id}", formH.Get)
			r.With(adminOnly).Post("/", formH.Create)
			r.With(adminOnly).Put("/{id}", formH.Update)
			r.With(adminOnly).Delete("/{id}", formH.Delete)
			r.With(adminOnly).Post("/{id}/attachments", formH.AddAttachment)
			r.With(adminOnly).Delete("/{id}/attachments/{attachmentID}", formH.RemoveAttachment)
		})

		r.With(adminOnly).Get("/attachments/presign", attachH.Presign)
	})

	return r
}
