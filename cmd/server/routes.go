package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/internal/auth"
	"github.com/stem-workshop/certificates/internal/certificate"
	"github.com/stem-workshop/certificates/internal/exports"
	"github.com/stem-workshop/certificates/internal/issuances"
	"github.com/stem-workshop/certificates/internal/middleware"
	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/internal/qrcode"
	"github.com/stem-workshop/certificates/internal/registrations"
	"github.com/stem-workshop/certificates/pkg/response"
)

type routeHandlers struct {
	auth          *auth.Handler
	registrations *registrations.Handler
	qr            *qrcode.Handler
	certificate   *certificate.Handler
	issuances     *issuances.Handler
	exports       *exports.Handler
}

func newRouter(corsOrigins string, verifier middleware.SessionVerifier, h routeHandlers, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	// Match on the escaped path so free-text params such as workshop titles may contain "/".
	router.UseRawPath = true
	router.HandleMethodNotAllowed = true
	router.NoMethod(response.MethodNotAllowed)
	router.NoRoute(func(c *gin.Context) { response.NotFound(c, "Not found") })
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(corsOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (cookie session)
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/login", h.auth.Login)
		authGroup.GET("/callback", h.auth.Callback)
		authGroup.POST("/logout", h.auth.Logout)
		authGroup.GET("/status", h.auth.Status)
	}
	router.POST("/check-secretcode", h.auth.CheckSecretCode)

	// Public: workshop registrations
	router.POST("/submit-form", h.registrations.Submit)
	router.GET("/get-submissions", h.registrations.List)
	router.GET("/get-submission/:id", h.registrations.Get)
	router.GET("/get-submission/:id/qr", h.qr.Registration)

	// Public: certificate issuance records
	router.POST("/submit-certificate", h.issuances.Submit)
	router.GET("/get-certificate", h.issuances.List)
	router.GET("/get-certificate/:workshopTitle", h.issuances.ByWorkshopTitle)

	// Session required
	session := router.Group("")
	session.Use(middleware.Session(verifier))
	{
		session.POST("/generate-certificate", h.certificate.Generate)
		session.GET("/certificates/:id/download-url", h.issuances.DownloadURL)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.Session(verifier), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/export/certificates.csv", h.exports.Certificates)
		admin.GET("/export/submissions.csv", h.exports.Submissions)
		admin.GET("/workshops/:id/draw", h.issuances.Draw)
	}

	return router
}
