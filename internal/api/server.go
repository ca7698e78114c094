package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/mkstudio/studio-api/docs"
	v1 "github.com/mkstudio/studio-api/internal/api/handler/v1"
	"github.com/mkstudio/studio-api/internal/api/middleware"
	"github.com/mkstudio/studio-api/internal/config"
	"github.com/mkstudio/studio-api/internal/repository"
	"github.com/mkstudio/studio-api/internal/repository/dao"
	"github.com/mkstudio/studio-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	memberRepo := repository.NewMemberRepository(dao.NewMemberDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	ledgerRepo := repository.NewLedgerRepository(dao.NewSaleDAO(db), dao.NewUsageDAO(db), dao.NewInvoiceDAO(db))
	courseRepo := repository.NewCourseRepository(dao.NewCourseDAO(db), dao.NewEnrollmentDAO(db))

	balanceSvc := service.NewBalanceService(ledgerRepo)
	ledgerSvc := service.NewLedgerService(ledgerRepo, courseRepo, memberRepo, balanceSvc)
	courseSvc := service.NewCourseService(courseRepo)
	memberSvc := service.NewMemberService(memberRepo)
	authSvc := service.NewAuthService(userRepo)

	authHandler := v1.NewAuthHandler(s.Config.API, authSvc)
	memberHandler := v1.NewMemberHandler(s.Config.API, memberSvc, balanceSvc, ledgerSvc, courseSvc)
	saleHandler := v1.NewSaleHandler(ledgerSvc)
	courseHandler := v1.NewCourseHandler(courseSvc, ledgerSvc)
	invoiceHandler := v1.NewInvoiceHandler(ledgerSvc)

	s.MountHandlers(authHandler, memberHandler, saleHandler, courseHandler, invoiceHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, memberHandler *v1.MemberHandler, saleHandler *v1.SaleHandler, courseHandler *v1.CourseHandler, invoiceHandler *v1.InvoiceHandler) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/login", authHandler.HandleLogin)
		auth.POST("/auth/set-password", authHandler.HandleSetPassword)
	}

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()

	// Member-scoped routes; adherents only reach their own member.
	members := s.Router.Group(basePath, verifyJWT)
	{
		members.GET("/members/:memberID", memberHandler.HandleGetMember)
		members.GET("/members/:memberID/balance", memberHandler.HandleGetBalance)
		members.GET("/members/:memberID/history", memberHandler.HandleGetHistory)
		members.GET("/members/:memberID/invoices", memberHandler.HandleGetMemberInvoices)
		members.GET("/members/:memberID/sales", memberHandler.HandleGetMemberSales)
		members.GET("/members/:memberID/bookings", memberHandler.HandleGetMemberBookings)
		members.GET("/schedule", courseHandler.HandleGetSchedule)
		members.GET("/invoices/:invoiceID/document", invoiceHandler.HandleGetInvoiceDocument)
		members.POST("/enrollments", courseHandler.HandleEnroll)
		members.DELETE("/enrollments/:enrollmentID", courseHandler.HandleCancelEnrollment)
	}

	admin := s.Router.Group(basePath, verifyJWT, middleware.RequireAdmin())
	{
		admin.GET("/members", memberHandler.HandleGetMembers)
		admin.POST("/members", memberHandler.HandleCreateMember)
		admin.POST("/members/:memberID/debit", memberHandler.HandleDebitSession)
		admin.GET("/sales", saleHandler.HandleGetSales)
		admin.GET("/sales/:saleID", saleHandler.HandleGetSale)
		admin.POST("/sales", saleHandler.HandleCreateSale)
		admin.POST("/courses/exceptional", courseHandler.HandleCreateExceptionalCourse)
		admin.PATCH("/courses/:courseID/bookable", courseHandler.HandleSetBookable)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "MK Studio API"
	docs.SwaggerInfo.Description = "Session packs, balances and course bookings for the studio."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
