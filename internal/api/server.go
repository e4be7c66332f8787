package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/tokenvest/tokenvest-api/docs"
	v1 "github.com/tokenvest/tokenvest-api/internal/api/handler/v1"
	"github.com/tokenvest/tokenvest-api/internal/api/middleware"
	"github.com/tokenvest/tokenvest-api/internal/config"
	"github.com/tokenvest/tokenvest-api/internal/repository"
	"github.com/tokenvest/tokenvest-api/internal/repository/dao"
	"github.com/tokenvest/tokenvest-api/internal/service"
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

	authHandler := s.initAuthHandler(db)
	campaignHandler := s.initCampaignHandler(db)
	investmentHandler := s.initInvestmentHandler(db)
	dividendHandler := s.initDividendHandler(db)
	kycHandler := s.initKYCHandler(db)
	s.MountHandlers(authHandler, campaignHandler, investmentHandler, dividendHandler, kycHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initCampaignHandler(db *gorm.DB) *v1.CampaignHandler {
	campaignDAO := dao.NewCampaignDAO(db)
	repo := repository.NewCampaignRepository(campaignDAO)
	svc := service.NewCampaignService(repo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewCampaignHandler(svc, uSvc)

	return handler
}

func (s *Server) initInvestmentHandler(db *gorm.DB) *v1.InvestmentHandler {
	investmentDAO := dao.NewInvestmentDAO(db)
	repo := repository.NewInvestmentRepository(investmentDAO)
	campaignRepo := repository.NewCampaignRepository(dao.NewCampaignDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewInvestmentService(repo, campaignRepo, userRepo, s.Config.API.KYCPolicy)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewInvestmentHandler(svc, uSvc)

	return handler
}

func (s *Server) initDividendHandler(db *gorm.DB) *v1.DividendHandler {
	dividendDAO := dao.NewDividendDAO(db)
	repo := repository.NewDividendRepository(dividendDAO)
	campaignRepo := repository.NewCampaignRepository(dao.NewCampaignDAO(db))
	svc := service.NewDividendService(repo, campaignRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewDividendHandler(svc, uSvc)

	return handler
}

func (s *Server) initKYCHandler(db *gorm.DB) *v1.KYCHandler {
	kycDAO := dao.NewKYCDAO(db)
	repo := repository.NewKYCRepository(kycDAO)
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewKYCService(repo, userRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewKYCHandler(svc, uSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	campaignHandler *v1.CampaignHandler,
	investmentHandler *v1.InvestmentHandler,
	dividendHandler *v1.DividendHandler,
	kycHandler *v1.KYCHandler,
) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)
		public.GET("/campaigns", campaignHandler.HandleListCampaigns)
		public.GET("/campaigns/:campaignID", campaignHandler.HandleGetCampaign)
		public.POST("/kyc/webhook", kycHandler.HandleWebhook)
	}

	optional := s.Router.Group(basePath, authenticator.VerifyJWTOptional())
	{
		optional.GET("/campaigns/:campaignID/dividends", dividendHandler.HandleListDividends)
	}

	authed := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		authed.POST("/campaigns", campaignHandler.HandleCreateCampaign)
		authed.GET("/campaigns/:campaignID/investments", investmentHandler.HandleListInvestments)
		authed.POST("/investments", investmentHandler.HandleCreateInvestment)
		authed.POST("/dividends", dividendHandler.HandleDeclareDividend)
		authed.POST("/dividends/:dividendID/claim", dividendHandler.HandleClaimDividend)
		authed.GET("/dividends/:dividendID/claims", dividendHandler.HandleGetClaims)
		authed.POST("/kyc/session", kycHandler.HandleRequestSession)
		authed.POST("/kyc/files", kycHandler.HandleAddFile)
		authed.GET("/kyc/status", kycHandler.HandleGetStatus)
		authed.GET("/admin/kyc/pending", kycHandler.HandleListPending)
		authed.PUT("/admin/kyc/:userID/status", kycHandler.HandleOverrideStatus)
		authed.GET("/admin/kyc/:userID/history", kycHandler.HandleGetHistory)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "TokenVest API"
	docs.SwaggerInfo.Description = "Investment ledger and dividend distribution API for tokenized crowdfunding campaigns."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
