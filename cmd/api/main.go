package main

import (
	"log"

	_ "mtd/api/swagger" // swagger docs
	"mtd/internal/calendar"
	"mtd/internal/category"
	"mtd/internal/config"
	"mtd/internal/database"
	"mtd/internal/fraud"
	"mtd/internal/handler"
	"mtd/internal/hmrc"
	"mtd/internal/middleware"
	"mtd/internal/repository"
	"mtd/internal/service"
	"mtd/internal/submission"
	"mtd/internal/taxcalc"
	"mtd/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           MTD Income Tax API
// @version         1.0
// @description     Quarterly Making Tax Digital filing for self-employment and property income.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	db, err := database.NewConnection(cfg.DSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	rates, err := loadRates(cfg.TaxRatesPath)
	if err != nil {
		log.Fatalf("Failed to load tax rates: %v", err)
	}
	kind, err := calendar.ParsePeriodKind(cfg.PeriodKind)
	if err != nil {
		log.Fatalf("Invalid MTD_PERIOD_KIND: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Outbound HMRC client
	translator := hmrc.NewTranslator(hmrc.DefaultTable())
	hmrcClient := hmrc.NewClient(hmrc.Config{
		BaseURL:      cfg.HMRCBaseURL,
		Environment:  hmrc.Environment(cfg.HMRCEnv),
		TestScenario: cfg.HMRCTestScenario,
		Timeout:      cfg.HMRCTimeout,
	}, hmrc.ContextTokenProvider{}, translator)

	router := submission.NewRouter()
	router.CutoverYear = cfg.CutoverYear
	router.Retry.MaxRetries = cfg.HMRCMaxRetries

	// Set up dependencies (Repository -> Service -> Handler)
	transactionRepo := repository.NewTransactionRepository(db)
	adjustmentRepo := repository.NewAdjustmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	deviceRepo := repository.NewDeviceProfileRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	deviceService := service.NewDeviceService(deviceRepo, auditRepo)
	headers := fraud.NewBuilder(fraud.Vendor{
		ProductName: cfg.VendorProductName,
		Version:     cfg.VendorVersion,
		PublicIP:    cfg.VendorPublicIP,
		LicenseIDs:  cfg.VendorLicenseIDs,
	}, deviceService)

	obligationService := service.NewObligationService(hmrcClient, headers)
	taxService := service.NewTaxService(rates)
	adjustmentService := service.NewAdjustmentService(adjustmentRepo, auditRepo, kind)
	auditService := service.NewAuditService(auditRepo)
	filingService := service.NewFilingService(service.FilingDeps{
		Transactions: transactionRepo,
		Adjustments:  adjustmentRepo,
		Submissions:  submissionRepo,
		Audit:        auditRepo,
		TxManager:    txManager,
		Mapper:       category.NewDefaultMapper(),
		Router:       router,
		Rates:        rates,
		Hmrc:         hmrcClient,
		Headers:      headers,
		Events:       wsHub,
		DefaultKind:  kind,
	})

	// Initialize Handlers
	obligationHandler := handler.NewObligationHandler(obligationService, translator)
	filingHandler := handler.NewFilingHandler(filingService, translator)
	taxHandler := handler.NewTaxHandler(taxService)
	calendarHandler := handler.NewCalendarHandler(kind)
	deviceHandler := handler.NewDeviceHandler(deviceService)
	adjustmentHandler := handler.NewAdjustmentHandler(adjustmentService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	engine := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept",
		middleware.HeaderHmrcToken, middleware.HeaderDeviceID}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	engine.Use(cors.New(corsConfig))
	engine.Use(middleware.CaptureConnection())

	// Swagger route
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	engine.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, cfg.JWTSecret)
	})

	// API Routing
	api := engine.Group("")
	api.Use(middleware.RequireAuth(cfg.JWTSecret))
	obligationHandler.RegisterRoutes(api)
	filingHandler.RegisterRoutes(api)
	taxHandler.RegisterRoutes(api)
	calendarHandler.RegisterRoutes(api)
	deviceHandler.RegisterRoutes(api)
	adjustmentHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	log.Printf("Server listening on :%s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func loadRates(path string) (taxcalc.RateTable, error) {
	if path == "" {
		return taxcalc.DefaultRates()
	}
	return taxcalc.LoadRatesFile(path)
}
