package routes

import (
	"examprep/backend/config"
	"examprep/backend/controllers"
	"examprep/backend/lock"
	"examprep/backend/metrics"
	"examprep/backend/middleware"
	"examprep/backend/models"
	"examprep/backend/repository"
	"examprep/backend/services"
	"examprep/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators the routes are built from.
type Deps struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Logger  *utils.Logger
	Metrics *metrics.Metrics
	Locker  lock.Locker
}

// NewApp builds the fiber app with the shared middleware stack.
func NewApp(cfg *config.Config, logger *utils.Logger, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "exam-platform",
		ErrorHandler: utils.ErrorHandler(logger, cfg.IsDevelopment()),
	})

	app.Use(middleware.LoggingMiddleware(logger, m))
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use("/api", limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests from this IP, please try again later")
		},
	}))

	return app
}

func SetupRoutes(app *fiber.App, d Deps) {
	questionRepo := repository.NewQuestionRepository(d.DB)
	subjectRepo := repository.NewSubjectRepository(d.DB)
	testRepo := repository.NewTestRepository(d.DB)
	attemptRepo := repository.NewAttemptRepository(d.DB)
	analyticsRepo := repository.NewAnalyticsRepository(d.DB)

	assembler := services.NewTestAssembler(questionRepo, subjectRepo, testRepo, d.Metrics, d.Logger)
	updater := services.NewAnalyticsUpdater(analyticsRepo, d.Locker, d.Cfg.StudyLocation, d.Metrics, d.Logger)
	submissions := services.NewSubmissionService(
		testRepo,
		questionRepo,
		services.NewAttemptRecorder(attemptRepo),
		updater,
		d.Metrics,
		d.Logger,
	)

	validator := controllers.NewRequestValidator()
	authMiddleware := middleware.AuthMiddleware(d.Cfg)
	staffOnly := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	app.Get("/health", func(c *fiber.Ctx) error {
		return utils.Success(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	// Tests routes
	testsController := controllers.NewTestsController(assembler, submissions, validator)
	overviewController := controllers.NewOverviewController(assembler)
	tests := app.Group("/api/tests", authMiddleware)
	tests.Post("/generate", testsController.GenerateTest)
	tests.Get("/", overviewController.SearchTests)
	tests.Post("/", staffOnly, testsController.CreateTest)
	tests.Get("/:id", testsController.GetTest)
	tests.Post("/:id/start", testsController.StartTest)
	tests.Post("/:id/submit", testsController.SubmitTest)

	// Results routes
	resultsController := controllers.NewResultsController(services.NewResultsService(attemptRepo, questionRepo))
	results := app.Group("/api/results", authMiddleware)
	results.Get("/my-results", resultsController.GetMyResults)
	results.Get("/:id", resultsController.GetResult)
	results.Get("/:id/review", resultsController.GetResultReview)

	// Analytics routes
	analyticsController := controllers.NewAnalyticsController(services.NewInsightsService(analyticsRepo, attemptRepo))
	analytics := app.Group("/api/analytics", authMiddleware)
	analytics.Get("/me", analyticsController.GetMyAnalytics)
	analytics.Get("/subject-performance", analyticsController.GetSubjectPerformance)
	analytics.Get("/recent-tests", analyticsController.GetRecentTests)
	analytics.Get("/topic-mastery", analyticsController.GetTopicMastery)
	analytics.Get("/weekly-progress", analyticsController.GetWeeklyProgress)
}
