package controllers

import (
	"examprep/backend/services"
	"examprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	Insights *services.InsightsService
}

func NewAnalyticsController(insights *services.InsightsService) *AnalyticsController {
	return &AnalyticsController{Insights: insights}
}

// GetMyAnalytics godoc
// @Summary Get my analytics
// @Description Creates an empty record on first access
// @Tags analytics
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /analytics/me [get]
func (ac *AnalyticsController) GetMyAnalytics(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	analytics, err := ac.Insights.Me(c.UserContext(), caller.UserID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, analytics)
}

// GetSubjectPerformance godoc
// @Summary Per-subject running averages
// @Tags analytics
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /analytics/subject-performance [get]
func (ac *AnalyticsController) GetSubjectPerformance(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	perf, err := ac.Insights.SubjectPerformance(c.UserContext(), caller.UserID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, perf)
}

// GetRecentTests godoc
// @Summary Most recent completed attempts
// @Tags analytics
// @Produce json
// @Param limit query int false "Maximum attempts" default(5)
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /analytics/recent-tests [get]
func (ac *AnalyticsController) GetRecentTests(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	attempts, err := ac.Insights.RecentTests(c.UserContext(), caller.UserID, c.QueryInt("limit", 5))
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, attempts)
}

// GetTopicMastery godoc
// @Summary Cumulative accuracy per topic
// @Tags analytics
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /analytics/topic-mastery [get]
func (ac *AnalyticsController) GetTopicMastery(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	mastery, err := ac.Insights.TopicMastery(c.UserContext(), caller.UserID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, mastery)
}

// GetWeeklyProgress godoc
// @Summary Tests and scores per week
// @Tags analytics
// @Produce json
// @Param weeks query int false "Number of weeks" default(4)
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /analytics/weekly-progress [get]
func (ac *AnalyticsController) GetWeeklyProgress(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	progress, err := ac.Insights.WeeklyProgress(c.UserContext(), caller.UserID, c.QueryInt("weeks", 4))
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, progress)
}
