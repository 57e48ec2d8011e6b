package controllers

import (
	"examprep/backend/services"
	"examprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ResultsController struct {
	Results *services.ResultsService
}

func NewResultsController(results *services.ResultsService) *ResultsController {
	return &ResultsController{Results: results}
}

// GetMyResults godoc
// @Summary List my results
// @Tags results
// @Produce json
// @Param limit query int false "Maximum results" default(10)
// @Param sort query string false "completedAt, percentage or score; prefix - for descending" default(-completedAt)
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /results/my-results [get]
func (rc *ResultsController) GetMyResults(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	attempts, err := rc.Results.MyResults(c.UserContext(), caller.UserID, c.QueryInt("limit", 10), c.Query("sort"))
	if err != nil {
		return err
	}
	return utils.List(c, attempts, len(attempts))
}

// GetResult godoc
// @Summary Get one of my results
// @Tags results
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /results/{id} [get]
func (rc *ResultsController) GetResult(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	attempt, err := rc.Results.Result(c.UserContext(), caller.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, attempt)
}

// GetResultReview godoc
// @Summary Review a result question by question
// @Description Includes correct answers and explanations
// @Tags results
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /results/{id}/review [get]
func (rc *ResultsController) GetResultReview(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	review, err := rc.Results.Review(c.UserContext(), caller.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, review)
}
