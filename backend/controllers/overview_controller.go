package controllers

import (
	"examprep/backend/repository"
	"examprep/backend/services"
	"examprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type OverviewController struct {
	Assembler *services.TestAssembler
}

func NewOverviewController(assembler *services.TestAssembler) *OverviewController {
	return &OverviewController{Assembler: assembler}
}

// SearchTests godoc
// @Summary Search tests
// @Description Lists active tests, newest first unless sort=popularity
// @Tags tests
// @Produce json
// @Param search query string false "Matches title or instructions"
// @Param subjectId query string false "Subject ID"
// @Param type query string false "quick, subject or mock"
// @Param sort query string false "newest or popularity"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /tests [get]
func (oc *OverviewController) SearchTests(c *fiber.Ctx) error {
	sort := c.Query("sort", "newest")
	if sort != "newest" && sort != "popularity" {
		return utils.NewValidationError("Invalid sort option", map[string]string{"sort": sort})
	}

	tests, err := oc.Assembler.ListTests(c.UserContext(), repository.TestFilter{
		Search:    c.Query("search"),
		SubjectID: c.Query("subjectId"),
		Type:      c.Query("type"),
		Sort:      sort,
	})
	if err != nil {
		return err
	}
	return utils.List(c, tests, len(tests))
}
