package controllers

import (
	"examprep/backend/services"
	"examprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type TestsController struct {
	Assembler   *services.TestAssembler
	Submissions *services.SubmissionService
	Validator   *RequestValidator
}

func NewTestsController(assembler *services.TestAssembler, submissions *services.SubmissionService, v *RequestValidator) *TestsController {
	return &TestsController{Assembler: assembler, Submissions: submissions, Validator: v}
}

// GenerateTest godoc
// @Summary Generate a practice test
// @Description Samples questions from a subject into a test that is not stored
// @Tags tests
// @Accept json
// @Produce json
// @Param input body services.GenerateRequest true "Subject, type and question count"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tests/generate [post]
func (tc *TestsController) GenerateTest(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	var req services.GenerateRequest
	if err := tc.Validator.bind(c, &req); err != nil {
		return err
	}

	spec, err := tc.Assembler.Generate(c.UserContext(), caller, req)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, spec)
}

// CreateTest godoc
// @Summary Create a stored test
// @Description Samples questions into a reusable test (teachers and admins)
// @Tags tests
// @Accept json
// @Produce json
// @Param input body services.CreateTestRequest true "Test data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tests [post]
func (tc *TestsController) CreateTest(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	var req services.CreateTestRequest
	if err := tc.Validator.bind(c, &req); err != nil {
		return err
	}

	test, err := tc.Assembler.CreateTest(c.UserContext(), caller, req)
	if err != nil {
		return err
	}
	return utils.Created(c, "Test created successfully", test)
}

// GetTest godoc
// @Summary Get a test
// @Tags tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tests/{id} [get]
func (tc *TestsController) GetTest(c *fiber.Ctx) error {
	test, err := tc.Assembler.GetTest(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, test)
}

// StartTest godoc
// @Summary Start a stored test
// @Description Returns the test's questions without answers and the start time
// @Tags tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tests/{id}/start [post]
func (tc *TestsController) StartTest(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	spec, err := tc.Assembler.StartTest(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, spec)
}

// SubmitTest godoc
// @Summary Submit test answers
// @Description Grades the answers, records the attempt and updates analytics.
// @Description Dynamic tests send their generated test back as testData.
// @Tags tests
// @Accept json
// @Produce json
// @Param id path string true "Test ID"
// @Param input body services.SubmitRequest true "Answers and timing"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tests/{id}/submit [post]
func (tc *TestsController) SubmitTest(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	var req services.SubmitRequest
	if err := tc.Validator.bind(c, &req); err != nil {
		return err
	}

	receipt, err := tc.Submissions.Submit(c.UserContext(), caller, c.Params("id"), req)
	if err != nil {
		return err
	}
	return utils.SuccessWithMessage(c, fiber.StatusOK, "Test submitted successfully", receipt)
}
