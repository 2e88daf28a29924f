package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lovematch/internal/models/request_models"
	"lovematch/internal/services"
	"lovematch/pkg/utils"
)

type AssessmentController struct {
	questionService services.QuestionServiceInterface
	analysisService services.AnalysisServiceInterface
	followUpService services.FollowUpServiceInterface
}

func NewAssessmentController(
	questionService services.QuestionServiceInterface,
	analysisService services.AnalysisServiceInterface,
	followUpService services.FollowUpServiceInterface,
) *AssessmentController {
	return &AssessmentController{
		questionService: questionService,
		analysisService: analysisService,
		followUpService: followUpService,
	}
}

// POST /questions
func (a *AssessmentController) GenerateQuestionsHandler(c *gin.Context) {
	var req request_models.QuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectBody(c, err, "config is required")
		return
	}

	resp, err := a.questionService.GenerateQuestions(c.Request.Context(), req.Config)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, resp)
}

// POST /analyze
func (a *AssessmentController) AnalyzeHandler(c *gin.Context) {
	var req request_models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectBody(c, err, "config and answers are required")
		return
	}

	result, err := a.analysisService.Analyze(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, result)
}

// POST /followup
func (a *AssessmentController) FollowUpHandler(c *gin.Context) {
	var req request_models.FollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectBody(c, err, "config and question are required")
		return
	}

	resp, err := a.followUpService.Ask(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, resp)
}

func rejectBody(c *gin.Context, err error, message string) {
	utils.Logger(c).Info("request body rejected", zap.Error(err))
	utils.RespondError(c, http.StatusBadRequest, "Invalid request: "+message)
}
