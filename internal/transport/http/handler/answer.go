package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"talentsearch/internal/app"
	"talentsearch/internal/transport/http/response"
)

type AnswerHandler struct {
	answer *app.AnswerService
}

type AnswerRequest struct {
	Question string `json:"question" binding:"required"`
	K        int    `json:"k" binding:"omitempty,min=1,max=20"`
}

func NewAnswerHandler(answer *app.AnswerService) *AnswerHandler {
	return &AnswerHandler{answer: answer}
}

func (h *AnswerHandler) Answer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.answer.Answer(c.Request.Context(), req.Question, req.K)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrGeneratorDisabled):
			response.Error(c, http.StatusNotImplemented, response.CodeBadRequest, "no llm provider configured")
		case errors.Is(err, app.ErrStore):
			response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "search backend unavailable")
		case errors.Is(err, app.ErrEmbedding), errors.Is(err, app.ErrGeneration):
			response.Error(c, http.StatusBadGateway, response.CodeProviderFailure, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "answer failed")
		}
		return
	}

	response.OK(c, result)
}
