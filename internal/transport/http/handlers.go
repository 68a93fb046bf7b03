package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"growth-quiz-service/internal/app"
	"growth-quiz-service/internal/domain"
)

type saveQuizResp struct {
	Quiz     domain.Quiz    `json:"quiz"`
	Warnings []domain.Issue `json:"warnings,omitempty"`
}

type validateDimensionsReq struct {
	Dimensions []domain.Dimension `json:"dimensions"`
}

type validateQuestionsReq struct {
	QuizType   domain.QuizType    `json:"quizType"`
	Questions  []domain.Question  `json:"questions"`
	Dimensions []domain.Dimension `json:"dimensions"`
}

type submitReq struct {
	Answers   []domain.SubmissionAnswer `json:"answers"`
	TimeSpent int                       `json:"timeSpent"`
}

// POST /api/quizzes
func SaveQuizHandler(service *app.QuizService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var quiz domain.Quiz
		if !decodeJSON(w, r, &quiz) {
			return
		}
		saved, res, err := service.SaveDefinition(r.Context(), quiz)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusCreated, saveQuizResp{Quiz: saved, Warnings: res.Warnings})
	}
}

// POST /api/quizzes/validate
func ValidateQuizHandler(service *app.QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var quiz domain.Quiz
		if !decodeJSON(w, r, &quiz) {
			return
		}
		respondJSON(w, http.StatusOK, service.ValidateDraft(quiz))
	}
}

// POST /api/quizzes/validate/basics
func ValidateBasicsHandler(service *app.QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var quiz domain.Quiz
		if !decodeJSON(w, r, &quiz) {
			return
		}
		respondJSON(w, http.StatusOK, service.ValidateBasics(quiz))
	}
}

// POST /api/quizzes/validate/dimensions
func ValidateDimensionsHandler(service *app.QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateDimensionsReq
		if !decodeJSON(w, r, &req) {
			return
		}
		respondJSON(w, http.StatusOK, service.ValidateDimensions(req.Dimensions))
	}
}

// POST /api/quizzes/validate/questions
func ValidateQuestionsHandler(service *app.QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateQuestionsReq
		if !decodeJSON(w, r, &req) {
			return
		}
		respondJSON(w, http.StatusOK, service.ValidateQuestions(req.QuizType, req.Questions, req.Dimensions))
	}
}

// POST /api/quizzes/{quizID}/submissions
func SubmitHandler(service *app.QuizService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := strings.TrimSpace(chi.URLParam(r, "quizID"))
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: UserIDHeader + " header required"})
			return
		}
		var req submitReq
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := service.Submit(r.Context(), userID, domain.Submission{
			QuizID:    quizID,
			Answers:   req.Answers,
			TimeSpent: req.TimeSpent,
		})
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusCreated, result)
	}
}

// GET /api/quizzes/{quizID}/analytics
func AnalyticsHandler(service *app.QuizService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		analytics, err := service.Analytics(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, analytics)
	}
}

// GET /api/quizzes/{quizID}/stats
func StatsHandler(service *app.QuizService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := service.Stats(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}

// POST /api/admin/quizzes/{quizID}/repair
func RepairHandler(service *app.QuizService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := service.RepairQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			respondError(w, log, err)
			return
		}
		status := http.StatusOK
		if !report.Success {
			status = http.StatusUnprocessableEntity
		}
		respondJSON(w, status, report)
	}
}

// GET /api/admin/quizzes/{quizID}/integrity
func IntegrityHandler(service *app.QuizService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := service.InspectQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}
