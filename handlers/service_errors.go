package handlers

import (
	"errors"
	"net/http"

	"github.com/EcoFlowJS/ecoflow-authentication/services"
	"github.com/EcoFlowJS/ecoflow-authentication/utils"
	"go.uber.org/zap"
)

// HandleServiceError writes err as an error response. status is the code
// the failing step recorded; zero means it is derived from the error type.
func HandleServiceError(w http.ResponseWriter, status int, err error, logger *zap.Logger) {
	if err == nil {
		return
	}
	if status < http.StatusBadRequest {
		status = services.StatusCodeOf(err)
	}

	var domainErr *services.DomainError
	if errors.As(err, &domainErr) && status < http.StatusInternalServerError {
		logger.Debug("handled step error",
			zap.String("type", string(domainErr.Type)),
			zap.String("message", domainErr.Message),
			zap.Any("details", domainErr.Details))

		if werr := utils.WriteError(w, status, domainErr.Message, stepDetails(domainErr)); werr != nil {
			logger.Error("failed to write error response", zap.Error(werr))
		}
		return
	}

	// Internal errors are logged and reported generically
	logger.Error("pipeline step failed",
		zap.Error(err),
		zap.String("error_type", string(services.GetErrorType(err))))
	if werr := utils.WriteError(w, status, "An internal error occurred", nil); werr != nil {
		logger.Error("failed to write error response", zap.Error(werr))
	}
}

// stepDetails returns the error details plus the cause text
func stepDetails(err *services.DomainError) map[string]interface{} {
	if len(err.Details) == 0 && err.Err == nil {
		return nil
	}
	details := make(map[string]interface{}, len(err.Details)+1)
	for k, v := range err.Details {
		details[k] = v
	}
	if err.Err != nil {
		details["cause"] = err.Err.Error()
	}
	return details
}
