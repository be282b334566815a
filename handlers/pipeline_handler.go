package handlers

import (
	"net/http"

	"github.com/EcoFlowJS/ecoflow-authentication/manifest"
	"github.com/EcoFlowJS/ecoflow-authentication/middleware"
	"github.com/EcoFlowJS/ecoflow-authentication/pipeline"
	"github.com/EcoFlowJS/ecoflow-authentication/utils"
	"go.uber.org/zap"
)

// HaltedAtHeader names the step that stopped a pipeline early
const HaltedAtHeader = "X-Pipeline-Halted-At"

// PipelineHandler serves pipeline definitions over HTTP
type PipelineHandler struct {
	runner *pipeline.Runner
	logger *zap.Logger
}

// NewPipelineHandler creates a new PipelineHandler
func NewPipelineHandler(runner *pipeline.Runner, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{
		runner: runner,
		logger: logger,
	}
}

// Handle returns the handler for def. A JSON object body seeds the payload;
// the final payload is written with the status the steps recorded.
func (h *PipelineHandler) Handle(def *pipeline.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := utils.DecodeJSONObject(r)
		if err != nil {
			_ = utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}

		c := pipeline.NewContext(middleware.GetRequestIDFromContext(r.Context()), pipeline.Payload(body), r)

		result, err := h.runner.Run(r.Context(), def, c)
		if err != nil {
			HandleServiceError(w, result.Status, err, h.logger.With(
				zap.String("request_id", c.ID),
				zap.String("pipeline", def.Name),
			))
			return
		}

		if !result.Completed {
			w.Header().Set(HaltedAtHeader, result.HaltedAt)
		}
		if err := utils.WriteJSON(w, result.Status, c.Payload); err != nil {
			h.logger.Error("failed to write pipeline response",
				zap.String("pipeline", def.Name),
				zap.Error(err))
		}
	}
}

// ManifestHandler serves the plugin manifest
func ManifestHandler(m *manifest.Manifest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, m)
	}
}
