// internal/app/features/admin/handler.go
package admin

import (
	"net/http"

	"github.com/courseloop/courseloop/internal/app/system/httpjson"
	"github.com/courseloop/courseloop/internal/app/system/propagate"
	"go.uber.org/zap"
)

// Handler owns the operational endpoints.
type Handler struct {
	Engine *propagate.Engine
	Log    *zap.Logger
}

func NewHandler(engine *propagate.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// HandleDrain handles POST /admin/drain: runs one propagation pass
// immediately instead of waiting for the background interval. Useful after
// bulk profile imports and in smoke tests.
func (h *Handler) HandleDrain(w http.ResponseWriter, r *http.Request) {
	applied, err := h.Engine.DrainPendingUpdates(r.Context())
	if err != nil {
		h.Log.Error("manual drain failed", zap.Int("applied", applied), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "drain failed")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]int{"applied": applied})
}
