package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"checklist-safety/internal/aggregator"
	"checklist-safety/internal/board"
	"checklist-safety/internal/export"

	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BoardProvider serves built inspection boards
type BoardProvider interface {
	Current(ctx context.Context) (*aggregator.Snapshot, error)
	Refresh(ctx context.Context) (*aggregator.Snapshot, error)
	Stats(ctx context.Context) (*board.Stats, error)
}

// BoardHandler inspection board endpoints
type BoardHandler struct {
	boards BoardProvider
	logger *zap.Logger
}

func NewBoardHandler(boards BoardProvider, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{boards: boards, logger: logger}
}

func (h *BoardHandler) snapshot(r *http.Request) (*aggregator.Snapshot, error) {
	if parseBool(r.URL.Query().Get("refresh")) {
		return h.boards.Refresh(r.Context())
	}
	return h.boards.Current(r.Context())
}

// GetBoard GET /api/v1/inspection-board[?refresh=true]
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		h.logger.Error("Failed to load inspection board", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to load inspection board"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(snap))
}

// GetStats GET /api/v1/inspection-board/stats
func (h *BoardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.boards.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to load inspection board stats", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to load inspection board stats"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}

// ExportBoard GET /api/v1/inspection-board/export
func (h *BoardHandler) ExportBoard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		h.logger.Error("Failed to load inspection board", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to load inspection board"))
		return
	}

	data, err := export.BoardWorkbook(snap.Board, snap.Stats)
	if err != nil {
		h.logger.Error("Failed to generate board workbook", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate workbook"))
		return
	}

	filename := fmt.Sprintf("inspection-board-%s.xlsx", snap.GeneratedAt.Format("20060102-1504"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
