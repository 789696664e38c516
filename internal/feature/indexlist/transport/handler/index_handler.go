package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"index_backend/internal/feature/indexlist/transport/http/dto"
	"index_backend/internal/platform/logger"
)

// IndexUsecase はインデックス一覧に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type IndexUsecase interface {
	ListIndices(ctx context.Context) ([]string, error)
}

// IndexHandler はインデックス一覧に関するHTTPリクエストを処理します。
type IndexHandler struct {
	uc IndexUsecase
}

// NewIndexHandler は新しい IndexHandler を作成します。
func NewIndexHandler(uc IndexUsecase) *IndexHandler {
	return &IndexHandler{uc: uc}
}

// List は登録済みインデックス名の一覧を返します。
// Usecaseでエラーが発生した場合は500 Internal Server Errorを返します。
func (h *IndexHandler) List(c *gin.Context) {
	names, err := h.uc.ListIndices(c.Request.Context())
	if err != nil {
		slog.Error("failed to list indices", "request_id", logger.RequestID(c.Request.Context()), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.IndexItem, 0, len(names))
	for _, n := range names {
		out = append(out, dto.IndexItem{Name: n})
	}
	c.JSON(http.StatusOK, out)
}
