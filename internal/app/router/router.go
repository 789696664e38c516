package router

import (
	"github.com/gin-gonic/gin"

	indexlisthandler "index_backend/internal/feature/indexlist/transport/handler"
	indicatorshandler "index_backend/internal/feature/indicators/transport/handler"
	platformhandler "index_backend/internal/platform/http/handler"
	jwtmw "index_backend/internal/platform/jwt"
	"index_backend/internal/platform/logger"
	"index_backend/internal/platform/metrics"
)

// Handlers は公開するハンドラー群です。
type Handlers struct {
	Health     *platformhandler.HealthHandler
	Index      *indexlisthandler.IndexHandler
	Indicators *indicatorshandler.IndicatorsHandler
}

// NewRouter はルーティングを構成します。jwtSecret が空の場合、API は認証なしで公開されます。
// m が nil の場合は /metrics を登録しません。
func NewRouter(h Handlers, m *metrics.Metrics, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware())
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", m.Handler())
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)

	api := r.Group("/")
	if jwtSecret != "" {
		api.Use(jwtmw.AuthRequired(jwtSecret))
	}
	{
		api.GET("/indices", h.Index.List)
		api.GET("/indices/:name", h.Indicators.GetIndicators)
		api.GET("/compare/:main/:other", h.Indicators.GetComparison)
	}

	return r
}
