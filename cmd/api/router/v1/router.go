package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	qport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/queue/port"
	"github.com/FordLabs/retroquest-sub000/internal/infrastructure/realtime"
	httpHandler "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, cache cacheport.Cache, queue qport.Client, hub *realtime.Hub) {
	v1 := r.Group("/api/v1")
	// Pass the infrastructure handles down to the HTTP layer
	httpHandler.RegisterRoutes(v1, pool, cache, queue, hub)
}
