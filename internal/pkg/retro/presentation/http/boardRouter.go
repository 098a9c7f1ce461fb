package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	qport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/queue/port"
	"github.com/FordLabs/retroquest-sub000/internal/infrastructure/realtime"
	"github.com/FordLabs/retroquest-sub000/internal/pkg/retro/presentation/controller"
)

// RegisterRoutes registers board-related HTTP endpoints under the given router group.
// It constructs per-resource controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, cache cacheport.Cache, queue qport.Client, hub *realtime.Hub) {
	boardCtl := controller.NewBoardController(pool, cache)
	thoughtCtl := controller.NewThoughtController(pool, cache, hub)
	actionCtl := controller.NewActionItemController(pool, cache, hub)
	columnCtl := controller.NewColumnController(pool, cache, hub)
	retroCtl := controller.NewRetroController(pool, cache, queue, hub)
	socketCtl := controller.NewBoardSocketController(hub)

	team := g.Group("/team/:teamId")

	// GET /api/v1/team/:teamId/board -> full board snapshot
	team.GET("/board", boardCtl.Get())

	// Thoughts
	team.POST("/thought", thoughtCtl.Create())
	team.PUT("/thought/:thoughtId/message", thoughtCtl.EditMessage())
	team.PUT("/thought/:thoughtId/heart", thoughtCtl.Heart())
	team.PUT("/thought/:thoughtId/discussed", thoughtCtl.SetDiscussed())
	team.PUT("/thought/:thoughtId/topic", thoughtCtl.Move())
	team.DELETE("/thought/:thoughtId", thoughtCtl.Delete())

	// Action items
	team.POST("/action-item", actionCtl.Create())
	team.PUT("/action-item/:itemId", actionCtl.Update())
	team.DELETE("/action-item/:itemId", actionCtl.Delete())

	// Columns
	team.PUT("/column/:columnId/title", columnCtl.Rename())

	// DELETE /api/v1/team/:teamId/retro -> end the retro and wipe the board
	team.DELETE("/retro", retroCtl.End())

	// GET /api/v1/team/:teamId/ws -> websocket endpoint for realtime sync
	team.GET("/ws", socketCtl.Handle())
}
