package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	"github.com/FordLabs/retroquest-sub000/internal/pkg/retro/application/usecase"
	repoAdapter "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/adapter"
)

// BoardController serves the bulk fetch that seeds a client store at mount
// and after a channel gap.
type BoardController struct {
	getUC *usecase.GetBoardUseCase
}

func NewBoardController(pool *pgxpool.Pool, cache cacheport.Cache) *BoardController {
	repo := repoAdapter.NewPgBoardRepository(pool)
	return &BoardController{getUC: usecase.NewGetBoardUseCase(repo, cache)}
}

func (ctl *BoardController) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := pathID(c, "teamId")
		if !ok {
			return
		}
		snap, err := ctl.getUC.Execute(c.Request.Context(), teamID)
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}
