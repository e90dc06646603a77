package controllers

import (
	"net/http"
	"strconv"

	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/queries"

	"github.com/gin-gonic/gin"
)

// RankingController 日次ランキングに関するコントローラー
type RankingController struct {
	queryBus *cqrs.QueryBus
}

// NewRankingController RankingControllerを作成
func NewRankingController(queryBus *cqrs.QueryBus) *RankingController {
	return &RankingController{queryBus: queryBus}
}

// Daily 指定日のいいね数上位の投稿を取得。dateを省略すると今日
func (c *RankingController) Daily(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.GetDailyRankingQuery{
		Date:  ctx.Query("date"),
		Limit: limit,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
