package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type voteRequest struct {
	Vote *int `json:"vote" binding:"required"`
}

// CastVote 处理投票请求，body 形如 {"vote": 1|-1|0}，0 表示撤销
func (a *API) CastVote(c *gin.Context) {
	actor, _ := currentActor(c)
	recipeID := c.Param("id")

	var req voteRequest
	if !bindJSON(c, &req, "vote 字段不能为空") {
		return
	}

	state, err := a.votes.Cast(recipeID, actor.ID, *req.Vote)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "投票已更新",
		"recipe_id": recipeID,
		"my_vote":   state.MyVote,
		"upvotes":   state.Upvotes,
		"downvotes": state.Downvotes,
		"score":     state.Score,
	})
}

// RemoveVote 撤销投票，等价于投 0
func (a *API) RemoveVote(c *gin.Context) {
	actor, _ := currentActor(c)
	recipeID := c.Param("id")

	state, err := a.votes.Cast(recipeID, actor.ID, 0)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "投票已撤销",
		"my_vote":   state.MyVote,
		"upvotes":   state.Upvotes,
		"downvotes": state.Downvotes,
		"score":     state.Score,
	})
}

// GetVoteState 返回投票聚合；已登录时附带请求者自己的投票
func (a *API) GetVoteState(c *gin.Context) {
	recipeID := c.Param("id")

	state, err := a.votes.State(recipeID, optionalActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipe_id": recipeID,
		"my_vote":   state.MyVote,
		"upvotes":   state.Upvotes,
		"downvotes": state.Downvotes,
		"score":     state.Score,
	})
}

// RecordClick 记录一次点击，登录与否均可
func (a *API) RecordClick(c *gin.Context) {
	recipeID := c.Param("id")

	clicks, err := a.clicks.Record(recipeID, optionalActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "点击已记录", "clicks": clicks})
}
