package service

import (
	"errors"

	"github.com/cookbook/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteState 汇总一条菜谱的投票聚合与请求者自己的投票。
type VoteState struct {
	MyVote    int `json:"my_vote"`
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Score     int `json:"score"`
}

// VoteService 维护投票账本与菜谱上的冗余计数。
// 同一 (user, recipe) 的读改写通过账本行锁串行化，
// 计数变更全部以相对增量在服务端应用，避免并发丢失更新。
type VoteService struct {
	db *gorm.DB
}

// NewVoteService creates a VoteService instance.
func NewVoteService(gdb *gorm.DB) *VoteService {
	return &VoteService{db: gdb}
}

// Cast 应用一次投票请求。vote 取值 -1、0、1，0 表示撤销。
// 状态机：无票+非零 → 写入账本并加计数；同值重复 → 幂等空操作；
// 反转 → 更新账本并对两个桶各调一；撤销 → 删行并减计数。
func (s *VoteService) Cast(recipeID string, userID uint, vote int) (*VoteState, error) {
	if vote != -1 && vote != 0 && vote != 1 {
		return nil, &ValidationError{Message: "vote must be -1, 0 or 1"}
	}

	var state VoteState
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureRecipeExists(tx, recipeID); err != nil {
			return err
		}

		// 行锁账本，串行化同一用户对同一菜谱的并发投票
		var entry db.RecipeVote
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("recipe_id = ? AND user_id = ?", recipeID, userID).
			First(&entry).Error
		hasEntry := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		switch {
		case vote == 0:
			if !hasEntry {
				break // 撤销从未投出的票是空操作
			}
			if err := tx.Delete(&entry).Error; err != nil {
				return err
			}
			if err := applyVoteDeltas(tx, recipeID, -bucketWeight(entry.Vote, 1), -bucketWeight(entry.Vote, -1), -entry.Vote); err != nil {
				return err
			}
		case !hasEntry:
			entry = db.RecipeVote{UserID: userID, RecipeID: recipeID, Vote: vote}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			if err := applyVoteDeltas(tx, recipeID, bucketWeight(vote, 1), bucketWeight(vote, -1), vote); err != nil {
				return err
			}
		case entry.Vote == vote:
			// 同值重复投票幂等，无任何变更
		default:
			previous := entry.Vote
			if err := tx.Model(&entry).Update("vote", vote).Error; err != nil {
				return err
			}
			upDelta := bucketWeight(vote, 1) - bucketWeight(previous, 1)
			downDelta := bucketWeight(vote, -1) - bucketWeight(previous, -1)
			if err := applyVoteDeltas(tx, recipeID, upDelta, downDelta, vote-previous); err != nil {
				return err
			}
		}

		return loadVoteState(tx, recipeID, &userID, &state)
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// State 返回投票聚合；userID 为 nil（未登录）时 MyVote 恒为 0。
func (s *VoteService) State(recipeID string, userID *uint) (*VoteState, error) {
	var state VoteState
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureRecipeExists(tx, recipeID); err != nil {
			return err
		}
		return loadVoteState(tx, recipeID, userID, &state)
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// RecountAll 以账本为准重算所有菜谱的冗余计数，返回被修正的行数。
// 供维护脚本使用，正常请求路径不会调用。
func (s *VoteService) RecountAll() (int64, error) {
	var fixed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(`
			UPDATE recipes SET
				upvotes = (SELECT COUNT(*) FROM recipe_votes WHERE recipe_votes.recipe_id = recipes.id AND recipe_votes.vote = 1),
				downvotes = (SELECT COUNT(*) FROM recipe_votes WHERE recipe_votes.recipe_id = recipes.id AND recipe_votes.vote = -1),
				vote_score = (SELECT COALESCE(SUM(recipe_votes.vote), 0) FROM recipe_votes WHERE recipe_votes.recipe_id = recipes.id)
			WHERE upvotes <> (SELECT COUNT(*) FROM recipe_votes WHERE recipe_votes.recipe_id = recipes.id AND recipe_votes.vote = 1)
			   OR downvotes <> (SELECT COUNT(*) FROM recipe_votes WHERE recipe_votes.recipe_id = recipes.id AND recipe_votes.vote = -1)
			   OR vote_score <> (SELECT COALESCE(SUM(recipe_votes.vote), 0) FROM recipe_votes WHERE recipe_votes.recipe_id = recipes.id)`)
		if result.Error != nil {
			return result.Error
		}
		fixed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return fixed, nil
}

func bucketWeight(vote, bucket int) int {
	if vote == bucket {
		return 1
	}
	return 0
}

// applyVoteDeltas 在单条语句内以相对增量更新冗余计数，桶计数钳制在 0。
func applyVoteDeltas(tx *gorm.DB, recipeID string, upDelta, downDelta, scoreDelta int) error {
	updates := map[string]interface{}{
		"vote_score": gorm.Expr("vote_score + ?", scoreDelta),
	}
	if upDelta != 0 {
		updates["upvotes"] = clampedDelta("upvotes", upDelta)
	}
	if downDelta != 0 {
		updates["downvotes"] = clampedDelta("downvotes", downDelta)
	}
	return tx.Model(&db.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error
}

// clampedDelta 生成跨方言的钳 0 增量表达式（SQLite 没有 GREATEST）。
func clampedDelta(column string, delta int) clause.Expr {
	return gorm.Expr(
		"CASE WHEN "+column+" + ? < 0 THEN 0 ELSE "+column+" + ? END",
		delta, delta,
	)
}

func loadVoteState(tx *gorm.DB, recipeID string, userID *uint, state *VoteState) error {
	var recipe db.Recipe
	if err := tx.Select("upvotes, downvotes, vote_score").First(&recipe, "id = ?", recipeID).Error; err != nil {
		return err
	}
	state.Upvotes = recipe.Upvotes
	state.Downvotes = recipe.Downvotes
	state.Score = recipe.VoteScore
	state.MyVote = 0

	if userID != nil {
		var entry db.RecipeVote
		err := tx.Where("recipe_id = ? AND user_id = ?", recipeID, *userID).First(&entry).Error
		switch {
		case err == nil:
			state.MyVote = entry.Vote
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
	}
	return nil
}

// ensureRecipeExists 在任何变更前确认菜谱存在。
func ensureRecipeExists(tx *gorm.DB, recipeID string) error {
	var count int64
	if err := tx.Model(&db.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFoundRecipe(recipeID)
	}
	return nil
}
