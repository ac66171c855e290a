package controller

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/service"
	"algolearn_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type HeatmapController struct {
	HeatmapService *service.HeatmapService
}

func NewHeatmapController(heatmapService *service.HeatmapService) *HeatmapController {
	return &HeatmapController{HeatmapService: heatmapService}
}

// Generate godoc
// @Summary 重新生成热力图
// @Description 从某次提交已存储的测试结果重建逐行热力图数据
// @Tags 热力图
// @Produce  json
// @Security BearerAuth
// @Param attemptId path int true "提交ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "提交不存在"
// @Router /api/heatmap/generate/{attemptId} [post]
func (c *HeatmapController) Generate(ctx *gin.Context) {
	attemptID, err := parseID(ctx, "attemptId")
	if err != nil {
		return
	}

	if err := c.HeatmapService.RecordFromAttempt(attemptID); err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx, "提交记录不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Data godoc
// @Summary 热力图数据
// @Description 按行号分组的错误热力图。学生只能查看自己的数据，教师可指定 user_id。
// @Tags 热力图
// @Produce  json
// @Security BearerAuth
// @Param challenge_id query int true "挑战ID"
// @Param user_id query int false "学生ID（教师可用）"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "缺少挑战ID"
// @Router /api/heatmap/data [get]
func (c *HeatmapController) Data(ctx *gin.Context) {
	challengeID, err := strconv.ParseUint(ctx.Query("challenge_id"), 10, 32)
	if err != nil || challengeID == 0 {
		util.BadRequest(ctx, "challenge_id 不能为空")
		return
	}

	claims := util.GetUserFromContext(ctx)
	userID := claims.UserID
	if claims.Role != model.Student {
		// 教师和管理员可以查看任意学生，缺省为全局视图
		if v, err := strconv.ParseUint(ctx.Query("user_id"), 10, 32); err == nil {
			userID = uint(v)
		} else {
			userID = 0
		}
	}

	data, err := c.HeatmapService.Data(uint(challengeID), userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"lines": data})
}
