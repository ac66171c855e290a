package controller

import (
	"algolearn_backend/internal/service"
	"algolearn_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	ChallengeService  *service.ChallengeService
	SubmissionService *service.SubmissionService
	AnalyticsService  *service.AnalyticsService
	ProfileService    *service.ProfileService
}

func NewStudentController(
	challengeService *service.ChallengeService,
	submissionService *service.SubmissionService,
	analyticsService *service.AnalyticsService,
	profileService *service.ProfileService,
) *StudentController {
	return &StudentController{
		ChallengeService:  challengeService,
		SubmissionService: submissionService,
		AnalyticsService:  analyticsService,
		ProfileService:    profileService,
	}
}

// Dashboard godoc
// @Summary 学生仪表盘
// @Description 学习画像、最近提交与整体统计
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.StudentDashboard}
// @Failure 401 {object} util.Response "未登录"
// @Router /api/student/dashboard [get]
func (c *StudentController) Dashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	dashboard, err := c.AnalyticsService.GetStudentDashboard(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// Challenges godoc
// @Summary 学生挑战列表
// @Description 激活的挑战，附带个人最高分与剩余尝试次数
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object}
// @Router /api/student/challenges [get]
func (c *StudentController) Challenges(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, limit := pagination(ctx)

	items, total, err := c.ChallengeService.ListForStudent(ctx.Request.Context(), claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": items, "total": total, "page": page, "limit": limit})
}

// Challenge godoc
// @Summary 挑战详情
// @Description 题面、起始代码与该学生最近的提交记录。测试用例不返回给学生。
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Param id path int true "挑战ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "挑战不存在"
// @Router /api/student/challenges/{id} [get]
func (c *StudentController) Challenge(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	challenge, attempts, err := c.ChallengeService.GetForStudent(claims.UserID, id)
	if err != nil {
		if errors.Is(err, util.ErrChallengeNotFound) {
			util.NotFound(ctx, "挑战不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	// 测试用例是评测依据，不下发给学生端
	challenge.TestCases = nil
	util.Success(ctx, gin.H{"challenge": challenge, "recentAttempts": attempts})
}

// Submit godoc
// @Summary 提交代码
// @Description 评测提交的代码，记录尝试并更新学习画像
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "挑战ID"
// @Param body body service.SubmitRequest true "提交内容"
// @Success 200 {object} util.Response{data=model.Attempt}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "挑战不存在"
// @Failure 422 {object} util.Response "挑战未开放或次数已用完"
// @Router /api/student/challenges/{id}/submit [post]
func (c *StudentController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.SubmissionService.Submit(ctx.Request.Context(), claims.UserID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrChallengeNotFound):
			util.NotFound(ctx, "挑战不存在")
		case errors.Is(err, util.ErrChallengeInactive):
			util.Error(ctx, 422, "挑战当前未开放")
		case errors.Is(err, util.ErrAttemptLimitReached):
			util.Error(ctx, 422, "该挑战的尝试次数已用完")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, attempt)
}

// Profile godoc
// @Summary 学习画像
// @Description 学习画像与各能力域得分明细
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/student/profile [get]
func (c *StudentController) Profile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	profile, scores, err := c.AnalyticsService.GetStudentProfile(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"profile": profile, "competencyScores": scores})
}

func pagination(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func parseID(ctx *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的ID")
		return 0, err
	}
	return uint(v), nil
}
