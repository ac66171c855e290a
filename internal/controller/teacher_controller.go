package controller

import (
	"algolearn_backend/internal/service"
	"algolearn_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TeacherController struct {
	AnalyticsService *service.AnalyticsService
	ChallengeService *service.ChallengeService
	ProfileService   *service.ProfileService
}

func NewTeacherController(
	analyticsService *service.AnalyticsService,
	challengeService *service.ChallengeService,
	profileService *service.ProfileService,
) *TeacherController {
	return &TeacherController{
		AnalyticsService: analyticsService,
		ChallengeService: challengeService,
		ProfileService:   profileService,
	}
}

// Dashboard godoc
// @Summary 教师仪表盘
// @Description 学生数、挑战数、总提交数与整体通过率
// @Tags 教师
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.TeacherDashboard}
// @Router /api/teacher/dashboard [get]
func (c *TeacherController) Dashboard(ctx *gin.Context) {
	dashboard, err := c.AnalyticsService.GetTeacherDashboard(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// Students godoc
// @Summary 学生列表
// @Description 学生账号及其学习画像
// @Tags 教师
// @Produce  json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object}
// @Router /api/teacher/students [get]
func (c *TeacherController) Students(ctx *gin.Context) {
	page, limit := pagination(ctx)
	students, total, err := c.AnalyticsService.GetStudents(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": students, "total": total, "page": page, "limit": limit})
}

// Student godoc
// @Summary 学生详情
// @Description 单个学生的画像、统计与最近提交
// @Tags 教师
// @Produce  json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Success 200 {object} util.Response{data=service.StudentDetail}
// @Failure 404 {object} util.Response "学生不存在"
// @Router /api/teacher/students/{id} [get]
func (c *TeacherController) Student(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	detail, err := c.AnalyticsService.GetStudentDetail(id)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx, "学生不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, detail)
}

// RebuildProfile godoc
// @Summary 重建学习画像
// @Description 从提交历史重新计算画像聚合值，用于数据修复
// @Tags 教师
// @Produce  json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Success 200 {object} util.Response{data=model.LearnerProfile}
// @Router /api/teacher/students/{id}/rebuild-profile [post]
func (c *TeacherController) RebuildProfile(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	profile, err := c.ProfileService.Rebuild(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// Analytics godoc
// @Summary 能力域分析
// @Description 各能力域的提交量、通过数与平均分
// @Tags 教师
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]repository.CompetencyStat}
// @Router /api/teacher/analytics [get]
func (c *TeacherController) Analytics(ctx *gin.Context) {
	stats, err := c.AnalyticsService.GetCompetencyPerformance()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// Clusters godoc
// @Summary 学习者聚类
// @Description 触发外部聚类分析并返回分组结果
// @Tags 教师
// @Produce  json
// @Security BearerAuth
// @Param min_clusters query int false "最小聚类数" default(3)
// @Param max_clusters query int false "最大聚类数" default(6)
// @Success 200 {object} util.Response{data=service.ClusterResult}
// @Failure 502 {object} util.Response "聚类服务不可用"
// @Router /api/teacher/clusters [get]
func (c *TeacherController) Clusters(ctx *gin.Context) {
	minClusters, _ := strconv.Atoi(ctx.DefaultQuery("min_clusters", "3"))
	maxClusters, _ := strconv.Atoi(ctx.DefaultQuery("max_clusters", "6"))

	result, err := c.AnalyticsService.GetClusters(ctx.Request.Context(), minClusters, maxClusters)
	if err != nil {
		util.Error(ctx, 502, "聚类服务暂时不可用")
		return
	}
	util.Success(ctx, result)
}

// TriggerClusteringRequest 手动触发聚类的入参，不填用默认范围
type TriggerClusteringRequest struct {
	MinClusters int `json:"minClusters" binding:"omitempty,min=2,max=20"`
	MaxClusters int `json:"maxClusters" binding:"omitempty,min=2,max=20"`
}

// TriggerClustering godoc
// @Summary 手动触发学习者聚类
// @Description 代理外部聚类服务，同步返回分组结果
// @Tags 教师
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param body body TriggerClusteringRequest false "聚类参数"
// @Success 200 {object} util.Response{data=service.ClusterResult}
// @Failure 502 {object} util.Response "聚类服务不可用"
// @Router /api/clustering/trigger [post]
func (c *TeacherController) TriggerClustering(ctx *gin.Context) {
	var req TriggerClusteringRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	result, err := c.AnalyticsService.GetClusters(ctx.Request.Context(), req.MinClusters, req.MaxClusters)
	if err != nil {
		util.Error(ctx, 502, "聚类服务暂时不可用")
		return
	}
	util.Success(ctx, result)
}

// Challenges godoc
// @Summary 挑战管理列表
// @Description 全部挑战，含未激活的
// @Tags 教师
// @Produce  json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object}
// @Router /api/teacher/challenges [get]
func (c *TeacherController) Challenges(ctx *gin.Context) {
	page, limit := pagination(ctx)
	items, total, err := c.ChallengeService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": items, "total": total, "page": page, "limit": limit})
}

// Challenge godoc
// @Summary 挑战详情（管理视角）
// @Tags 教师
// @Produce  json
// @Security BearerAuth
// @Param id path int true "挑战ID"
// @Success 200 {object} util.Response{data=model.Challenge}
// @Failure 404 {object} util.Response "挑战不存在"
// @Router /api/teacher/challenges/{id} [get]
func (c *TeacherController) Challenge(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	challenge, err := c.ChallengeService.Get(id)
	if err != nil {
		if errors.Is(err, util.ErrChallengeNotFound) {
			util.NotFound(ctx, "挑战不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, challenge)
}

// CreateChallenge godoc
// @Summary 创建挑战
// @Tags 教师
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param body body service.ChallengeRequest true "挑战内容"
// @Success 201 {object} util.Response{data=model.Challenge}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "能力域不存在"
// @Router /api/teacher/challenges [post]
func (c *TeacherController) CreateChallenge(ctx *gin.Context) {
	var req service.ChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	challenge, err := c.ChallengeService.Create(req)
	if err != nil {
		c.writeChallengeError(ctx, err)
		return
	}
	util.Created(ctx, challenge)
}

// UpdateChallenge godoc
// @Summary 更新挑战
// @Tags 教师
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "挑战ID"
// @Param body body service.ChallengeRequest true "挑战内容"
// @Success 200 {object} util.Response{data=model.Challenge}
// @Failure 404 {object} util.Response "挑战不存在"
// @Router /api/teacher/challenges/{id} [put]
func (c *TeacherController) UpdateChallenge(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	var req service.ChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	challenge, err := c.ChallengeService.Update(id, req)
	if err != nil {
		c.writeChallengeError(ctx, err)
		return
	}
	util.Success(ctx, challenge)
}

// DeleteChallenge godoc
// @Summary 删除挑战
// @Description 软删除，历史提交记录保留
// @Tags 教师
// @Produce  json
// @Security BearerAuth
// @Param id path int true "挑战ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "挑战不存在"
// @Router /api/teacher/challenges/{id} [delete]
func (c *TeacherController) DeleteChallenge(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	if err := c.ChallengeService.Delete(id); err != nil {
		c.writeChallengeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *TeacherController) writeChallengeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrChallengeNotFound):
		util.NotFound(ctx, "挑战不存在")
	case errors.Is(err, util.ErrCompetencyNotFound):
		util.NotFound(ctx, "能力域不存在")
	case errors.Is(err, util.ErrInvalidTestCases):
		util.BadRequest(ctx, "测试用例必须是合法的JSON")
	default:
		util.LogInternalError(ctx, err)
	}
}
