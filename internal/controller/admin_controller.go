package controller

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/service"
	"algolearn_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	UserService       *service.UserService
	CompetencyService *service.CompetencyService
}

func NewAdminController(userService *service.UserService, competencyService *service.CompetencyService) *AdminController {
	return &AdminController{
		UserService:       userService,
		CompetencyService: competencyService,
	}
}

// Users godoc
// @Summary 用户列表
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param role query string false "按角色过滤" Enums(student, teacher, admin)
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/users [get]
func (c *AdminController) Users(ctx *gin.Context) {
	page, limit := pagination(ctx)
	role := model.UserRole(ctx.Query("role"))

	users, total, err := c.UserService.GetUsers(role, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": users, "total": total, "page": page, "limit": limit})
}

// User godoc
// @Summary 用户详情
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id} [get]
func (c *AdminController) User(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	user, err := c.UserService.GetUserByID(id)
	if err != nil {
		c.writeUserError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// CreateUser godoc
// @Summary 创建用户
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param body body service.CreateUserRequest true "用户信息"
// @Success 201 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Router /api/admin/users [post]
func (c *AdminController) CreateUser(ctx *gin.Context) {
	var req service.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.CreateUser(req)
	if err != nil {
		c.writeUserError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// UpdateUser godoc
// @Summary 更新用户
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param body body service.UpdateUserRequest true "用户信息"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id} [put]
func (c *AdminController) UpdateUser(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	var req service.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateUser(id, req)
	if err != nil {
		c.writeUserError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// DeleteUser godoc
// @Summary 删除用户
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims != nil && claims.UserID == id {
		util.BadRequest(ctx, "不能删除自己的账号")
		return
	}

	if err := c.UserService.DeleteUser(id); err != nil {
		c.writeUserError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Competencies godoc
// @Summary 能力域列表
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/competencies [get]
func (c *AdminController) Competencies(ctx *gin.Context) {
	page, limit := pagination(ctx)
	items, total, err := c.CompetencyService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": items, "total": total, "page": page, "limit": limit})
}

// CreateCompetency godoc
// @Summary 创建能力域
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param body body service.CompetencyRequest true "能力域信息"
// @Success 201 {object} util.Response{data=model.Competency}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/admin/competencies [post]
func (c *AdminController) CreateCompetency(ctx *gin.Context) {
	var req service.CompetencyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	competency, err := c.CompetencyService.Create(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, competency)
}

// UpdateCompetency godoc
// @Summary 更新能力域
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "能力域ID"
// @Param body body service.CompetencyRequest true "能力域信息"
// @Success 200 {object} util.Response{data=model.Competency}
// @Failure 404 {object} util.Response "能力域不存在"
// @Router /api/admin/competencies/{id} [put]
func (c *AdminController) UpdateCompetency(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	var req service.CompetencyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	competency, err := c.CompetencyService.Update(id, req)
	if err != nil {
		if errors.Is(err, util.ErrCompetencyNotFound) {
			util.NotFound(ctx, "能力域不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, competency)
}

// DeleteCompetency godoc
// @Summary 删除能力域
// @Description 仅允许删除没有挂载挑战的能力域
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param id path int true "能力域ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "能力域不存在"
// @Failure 422 {object} util.Response "能力域下仍有挑战"
// @Router /api/admin/competencies/{id} [delete]
func (c *AdminController) DeleteCompetency(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		return
	}

	if err := c.CompetencyService.Delete(id); err != nil {
		if errors.Is(err, util.ErrCompetencyNotFound) {
			util.NotFound(ctx, "能力域不存在")
		} else {
			util.Error(ctx, 422, err.Error())
		}
		return
	}
	util.Success(ctx, nil)
}

func (c *AdminController) writeUserError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx, "用户不存在")
	case errors.Is(err, util.ErrEmailRegistered):
		util.Error(ctx, 409, "该邮箱已被注册")
	default:
		util.LogInternalError(ctx, err)
	}
}
