package app

import (
	"algolearn_backend/internal/config"
	"algolearn_backend/internal/middleware"
	"algolearn_backend/internal/model"
	"algolearn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/me", c.auth.Me)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)

		// 聚类触发是教师侧操作，但路由沿用原有的 /clustering 前缀
		authGroup.POST("/clustering/trigger", middleware.RoleMiddleware(model.Teacher), c.teacher.TriggerClustering)

		// 热力图：学生看自己的，教师可指定学生
		heatmap := authGroup.Group("/heatmap")
		{
			heatmap.POST("/generate/:attemptId", c.heatmap.Generate)
			heatmap.GET("/data", c.heatmap.Data)
		}

		// 学生端
		student := authGroup.Group("/student")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.GET("/dashboard", c.student.Dashboard)
			student.GET("/challenges", c.student.Challenges)
			student.GET("/challenges/:id", c.student.Challenge)
			student.POST("/challenges/:id/submit", c.student.Submit)
			student.GET("/profile", c.student.Profile)
		}

		// 教师端
		teacher := authGroup.Group("/teacher")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.GET("/dashboard", c.teacher.Dashboard)
			teacher.GET("/students", c.teacher.Students)
			teacher.GET("/students/:id", c.teacher.Student)
			teacher.POST("/students/:id/rebuild-profile", c.teacher.RebuildProfile)
			teacher.GET("/analytics", c.teacher.Analytics)
			teacher.GET("/clusters", c.teacher.Clusters)

			teacher.GET("/challenges", c.teacher.Challenges)
			teacher.GET("/challenges/:id", c.teacher.Challenge)
			teacher.POST("/challenges", c.teacher.CreateChallenge)
			teacher.PUT("/challenges/:id", c.teacher.UpdateChallenge)
			teacher.DELETE("/challenges/:id", c.teacher.DeleteChallenge)
		}

		// 管理端
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.GET("/users", c.admin.Users)
			admin.GET("/users/:id", c.admin.User)
			admin.POST("/users", c.admin.CreateUser)
			admin.PUT("/users/:id", c.admin.UpdateUser)
			admin.DELETE("/users/:id", c.admin.DeleteUser)

			admin.GET("/competencies", c.admin.Competencies)
			admin.POST("/competencies", c.admin.CreateCompetency)
			admin.PUT("/competencies/:id", c.admin.UpdateCompetency)
			admin.DELETE("/competencies/:id", c.admin.DeleteCompetency)
		}
	}
}
