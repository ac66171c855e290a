// 手动触发全量学习者画像重建脚本
//
// 画像是提交日志的物化视图，正常情况下随每次提交增量更新。
// 当画像数据疑似漂移（如直接改库、历史数据导入）时，用此脚本
// 从提交日志全量重算所有学生的画像。
//
// 用法: go run scripts/rebuild_profiles.go
package main

import (
	"algolearn_backend/internal/config"
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/service"
	"algolearn_backend/pkg/database"
	"algolearn_backend/pkg/logger"
	"log"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	// 重建只读写已有表，不做结构迁移
	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	profileRepo := repository.NewLearnerProfileRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	userRepo := repository.NewUserRepository(db)
	profileService := service.NewProfileService(profileRepo, attemptRepo)

	page := 1
	rebuilt := 0
	for {
		students, _, err := userRepo.List(model.Student, page, 100)
		if err != nil {
			log.Fatalf("查询学生列表失败: %v", err)
		}
		if len(students) == 0 {
			break
		}
		for _, student := range students {
			if _, err := profileService.Rebuild(student.ID); err != nil {
				log.Printf("用户 %d 画像重建失败: %v", student.ID, err)
				continue
			}
			rebuilt++
		}
		page++
	}

	log.Printf("完成！共重建 %d 份画像", rebuilt)
}
