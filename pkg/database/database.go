package database

import (
	"algolearn_backend/internal/config"
	"algolearn_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 建立数据库连接。migrate 为 true 时执行表结构迁移并写入种子数据，
// release 模式下默认不迁移，由 -migrate / -migrate-only 显式触发
func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}

		log.Println("Database migration completed")

		SeedDefaults(db)
	}

	return db, nil
}

// Migrate 执行全部表结构迁移
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Competency{},
		&model.Challenge{},
		&model.Attempt{},
		&model.LearnerProfile{},
		&model.HeatmapLine{},
	)
}

// SeedDefaults 空表时写入默认能力域，便于首次部署即可创建挑战
func SeedDefaults(db *gorm.DB) {
	var count int64
	db.Model(&model.Competency{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.Competency{
		{Name: "Basic Algorithms", Description: "Understanding and implementing fundamental algorithms", Domain: "algorithms", Level: 1, MaxScore: 100},
		{Name: "Data Structures", Description: "Working with arrays, lists, stacks, queues, and trees", Domain: "data_structures", Level: 1, MaxScore: 100},
		{Name: "Problem Decomposition", Description: "Breaking complex problems into smaller, manageable parts", Domain: "problem_solving", Level: 2, MaxScore: 100},
		{Name: "Sorting Algorithms", Description: "Implementing and optimizing various sorting techniques", Domain: "algorithms", Level: 2, MaxScore: 100},
		{Name: "Searching Algorithms", Description: "Linear search, binary search, and advanced searching techniques", Domain: "algorithms", Level: 2, MaxScore: 100},
		{Name: "Recursion", Description: "Understanding and implementing recursive solutions", Domain: "problem_solving", Level: 3, MaxScore: 100},
		{Name: "Dynamic Programming", Description: "Solving optimization problems using dynamic programming", Domain: "algorithms", Level: 4, MaxScore: 100},
	}
	for _, c := range defaults {
		db.Create(&c)
	}
}
