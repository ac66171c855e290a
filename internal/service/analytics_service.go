package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/util"
	"context"
	"time"

	"gorm.io/gorm"
)

const analyticsCacheGroup = "analytics"

// AnalyticsService 聚合视图：学生仪表盘、教师侧的学生/能力域统计，
// 以及学习者聚类的转发（算法在外部服务）
type AnalyticsService struct {
	UserRepo       *repository.UserRepository
	ChallengeRepo  *repository.ChallengeRepository
	AttemptRepo    *repository.AttemptRepository
	ProfileRepo    *repository.LearnerProfileRepository
	CompetencyRepo *repository.CompetencyRepository
	Evaluator      *EvaluatorClient
	Cache          *CacheService
}

func NewAnalyticsService(
	userRepo *repository.UserRepository,
	challengeRepo *repository.ChallengeRepository,
	attemptRepo *repository.AttemptRepository,
	profileRepo *repository.LearnerProfileRepository,
	competencyRepo *repository.CompetencyRepository,
	evaluator *EvaluatorClient,
	cache *CacheService,
) *AnalyticsService {
	return &AnalyticsService{
		UserRepo:       userRepo,
		ChallengeRepo:  challengeRepo,
		AttemptRepo:    attemptRepo,
		ProfileRepo:    profileRepo,
		CompetencyRepo: competencyRepo,
		Evaluator:      evaluator,
		Cache:          cache,
	}
}

// StudentDashboard 学生仪表盘数据
type StudentDashboard struct {
	Profile        *model.LearnerProfile `json:"profile"`
	RecentAttempts []model.Attempt       `json:"recentAttempts"`
	Competencies   []model.Competency    `json:"competencies"`
	Stats          StudentStats          `json:"stats"`
}

type StudentStats struct {
	TotalAttempts int     `json:"totalAttempts"`
	SuccessRate   float64 `json:"successRate"`
	CurrentStreak int     `json:"currentStreak"`
	OverallScore  float64 `json:"overallScore"`
}

func (s *AnalyticsService) GetStudentDashboard(userID uint) (*StudentDashboard, error) {
	profile, err := s.ProfileRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.AttemptRepo.ListByUser(userID, 5)
	if err != nil {
		return nil, err
	}

	competencies, err := s.CompetencyRepo.ListAll()
	if err != nil {
		return nil, err
	}

	successRate := 0.0
	if profile.TotalAttempts > 0 {
		successRate = float64(profile.SuccessfulAttempts) / float64(profile.TotalAttempts) * 100
	}

	return &StudentDashboard{
		Profile:        profile,
		RecentAttempts: recent,
		Competencies:   competencies,
		Stats: StudentStats{
			TotalAttempts: profile.TotalAttempts,
			SuccessRate:   successRate,
			CurrentStreak: profile.StreakDays,
			OverallScore:  profile.OverallPerformance,
		},
	}, nil
}

// CompetencyScore 学生画像页的单个能力域得分
type CompetencyScore struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Domain string  `json:"domain"`
}

// GetStudentProfile 学生画像 + 能力域得分明细
func (s *AnalyticsService) GetStudentProfile(userID uint) (*model.LearnerProfile, []CompetencyScore, error) {
	profile, err := s.ProfileRepo.FindOrCreate(userID)
	if err != nil {
		return nil, nil, err
	}

	scores := profile.ScoresMap()
	if len(scores) == 0 {
		return profile, []CompetencyScore{}, nil
	}

	ids := make([]uint, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	competencies, err := s.CompetencyRepo.FindByIDs(ids)
	if err != nil {
		return nil, nil, err
	}

	data := make([]CompetencyScore, 0, len(competencies))
	for _, c := range competencies {
		data = append(data, CompetencyScore{
			Name:   c.Name,
			Score:  scores[c.ID],
			Domain: c.Domain,
		})
	}
	return profile, data, nil
}

// TeacherDashboard 教师仪表盘数据
type TeacherDashboard struct {
	StudentCount   int64           `json:"studentCount"`
	ChallengeCount int64           `json:"challengeCount"`
	TotalAttempts  int64           `json:"totalAttempts"`
	SuccessRate    float64         `json:"successRate"`
	RecentAttempts []model.Attempt `json:"recentAttempts"`
}

func (s *AnalyticsService) GetTeacherDashboard(ctx context.Context) (*TeacherDashboard, error) {
	var dashboard TeacherDashboard
	err := s.Cache.Remember(ctx, analyticsCacheGroup, "teacher-dashboard", time.Minute, &dashboard, func() (interface{}, error) {
		studentCount, err := s.UserRepo.CountByRole(model.Student)
		if err != nil {
			return nil, err
		}
		challengeCount, err := s.ChallengeRepo.Count()
		if err != nil {
			return nil, err
		}
		totalAttempts, err := s.AttemptRepo.Count()
		if err != nil {
			return nil, err
		}
		successful, err := s.AttemptRepo.CountSuccessful()
		if err != nil {
			return nil, err
		}
		recent, err := s.AttemptRepo.ListRecent(10)
		if err != nil {
			return nil, err
		}

		successRate := 0.0
		if totalAttempts > 0 {
			successRate = float64(successful) / float64(totalAttempts) * 100
		}

		return TeacherDashboard{
			StudentCount:   studentCount,
			ChallengeCount: challengeCount,
			TotalAttempts:  totalAttempts,
			SuccessRate:    successRate,
			RecentAttempts: recent,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

// StudentWithProfile 教师学生列表条目
type StudentWithProfile struct {
	User    model.User            `json:"user"`
	Profile *model.LearnerProfile `json:"profile,omitempty"`
}

func (s *AnalyticsService) GetStudents(page, limit int) ([]StudentWithProfile, int64, error) {
	students, total, err := s.UserRepo.List(model.Student, page, limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(students))
	for _, u := range students {
		ids = append(ids, u.ID)
	}
	profiles, err := s.ProfileRepo.ListByUserIDs(ids)
	if err != nil {
		return nil, 0, err
	}
	byUser := make(map[uint]*model.LearnerProfile, len(profiles))
	for i := range profiles {
		byUser[profiles[i].UserID] = &profiles[i]
	}

	result := make([]StudentWithProfile, 0, len(students))
	for _, u := range students {
		result = append(result, StudentWithProfile{User: u, Profile: byUser[u.ID]})
	}
	return result, total, nil
}

// StudentDetail 教师学生详情
type StudentDetail struct {
	Student        model.User            `json:"student"`
	Profile        *model.LearnerProfile `json:"profile,omitempty"`
	Stats          StudentDetailStats    `json:"stats"`
	RecentAttempts []model.Attempt       `json:"recentAttempts"`
}

type StudentDetailStats struct {
	TotalAttempts       int     `json:"totalAttempts"`
	SuccessfulAttempts  int     `json:"successfulAttempts"`
	ChallengesAttempted int     `json:"challengesAttempted"`
	AverageScore        float64 `json:"averageScore"`
}

func (s *AnalyticsService) GetStudentDetail(userID uint) (*StudentDetail, error) {
	student, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	profile, _ := s.ProfileRepo.FindByUserID(userID)

	attempts, err := s.AttemptRepo.ListAllByUser(userID)
	if err != nil {
		return nil, err
	}

	stats := StudentDetailStats{TotalAttempts: len(attempts)}
	challengeSet := map[uint]bool{}
	scoreSum := 0
	for _, a := range attempts {
		if a.IsSuccessful {
			stats.SuccessfulAttempts++
		}
		challengeSet[a.ChallengeID] = true
		scoreSum += a.Score
	}
	stats.ChallengesAttempted = len(challengeSet)
	if len(attempts) > 0 {
		stats.AverageScore = float64(scoreSum) / float64(len(attempts))
	}

	recent, err := s.AttemptRepo.ListByUser(userID, 10)
	if err != nil {
		return nil, err
	}

	return &StudentDetail{
		Student:        *student,
		Profile:        profile,
		Stats:          stats,
		RecentAttempts: recent,
	}, nil
}

// GetCompetencyPerformance 按能力域的全局表现（教师分析页）
func (s *AnalyticsService) GetCompetencyPerformance() ([]repository.CompetencyStat, error) {
	return s.AttemptRepo.StatsByCompetency()
}

// GetClusters 触发外部聚类服务并转发分组结果
func (s *AnalyticsService) GetClusters(ctx context.Context, minClusters, maxClusters int) (*ClusterResult, error) {
	if minClusters <= 0 {
		minClusters = 3
	}
	if maxClusters <= 0 {
		maxClusters = 6
	}
	return s.Evaluator.Cluster(ctx, minClusters, maxClusters)
}
