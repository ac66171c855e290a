package model

// Competency 能力域（如算法、数据结构、问题求解），用于组织挑战和度量学生水平
// swagger:model Competency
type Competency struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Domain      string `gorm:"size:100;index" json:"domain"` // algorithms / data_structures / problem_solving
	Level       int    `gorm:"default:1" json:"level"`       // 1-10
	MaxScore    int    `gorm:"default:100" json:"maxScore"`
}

func (Competency) TableName() string {
	return "competencies"
}
