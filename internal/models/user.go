package models

// User roles recognized by the role gate.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a back-office account: sales staff placing orders on behalf
// of buyers, or admins working the review queue.
type User struct {
	BaseModel
	FullName     string     `json:"full_name"`
	Phone        string     `gorm:"uniqueIndex" json:"phone"`
	PasswordHash string     `json:"-"`
	Role         string     `gorm:"type:varchar(16);default:user" json:"role"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	Orders       []CarOrder `gorm:"foreignKey:CreatedBy" json:"orders,omitempty"`
}
