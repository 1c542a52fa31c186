package model

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser    Role = "user"    // Обычный пользователь (заявитель)
	RoleStudent Role = "student" // Студент-исполнитель
	RoleAdmin   Role = "admin"   // Администратор клиники
)

type User struct {
	ID                  int64      `json:"id"`
	TelegramID          int64      `json:"telegram_id"`
	Username            string     `json:"username"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Role                Role       `json:"role"`
	CurrentAssignmentID *int64     `json:"current_assignment_id"` // Активное обращение студента
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at"`
}

// IsAdmin проверяет является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStudent проверяет является ли пользователь студентом
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// HasAssignment проверяет есть ли у студента активное обращение
func (u *User) HasAssignment() bool {
	return u.CurrentAssignmentID != nil
}

// DisplayName возвращает имя для отображения в чатах
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" || u.LastName != "" {
		if u.LastName == "" {
			return u.FirstName
		}
		return u.FirstName + " " + u.LastName
	}
	return fmt.Sprintf("%d", u.TelegramID)
}
