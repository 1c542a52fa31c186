package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"  // Ожидает решения администратора
	RequestStatusApproved RequestStatus = "approved" // Одобрено, ждёт исполнителя
	RequestStatusDeclined RequestStatus = "declined" // Отклонено администратором
	RequestStatusAssigned RequestStatus = "assigned" // Взято студентом в работу
	RequestStatusAnswered RequestStatus = "answered" // Ответ студента на проверке
	RequestStatusClosed   RequestStatus = "closed"   // Ответ отправлен заявителю
)

// IsTerminal проверяет является ли статус конечным
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusDeclined || s == RequestStatusClosed
}

type Request struct {
	ID           int64         `json:"id"`
	PublicID     uuid.UUID     `json:"public_id"`
	UserID       int64         `json:"user_id"`
	CategoryID   int64         `json:"category_id"`
	Body         string        `json:"body"`
	Status       RequestStatus `json:"status"`
	StudentID    *int64        `json:"student_id"`
	AnswerText   string        `json:"answer_text"`
	AdminComment string        `json:"admin_comment"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    *time.Time    `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	User     *User     `json:"user,omitempty"`
	Student  *User     `json:"student,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// Ref возвращает короткий публичный номер обращения для сообщений
func (r *Request) Ref() string {
	return "#" + r.PublicID.String()[:8]
}
