package service

import (
	"context"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/repository"
)

// Интерфейсы хранилищ. Боевые реализации живут в internal/repository
// поверх pgx, тесты подставляют in-memory фейки.

type RequestStore interface {
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id int64) (*model.Request, error)
	// UpdateStatus применяет смену статуса только если текущий статус
	// равен expected, иначе возвращает false без изменений.
	UpdateStatus(ctx context.Context, id int64, expected, next model.RequestStatus, mut repository.RequestMutation) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Request, error)
	ListPage(ctx context.Context, offset, limit int) ([]*model.Request, error)
	CountByStatus(ctx context.Context) (map[model.RequestStatus]int, error)
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateRole(ctx context.Context, id int64, role model.Role) error
	// AcquireAssignment занимает слот активного обращения студента, если он
	// свободен; ReleaseAssignment освобождает его, если занят этим обращением.
	AcquireAssignment(ctx context.Context, userID, requestID int64) (bool, error)
	ReleaseAssignment(ctx context.Context, userID, requestID int64) (bool, error)
	CountByRole(ctx context.Context) (map[model.Role]int, error)
}

type CategoryStore interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	GetByHashtag(ctx context.Context, hashtag string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	UpdateName(ctx context.Context, id int64, name string) error
	UpdateHashtag(ctx context.Context, id int64, hashtag string) error
	Delete(ctx context.Context, id int64) error
}

type FAQStore interface {
	Create(ctx context.Context, faq *model.FAQ) error
	GetByID(ctx context.Context, id int64) (*model.FAQ, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*model.FAQ, error)
	UpdateQuestion(ctx context.Context, id int64, question string) error
	UpdateAnswer(ctx context.Context, id int64, answer string) error
	UpdateCategory(ctx context.Context, id, categoryID int64) error
	Delete(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}

type AuditStore interface {
	Insert(ctx context.Context, action string, details map[string]any) error
}

// Control описывает действие под сообщением. Диспетчер уведомлений
// превращает его в inline-кнопку, роутер callback'ов разворачивает
// обратно в вызов сервиса.
type Control struct {
	Label  string
	Action string
}

// Notifier отделяет сервисы от транспорта чата. Broadcast/EditBroadcast
// работают с общим чатом студентов, Notify с любым конкретным чатом.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string, controls ...Control) error
	Broadcast(ctx context.Context, text string, controls ...Control) (int, error)
	EditBroadcast(ctx context.Context, messageID int, text string, controls ...Control) error
}

// Recorder ведёт журнал действий. Запись best-effort: реализация
// обязана глотать собственные ошибки.
type Recorder interface {
	Record(ctx context.Context, action string, details map[string]any)
}
