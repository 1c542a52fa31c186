package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Минимальная длина текста обращения (в символах)
const RequestBodyMinLength = 150

// Действия inline-кнопок. Роутер callback'ов разбирает их обратно
// в вызовы сервиса.
const (
	ActionApproveRequest   = "approve_request"
	ActionDeclineRequest   = "decline_request"
	ActionApproveAnswer    = "approve_answer"
	ActionDeclineAnswer    = "decline_answer"
	ActionTakeRequest      = "take_request"
	ActionEditAnswer       = "edit_answer"
	ActionRejectAssignment = "reject_assignment"
)

// CallbackAction собирает callback data вида "take_request:42"
func CallbackAction(action string, id int64) string {
	return fmt.Sprintf("%s:%d", action, id)
}

// RequestService реализует машину состояний жизненного цикла обращения.
// Каждый переход выполняется как условное обновление по ожидаемому
// статусу: проигравший гонку получает ErrInvalidState, уведомления
// уходят только после успешной записи.
type RequestService struct {
	requests    RequestStore
	users       UserStore
	categories  CategoryStore
	notifier    Notifier
	audit       Recorder
	adminChatID int64
	logger      *zap.Logger
}

func NewRequestService(
	requests RequestStore,
	users UserStore,
	categories CategoryStore,
	notifier Notifier,
	audit Recorder,
	adminChatID int64,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		requests:    requests,
		users:       users,
		categories:  categories,
		notifier:    notifier,
		audit:       audit,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// Submit создает обращение в статусе pending и отправляет его
// в чат администраторов с кнопками одобрения/отклонения
func (s *RequestService) Submit(ctx context.Context, user *model.User, categoryID int64, body string) (*model.Request, error) {
	if utf8.RuneCountInString(body) < RequestBodyMinLength {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("request body shorter than %d characters", RequestBodyMinLength),
		}
	}

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("category %d: %w", categoryID, ErrNotFound)
	}

	req := &model.Request{
		PublicID:   uuid.New(),
		UserID:     user.ID,
		CategoryID: categoryID,
		Body:       body,
		Status:     model.RequestStatusPending,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Category = category

	// Обращение уже записано, поэтому сбой доставки не возвращается
	// наверх. Повтор после ошибки создал бы дубликат в статусе pending.
	s.notify(ctx, s.adminChatID, requestCard("📨 Новое обращение", req, category),
		Control{Label: "✅ Одобрить", Action: CallbackAction(ActionApproveRequest, req.ID)},
		Control{Label: "❌ Отклонить", Action: CallbackAction(ActionDeclineRequest, req.ID)},
	)

	s.logger.Info("Request submitted",
		zap.Int64("request_id", req.ID),
		zap.Int64("user_id", user.ID),
		zap.Int64("category_id", categoryID),
	)
	s.audit.Record(ctx, "user_submitted_request", map[string]any{
		"user_id":    user.ID,
		"request_id": req.ID,
	})

	return req, nil
}

// Approve переводит pending → approved, уведомляет заявителя и публикует
// обращение в чат студентов с кнопкой "Взять в работу"
func (s *RequestService) Approve(ctx context.Context, admin *model.User, requestID int64) (*model.Request, error) {
	req, category, err := s.getWithCategory(ctx, requestID)
	if err != nil {
		return nil, err
	}

	ok, err := s.requests.UpdateStatus(ctx, requestID,
		model.RequestStatusPending, model.RequestStatusApproved, repository.RequestMutation{})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("approve request %d: %w", requestID, ErrInvalidState)
	}
	req.Status = model.RequestStatusApproved

	requester, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get requester: %w", err)
	}
	if requester != nil {
		s.notify(ctx, requester.TelegramID,
			fmt.Sprintf("✅ Ваше обращение по категории «%s» принято к обработке.", category.Name))
	}

	if _, err := s.notifier.Broadcast(ctx, requestCard("📨 Новое обращение", req, category),
		Control{Label: "🔄 Взять в работу", Action: CallbackAction(ActionTakeRequest, req.ID)},
	); err != nil {
		return nil, fmt.Errorf("broadcast to students: %w", err)
	}

	s.logger.Info("Request approved",
		zap.Int64("request_id", requestID),
		zap.Int64("admin_id", admin.ID),
	)
	s.audit.Record(ctx, "admin_approved_request", map[string]any{
		"admin_id":   admin.ID,
		"request_id": requestID,
	})

	return req, nil
}

// BeginDecline проверяет, что обращение всё ещё ждёт решения. Сам перевод
// статуса выполняется в Decline после ввода причины: статус перечитывается
// заново, потому что между фазами обращение мог обработать другой
// администратор.
func (s *RequestService) BeginDecline(ctx context.Context, requestID int64) (*model.Request, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
	}
	if req.Status != model.RequestStatusPending {
		return nil, fmt.Errorf("decline request %d: %w", requestID, ErrInvalidState)
	}
	return req, nil
}

// Decline завершает отклонение: pending → declined с причиной,
// заявитель получает уведомление с текстом причины
func (s *RequestService) Decline(ctx context.Context, admin *model.User, requestID int64, reason string) (*model.Request, error) {
	req, category, err := s.getWithCategory(ctx, requestID)
	if err != nil {
		return nil, err
	}

	ok, err := s.requests.UpdateStatus(ctx, requestID,
		model.RequestStatusPending, model.RequestStatusDeclined,
		repository.RequestMutation{AdminComment: &reason})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("decline request %d: %w", requestID, ErrInvalidState)
	}
	req.Status = model.RequestStatusDeclined
	req.AdminComment = reason

	requester, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get requester: %w", err)
	}
	if requester != nil {
		s.notify(ctx, requester.TelegramID,
			fmt.Sprintf("❌ Ваше обращение по категории «%s» отклонено.\n\nПричина: %s", category.Name, reason))
	}

	s.notify(ctx, s.adminChatID,
		fmt.Sprintf("❌ Обращение %s отклонено.\nПричина: %s", req.Ref(), reason))

	s.logger.Info("Request declined",
		zap.Int64("request_id", requestID),
		zap.Int64("admin_id", admin.ID),
	)
	s.audit.Record(ctx, "admin_declined_request", map[string]any{
		"admin_id":   admin.ID,
		"request_id": requestID,
		"reason":     reason,
	})

	return req, nil
}

// Claim выполняет эксклюзивный захват обращения студентом: approved → assigned.
// Сначала занимается слот студента (у студента не больше одного
// активного обращения), затем условно меняется статус; проигравший
// второй шаг освобождает слот обратно.
func (s *RequestService) Claim(ctx context.Context, student *model.User, requestID int64, broadcastMessageID int) (*model.Request, error) {
	req, category, err := s.getWithCategory(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestStatusApproved {
		return nil, fmt.Errorf("claim request %d: %w", requestID, ErrInvalidState)
	}

	acquired, err := s.users.AcquireAssignment(ctx, student.ID, requestID)
	if err != nil {
		return nil, fmt.Errorf("acquire assignment: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("student %d already has an assignment: %w", student.ID, ErrConflict)
	}

	ok, err := s.requests.UpdateStatus(ctx, requestID,
		model.RequestStatusApproved, model.RequestStatusAssigned,
		repository.RequestMutation{StudentID: &student.ID})
	if err != nil || !ok {
		// Обращение перехватили между проверкой и записью, возвращаем слот
		if _, relErr := s.users.ReleaseAssignment(ctx, student.ID, requestID); relErr != nil {
			s.logger.Error("Failed to roll back assignment slot",
				zap.Int64("student_id", student.ID),
				zap.Int64("request_id", requestID),
				zap.Error(relErr),
			)
		}
		if err != nil {
			return nil, fmt.Errorf("update status: %w", err)
		}
		return nil, fmt.Errorf("claim request %d: %w", requestID, ErrInvalidState)
	}
	req.Status = model.RequestStatusAssigned
	req.StudentID = &student.ID

	// Первый захват делает обычного пользователя студентом
	if student.Role == model.RoleUser {
		if err := s.users.UpdateRole(ctx, student.ID, model.RoleStudent); err != nil {
			return nil, fmt.Errorf("promote to student: %w", err)
		}
		student.Role = model.RoleStudent
		s.audit.Record(ctx, "user_became_student", map[string]any{"user_id": student.ID})
	}

	// Убираем кнопку захвата из общего чата
	if broadcastMessageID != 0 {
		err = s.notifier.EditBroadcast(ctx, broadcastMessageID,
			requestCard("📨 Обращение", req, category)+
				fmt.Sprintf("\n\nПринято в работу: %s", student.DisplayName()))
		if err != nil {
			s.logger.Error("Failed to edit broadcast message",
				zap.Int("message_id", broadcastMessageID),
				zap.Error(err),
			)
		}
	}

	s.notify(ctx, student.TelegramID,
		requestCard("📨 Обращение", req, category)+
			"\n\nНапишите ваш ответ на это обращение и отправьте его. "+
			"После этого нажмите кнопку «Подтвердить отправку ответа».",
		Control{Label: "❌ Отказаться от обращения", Action: CallbackAction(ActionRejectAssignment, req.ID)},
	)

	s.logger.Info("Request claimed",
		zap.Int64("request_id", requestID),
		zap.Int64("student_id", student.ID),
	)
	s.audit.Record(ctx, "student_took_request", map[string]any{
		"student_id": student.ID,
		"request_id": requestID,
	})

	return req, nil
}

// ConfirmAnswer фиксирует ответ студента: assigned → answered,
// ответ уходит в чат администраторов на проверку
func (s *RequestService) ConfirmAnswer(ctx context.Context, student *model.User, requestID int64, answer string) (*model.Request, error) {
	req, category, err := s.getWithCategory(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.StudentID == nil || *req.StudentID != student.ID {
		return nil, fmt.Errorf("request %d assigned to another student: %w", requestID, ErrConflict)
	}

	ok, err := s.requests.UpdateStatus(ctx, requestID,
		model.RequestStatusAssigned, model.RequestStatusAnswered,
		repository.RequestMutation{AnswerText: &answer})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("confirm answer for request %d: %w", requestID, ErrInvalidState)
	}
	req.Status = model.RequestStatusAnswered
	req.AnswerText = answer

	err = s.notifier.Notify(ctx, s.adminChatID,
		fmt.Sprintf("📨 Ответ на обращение %s\n📂 Категория: %s %s\n👨‍💼 Студент: %s\n\n📝 Текст обращения:\n%s\n\n✏️ Ответ студента:\n%s",
			req.Ref(), category.Name, category.Hashtag, student.DisplayName(), req.Body, answer),
		Control{Label: "✅ Подтвердить", Action: CallbackAction(ActionApproveAnswer, req.ID)},
		Control{Label: "❌ Отклонить", Action: CallbackAction(ActionDeclineAnswer, req.ID)},
	)
	if err != nil {
		return nil, fmt.Errorf("notify admin chat: %w", err)
	}

	s.logger.Info("Answer submitted",
		zap.Int64("request_id", requestID),
		zap.Int64("student_id", student.ID),
	)
	s.audit.Record(ctx, "student_submitted_answer", map[string]any{
		"student_id": student.ID,
		"request_id": requestID,
	})

	return req, nil
}

// ApproveAnswer закрывает обращение: answered → closed, слот студента
// освобождается, заявитель получает текст ответа
func (s *RequestService) ApproveAnswer(ctx context.Context, admin *model.User, requestID int64) (*model.Request, error) {
	req, category, err := s.getWithCategory(ctx, requestID)
	if err != nil {
		return nil, err
	}

	ok, err := s.requests.UpdateStatus(ctx, requestID,
		model.RequestStatusAnswered, model.RequestStatusClosed, repository.RequestMutation{})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("approve answer for request %d: %w", requestID, ErrInvalidState)
	}
	req.Status = model.RequestStatusClosed

	var student *model.User
	if req.StudentID != nil {
		student, err = s.users.GetByID(ctx, *req.StudentID)
		if err != nil {
			return nil, fmt.Errorf("get student: %w", err)
		}
		if student != nil {
			if _, err := s.users.ReleaseAssignment(ctx, student.ID, requestID); err != nil {
				return nil, fmt.Errorf("release assignment: %w", err)
			}
		}
	}

	requester, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get requester: %w", err)
	}
	if requester != nil {
		s.notify(ctx, requester.TelegramID,
			fmt.Sprintf("✅ Ваш запрос по категории «%s» был обработан.\n\n📝 Ответ:\n%s",
				category.Name, req.AnswerText))
	}

	if student != nil {
		s.notify(ctx, student.TelegramID,
			fmt.Sprintf("✅ Ваш ответ на обращение %s был одобрен и отправлен пользователю.", req.Ref()))
	}

	s.logger.Info("Answer approved",
		zap.Int64("request_id", requestID),
		zap.Int64("admin_id", admin.ID),
	)
	s.audit.Record(ctx, "admin_approved_answer", map[string]any{
		"admin_id":   admin.ID,
		"request_id": requestID,
	})

	return req, nil
}

// BeginDeclineAnswer проверяет, что ответ всё ещё на проверке.
// Перевод статуса выполняется в DeclineAnswer после ввода комментария.
func (s *RequestService) BeginDeclineAnswer(ctx context.Context, requestID int64) (*model.Request, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
	}
	if req.Status != model.RequestStatusAnswered {
		return nil, fmt.Errorf("decline answer for request %d: %w", requestID, ErrInvalidState)
	}
	return req, nil
}

// DeclineAnswer возвращает обращение студенту: answered → assigned
// с комментарием администратора. Студент либо переписывает ответ,
// либо отказывается от обращения.
func (s *RequestService) DeclineAnswer(ctx context.Context, admin *model.User, requestID int64, comment string) (*model.Request, error) {
	req, category, err := s.getWithCategory(ctx, requestID)
	if err != nil {
		return nil, err
	}

	ok, err := s.requests.UpdateStatus(ctx, requestID,
		model.RequestStatusAnswered, model.RequestStatusAssigned,
		repository.RequestMutation{AdminComment: &comment})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("decline answer for request %d: %w", requestID, ErrInvalidState)
	}
	req.Status = model.RequestStatusAssigned
	req.AdminComment = comment

	if req.StudentID != nil {
		student, err := s.users.GetByID(ctx, *req.StudentID)
		if err != nil {
			return nil, fmt.Errorf("get student: %w", err)
		}
		if student != nil {
			s.notify(ctx, student.TelegramID,
				fmt.Sprintf("❌ Ваш ответ на обращение %s по категории «%s» был отклонен.\n\nКомментарий: %s\n\nВыберите действие:",
					req.Ref(), category.Name, comment),
				Control{Label: "✏️ Отправить новый ответ", Action: CallbackAction(ActionEditAnswer, req.ID)},
				Control{Label: "❌ Отказаться от обращения", Action: CallbackAction(ActionRejectAssignment, req.ID)},
			)
		}
	}

	s.logger.Info("Answer declined",
		zap.Int64("request_id", requestID),
		zap.Int64("admin_id", admin.ID),
	)
	s.audit.Record(ctx, "admin_declined_answer", map[string]any{
		"admin_id":   admin.ID,
		"request_id": requestID,
		"reason":     comment,
	})

	return req, nil
}

// Release обрабатывает добровольный отказ студента: assigned → approved,
// обращение возвращается в общую очередь с кнопкой захвата
func (s *RequestService) Release(ctx context.Context, student *model.User, requestID int64) (*model.Request, error) {
	if !student.HasAssignment() {
		return nil, fmt.Errorf("student %d has no assignment: %w", student.ID, ErrConflict)
	}

	req, category, err := s.getWithCategory(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.StudentID == nil || *req.StudentID != student.ID {
		return nil, fmt.Errorf("request %d assigned to another student: %w", requestID, ErrConflict)
	}

	ok, err := s.requests.UpdateStatus(ctx, requestID,
		model.RequestStatusAssigned, model.RequestStatusApproved,
		repository.RequestMutation{ClearStudent: true})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("release request %d: %w", requestID, ErrInvalidState)
	}
	req.Status = model.RequestStatusApproved
	req.StudentID = nil

	if _, err := s.users.ReleaseAssignment(ctx, student.ID, requestID); err != nil {
		return nil, fmt.Errorf("release assignment: %w", err)
	}
	student.CurrentAssignmentID = nil

	if _, err := s.notifier.Broadcast(ctx,
		requestCard("📨 Обращение", req, category)+"\n\n(возвращено в очередь)",
		Control{Label: "🔄 Взять в работу", Action: CallbackAction(ActionTakeRequest, req.ID)},
	); err != nil {
		return nil, fmt.Errorf("broadcast to students: %w", err)
	}

	s.logger.Info("Assignment released",
		zap.Int64("request_id", requestID),
		zap.Int64("student_id", student.ID),
	)
	s.audit.Record(ctx, "student_rejected_assignment", map[string]any{
		"student_id": student.ID,
		"request_id": requestID,
	})

	return req, nil
}

// GetByID получает обращение по ID
func (s *RequestService) GetByID(ctx context.Context, requestID int64) (*model.Request, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
	}
	return req, nil
}

// ListByRequester получает обращения заявителя с категориями
func (s *RequestService) ListByRequester(ctx context.Context, userID int64) ([]*model.Request, error) {
	requests, err := s.requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	if err := s.fillCategories(ctx, requests); err != nil {
		return nil, err
	}

	return requests, nil
}

// ListPage получает страницу обращений с категориями и участниками
func (s *RequestService) ListPage(ctx context.Context, offset, limit int) ([]*model.Request, error) {
	requests, err := s.requests.ListPage(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list requests page: %w", err)
	}

	if err := s.fillCategories(ctx, requests); err != nil {
		return nil, err
	}

	for _, req := range requests {
		req.User, err = s.users.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("get requester: %w", err)
		}
		if req.StudentID != nil {
			req.Student, err = s.users.GetByID(ctx, *req.StudentID)
			if err != nil {
				return nil, fmt.Errorf("get student: %w", err)
			}
		}
	}

	return requests, nil
}

// Stats статистика обращений по статусам
type Stats struct {
	Total    int
	ByStatus map[model.RequestStatus]int
	ByRole   map[model.Role]int
}

// Stats подсчитывает обращения по статусам и пользователей по ролям
func (s *RequestService) Stats(ctx context.Context) (*Stats, error) {
	byStatus, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by role: %w", err)
	}

	stats := &Stats{ByStatus: byStatus, ByRole: byRole}
	for _, count := range byStatus {
		stats.Total += count
	}

	return stats, nil
}

func (s *RequestService) getWithCategory(ctx context.Context, requestID int64) (*model.Request, *model.Category, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
	}

	category, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, nil, fmt.Errorf("category %d: %w", req.CategoryID, ErrNotFound)
	}
	req.Category = category

	return req, category, nil
}

func (s *RequestService) fillCategories(ctx context.Context, requests []*model.Request) error {
	cache := make(map[int64]*model.Category)
	for _, req := range requests {
		category, ok := cache[req.CategoryID]
		if !ok {
			var err error
			category, err = s.categories.GetByID(ctx, req.CategoryID)
			if err != nil {
				return fmt.Errorf("get category: %w", err)
			}
			cache[req.CategoryID] = category
		}
		req.Category = category
	}
	return nil
}

// notify отправляет уведомление и логирует сбой: доставка уведомления
// после успешного перехода не должна откатывать сам переход
func (s *RequestService) notify(ctx context.Context, chatID int64, text string, controls ...Control) {
	if err := s.notifier.Notify(ctx, chatID, text, controls...); err != nil {
		s.logger.Error("Failed to send notification",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

func requestCard(title string, req *model.Request, category *model.Category) string {
	return fmt.Sprintf("%s %s\n📂 Категория: %s %s\n\n📝 Текст обращения:\n%s",
		title, req.Ref(), category.Name, category.Hashtag, req.Body)
}
