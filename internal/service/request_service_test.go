package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAdminChatID int64 = -1001

type requestFixture struct {
	svc      *RequestService
	requests *fakeRequestStore
	users    *fakeUserStore
	notifier *fakeNotifier
	audit    *fakeRecorder
	category *model.Category
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()

	requests := newFakeRequestStore()
	users := newFakeUserStore()
	categories := newFakeCategoryStore()
	notifier := newFakeNotifier()
	audit := &fakeRecorder{}

	category := &model.Category{Name: "Семейное право", Hashtag: "#семейное_право"}
	require.NoError(t, categories.Create(context.Background(), category))

	svc := NewRequestService(requests, users, categories, notifier, audit, testAdminChatID, zap.NewNop())

	return &requestFixture{
		svc:      svc,
		requests: requests,
		users:    users,
		notifier: notifier,
		audit:    audit,
		category: category,
	}
}

func (f *requestFixture) newUser(t *testing.T, telegramID int64) *model.User {
	t.Helper()
	user := &model.User{TelegramID: telegramID, FirstName: "Тест", Role: model.RoleUser}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

// validBody возвращает текст обращения требуемой длины в символах
func validBody(runes int) string {
	return strings.Repeat("ю", runes)
}

func TestRequestService_SubmitTooShort(t *testing.T) {
	f := newRequestFixture(t)
	user := f.newUser(t, 100)

	_, err := f.svc.Submit(context.Background(), user, f.category.ID, validBody(RequestBodyMinLength-1))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, f.notifier.sentTo(testAdminChatID))
}

func TestRequestService_Submit(t *testing.T) {
	f := newRequestFixture(t)
	user := f.newUser(t, 100)

	req, err := f.svc.Submit(context.Background(), user, f.category.ID, validBody(RequestBodyMinLength))
	require.NoError(t, err)

	assert.Equal(t, model.RequestStatusPending, req.Status)
	assert.NotEqual(t, uuid.Nil, req.PublicID)

	adminMessages := f.notifier.sentTo(testAdminChatID)
	require.Len(t, adminMessages, 1)
	require.Len(t, adminMessages[0].controls, 2)
	assert.Equal(t, CallbackAction(ActionApproveRequest, req.ID), adminMessages[0].controls[0].Action)
	assert.Equal(t, CallbackAction(ActionDeclineRequest, req.ID), adminMessages[0].controls[1].Action)

	assert.True(t, f.audit.has("user_submitted_request"))
}

func TestRequestService_SubmitUnknownCategory(t *testing.T) {
	f := newRequestFixture(t)
	user := f.newUser(t, 100)

	_, err := f.svc.Submit(context.Background(), user, 999, validBody(RequestBodyMinLength))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestService_FullLifecycle(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	requester := f.newUser(t, 100)
	admin := f.newUser(t, 200)
	student := f.newUser(t, 300)

	req, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)

	// Одобрение: заявитель уведомлен, обращение ушло студентам
	req, err = f.svc.Approve(ctx, admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, req.Status)

	require.Len(t, f.notifier.broadcasts, 1)
	broadcast := f.notifier.broadcasts[0]
	require.Len(t, broadcast.controls, 1)
	assert.Equal(t, CallbackAction(ActionTakeRequest, req.ID), broadcast.controls[0].Action)
	require.Len(t, f.notifier.sentTo(requester.TelegramID), 1)

	// Захват: студент получает карточку, сообщение в общем чате правится
	req, err = f.svc.Claim(ctx, student, req.ID, broadcast.messageID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusAssigned, req.Status)
	require.NotNil(t, req.StudentID)
	assert.Equal(t, student.ID, *req.StudentID)
	assert.Equal(t, model.RoleStudent, student.Role)

	storedStudent, err := f.users.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, storedStudent.CurrentAssignmentID)
	assert.Equal(t, req.ID, *storedStudent.CurrentAssignmentID)

	require.Len(t, f.notifier.edits, 1)
	assert.Equal(t, broadcast.messageID, f.notifier.edits[0].messageID)
	assert.Empty(t, f.notifier.edits[0].controls)

	studentMessages := f.notifier.sentTo(student.TelegramID)
	require.Len(t, studentMessages, 1)
	require.Len(t, studentMessages[0].controls, 1)
	assert.Equal(t, CallbackAction(ActionRejectAssignment, req.ID), studentMessages[0].controls[0].Action)

	// Ответ: уходит администраторам на проверку
	answer := "Согласно статье 80 Семейного кодекса вы вправе требовать алименты."
	req, err = f.svc.ConfirmAnswer(ctx, student, req.ID, answer)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusAnswered, req.Status)

	adminMessages := f.notifier.sentTo(testAdminChatID)
	require.Len(t, adminMessages, 2)
	require.Len(t, adminMessages[1].controls, 2)
	assert.Contains(t, adminMessages[1].text, answer)

	// Одобрение ответа: обращение закрыто, слот студента освобожден,
	// заявитель получил текст ответа
	req, err = f.svc.ApproveAnswer(ctx, admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusClosed, req.Status)

	storedStudent, err = f.users.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Nil(t, storedStudent.CurrentAssignmentID)

	requesterMessages := f.notifier.sentTo(requester.TelegramID)
	require.Len(t, requesterMessages, 2)
	assert.Contains(t, requesterMessages[1].text, answer)

	assert.True(t, f.audit.has("student_took_request"))
	assert.True(t, f.audit.has("user_became_student"))
	assert.True(t, f.audit.has("admin_approved_answer"))
}

func TestRequestService_DeclineFlow(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	requester := f.newUser(t, 100)
	admin := f.newUser(t, 200)

	req, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)

	_, err = f.svc.BeginDecline(ctx, req.ID)
	require.NoError(t, err)

	req, err = f.svc.Decline(ctx, admin, req.ID, "Обращение не содержит конкретного вопроса")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusDeclined, req.Status)

	requesterMessages := f.notifier.sentTo(requester.TelegramID)
	require.Len(t, requesterMessages, 1)
	assert.Contains(t, requesterMessages[0].text, "Обращение не содержит конкретного вопроса")

	// Повторное отклонение: статус уже не pending
	_, err = f.svc.Decline(ctx, admin, req.ID, "другая причина")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.BeginDecline(ctx, req.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRequestService_DeclineAnswerReturnsToStudent(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	requester := f.newUser(t, 100)
	admin := f.newUser(t, 200)
	student := f.newUser(t, 300)

	req, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, req.ID)
	require.NoError(t, err)
	_, err = f.svc.Claim(ctx, student, req.ID, 0)
	require.NoError(t, err)
	_, err = f.svc.ConfirmAnswer(ctx, student, req.ID, "Короткий ответ")
	require.NoError(t, err)

	_, err = f.svc.BeginDeclineAnswer(ctx, req.ID)
	require.NoError(t, err)

	req, err = f.svc.DeclineAnswer(ctx, admin, req.ID, "Ответ не раскрывает вопрос")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusAssigned, req.Status)
	assert.Equal(t, "Ответ не раскрывает вопрос", req.AdminComment)

	// Студент сохраняет обращение и выбирает между новым ответом и отказом
	studentMessages := f.notifier.sentTo(student.TelegramID)
	require.Len(t, studentMessages, 2)
	declineMsg := studentMessages[1]
	assert.Contains(t, declineMsg.text, "Ответ не раскрывает вопрос")
	require.Len(t, declineMsg.controls, 2)
	assert.Equal(t, CallbackAction(ActionEditAnswer, req.ID), declineMsg.controls[0].Action)
	assert.Equal(t, CallbackAction(ActionRejectAssignment, req.ID), declineMsg.controls[1].Action)

	storedStudent, err := f.users.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, storedStudent.CurrentAssignmentID)
}

func TestRequestService_Release(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	requester := f.newUser(t, 100)
	admin := f.newUser(t, 200)
	student := f.newUser(t, 300)

	req, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, req.ID)
	require.NoError(t, err)
	_, err = f.svc.Claim(ctx, student, req.ID, 0)
	require.NoError(t, err)

	req, err = f.svc.Release(ctx, student, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, req.Status)
	assert.Nil(t, req.StudentID)

	storedStudent, err := f.users.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Nil(t, storedStudent.CurrentAssignmentID)

	// Обращение снова опубликовано с кнопкой захвата
	require.Len(t, f.notifier.broadcasts, 2)
	require.Len(t, f.notifier.broadcasts[1].controls, 1)
	assert.Equal(t, CallbackAction(ActionTakeRequest, req.ID), f.notifier.broadcasts[1].controls[0].Action)
}

func TestRequestService_ReleaseWithoutAssignment(t *testing.T) {
	f := newRequestFixture(t)
	student := f.newUser(t, 300)

	_, err := f.svc.Release(context.Background(), student, 1)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRequestService_ClaimSecondRequestConflicts(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	requester := f.newUser(t, 100)
	admin := f.newUser(t, 200)
	student := f.newUser(t, 300)

	first, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)
	second, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, second.ID)
	require.NoError(t, err)

	_, err = f.svc.Claim(ctx, student, first.ID, 0)
	require.NoError(t, err)

	// Второе обращение при занятом слоте
	_, err = f.svc.Claim(ctx, student, second.ID, 0)
	assert.ErrorIs(t, err, ErrConflict)

	// Второе обращение осталось доступным другим студентам
	stored, err := f.requests.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, stored.Status)
}

func TestRequestService_ClaimRaceLoserKeepsFreeSlot(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	requester := f.newUser(t, 100)
	admin := f.newUser(t, 200)
	winner := f.newUser(t, 300)
	loser := f.newUser(t, 400)

	req, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, req.ID)
	require.NoError(t, err)

	_, err = f.svc.Claim(ctx, winner, req.ID, 0)
	require.NoError(t, err)

	_, err = f.svc.Claim(ctx, loser, req.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidState)

	// Слот проигравшего освобожден компенсацией
	storedLoser, err := f.users.GetByID(ctx, loser.ID)
	require.NoError(t, err)
	assert.Nil(t, storedLoser.CurrentAssignmentID)
	assert.Equal(t, model.RoleUser, storedLoser.Role)
}

func TestRequestService_ClaimConcurrentSingleWinner(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	requester := f.newUser(t, 100)
	admin := f.newUser(t, 200)

	req, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, req.ID)
	require.NoError(t, err)

	const claimers = 10
	students := make([]*model.User, claimers)
	for i := range students {
		students[i] = f.newUser(t, int64(1000+i))
	}

	errs := make([]error, claimers)
	var wg sync.WaitGroup
	for i, student := range students {
		wg.Add(1)
		go func(i int, student *model.User) {
			defer wg.Done()
			_, errs[i] = f.svc.Claim(ctx, student, req.ID, 0)
		}(i, student)
	}
	wg.Wait()

	winners := 0
	for i, claimErr := range errs {
		if claimErr == nil {
			winners++
			continue
		}
		assert.ErrorIs(t, claimErr, ErrInvalidState)

		// Слоты проигравших свободны после компенсации
		stored, err := f.users.GetByID(ctx, students[i].ID)
		require.NoError(t, err)
		assert.Nil(t, stored.CurrentAssignmentID)
	}
	assert.Equal(t, 1, winners)

	stored, err := f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusAssigned, stored.Status)
	require.NotNil(t, stored.StudentID)
}

func TestRequestService_ClaimConcurrentSameStudentTwoRequests(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	requester := f.newUser(t, 100)
	admin := f.newUser(t, 200)
	student := f.newUser(t, 300)

	first, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)
	second, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, second.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int64{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = f.svc.Claim(ctx, student, id, 0)
		}(i, id)
	}
	wg.Wait()

	// Слот студента один, поэтому ровно одно обращение взято
	winners := 0
	for _, claimErr := range errs {
		if claimErr == nil {
			winners++
		} else {
			assert.ErrorIs(t, claimErr, ErrConflict)
		}
	}
	assert.Equal(t, 1, winners)

	assigned := 0
	for _, id := range []int64{first.ID, second.ID} {
		stored, err := f.requests.GetByID(ctx, id)
		require.NoError(t, err)
		if stored.Status == model.RequestStatusAssigned {
			assigned++
		} else {
			assert.Equal(t, model.RequestStatusApproved, stored.Status)
		}
	}
	assert.Equal(t, 1, assigned)
}

func TestRequestService_SubmitSurvivesNotifyFailure(t *testing.T) {
	f := newRequestFixture(t)
	user := f.newUser(t, 100)

	f.notifier.notifyErr = errors.New("telegram unavailable")

	req, err := f.svc.Submit(context.Background(), user, f.category.ID, validBody(RequestBodyMinLength))
	require.NoError(t, err)

	// Обращение принято несмотря на сбой доставки, повтор не нужен
	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, stored.Status)
	assert.True(t, f.audit.has("user_submitted_request"))
}

func TestRequestService_ApproveAlreadyHandled(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	requester := f.newUser(t, 100)
	admin := f.newUser(t, 200)

	req, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, admin, req.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, admin, req.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	// Повторное одобрение не публикует обращение второй раз
	assert.Len(t, f.notifier.broadcasts, 1)
}

func TestRequestService_ConfirmAnswerByWrongStudent(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	requester := f.newUser(t, 100)
	admin := f.newUser(t, 200)
	student := f.newUser(t, 300)
	other := f.newUser(t, 400)

	req, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, req.ID)
	require.NoError(t, err)
	_, err = f.svc.Claim(ctx, student, req.ID, 0)
	require.NoError(t, err)

	_, err = f.svc.ConfirmAnswer(ctx, other, req.ID, "Чужой ответ")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRequestService_Stats(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	requester := f.newUser(t, 100)
	admin := f.newUser(t, 200)

	first, err := f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, requester, f.category.ID, validBody(200))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, first.ID)
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[model.RequestStatusPending])
	assert.Equal(t, 1, stats.ByStatus[model.RequestStatusApproved])
	assert.Equal(t, 2, stats.ByRole[model.RoleUser])
}
