package service

import (
	"context"
	"sort"
	"sync"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/repository"
)

// In-memory фейки хранилищ. Условные обновления выполняются под
// мьютексом, как и настоящие условные UPDATE.

type fakeRequestStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.Request
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{byID: make(map[int64]*model.Request)}
}

func (s *fakeRequestStore) Create(_ context.Context, req *model.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	req.ID = s.nextID
	stored := *req
	s.byID[req.ID] = &stored
	return nil
}

func (s *fakeRequestStore) GetByID(_ context.Context, id int64) (*model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *req
	return &copied, nil
}

func (s *fakeRequestStore) UpdateStatus(_ context.Context, id int64, expected, next model.RequestStatus, mut repository.RequestMutation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.byID[id]
	if !ok || req.Status != expected {
		return false, nil
	}
	req.Status = next
	if mut.StudentID != nil {
		studentID := *mut.StudentID
		req.StudentID = &studentID
	}
	if mut.ClearStudent {
		req.StudentID = nil
	}
	if mut.AnswerText != nil {
		req.AnswerText = *mut.AnswerText
	}
	if mut.AdminComment != nil {
		req.AdminComment = *mut.AdminComment
	}
	return true, nil
}

func (s *fakeRequestStore) ListByUser(_ context.Context, userID int64) ([]*model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*model.Request
	for _, req := range s.sorted() {
		if req.UserID == userID {
			copied := *req
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *fakeRequestStore) ListPage(_ context.Context, offset, limit int) ([]*model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sorted()
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	var result []*model.Request
	for _, req := range all[offset:end] {
		copied := *req
		result = append(result, &copied)
	}
	return result, nil
}

func (s *fakeRequestStore) CountByStatus(_ context.Context) (map[model.RequestStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[model.RequestStatus]int)
	for _, req := range s.byID {
		counts[req.Status]++
	}
	return counts, nil
}

func (s *fakeRequestStore) CountByCategory(_ context.Context, categoryID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, req := range s.byID {
		if req.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (s *fakeRequestStore) sorted() []*model.Request {
	all := make([]*model.Request, 0, len(s.byID))
	for _, req := range s.byID {
		all = append(all, req)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all
}

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: make(map[int64]*model.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user.ID = s.nextID
	stored := *user
	s.byID[user.ID] = &stored
	return nil
}

func (s *fakeUserStore) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byID {
		if user.TelegramID == telegramID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) Update(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.byID[user.ID]; ok {
		stored.Username = user.Username
		stored.FirstName = user.FirstName
		stored.LastName = user.LastName
	}
	return nil
}

func (s *fakeUserStore) UpdateRole(_ context.Context, id int64, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.byID[id]; ok {
		stored.Role = role
	}
	return nil
}

func (s *fakeUserStore) AcquireAssignment(_ context.Context, userID, requestID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok || user.CurrentAssignmentID != nil {
		return false, nil
	}
	user.CurrentAssignmentID = &requestID
	return true, nil
}

func (s *fakeUserStore) ReleaseAssignment(_ context.Context, userID, requestID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok || user.CurrentAssignmentID == nil || *user.CurrentAssignmentID != requestID {
		return false, nil
	}
	user.CurrentAssignmentID = nil
	return true, nil
}

func (s *fakeUserStore) CountByRole(_ context.Context) (map[model.Role]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[model.Role]int)
	for _, user := range s.byID {
		counts[user.Role]++
	}
	return counts, nil
}

type fakeCategoryStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.Category
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{byID: make(map[int64]*model.Category)}
}

func (s *fakeCategoryStore) Create(_ context.Context, category *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	category.ID = s.nextID
	stored := *category
	s.byID[category.ID] = &stored
	return nil
}

func (s *fakeCategoryStore) GetByID(_ context.Context, id int64) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	category, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *category
	return &copied, nil
}

func (s *fakeCategoryStore) GetByName(_ context.Context, name string) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, category := range s.byID {
		if category.Name == name {
			copied := *category
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeCategoryStore) GetByHashtag(_ context.Context, hashtag string) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, category := range s.byID {
		if category.Hashtag == hashtag {
			copied := *category
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeCategoryStore) List(_ context.Context) ([]*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*model.Category, 0, len(s.byID))
	for _, category := range s.byID {
		copied := *category
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (s *fakeCategoryStore) UpdateName(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.byID[id]; ok {
		stored.Name = name
	}
	return nil
}

func (s *fakeCategoryStore) UpdateHashtag(_ context.Context, id int64, hashtag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.byID[id]; ok {
		stored.Hashtag = hashtag
	}
	return nil
}

func (s *fakeCategoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

type fakeFAQStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.FAQ
}

func newFakeFAQStore() *fakeFAQStore {
	return &fakeFAQStore{byID: make(map[int64]*model.FAQ)}
}

func (s *fakeFAQStore) Create(_ context.Context, faq *model.FAQ) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	faq.ID = s.nextID
	stored := *faq
	stored.Category = nil
	s.byID[faq.ID] = &stored
	return nil
}

func (s *fakeFAQStore) GetByID(_ context.Context, id int64) (*model.FAQ, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	faq, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *faq
	return &copied, nil
}

func (s *fakeFAQStore) ListByCategory(_ context.Context, categoryID int64) ([]*model.FAQ, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*model.FAQ
	for _, faq := range s.byID {
		if faq.CategoryID == categoryID {
			copied := *faq
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Question < result[j].Question })
	return result, nil
}

func (s *fakeFAQStore) UpdateQuestion(_ context.Context, id int64, question string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.byID[id]; ok {
		stored.Question = question
	}
	return nil
}

func (s *fakeFAQStore) UpdateAnswer(_ context.Context, id int64, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.byID[id]; ok {
		stored.Answer = answer
	}
	return nil
}

func (s *fakeFAQStore) UpdateCategory(_ context.Context, id, categoryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.byID[id]; ok {
		stored.CategoryID = categoryID
	}
	return nil
}

func (s *fakeFAQStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *fakeFAQStore) CountByCategory(_ context.Context, categoryID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, faq := range s.byID {
		if faq.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

type sentMessage struct {
	chatID    int64
	messageID int
	text      string
	controls  []Control
}

type fakeNotifier struct {
	mu         sync.Mutex
	nextMsgID  int
	sent       []sentMessage
	broadcasts []sentMessage
	edits      []sentMessage
	notifyErr  error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{}
}

func (n *fakeNotifier) Notify(_ context.Context, chatID int64, text string, controls ...Control) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.notifyErr != nil {
		return n.notifyErr
	}
	n.sent = append(n.sent, sentMessage{chatID: chatID, text: text, controls: controls})
	return nil
}

func (n *fakeNotifier) Broadcast(_ context.Context, text string, controls ...Control) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextMsgID++
	n.broadcasts = append(n.broadcasts, sentMessage{messageID: n.nextMsgID, text: text, controls: controls})
	return n.nextMsgID, nil
}

func (n *fakeNotifier) EditBroadcast(_ context.Context, messageID int, text string, controls ...Control) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.edits = append(n.edits, sentMessage{messageID: messageID, text: text, controls: controls})
	return nil
}

// sentTo возвращает сообщения, отправленные в конкретный чат
func (n *fakeNotifier) sentTo(chatID int64) []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []sentMessage
	for _, msg := range n.sent {
		if msg.chatID == chatID {
			result = append(result, msg)
		}
	}
	return result
}

type fakeRecorder struct {
	mu      sync.Mutex
	actions []string
}

func (r *fakeRecorder) Record(_ context.Context, action string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *fakeRecorder) has(action string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, recorded := range r.actions {
		if recorded == action {
			return true
		}
	}
	return false
}
