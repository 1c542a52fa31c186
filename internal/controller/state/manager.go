package state

import "sync"

// DialogKind шаг диалога, на котором находится собеседник
type DialogKind string

const (
	KindNone DialogKind = ""

	// Подача обращения
	KindChoosingCategory    DialogKind = "choosing_category"
	KindEnteringRequestBody DialogKind = "entering_request_body"
	KindConfirmingRequest   DialogKind = "confirming_request"

	// Просмотр FAQ
	KindChoosingFAQCategory DialogKind = "choosing_faq_category"

	// Работа студента над ответом
	KindDraftingAnswer   DialogKind = "drafting_answer"
	KindConfirmingAnswer DialogKind = "confirming_answer"

	// Решения администратора с вводом причины
	KindDecliningRequest DialogKind = "declining_request"
	KindDecliningAnswer  DialogKind = "declining_answer"

	// Управление категориями
	KindEnteringCategoryName    DialogKind = "entering_category_name"
	KindEnteringCategoryHashtag DialogKind = "entering_category_hashtag"
	KindRenamingCategory        DialogKind = "renaming_category"
	KindRetaggingCategory       DialogKind = "retagging_category"

	// Управление FAQ
	KindEnteringFAQQuestion DialogKind = "entering_faq_question"
	KindEnteringFAQAnswer   DialogKind = "entering_faq_answer"
	KindEditingFAQQuestion  DialogKind = "editing_faq_question"
	KindEditingFAQAnswer    DialogKind = "editing_faq_answer"
)

// Dialog состояние многошагового диалога одного собеседника.
// Заполнены только поля, накопленные к текущему шагу.
type Dialog struct {
	Kind DialogKind

	CategoryID int64
	RequestID  int64
	FAQID      int64

	// Черновик текста обращения или ответа студента
	Draft string

	// Накопленные поля создаваемой записи FAQ или категории
	Question string
	Answer   string
	Name     string
}

// Manager хранит состояния диалогов в памяти по telegram id.
// Новое состояние полностью замещает старое.
type Manager struct {
	mu      sync.RWMutex
	dialogs map[int64]Dialog
}

func NewManager() *Manager {
	return &Manager{dialogs: make(map[int64]Dialog)}
}

// Get возвращает состояние диалога собеседника
func (m *Manager) Get(telegramID int64) Dialog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dialogs[telegramID]
}

// Set устанавливает состояние диалога собеседника
func (m *Manager) Set(telegramID int64, dialog Dialog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dialog.Kind == KindNone {
		delete(m.dialogs, telegramID)
		return
	}
	m.dialogs[telegramID] = dialog
}

// Clear сбрасывает диалог собеседника
func (m *Manager) Clear(telegramID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.dialogs, telegramID)
}
