package handlers

import (
	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/state"
	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд и диалогов
type Handlers struct {
	userService     *service.UserService
	requestService  *service.RequestService
	categoryService *service.CategoryService
	faqService      *service.FAQService
	stateManager    *state.Manager
	adminChatID     int64
	logger          *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	requestService *service.RequestService,
	categoryService *service.CategoryService,
	faqService *service.FAQService,
	stateManager *state.Manager,
	adminChatID int64,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:     userService,
		requestService:  requestService,
		categoryService: categoryService,
		faqService:      faqService,
		stateManager:    stateManager,
		adminChatID:     adminChatID,
		logger:          logger,
	}
}
