package callbacks

import (
	"context"

	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/state"
	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handler содержит зависимости для обработки callback queries
type Handler struct {
	UserService     *service.UserService
	RequestService  *service.RequestService
	CategoryService *service.CategoryService
	FAQService      *service.FAQService
	StateManager    *state.Manager
	Logger          *zap.Logger
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	userService *service.UserService,
	requestService *service.RequestService,
	categoryService *service.CategoryService,
	faqService *service.FAQService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		UserService:     userService,
		RequestService:  requestService,
		CategoryService: categoryService,
		FAQService:      faqService,
		StateManager:    stateManager,
		Logger:          logger,
	}
}

// HandleCallbackQuery - главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery

	h.Logger.Info("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	h.Route(ctx, b, callback)
}
