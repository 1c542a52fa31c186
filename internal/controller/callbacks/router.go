package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Callback Data Patterns
// ========================

// Workflow callbacks: решения по обращениям и ответам
const (
	ApproveRequest   = service.ActionApproveRequest + ":"   // approve_request:123
	DeclineRequest   = service.ActionDeclineRequest + ":"   // decline_request:123
	ApproveAnswer    = service.ActionApproveAnswer + ":"    // approve_answer:123
	DeclineAnswer    = service.ActionDeclineAnswer + ":"    // decline_answer:123
	TakeRequest      = service.ActionTakeRequest + ":"      // take_request:123
	EditAnswer       = service.ActionEditAnswer + ":"       // edit_answer:123
	RejectAssignment = service.ActionRejectAssignment + ":" // reject_assignment:123
)

// Category management callbacks
const (
	EditCategory        = "edit_category:"           // edit_category:123
	EditCategoryName    = "edit_category_name:"      // edit_category_name:123
	EditCategoryHashtag = "edit_category_hashtag:"   // edit_category_hashtag:123
	DeleteCategory      = "delete_category:"         // delete_category:123
	ConfirmDeleteCat    = "confirm_delete_category:" // confirm_delete_category:123
	CancelEditCategory  = "cancel_edit_category"
	CancelDeleteCat     = "cancel_delete_category"
)

// FAQ management callbacks
const (
	SelectFAQCategory     = "select_faq_category:"      // select_faq_category:123
	EditFAQSelectCategory = "edit_faq_select_category:" // edit_faq_select_category:123
	EditFAQ               = "edit_faq:"                 // edit_faq:123
	EditFAQQuestion       = "edit_faq_question:"        // edit_faq_question:123
	EditFAQAnswer         = "edit_faq_answer:"          // edit_faq_answer:123
	EditFAQCategory       = "edit_faq_category:"        // edit_faq_category:123
	SetFAQCategory        = "set_faq_category:"         // set_faq_category:faq_id:category_id
	DeleteFAQSelectCat    = "delete_faq_select_category:"
	DeleteFAQ             = "delete_faq:"         // delete_faq:123
	ConfirmDeleteFAQ      = "confirm_delete_faq:" // confirm_delete_faq:123
	CancelEditFAQ         = "cancel_edit_faq"
	CancelDeleteFAQ       = "cancel_delete_faq"
)

// Route распределяет callback query по соответствующим обработчикам
func (h *Handler) Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	data := callback.Data

	h.Logger.Info("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
	)

	switch {
	// ===== Решения по обращениям =====
	case strings.HasPrefix(data, ApproveRequest):
		h.HandleApproveRequest(ctx, b, callback)
	case strings.HasPrefix(data, DeclineRequest):
		h.HandleDeclineRequest(ctx, b, callback)
	case strings.HasPrefix(data, ApproveAnswer):
		h.HandleApproveAnswer(ctx, b, callback)
	case strings.HasPrefix(data, DeclineAnswer):
		h.HandleDeclineAnswer(ctx, b, callback)

	// ===== Работа студента =====
	case strings.HasPrefix(data, TakeRequest):
		h.HandleTakeRequest(ctx, b, callback)
	case strings.HasPrefix(data, EditAnswer):
		h.HandleEditAnswer(ctx, b, callback)
	case strings.HasPrefix(data, RejectAssignment):
		h.HandleRejectAssignment(ctx, b, callback)

	// ===== Управление категориями =====
	// Порядок важен: более длинные префиксы проверяются раньше
	case strings.HasPrefix(data, EditCategoryName):
		h.HandleEditCategoryName(ctx, b, callback)
	case strings.HasPrefix(data, EditCategoryHashtag):
		h.HandleEditCategoryHashtag(ctx, b, callback)
	case strings.HasPrefix(data, EditCategory):
		h.HandleEditCategoryMenu(ctx, b, callback)
	case strings.HasPrefix(data, ConfirmDeleteCat):
		h.HandleConfirmDeleteCategory(ctx, b, callback)
	case strings.HasPrefix(data, DeleteCategory):
		h.HandleDeleteCategoryConfirm(ctx, b, callback)
	case data == CancelEditCategory, data == CancelDeleteCat:
		h.HandleCancel(ctx, b, callback)

	// ===== Управление FAQ =====
	case strings.HasPrefix(data, SelectFAQCategory):
		h.HandleSelectFAQCategory(ctx, b, callback)
	case strings.HasPrefix(data, EditFAQSelectCategory):
		h.HandleEditFAQSelectCategory(ctx, b, callback)
	case strings.HasPrefix(data, EditFAQQuestion):
		h.HandleEditFAQQuestion(ctx, b, callback)
	case strings.HasPrefix(data, EditFAQAnswer):
		h.HandleEditFAQAnswer(ctx, b, callback)
	case strings.HasPrefix(data, EditFAQCategory):
		h.HandleEditFAQCategory(ctx, b, callback)
	case strings.HasPrefix(data, SetFAQCategory):
		h.HandleSetFAQCategory(ctx, b, callback)
	case strings.HasPrefix(data, EditFAQ):
		h.HandleEditFAQMenu(ctx, b, callback)
	case strings.HasPrefix(data, DeleteFAQSelectCat):
		h.HandleDeleteFAQSelectCategory(ctx, b, callback)
	case strings.HasPrefix(data, ConfirmDeleteFAQ):
		h.HandleConfirmDeleteFAQ(ctx, b, callback)
	case strings.HasPrefix(data, DeleteFAQ):
		h.HandleDeleteFAQConfirm(ctx, b, callback)
	case data == CancelEditFAQ, data == CancelDeleteFAQ:
		h.HandleCancel(ctx, b, callback)

	default:
		h.Logger.Warn("Unknown callback data", zap.String("data", data))
		answerCallback(ctx, b, callback.ID, "")
	}
}
