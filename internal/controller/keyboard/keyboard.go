package keyboard

import "github.com/go-telegram/bot/models"

// Подписи кнопок reply-клавиатур
const (
	ButtonAsk        = "Задать вопрос"
	ButtonFAQ        = "FAQ"
	ButtonMyRequests = "Мои обращения"
	ButtonBack       = "Назад"

	ButtonConfirm = "Подтвердить"
	ButtonEdit    = "Изменить"

	ButtonConfirmAnswer = "Подтвердить отправку ответа"
	ButtonEditAnswer    = "Изменить ответ"
	ButtonReject        = "Отказаться от обращения"
)

// MainMenu главное меню пользователя
func MainMenu() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: ButtonAsk}, {Text: ButtonFAQ}},
			{{Text: ButtonMyRequests}},
		},
		ResizeKeyboard: true,
	}
}

// Back клавиатура с единственной кнопкой возврата в меню
func Back() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: ButtonBack}},
		},
		ResizeKeyboard: true,
	}
}

// ConfirmRequest подтверждение отправки обращения
func ConfirmRequest() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: ButtonConfirm}, {Text: ButtonEdit}},
			{{Text: ButtonBack}},
		},
		ResizeKeyboard: true,
	}
}

// ConfirmAnswer подтверждение отправки ответа студента
func ConfirmAnswer() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: ButtonConfirmAnswer}, {Text: ButtonEditAnswer}},
			{{Text: ButtonReject}},
		},
		ResizeKeyboard: true,
	}
}

// Categories клавиатура выбора категории по названию
func Categories(names []string) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, len(names)+1)
	for _, name := range names {
		rows = append(rows, []models.KeyboardButton{{Text: name}})
	}
	rows = append(rows, []models.KeyboardButton{{Text: ButtonBack}})

	return &models.ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
	}
}
