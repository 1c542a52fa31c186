package handlers

// Размер страницы списка обращений для администраторов
const requestsPageSize = 10

// Тексты подсказок многошаговых диалогов
const (
	promptChooseCategory = "📂 Выберите категорию вашего обращения:"
	promptRequestBody    = "📝 Опишите вашу проблему как можно подробнее.\n\n" +
		"Минимальная длина обращения: 150 символов."
	promptConfirmRequest = "Проверьте текст обращения. Если всё верно, нажмите «Подтвердить»."
	promptAnswerReceived = "Проверьте текст ответа. Если всё верно, нажмите «Подтвердить отправку ответа»."
)
