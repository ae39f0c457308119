package bot

// Action — результат классификации входящего сообщения.
type Action int

const (
	// ActionCommand — известная slash-команда; работает и внутри диалога.
	ActionCommand Action = iota
	// ActionMenu — кнопка главного меню; только вне диалога.
	ActionMenu
	// ActionDialog — сообщение активного диалога.
	ActionDialog
	// ActionFallback — нераспознанное сообщение.
	ActionFallback
)

// Поддерживаемые команды (без ведущего слэша, как их отдает tgbotapi).
const (
	cmdStart = "start"
	cmdHelp  = "help"
	cmdSeeDB = "see_db"
	cmdChart = "chart"
)

// classify выбирает обработчик по порядку: команда, кнопка меню (если нет
// активного диалога), диалог, иначе fallback. Активный диалог съедает весь
// остальной текст: подпись кнопки, набранная посреди диалога, становится
// обычным названием категории, выйти из диалога можно только пройдя его.
func classify(command, text string, inDialog bool) Action {
	switch command {
	case cmdStart, cmdHelp, cmdSeeDB, cmdChart:
		return ActionCommand
	}

	if !inDialog {
		switch text {
		case MenuRegister, MenuRates, MenuTips, MenuFinances:
			return ActionMenu
		}
	}

	if inDialog {
		return ActionDialog
	}
	return ActionFallback
}
