// Package dialog реализует пошаговый диалог записи расходов: таблицу
// переходов и движок, который ее исполняет. Движок не делает ввода-вывода —
// он возвращает декларативный результат, а отправка ответа и запись в базу
// остаются за транспортным слоем.
package dialog

import (
	"strconv"
	"strings"

	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/session"
)

// Kind определяет, какой ввод ожидает шаг.
type Kind int

const (
	// KindText — любой непустой текст, сохраняется как есть.
	KindText Kind = iota
	// KindAmount — неотрицательное число.
	KindAmount
)

// Step — одна строка таблицы переходов.
type Step struct {
	Field  string
	Kind   Kind
	Number int // номер пары категория/сумма для текста подсказки
}

// Таблица шагов: линейная цепочка category1, expenses1, …, expenses3.
var steps = []Step{
	{Field: "category1", Kind: KindText, Number: 1},
	{Field: "expenses1", Kind: KindAmount, Number: 1},
	{Field: "category2", Kind: KindText, Number: 2},
	{Field: "expenses2", Kind: KindAmount, Number: 2},
	{Field: "category3", Kind: KindText, Number: 3},
	{Field: "expenses3", Kind: KindAmount, Number: 3},
}

// StepCount возвращает длину цепочки.
func StepCount() int { return len(steps) }

// FieldNames возвращает имена полей в порядке шагов.
func FieldNames() []string {
	names := make([]string, len(steps))
	for i, st := range steps {
		names[i] = st.Field
	}
	return names
}

// Ключи шаблонов, которые движок отдает транспорту.
const (
	KeyEnterCategory = "enter_category"
	KeyEnterExpense  = "enter_expense"
	KeyEmptyCategory = "empty_category"
	KeyInvalidAmount = "invalid_amount"
)

// Reply — ключ шаблона ответа и аргументы подстановки.
type Reply struct {
	Key  string
	Args []any
}

// Outcome — результат одного хода диалога. При Commit == true накоплены все
// поля и вызывающая сторона должна записать их в хранилище; сессию она
// очищает только после успешной записи.
type Outcome struct {
	Reply  Reply
	Commit bool
	Fields map[string]any
}

// Start открывает диалог: первый шаг таблицы и первая подсказка.
func Start(sess *session.Session) Outcome {
	sess.Step = 0
	sess.Fields = make(map[string]any)
	return Outcome{Reply: prompt(steps[0])}
}

// Advance обрабатывает одно сообщение активного диалога. Невалидный ввод
// не меняет ни шаг, ни поля — пользователю повторяется та же подсказка
// с текстом ошибки.
func Advance(sess *session.Session, input string) Outcome {
	if sess.Step < 0 || sess.Step >= len(steps) {
		// Сессия в неизвестном состоянии — начинаем диалог заново
		return Start(sess)
	}

	step := steps[sess.Step]
	switch step.Kind {
	case KindText:
		text := strings.TrimSpace(input)
		if text == "" {
			return Outcome{Reply: Reply{Key: KeyEmptyCategory, Args: []any{step.Number}}}
		}
		sess.Fields[step.Field] = text
	case KindAmount:
		amount, err := parseAmount(input)
		if err != nil {
			return Outcome{Reply: Reply{Key: KeyInvalidAmount}}
		}
		sess.Fields[step.Field] = amount
	}

	if sess.Step == len(steps)-1 {
		// Терминальный шаг: остаемся на нем, пока запись не подтверждена,
		// чтобы при ошибке данные можно было отправить повторно
		return Outcome{Commit: true, Fields: copyFields(sess.Fields)}
	}

	sess.Step++
	return Outcome{Reply: prompt(steps[sess.Step])}
}

func prompt(step Step) Reply {
	key := KeyEnterCategory
	if step.Kind == KindAmount {
		key = KeyEnterExpense
	}
	return Reply{Key: key, Args: []any{step.Number}}
}

func parseAmount(input string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	amount, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, err
	}
	if amount < 0 {
		return 0, strconv.ErrRange
	}
	return amount, nil
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
