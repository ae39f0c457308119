package bot

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/charts"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/model"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/service"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/session"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/texts"
)

// stubRepo повторяет семантику таблицы users в памяти.
type stubRepo struct {
	records map[int64]*model.UserRecord
	failAll error
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[int64]*model.UserRecord)}
}

func (r *stubRepo) CreateUser(ctx context.Context, userID int64, name string) error {
	if r.failAll != nil {
		return r.failAll
	}
	r.records[userID] = &model.UserRecord{TelegramID: userID, Name: name}
	return nil
}

func (r *stubRepo) UserExists(ctx context.Context, userID int64) (bool, error) {
	if r.failAll != nil {
		return false, r.failAll
	}
	_, ok := r.records[userID]
	return ok, nil
}

func (r *stubRepo) GetRecord(ctx context.Context, userID int64) (*model.UserRecord, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	record, ok := r.records[userID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (r *stubRepo) UpdateFinanceFields(ctx context.Context, userID int64, fields map[string]any) (int64, error) {
	if r.failAll != nil {
		return 0, r.failAll
	}
	record, ok := r.records[userID]
	if !ok {
		return 0, nil
	}
	record.Category1 = fields["category1"].(string)
	record.Category2 = fields["category2"].(string)
	record.Category3 = fields["category3"].(string)
	record.Expenses1 = fields["expenses1"].(float64)
	record.Expenses2 = fields["expenses2"].(float64)
	record.Expenses3 = fields["expenses3"].(float64)
	return 1, nil
}

func (r *stubRepo) ListRecords(ctx context.Context) ([]model.UserRecord, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	out := make([]model.UserRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, *record)
	}
	return out, nil
}

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	switch msg := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return msg.Text
	case tgbotapi.PhotoConfig:
		return msg.Caption
	default:
		t.Fatalf("unexpected chattable %T", msg)
		return ""
	}
}

type fakeRates struct {
	table map[string]float64
	err   error
}

func (f *fakeRates) FetchRates(ctx context.Context, base string) (map[string]float64, error) {
	return f.table, f.err
}

type fixture struct {
	handler  *Handler
	sender   *fakeSender
	repo     *stubRepo
	sessions *session.Store
	rates    *fakeRates
	texts    *texts.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := texts.Load("../../messages.json")
	require.NoError(t, err)

	sender := &fakeSender{}
	repo := newStubRepo()
	sessions := session.NewStore(0, nil)
	t.Cleanup(sessions.Close)
	ratesClient := &fakeRates{
		table: map[string]float64{"RUB": 90.0, "EUR": 0.9, "CNY": 7.2, "INR": 83.0},
	}

	handler := NewHandler(
		sender,
		service.NewFinanceTracker(repo),
		sessions,
		store,
		ratesClient,
		charts.NewChartGenerator(),
		nil,
	)

	return &fixture{
		handler:  handler,
		sender:   sender,
		repo:     repo,
		sessions: sessions,
		rates:    ratesClient,
		texts:    store,
	}
}

func textMsg(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, FirstName: "Иван", LastName: "Иванов"},
		Chat:      &tgbotapi.Chat{ID: userID},
		Text:      text,
	}
}

func commandMsg(userID int64, cmd string) *tgbotapi.Message {
	msg := textMsg(userID, "/"+cmd)
	msg.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: len("/" + cmd)},
	}
	return msg
}

func (f *fixture) send(t *testing.T, msg *tgbotapi.Message) string {
	t.Helper()
	f.handler.HandleMessage(context.Background(), msg)
	return f.sender.lastText(t)
}

func TestStartCommand(t *testing.T) {
	f := newFixture(t)

	reply := f.send(t, commandMsg(1, "start"))

	assert.Equal(t, f.texts.Resolve("start_message"), reply)
}

func TestRegistration(t *testing.T) {
	f := newFixture(t)

	reply := f.send(t, textMsg(1, MenuRegister))
	assert.Equal(t, f.texts.Resolve("registration_success"), reply)
	require.Contains(t, f.repo.records, int64(1))
	assert.Equal(t, "Иван Иванов", f.repo.records[1].Name)

	reply = f.send(t, textMsg(1, MenuRegister))
	assert.Equal(t, f.texts.Resolve("already_registered"), reply)
}

func TestDialogHappyPath(t *testing.T) {
	f := newFixture(t)
	f.send(t, textMsg(1, MenuRegister))

	reply := f.send(t, textMsg(1, MenuFinances))
	assert.Equal(t, f.texts.Resolve("enter_category", 1), reply)

	steps := []struct {
		input string
		reply string
	}{
		{"Продукты", f.texts.Resolve("enter_expense", 1)},
		{"120.5", f.texts.Resolve("enter_category", 2)},
		{"Аренда", f.texts.Resolve("enter_expense", 2)},
		{"900", f.texts.Resolve("enter_category", 3)},
		{"Развлечения", f.texts.Resolve("enter_expense", 3)},
		{"33.3", f.texts.Resolve("expenses_saved")},
	}
	for _, step := range steps {
		assert.Equal(t, step.reply, f.send(t, textMsg(1, step.input)))
	}

	record := f.repo.records[1]
	require.NotNil(t, record)
	assert.Equal(t, "Продукты", record.Category1)
	assert.Equal(t, 120.5, record.Expenses1)
	assert.Equal(t, "Аренда", record.Category2)
	assert.Equal(t, 900.0, record.Expenses2)
	assert.Equal(t, "Развлечения", record.Category3)
	assert.Equal(t, 33.3, record.Expenses3)

	// После успешной записи сессия очищена
	assert.False(t, f.sessions.Get(1).Active())
}

func TestDialogInvalidAmount(t *testing.T) {
	f := newFixture(t)
	f.send(t, textMsg(1, MenuRegister))
	f.send(t, textMsg(1, MenuFinances))
	f.send(t, textMsg(1, "Продукты"))

	reply := f.send(t, textMsg(1, "abc"))
	assert.Equal(t, f.texts.Resolve("invalid_amount"), reply)

	sess := f.sessions.Get(1)
	assert.Equal(t, 1, sess.Step)
	assert.Len(t, sess.Fields, 1)

	// Корректная сумма после ошибки продолжает диалог с того же шага
	reply = f.send(t, textMsg(1, "120.5"))
	assert.Equal(t, f.texts.Resolve("enter_category", 2), reply)
}

func TestUnregisteredCommitPreservesSession(t *testing.T) {
	f := newFixture(t)

	f.send(t, textMsg(1, MenuFinances))
	for _, input := range []string{"Продукты", "100", "Аренда", "200", "Развлечения"} {
		f.send(t, textMsg(1, input))
	}

	reply := f.send(t, textMsg(1, "300"))
	assert.Equal(t, f.texts.Resolve("not_registered"), reply)

	// Сессия не очищена, данные не потеряны
	sess := f.sessions.Get(1)
	require.True(t, sess.Active())
	assert.Len(t, sess.Fields, 6)

	// Кнопка регистрации внутри диалога стала бы текстом категории,
	// поэтому регистрируем пользователя напрямую и повторяем сумму

	require.NoError(t, f.repo.CreateUser(context.Background(), 1, "Иван Иванов"))

	reply = f.send(t, textMsg(1, "300"))
	assert.Equal(t, f.texts.Resolve("expenses_saved"), reply)
	assert.False(t, f.sessions.Get(1).Active())
	assert.Equal(t, 300.0, f.repo.records[1].Expenses3)
}

func TestMenuLabelMidDialogIsDialogInput(t *testing.T) {
	f := newFixture(t)
	f.send(t, textMsg(1, MenuRegister))
	f.send(t, textMsg(1, MenuFinances))

	reply := f.send(t, textMsg(1, MenuRates))

	// Подпись кнопки стала названием первой категории
	assert.Equal(t, f.texts.Resolve("enter_expense", 1), reply)
	assert.Equal(t, MenuRates, f.sessions.Get(1).Fields["category1"])
}

func TestCommandMidDialogStillWorks(t *testing.T) {
	f := newFixture(t)
	f.send(t, textMsg(1, MenuRegister))
	f.send(t, textMsg(1, MenuFinances))
	f.send(t, textMsg(1, "Продукты"))

	reply := f.send(t, commandMsg(1, "help"))
	assert.Equal(t, f.texts.Resolve("help_message"), reply)

	// Команда не трогает состояние диалога
	sess := f.sessions.Get(1)
	assert.Equal(t, 1, sess.Step)
	assert.Equal(t, "Продукты", sess.Fields["category1"])
}

func TestRates(t *testing.T) {
	f := newFixture(t)

	reply := f.send(t, textMsg(1, MenuRates))

	assert.Contains(t, reply, "90.00")
	assert.Contains(t, reply, "100.00")
}

func TestRatesFallback(t *testing.T) {
	f := newFixture(t)
	f.rates.err = errors.New("timeout")

	reply := f.send(t, textMsg(1, MenuRates))

	assert.Equal(t, f.texts.Resolve("currency_error"), reply)
	// Сбой внешнего сервиса не затрагивает сессию
	assert.False(t, f.sessions.Get(1).Active())
}

func TestTips(t *testing.T) {
	f := newFixture(t)

	reply := f.send(t, textMsg(1, MenuTips))

	assert.Contains(t, f.texts.Tips(), reply)
}

func TestSeeDB(t *testing.T) {
	f := newFixture(t)

	reply := f.send(t, commandMsg(1, "see_db"))
	assert.Equal(t, f.texts.Resolve("db_empty"), reply)

	f.send(t, textMsg(1, MenuRegister))
	f.send(t, textMsg(1, MenuFinances))
	for _, input := range []string{"Продукты", "100", "Аренда", "200", "Развлечения", "300"} {
		f.send(t, textMsg(1, input))
	}

	reply = f.send(t, commandMsg(1, "see_db"))
	assert.Contains(t, reply, "Иван Иванов")
	assert.Contains(t, reply, "Продукты")
	assert.Contains(t, reply, "100.00")
}

func TestChartWithoutExpenses(t *testing.T) {
	f := newFixture(t)
	f.send(t, textMsg(1, MenuRegister))

	reply := f.send(t, commandMsg(1, "chart"))

	assert.Equal(t, f.texts.Resolve("chart_empty"), reply)
}

func TestChartWithExpenses(t *testing.T) {
	f := newFixture(t)
	f.send(t, textMsg(1, MenuRegister))
	f.send(t, textMsg(1, MenuFinances))
	for _, input := range []string{"Продукты", "100", "Аренда", "200", "Развлечения", "300"} {
		f.send(t, textMsg(1, input))
	}

	f.handler.HandleMessage(context.Background(), commandMsg(1, "chart"))

	last := f.sender.sent[len(f.sender.sent)-1]
	photo, ok := last.(tgbotapi.PhotoConfig)
	require.True(t, ok, "ожидалась отправка фотографии, получено %T", last)
	assert.Equal(t, f.texts.Resolve("chart_caption"), photo.Caption)
}

func TestUnknownText(t *testing.T) {
	f := newFixture(t)

	reply := f.send(t, textMsg(1, "что это"))

	assert.Equal(t, f.texts.Resolve("unknown_message"), reply)
}

func TestSessionsIsolatedBetweenUsers(t *testing.T) {
	f := newFixture(t)
	f.send(t, textMsg(1, MenuRegister))
	f.send(t, textMsg(2, MenuRegister))

	f.send(t, textMsg(1, MenuFinances))
	f.send(t, textMsg(1, "Продукты"))

	// Второй пользователь вне диалога: его сообщение — fallback
	reply := f.send(t, textMsg(2, "Продукты"))
	assert.Equal(t, f.texts.Resolve("unknown_message"), reply)
	assert.False(t, f.sessions.Get(2).Active())
	assert.True(t, f.sessions.Get(1).Active())
}

func TestPersistenceErrorKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.send(t, textMsg(1, MenuRegister))
	f.send(t, textMsg(1, MenuFinances))
	for _, input := range []string{"Продукты", "100", "Аренда", "200", "Развлечения"} {
		f.send(t, textMsg(1, input))
	}

	f.repo.failAll = errors.New("store unavailable")
	reply := f.send(t, textMsg(1, "300"))
	assert.Equal(t, f.texts.Resolve("save_error"), reply)
	assert.True(t, f.sessions.Get(1).Active())

	// Хранилище ожило — повторная отправка суммы завершает диалог
	f.repo.failAll = nil
	reply = f.send(t, textMsg(1, "300"))
	assert.Equal(t, f.texts.Resolve("expenses_saved"), reply)
	assert.False(t, f.sessions.Get(1).Active())
}
