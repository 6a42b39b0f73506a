package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"reminders/internal/model"
	"reminders/internal/planner"
	"reminders/internal/printer"
	"reminders/internal/service"
)

const (
	cbCompletePrefix = "complete:"
	cbCheckInPrefix  = "checkin:"
)

const (
	iconDefault   = "🟢"
	iconDue       = "⏳"
	iconOverdue   = "⚠️"
	iconUrgent    = "❗"
	iconRecurring = "♻️"
	iconHabit     = "🌱"
	iconDone      = "✅"
)

var errNoChat = errors.New("no chat to notify yet, send /start to the bot first")

// TaskService is what the bot needs from service.TaskService.
type TaskService interface {
	Buckets(ctx context.Context, now time.Time) (planner.Buckets, error)
	Resolve(ctx context.Context, idOrPrefix string) (*model.Task, error)
	Complete(ctx context.Context, id string, now time.Time) (service.CompletionResult, error)
	CheckIn(ctx context.Context, id string, now time.Time) (*model.Task, error)
	RecoverMissingOccurrences(ctx context.Context, now time.Time) ([]*model.Task, error)
}

// ChatStore remembers which chats receive digests.
type ChatStore interface {
	Upsert(ctx context.Context, id int64, username, firstName string) (*model.Chat, error)
	List(ctx context.Context) ([]model.Chat, error)
}

// DigestSource builds attention digests.
type DigestSource interface {
	Digest(ctx context.Context, now time.Time) (service.Digest, error)
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api       *tgbotapi.BotAPI
	tasks     TaskService
	reminders DigestSource
	chats     ChatStore
	loc       *time.Location
	log       zerolog.Logger

	// chatID restricts the bot to one chat when non-zero.
	chatID int64
}

func New(token string, chatID int64, tasks TaskService, reminders DigestSource, chats ChatStore, loc *time.Location, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}

	log.Info().Str("account", api.Self.UserName).Msg("bot authorized")

	return &Bot{
		api:       api,
		tasks:     tasks,
		reminders: reminders,
		chats:     chats,
		loc:       loc,
		log:       log,
		chatID:    chatID,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error().Err(err).Msg("handle callback")
			}
		case update.Message != nil:
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error().Err(err).Msg("handle message")
			}
		}
	}

	return nil
}

// Notify sends a digest to the configured chat, or to every chat that has
// talked to the bot.
func (b *Bot) Notify(ctx context.Context, d service.Digest) error {
	if b.chatID != 0 {
		return b.sendText(b.chatID, d.Text)
	}

	chats, err := b.chats.List(ctx)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}
	if len(chats) == 0 {
		return errNoChat
	}
	var errs []error
	for _, chat := range chats {
		if err := b.sendText(chat.ID, d.Text); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chat.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (b *Bot) allowed(chatID int64) bool {
	return b.chatID == 0 || b.chatID == chatID
}

func (b *Bot) now() time.Time {
	return time.Now().In(b.loc)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Chat == nil || !b.allowed(msg.Chat.ID) {
		return nil
	}
	if _, err := b.chats.Upsert(ctx, msg.Chat.ID, msg.Chat.UserName, msg.Chat.FirstName); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("remember chat")
	}

	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands. Try /help.")
	}

	b.log.Info().
		Int64("chat_id", msg.Chat.ID).
		Str("command", msg.Command()).
		Msg("command received")
	return b.handleCommand(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		return b.sendText(chatID, "👋 Hi! I will remind you about what needs attention.\n\n"+helpText)
	case "help":
		return b.sendText(chatID, helpText)
	case "tasks":
		return b.sendTasks(ctx, chatID)
	case "habits":
		return b.sendHabits(ctx, chatID)
	case "recurring":
		return b.sendRecurring(ctx, chatID)
	case "complete":
		return b.handleComplete(ctx, chatID, msg.CommandArguments())
	case "checkin":
		return b.handleCheckIn(ctx, chatID, msg.CommandArguments())
	case "summary":
		return b.sendSummary(ctx, chatID)
	case "recover":
		return b.handleRecover(ctx, chatID)
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

const helpText = `<b>Commands</b>
/tasks · what needs attention and what is scheduled
/habits · today's habits
/recurring · repeating tasks
/complete &lt;id&gt; · complete a task
/checkin &lt;id&gt; · check in a habit
/summary · attention digest
/recover · restore missing repeats`

func (b *Bot) sendTasks(ctx context.Context, chatID int64) error {
	now := b.now()
	buckets, err := b.tasks.Buckets(ctx, now)
	if err != nil {
		return b.sendError(chatID, "Could not load tasks", err)
	}

	attention := make(map[string]bool)
	for _, t := range buckets.NeedsAttention {
		attention[t.ID] = true
	}
	var scheduled []*model.Task
	for _, t := range buckets.Scheduled {
		if !attention[t.ID] {
			scheduled = append(scheduled, t)
		}
	}

	if len(buckets.NeedsAttention) == 0 && len(scheduled) == 0 {
		return b.sendText(chatID, "Nothing is due. Enjoy the quiet.")
	}

	var builder strings.Builder
	builder.WriteString(formatSection("🔥 Needs attention", buckets.NeedsAttention, now))
	builder.WriteString(formatSection("📆 Scheduled", scheduled, now))

	all := append(append([]*model.Task{}, buckets.NeedsAttention...), scheduled...)
	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(builder.String()), taskButtons(all, cbCompletePrefix, iconDone))
}

func (b *Bot) sendHabits(ctx context.Context, chatID int64) error {
	now := b.now()
	buckets, err := b.tasks.Buckets(ctx, now)
	if err != nil {
		return b.sendError(chatID, "Could not load habits", err)
	}
	if len(buckets.Habits) == 0 {
		return b.sendText(chatID, "No habits yet.")
	}

	open := planner.OpenHabits(buckets.Habits, now)
	text := formatSection(iconHabit+" Habits", buckets.Habits, now)
	if len(open) == 0 {
		return b.sendText(chatID, strings.TrimSpace(text)+"\n\nAll done for today 🎉")
	}
	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(text), taskButtons(open, cbCheckInPrefix, iconHabit))
}

func (b *Bot) sendRecurring(ctx context.Context, chatID int64) error {
	now := b.now()
	buckets, err := b.tasks.Buckets(ctx, now)
	if err != nil {
		return b.sendError(chatID, "Could not load tasks", err)
	}
	if len(buckets.Recurring) == 0 {
		return b.sendText(chatID, "No repeating tasks.")
	}
	return b.sendText(chatID, strings.TrimSpace(formatSection(iconRecurring+" Recurring", buckets.Recurring, now)))
}

func (b *Bot) sendSummary(ctx context.Context, chatID int64) error {
	d, err := b.reminders.Digest(ctx, b.now())
	if err != nil {
		return b.sendError(chatID, "Could not build the summary", err)
	}
	return b.sendText(chatID, d.Text)
}

func (b *Bot) handleComplete(ctx context.Context, chatID int64, arg string) error {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return b.sendText(chatID, "Give me the task id: /complete 1a2b3c4d")
	}
	return b.complete(ctx, chatID, arg)
}

func (b *Bot) complete(ctx context.Context, chatID int64, idOrPrefix string) error {
	task, err := b.tasks.Resolve(ctx, idOrPrefix)
	if err != nil {
		return b.sendError(chatID, "Could not find that task", err)
	}
	now := b.now()
	res, err := b.tasks.Complete(ctx, task.ID, now)
	if err != nil {
		return b.sendError(chatID, "Could not complete the task", err)
	}
	return b.sendText(chatID, completionText(res, now))
}

func (b *Bot) handleCheckIn(ctx context.Context, chatID int64, arg string) error {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return b.sendText(chatID, "Give me the habit id: /checkin 1a2b3c4d")
	}
	return b.checkIn(ctx, chatID, arg)
}

func (b *Bot) checkIn(ctx context.Context, chatID int64, idOrPrefix string) error {
	task, err := b.tasks.Resolve(ctx, idOrPrefix)
	if err != nil {
		return b.sendError(chatID, "Could not find that habit", err)
	}
	now := b.now()
	habit, err := b.tasks.CheckIn(ctx, task.ID, now)
	if err != nil {
		return b.sendError(chatID, "Could not check in", err)
	}
	return b.sendText(chatID, fmt.Sprintf("%s %s checked in · streak %d",
		iconHabit, escape(normalizeTitle(habit.Title)), habit.CurrentStreak(now)))
}

func (b *Bot) handleRecover(ctx context.Context, chatID int64) error {
	now := b.now()
	created, err := b.tasks.RecoverMissingOccurrences(ctx, now)
	if err != nil {
		return b.sendError(chatID, "Could not recover repeats", err)
	}
	if len(created) == 0 {
		return b.sendText(chatID, "Every repeating task already has its next occurrence.")
	}
	return b.sendText(chatID, strings.TrimSpace(formatSection(iconRecurring+" Restored", created, now)))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn().Err(err).Msg("callback ack")
	}
	chatID := cb.Message.Chat.ID
	if !b.allowed(chatID) {
		return nil
	}

	prefix, id, ok := parseCallback(cb.Data)
	if !ok {
		return nil
	}
	b.log.Info().Str("action", strings.TrimSuffix(prefix, ":")).Str("task_id", id).Msg("callback received")
	switch prefix {
	case cbCompletePrefix:
		return b.complete(ctx, chatID, id)
	case cbCheckInPrefix:
		return b.checkIn(ctx, chatID, id)
	}
	return nil
}

func (b *Bot) sendError(chatID int64, what string, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrAmbiguousID),
		errors.Is(err, service.ErrNotHabit):
		return b.sendText(chatID, fmt.Sprintf("%s: %s.", what, escape(err.Error())))
	default:
		b.log.Error().Err(err).Msg(what)
		return b.sendText(chatID, what+". Please try again later.")
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func parseCallback(data string) (prefix, id string, ok bool) {
	for _, p := range []string{cbCompletePrefix, cbCheckInPrefix} {
		if strings.HasPrefix(data, p) {
			id = strings.TrimPrefix(data, p)
			return p, id, id != ""
		}
	}
	return "", "", false
}

// taskButtons builds one inline button per task. Telegram rejects an empty
// keyboard, so nil is returned for no tasks.
func taskButtons(tasks []*model.Task, prefix, icon string) interface{} {
	if len(tasks) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for _, t := range tasks {
		label := fmt.Sprintf("%s %s · %s", icon, printer.ShortID(t.ID), shortTitle(t.Title, 24))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, prefix+t.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatSection(title string, tasks []*model.Task, now time.Time) string {
	if len(tasks) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("<b>%s</b>\n", title))
	for _, t := range tasks {
		builder.WriteString(formatTask(t, now))
	}
	builder.WriteByte('\n')
	return builder.String()
}

func formatTask(task *model.Task, now time.Time) string {
	var b strings.Builder

	icon := iconDefault
	switch {
	case task.IsHabit():
		icon = iconHabit
		if task.IsCompletedToday(now) {
			icon = iconDone
		}
	case task.IsOverdue(now):
		icon = iconOverdue
	case task.IsDueToday(now) || task.IsDueTomorrow(now):
		icon = iconDue
	case task.Priority == model.PriorityUrgent:
		icon = iconUrgent
	}

	b.WriteString(fmt.Sprintf("%s <code>%s</code> %s", icon, printer.ShortID(task.ID), escape(normalizeTitle(task.Title))))
	if name := strings.TrimSpace(task.CategoryName()); name != "" && !task.IsHabit() {
		b.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(name)))
	}
	b.WriteByte('\n')

	switch {
	case task.IsHabit():
		b.WriteString(fmt.Sprintf("   🔥 streak %d · %d of last 7 days\n",
			task.CurrentStreak(now), task.CompletionCountLastNDays(7, now)))
	case task.DueDate != nil:
		due := service.FormatDue(task, now)
		if task.IsOverdue(now) {
			b.WriteString(fmt.Sprintf("   ⏰ %s · <b>overdue</b>\n", escape(due)))
		} else {
			b.WriteString(fmt.Sprintf("   ⏰ %s\n", escape(due)))
		}
	}
	if task.IsRecurring() {
		b.WriteString(fmt.Sprintf("   %s %s\n", iconRecurring, task.Recurrence.Label()))
	}
	if notes := strings.TrimSpace(task.Notes); notes != "" {
		b.WriteString(fmt.Sprintf("   📝 %s\n", escape(truncate(notes, 80))))
	}
	return b.String()
}

func completionText(res service.CompletionResult, now time.Time) string {
	title := escape(normalizeTitle(res.Task.Title))
	if res.Task.IsHabit() {
		return fmt.Sprintf("%s %s checked in · streak %d", iconHabit, title, res.Task.CurrentStreak(now))
	}
	text := fmt.Sprintf("%s %s completed", iconDone, title)
	if res.Next != nil {
		text += fmt.Sprintf("\n%s next: %s", iconRecurring, escape(service.FormatDue(res.Next, now)))
	}
	return text
}

func shortTitle(title string, maxLen int) string {
	return truncate(normalizeTitle(title), maxLen)
}

// truncate flattens s to one line and cuts it to maxLen runes.
func truncate(s string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
