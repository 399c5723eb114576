package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"multazim/internal/tracker"
)

const (
	checkMark = "✅"
	crossMark = "❌"
)

func mark(done bool) string {
	if done {
		return checkMark
	}
	return crossMark
}

// statusText renders today's record, one line per task in display order.
func statusText(texts *Texts, date string, rec tracker.DayRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📆 جدول عباداتك ليوم %s:\n\n", date)
	for i, task := range tracker.AllTasks() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s: %s", texts.TaskEmojis[task], texts.TaskLabels[task], mark(rec[task]))
	}
	return b.String()
}

// weekText renders the trailing window as a Markdown table, oldest first.
func weekText(texts *Texts, window []tracker.WindowEntry) string {
	var b strings.Builder
	b.WriteString("🗓️ *سجل الأسبوع الأخير:*\n\n")
	b.WriteString("*📅 اليوم* | ☀️ صباح | 📖 قرآن | 🌙 مساء | 🌌 قيام\n")
	b.WriteString(strings.Repeat("─", 40) + "\n")

	for _, entry := range window {
		weekday, ok := texts.WeekdayNames[entry.Weekday]
		if !ok {
			weekday = entry.Weekday.String()
		}
		cells := []string{weekday}
		for _, task := range tracker.AllTasks() {
			cells = append(cells, mark(entry.Record[task]))
		}
		b.WriteString(strings.Join(cells, " | ") + "\n")
	}
	return b.String()
}

// markKeyboard builds the 2x2 inline keyboard of task buttons. Callback
// data carries the stable task id, never the display label.
func markKeyboard(texts *Texts) tgbotapi.InlineKeyboardMarkup {
	tasks := tracker.AllTasks()
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(tasks); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(checkMark+" "+texts.TaskLabels[tasks[i]], string(tasks[i])),
		}
		if i+1 < len(tasks) {
			row = append(row,
				tgbotapi.NewInlineKeyboardButtonData(checkMark+" "+texts.TaskLabels[tasks[i+1]], string(tasks[i+1])))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// mainMenu builds the persistent reply keyboard.
func mainMenu(texts *Texts) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(texts.TodayMenuLabel)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(texts.WeekMenuLabel)),
	)
	kb.ResizeKeyboard = true
	return kb
}
