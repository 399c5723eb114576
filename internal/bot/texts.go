package bot

import (
	"time"

	"multazim/internal/config"
	"multazim/internal/tracker"
)

// Texts holds every user-facing string of the Telegram surface. The zero
// value is unusable; start from DefaultTexts and overlay config overrides.
// The core only ever sees task ids; all labelling lives here.
type Texts struct {
	Welcome        string
	MenuPrompt     string
	TodayMenuLabel string
	WeekMenuLabel  string
	AlreadyDone    string
	StorageFailure string

	TaskLabels   map[tracker.TaskID]string
	TaskEmojis   map[tracker.TaskID]string
	Celebrations map[tracker.TaskID]string

	WeekdayNames map[time.Weekday]string
}

// DefaultTexts returns the built-in Arabic texts.
func DefaultTexts() *Texts {
	return &Texts{
		Welcome: "*اهلا بيك ي كتكوت في بوت ملتزم 😍*\n\n" +
			"*لو بتتكاسل في أداء العبادات البوت هيساعدك تنتظم ان شاءالله 🤲*\n\n" +
			"*كل الل عليك لما تخلص عبادة من العبادات تدوس ع علامة صح قصادها ✅*\n\n" +
			"*وكمان فيه سجل اسبوعي تقدر تشوف فيه العبادات اللي عملتها واللي قصرت فيها 🗓️*",
		MenuPrompt:     "اختر من القائمة:",
		TodayMenuLabel: "📋 جدول اليوم",
		WeekMenuLabel:  "📆 سجل الأسبوع",
		AlreadyDone:    "تم مسبقًا ✅",
		StorageFailure: "حصلت مشكلة مؤقتة، جرب تاني بعد شوية 🙏",

		TaskLabels: map[tracker.TaskID]string{
			tracker.TaskMorningRemembrance: "أذكار الصباح",
			tracker.TaskQuranPortion:       "وِرد القرآن",
			tracker.TaskEveningRemembrance: "أذكار المساء",
			tracker.TaskNightPrayer:        "قيام الليل",
		},
		TaskEmojis: map[tracker.TaskID]string{
			tracker.TaskMorningRemembrance: "☀️",
			tracker.TaskQuranPortion:       "📖",
			tracker.TaskEveningRemembrance: "🌙",
			tracker.TaskNightPrayer:        "🌌",
		},
		Celebrations: map[tracker.TaskID]string{
			tracker.TaskMorningRemembrance: "شطور يا جميل كده انت انهاردة هتبقى في حفظ الله ويومك هيبقى مليان بركه 😍",
			tracker.TaskQuranPortion:       "ربنا يحفظك بالقرآن يا جميل ويجعله شفيعك يوم القيامة 🤲😍",
			tracker.TaskEveningRemembrance: "ربنا يحفظك يا جميل من كل سوء 😍",
			tracker.TaskNightPrayer:        "كده تنام وانت مطمن يا جميل وإن شاء الله ربنا يحققلك كل دعوة دعيتها 🤲😍",
		},

		WeekdayNames: map[time.Weekday]string{
			time.Saturday:  "السبت",
			time.Sunday:    "الأحد",
			time.Monday:    "الإثنين",
			time.Tuesday:   "الثلاثاء",
			time.Wednesday: "الأربعاء",
			time.Thursday:  "الخميس",
			time.Friday:    "الجمعة",
		},
	}
}

// TextsFromConfig overlays config overrides on the defaults. Unknown task
// ids in the override maps are ignored.
func TextsFromConfig(tc config.TextsConfig) *Texts {
	t := DefaultTexts()
	if tc.Welcome != "" {
		t.Welcome = tc.Welcome
	}
	if tc.AlreadyDone != "" {
		t.AlreadyDone = tc.AlreadyDone
	}
	if tc.StorageFailure != "" {
		t.StorageFailure = tc.StorageFailure
	}
	for id, text := range tc.Celebrations {
		task := tracker.TaskID(id)
		if task.Valid() && text != "" {
			t.Celebrations[task] = text
		}
	}
	for id, label := range tc.TaskLabels {
		task := tracker.TaskID(id)
		if task.Valid() && label != "" {
			t.TaskLabels[task] = label
		}
	}
	return t
}
