package locale

// Language selects the UI and prompt language of the assistant
type Language string

const (
	French Language = "fr"
	Arabic Language = "ar"
)

// Default is used whenever a language value is missing or unknown
const Default = French

// Valid reports whether l is a supported language
func (l Language) Valid() bool {
	return l == French || l == Arabic
}

type entry struct {
	fr string
	ar string
}

var messages = map[string]entry{
	"appTitle": {
		fr: "Assistante Éducatrice Sarah",
		ar: "المساعدة التعليمية سارة",
	},
	"defaultConversationTitle": {
		fr: "Nouvelle Conversation",
		ar: "محادثة جديدة",
	},
	"quizRequestTitle": {
		fr: "Demande de quiz",
		ar: "طلب اختبار",
	},
	"historyTitle": {
		fr: "Historique",
		ar: "سجل المحادثات",
	},
	"corpusEmptyState": {
		fr: "Votre base de connaissances est vide. Ajoutez un document pour commencer.",
		ar: "قاعدة المعرفة فارغة. أضف وثيقة للبدء.",
	},
	"errorTitle": {
		fr: "Une erreur est survenue",
		ar: "حدث خطأ",
	},
	"errorFileSize": {
		fr: "Le fichier est trop grand (max 4MB).",
		ar: "الملف كبير جدًا (الحد الأقصى 4 ميغابايت).",
	},
	"errorFileFormat": {
		fr: "Format de fichier non supporté.",
		ar: "تنسيق ملف غير مدعوم.",
	},
	"errorFileRead": {
		fr: "Erreur lors de la lecture du fichier.",
		ar: "خطأ أثناء قراءة الملف.",
	},
	"errorFileContent": {
		fr: "Impossible d'extraire le contenu du fichier.",
		ar: "تعذر استخراج محتوى الملف.",
	},
}

// T looks up the message for the given key. An unknown language falls back to
// French, an unknown key falls back to the key itself so a missing entry is
// visible instead of silent.
func T(lang Language, key string) string {
	e, ok := messages[key]
	if !ok {
		return key
	}
	if lang == Arabic {
		return e.ar
	}
	return e.fr
}
