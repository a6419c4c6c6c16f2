package i18n

import (
	"fmt"
	"strings"
)

// Anchor identifies a fixed piece of UI text that gets rewritten on locale
// change. The set is enumerated here and resolved against the table once at
// startup; there is no string-keyed dynamic lookup at call sites.
type Anchor string

const (
	AnchorAppTitle         Anchor = "app_title"
	AnchorInputPlaceholder Anchor = "input_placeholder"
	AnchorProcessButton    Anchor = "process_button"
	AnchorAskButton        Anchor = "ask_button"
	AnchorNewChatButton    Anchor = "new_chat_button"
	AnchorSessionsHeader   Anchor = "sessions_header"
	AnchorVideosHeader     Anchor = "videos_header"
	AnchorWaitingMessage   Anchor = "waiting_message"
)

// Anchors lists every anchor in stable order.
func Anchors() []Anchor {
	return []Anchor{
		AnchorAppTitle,
		AnchorInputPlaceholder,
		AnchorProcessButton,
		AnchorAskButton,
		AnchorNewChatButton,
		AnchorSessionsHeader,
		AnchorVideosHeader,
		AnchorWaitingMessage,
	}
}

var anchorTexts = map[Anchor]map[Locale]string{
	AnchorAppTitle: {
		LocaleEnglish: "Video Assistant",
		LocaleArabic:  "مساعد الفيديو",
	},
	AnchorInputPlaceholder: {
		LocaleEnglish: "Ask a question about the video...",
		LocaleArabic:  "اطرح سؤالاً حول الفيديو...",
	},
	AnchorProcessButton: {
		LocaleEnglish: "Process",
		LocaleArabic:  "معالجة",
	},
	AnchorAskButton: {
		LocaleEnglish: "Ask",
		LocaleArabic:  "اسأل",
	},
	AnchorNewChatButton: {
		LocaleEnglish: "New chat",
		LocaleArabic:  "محادثة جديدة",
	},
	AnchorSessionsHeader: {
		LocaleEnglish: "Chats",
		LocaleArabic:  "المحادثات",
	},
	AnchorVideosHeader: {
		LocaleEnglish: "Videos",
		LocaleArabic:  "الفيديوهات",
	},
	AnchorWaitingMessage: {
		LocaleEnglish: "Processing video...",
		LocaleArabic:  "جاري معالجة الفيديو...",
	},
}

// AnchorText returns the anchor's text for the locale.
func AnchorText(anchor Anchor, l Locale) string {
	return anchorTexts[anchor][l]
}

const (
	processedPrefixEN = "✅ Video processed:"
	processedPrefixAR = "✅ تمت معالجة الفيديو:"
)

// Welcome is the synthesized first message of a fresh or cleared session.
func Welcome(l Locale) string {
	if l == LocaleArabic {
		return "مرحباً! قم بمعالجة فيديو يوتيوب ثم اسألني أي شيء عنه."
	}
	return "Hi! Process a YouTube video, then ask me anything about it."
}

// GenericChatLabel is the prefix of an auto-derived title when no video is
// bound.
func GenericChatLabel(l Locale) string {
	if l == LocaleArabic {
		return "محادثة"
	}
	return "Chat"
}

// ProcessedMessage is the assistant message appended after a successful
// process call. SessionStore treats it as the rebind marker.
func ProcessedMessage(l Locale, title string) string {
	if l == LocaleArabic {
		return fmt.Sprintf("%s %s", processedPrefixAR, title)
	}
	return fmt.Sprintf("%s %s", processedPrefixEN, title)
}

// IsProcessedMessage reports whether an assistant message is the processed
// marker, in either supported locale.
func IsProcessedMessage(text string) bool {
	return strings.HasPrefix(text, processedPrefixEN) ||
		strings.HasPrefix(text, processedPrefixAR)
}

// CachedMarker prefixes answers the backend served from its cache.
func CachedMarker(l Locale) string {
	if l == LocaleArabic {
		return "(من الذاكرة المؤقتة)"
	}
	return "(from cache)"
}

// NoVideoAlert is the inline assistant message when a question arrives with
// no bound video.
func NoVideoAlert(l Locale) string {
	if l == LocaleArabic {
		return "الرجاء معالجة فيديو أولاً قبل طرح الأسئلة."
	}
	return "Please process a video before asking questions."
}

// AskError surfaces a failed question. Detail is the backend's message when
// one could be extracted.
func AskError(l Locale, detail string) string {
	if l == LocaleArabic {
		if detail != "" {
			return fmt.Sprintf("عذراً، تعذّرت الإجابة على سؤالك: %s", detail)
		}
		return "عذراً، تعذّرت الإجابة على سؤالك."
	}
	if detail != "" {
		return fmt.Sprintf("Sorry, I could not answer your question: %s", detail)
	}
	return "Sorry, I could not answer your question."
}

// ProcessError surfaces a failed process call.
func ProcessError(l Locale, detail string) string {
	if l == LocaleArabic {
		if detail != "" {
			return fmt.Sprintf("فشلت معالجة الفيديو: %s", detail)
		}
		return "فشلت معالجة الفيديو."
	}
	if detail != "" {
		return fmt.Sprintf("Video processing failed: %s", detail)
	}
	return "Video processing failed."
}

// Apology is the terminal fallback after the summary retry also fails.
func Apology(l Locale) string {
	if l == LocaleArabic {
		return "عذراً، حدث خطأ ما. حاول مرة أخرى لاحقاً."
	}
	return "Sorry, something went wrong. Please try again later."
}

// SlowHint replaces the waiting message when processing takes long.
func SlowHint(l Locale) string {
	if l == LocaleArabic {
		return "لا يزال العمل جارياً... الفيديوهات الطويلة قد تستغرق عدة دقائق."
	}
	return "Still working... long videos can take several minutes."
}

// InvalidURL is the notification for an unrecognizable video URL.
func InvalidURL(l Locale) string {
	if l == LocaleArabic {
		return "رابط يوتيوب غير صالح."
	}
	return "Not a valid YouTube URL."
}

// summaryTerms are the summary-intent keywords in both supported languages,
// matching what the backend itself treats as a summary request.
var summaryTerms = []string{
	"summary", "summarize", "sum up", "recap", "overview", "tldr",
	"main points", "key points",
	"ملخص", "لخص", "تلخيص", "موجز", "نبذة", "أهم النقاط",
}

// IsSummaryIntent reports whether the question is asking for a summary.
func IsSummaryIntent(question string) bool {
	q := strings.ToLower(question)
	for _, term := range summaryTerms {
		if strings.Contains(q, term) {
			return true
		}
	}
	return false
}
