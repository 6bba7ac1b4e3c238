package telegram

import (
	"fmt"
	"strings"

	"AnimeNewsBot/internal/domain"
)

// FormatMessage renders one article as a Markdown message: bold title,
// summary, link. With decorate on, the title and summary get the
// channel's emoji framing.
func FormatMessage(article domain.Article, decorate bool) string {
	title := sanitizeText(strings.TrimSpace(article.Title))
	summary := sanitizeText(strings.TrimSpace(article.Summary))

	if decorate {
		title = "✨ " + title + " ✨"
		if summary != "" {
			summary = "📖 " + summary + " 📖"
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*", escapeMarkdown(title))
	if summary != "" {
		b.WriteString("\n\n")
		b.WriteString(escapeMarkdown(summary))
	}
	if article.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(article.URL)
	}

	return b.String()
}

// sanitizeText drops byte sequences Telegram rejects as invalid UTF-8.
func sanitizeText(text string) string {
	return strings.ToValidUTF8(text, "")
}

var markdownEscaper = strings.NewReplacer(
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
	"[", "\\[",
)

func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
