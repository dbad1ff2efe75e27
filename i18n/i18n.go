// Package i18n provides a tiny translation lookup for the fr/en labels used by
// exports, the CLI and the activity feed.
package i18n

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Supported languages. French is the default.
const (
	LangFR = "fr"
	LangEN = "en"
)

// Default is the language used when nothing else matches.
const Default = LangFR

type ctxKey struct{}

var matcher = language.NewMatcher([]language.Tag{language.French, language.English})

// WithLang stores the language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, Normalize(lang))
}

// LangFromContext returns the language stored by WithLang, or Default.
func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(ctxKey{}).(string); ok && l != "" {
		return l
	}
	return Default
}

// Normalize maps any tag ("EN-gb", "fr_FR") to a supported language code.
func Normalize(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	switch {
	case strings.HasPrefix(l, LangEN):
		return LangEN
	case strings.HasPrefix(l, LangFR):
		return LangFR
	}
	return Default
}

// DetectLanguage picks the best supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	tag, _, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	base, _ := tag.Base()
	return Normalize(base.String())
}

// T translates code into lang. Unknown languages fall back to French and
// unknown codes are returned unchanged.
func T(lang, code string) string {
	if table, ok := messages[Normalize(lang)]; ok {
		if s, ok := table[code]; ok {
			return s
		}
	}
	if s, ok := messages[Default][code]; ok {
		return s
	}
	return code
}

// Tf translates code and formats it with args.
func Tf(lang, code string, args ...any) string {
	return fmt.Sprintf(T(lang, code), args...)
}
