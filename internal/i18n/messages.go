// Package i18n localises the short user-facing messages emitted by the
// access-control layer.
package i18n

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a translatable message.
type Key string

// Message keys.
const (
	KeyUnauthenticated    Key = "unauthenticated"
	KeyForbidden          Key = "forbidden"
	KeyUnauthorized       Key = "unauthorized"
	KeyInvalidCredentials Key = "invalid_credentials"
	KeyRoleChanged        Key = "role_changed"
)

var translations = map[language.Tag]map[Key]string{
	language.English: {
		KeyUnauthenticated:    "Please sign in to continue.",
		KeyForbidden:          "You do not have permission to perform this action.",
		KeyUnauthorized:       "You are not allowed to access this page.",
		KeyInvalidCredentials: "Invalid email or password.",
		KeyRoleChanged:        "Your role has been changed to %s.",
	},
	language.French: {
		KeyUnauthenticated:    "Veuillez vous connecter pour continuer.",
		KeyForbidden:          "Vous n'avez pas la permission d'effectuer cette action.",
		KeyUnauthorized:       "Vous n'êtes pas autorisé à accéder à cette page.",
		KeyInvalidCredentials: "Adresse e-mail ou mot de passe invalide.",
		KeyRoleChanged:        "Votre rôle a été changé en %s.",
	},
}

// Messages resolves message keys for a negotiated language.
type Messages struct {
	catalog *catalog.Builder
	tags    []language.Tag
	matcher language.Matcher
}

// New builds the message catalog. English is the fallback language.
func New() *Messages {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	tags := []language.Tag{language.English, language.French}
	for _, tag := range tags {
		for key, text := range translations[tag] {
			if err := builder.SetString(tag, string(key), text); err != nil {
				panic(err)
			}
		}
	}
	return &Messages{catalog: builder, tags: tags, matcher: language.NewMatcher(tags)}
}

// Match picks the supported language closest to an Accept-Language header.
func (m *Messages) Match(acceptLanguage string) language.Tag {
	if m == nil {
		return language.English
	}
	preferred, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(preferred) == 0 {
		return m.tags[0]
	}
	_, index, _ := m.matcher.Match(preferred...)
	return m.tags[index]
}

// Text renders key in tag, formatting args into the translation.
func (m *Messages) Text(tag language.Tag, key Key, args ...any) string {
	if m == nil {
		return string(key)
	}
	printer := message.NewPrinter(tag, message.Catalog(m.catalog))
	return printer.Sprintf(string(key), args...)
}

// ForRequest renders key in the language requested by r.
func (m *Messages) ForRequest(r *http.Request, key Key, args ...any) string {
	return m.Text(m.Match(r.Header.Get("Accept-Language")), key, args...)
}
