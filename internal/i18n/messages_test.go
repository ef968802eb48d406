package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatchFallsBackToEnglish(t *testing.T) {
	m := New()
	assert.Equal(t, language.English, m.Match(""))
	assert.Equal(t, language.English, m.Match("de-DE,de;q=0.9"))
	assert.Equal(t, language.French, m.Match("fr-CA,fr;q=0.9,en;q=0.5"))
}

func TestTextTranslates(t *testing.T) {
	m := New()
	assert.Equal(t, "Please sign in to continue.", m.Text(language.English, KeyUnauthenticated))
	assert.Equal(t, "Veuillez vous connecter pour continuer.", m.Text(language.French, KeyUnauthenticated))
	assert.Equal(t, "Your role has been changed to editor.", m.Text(language.English, KeyRoleChanged, "editor"))
}

func TestForRequestUsesAcceptLanguage(t *testing.T) {
	m := New()
	req := httptest.NewRequest("GET", "/unauthorized", nil)
	req.Header.Set("Accept-Language", "fr")
	assert.Equal(t, "Vous n'êtes pas autorisé à accéder à cette page.", m.ForRequest(req, KeyUnauthorized))
}

func TestNilMessagesReturnsKey(t *testing.T) {
	var m *Messages
	assert.Equal(t, "forbidden", m.Text(language.English, KeyForbidden))
}
