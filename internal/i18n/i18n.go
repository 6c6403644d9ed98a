// Package i18n renders operator-facing messages. English and Indonesian are
// embedded; more locale files can be loaded from disk.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var embedded = []string{"locales/active.en.json", "locales/active.id.json"}

type Translator struct {
	bundle *goi18n.Bundle
}

func New() (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, path := range embedded {
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return &Translator{bundle: bundle}, nil
}

// Load adds a locale file such as "active.fr.json" from disk.
func (t *Translator) Load(path string) error {
	_, err := t.bundle.LoadMessageFile(path)
	return err
}

// Localize renders messageID for the given Accept-Language values, falling back
// to English and then to fallback when the id is unknown.
func (t *Translator) Localize(messageID string, data map[string]any, fallback string, langs ...string) string {
	loc := goi18n.NewLocalizer(t.bundle, langs...)
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}
