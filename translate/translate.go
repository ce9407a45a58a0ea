// Package translate renders user-visible messages through a locale-aware
// message printer.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	once    sync.Once
	mutex   sync.RWMutex
	tag     language.Tag
	printer *message.Printer
)

// systemLocales returns the user's locales, or en-US if none are known.
func systemLocales() (locales []string) {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("tribit: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	return
}

// setLocked replaces the printer. Caller holds mutex.
func setLocked(langs []string) {
	tag = message.MatchLanguage(langs...)
	printer = message.NewPrinter(tag)
}

func load() {
	once.Do(func() {
		mutex.Lock()
		defer mutex.Unlock()
		if printer == nil {
			setLocked(systemLocales())
		}
	})
}

// Use selects the languages used for messages, overriding the system locale.
// An empty list restores the system locale.
func Use(langs ...string) {
	load()

	if len(langs) == 0 {
		langs = systemLocales()
	}

	mutex.Lock()
	defer mutex.Unlock()
	setLocked(langs)
}

// Tag returns the language tag currently used for messages.
func Tag() language.Tag {
	load()

	mutex.RLock()
	defer mutex.RUnlock()

	return tag
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	load()

	mutex.RLock()
	defer mutex.RUnlock()

	return printer.Sprintf(key, args...)
}
