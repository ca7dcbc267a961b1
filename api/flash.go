package api

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const flashSessionName = "blog_admin_flash"

// FlashMessages survive exactly one redirect.
type FlashMessages struct {
	Success string              `json:"success,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Old     map[string]string   `json:"old,omitempty"`
}

func init() {
	gob.Register(FlashMessages{})
}

type flashStore struct {
	logger zerolog.Logger
	store  sessions.Store
}

// newFlashStore signs flash cookies with key. An empty key gets a random one,
// which invalidates pending flashes on every restart.
func newFlashStore(logger zerolog.Logger, key string) flashStore {
	secret := []byte(key)
	if len(secret) == 0 {
		logger.Warn().Msg("SESSION_KEY is not set, using a random key for flash cookies")
		secret = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return flashStore{logger: logger, store: store}
}

func (f flashStore) add(w http.ResponseWriter, r *http.Request, msg FlashMessages) {
	session, err := f.store.Get(r, flashSessionName)
	if err != nil {
		f.logger.Debug().Err(err).Msg("replacing unreadable flash session")
	}
	session.AddFlash(msg)
	if err := session.Save(r, w); err != nil {
		f.logger.Error().Err(err).Msg("failed to save flash session")
	}
}

// pop returns and clears every pending flash, merged into one value.
func (f flashStore) pop(w http.ResponseWriter, r *http.Request) *FlashMessages {
	merged := &FlashMessages{}

	session, err := f.store.Get(r, flashSessionName)
	if err != nil {
		return merged
	}

	flashes := session.Flashes()
	if len(flashes) == 0 {
		return merged
	}

	for _, flash := range flashes {
		msg, ok := flash.(FlashMessages)
		if !ok {
			continue
		}
		if msg.Success != "" {
			merged.Success = msg.Success
		}
		if msg.Errors != nil {
			merged.Errors = msg.Errors
		}
		if msg.Old != nil {
			merged.Old = msg.Old
		}
	}

	if err := session.Save(r, w); err != nil {
		f.logger.Error().Err(err).Msg("failed to clear flash session")
	}
	return merged
}
