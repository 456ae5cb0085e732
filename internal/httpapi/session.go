package httpapi

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/oklog/ulid/v2"
)

const defaultCookieName = "storefront_session"

// uiSession binds the browser to this gateway process and carries the CSRF
// token. It holds no shopper state; the store owns that.
type uiSession struct {
	ID        string    `json:"id"`
	CSRFToken string    `json:"csrf"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionCodec encodes the signed UI session cookie.
type SessionCodec struct {
	name   string
	codec  *securecookie.SecureCookie
	secure bool
}

// NewSessionCodec builds a codec from the configured hash key. An empty key
// falls back to a process-ephemeral one, which is fine for a local gateway.
func NewSessionCodec(name string, hashKey []byte, secure bool) (*SessionCodec, error) {
	if name == "" {
		name = defaultCookieName
	}
	if len(hashKey) == 0 {
		hashKey = make([]byte, 32)
		if _, err := rand.Read(hashKey); err != nil {
			return nil, errors.New("httpapi: generate session hash key")
		}
	}
	codec := securecookie.New(hashKey, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &SessionCodec{name: name, codec: codec, secure: secure}, nil
}

type sessionCtxKey struct{}

// Middleware loads or initialises the UI session and stores it in context.
func (c *SessionCodec) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := c.read(r)
		if !ok {
			sess = uiSession{
				ID:        ulid.Make().String(),
				CSRFToken: ulid.Make().String(),
				CreatedAt: time.Now().UTC(),
			}
			c.write(w, sess)
		}
		ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromContext(ctx context.Context) (uiSession, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(uiSession)
	return sess, ok
}

func (c *SessionCodec) read(r *http.Request) (uiSession, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return uiSession{}, false
	}
	var sess uiSession
	if err := c.codec.Decode(c.name, cookie.Value, &sess); err != nil {
		return uiSession{}, false
	}
	return sess, sess.ID != ""
}

func (c *SessionCodec) write(w http.ResponseWriter, sess uiSession) {
	encoded, err := c.codec.Encode(c.name, sess)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}
