package selection

import (
	"crypto/rand"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName  = "measureingoods-session"
	keyVisitorID = "visitor_id"
	keyLastAsset = "last_asset"
)

// Sessions remembers a visitor id and the last selected asset in a signed
// cookie.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions creates the cookie store. An empty key is replaced with a
// random one, which invalidates cookies on restart.
func NewSessions(key []byte, secure bool) *Sessions {
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			log.Fatalf("[FATAL] generate session key: %v", err)
		}
		log.Println("[WARN] no session key configured, using an ephemeral one")
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 365,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// Visitor is the cookie state of one browser.
type Visitor struct {
	ID        string
	LastAsset string

	sess *sessions.Session
}

// Get reads the visitor from r. A missing or unreadable cookie yields a new
// visitor with a fresh id.
func (s *Sessions) Get(r *http.Request) *Visitor {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		log.Printf("[WARN] discarding unreadable session: %v", err)
	}
	v := &Visitor{sess: sess}
	v.ID, _ = sess.Values[keyVisitorID].(string)
	v.LastAsset, _ = sess.Values[keyLastAsset].(string)
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return v
}

// Remember records asset as the last selection and writes the cookie.
func (v *Visitor) Remember(w http.ResponseWriter, r *http.Request, asset string) error {
	if asset != "" {
		v.LastAsset = asset
	}
	v.sess.Values[keyVisitorID] = v.ID
	v.sess.Values[keyLastAsset] = v.LastAsset
	return v.sess.Save(r, w)
}
