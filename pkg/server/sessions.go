package server

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/chatstack/pkg/session"
	"github.com/matzehuels/chatstack/pkg/view"
)

// keyedMutex hands out one mutex per key and forgets it when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

// Lock locks key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// viewContext is one request's view of its session.
type viewContext struct {
	chart   *chart
	sess    *session.Session
	ctrl    *view.Controller
	created bool
}

// withView loads the caller's session, runs fn with a controller restored to
// it and saves the session when fn reports a change. Calls for the same
// session are serialized.
func (s *Server) withView(w http.ResponseWriter, r *http.Request, fn func(vc *viewContext) (changed bool, err error)) error {
	id := ""
	if c, err := r.Cookie(CookieName); err == nil && session.ValidateID(c.Value) == nil {
		id = c.Value
	}
	if id == "" {
		id = uuid.NewString()
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	ch := s.chart()
	vc := &viewContext{chart: ch}

	sess, err := s.cfg.Sessions.Get(r.Context(), id)
	if err != nil {
		s.logger.Warn("session load failed, starting fresh", "error", err)
		sess = nil
	}
	n := ch.model.Dataset().NumSeries()
	if sess == nil || sess.DatasetHash != ch.hash || len(sess.Shown) != n {
		fresh := session.New(n, ch.hash, s.cfg.SessionTTL)
		fresh.ID = id
		sess = fresh
		vc.created = true
	}
	vc.sess = sess

	vc.ctrl = ch.model.NewController(s.cfg.Options.ViewOptions())
	if err := vc.ctrl.Restore(sess.Shown); err != nil {
		return err
	}

	changed, err := fn(vc)
	if err != nil {
		return err
	}

	if changed || vc.created {
		sess.Touch(vc.ctrl.State().Shown, s.cfg.SessionTTL)
		if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
	})
	return nil
}
