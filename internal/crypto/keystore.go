package crypto

import "sync"

// SessionKeyStore maps authenticated user IDs to their derived encryption
// keys. It is populated exactly at auth success (registration, login,
// password change) and lives only in process memory -- a restart clears it,
// and previously encrypted data stays unreadable until the user logs in
// again. That is the tradeoff that keeps the key off disk.
//
// Constructed once in main and injected into the services that need it.
type SessionKeyStore struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

// NewSessionKeyStore creates an empty key store.
func NewSessionKeyStore() *SessionKeyStore {
	return &SessionKeyStore{keys: make(map[string][]byte)}
}

// Put stores the derived key for a user, replacing any previous entry.
// Callers must only invoke this with a key derived from a password they
// have just verified.
func (s *SessionKeyStore) Put(userID string, key []byte) {
	k := make([]byte, len(key))
	copy(k, key)

	s.mu.Lock()
	s.keys[userID] = k
	s.mu.Unlock()
}

// Get returns the cached key for a user. ok is false when the process has
// not seen this user log in -- callers must treat that as "cannot encrypt
// or decrypt right now" and pass data through untouched.
func (s *SessionKeyStore) Get(userID string) (key []byte, ok bool) {
	s.mu.RLock()
	key, ok = s.keys[userID]
	s.mu.RUnlock()
	return key, ok
}

// Evict removes a user's key, e.g. on account deletion or an explicit
// security logout. Absent entries are a no-op.
func (s *SessionKeyStore) Evict(userID string) {
	s.mu.Lock()
	delete(s.keys, userID)
	s.mu.Unlock()
}
