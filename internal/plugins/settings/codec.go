package settings

import (
	"log/slog"

	"github.com/tavernhq/tavern/internal/crypto"
)

// The settings codec. Sensitive fields: each provider's apiKey and
// mp.globalSystem. Everything else passes through untouched. With a nil
// key both directions are pass-throughs (degraded mode: reads return
// stored envelopes verbatim, writes persist plaintext).

// encryptSettings seals the sensitive fields before the document is
// persisted. Already-enveloped values are left alone, so re-saving a
// document is a no-op on untouched fields.
func encryptSettings(s *Settings, key []byte, userID string) *Settings {
	if key == nil || s == nil {
		return s
	}
	out := *s

	out.Providers = make([]Provider, len(s.Providers))
	for i, p := range s.Providers {
		sealed, err := crypto.SealField(p.APIKey, key)
		if err != nil {
			logCryptoFailure("encrypt", "provider.apiKey", userID, err)
			sealed = p.APIKey
		}
		p.APIKey = sealed
		out.Providers[i] = p
	}

	if s.MP != nil {
		mp := *s.MP
		sealed, err := crypto.SealField(mp.GlobalSystem, key)
		if err != nil {
			logCryptoFailure("encrypt", "mp.globalSystem", userID, err)
		} else {
			mp.GlobalSystem = sealed
		}
		out.MP = &mp
	}
	return &out
}

// decryptSettings opens the sensitive fields after the document is read.
// A field that fails to open is collapsed to "" and logged -- one corrupt
// credential must not fail the whole settings request.
func decryptSettings(s *Settings, key []byte, userID string) *Settings {
	if key == nil || s == nil {
		return s
	}
	out := *s

	out.Providers = make([]Provider, len(s.Providers))
	for i, p := range s.Providers {
		opened, err := crypto.OpenField(p.APIKey, key)
		if err != nil {
			logCryptoFailure("decrypt", "provider.apiKey", userID, err)
		}
		p.APIKey = opened
		out.Providers[i] = p
	}

	if s.MP != nil {
		mp := *s.MP
		opened, err := crypto.OpenField(mp.GlobalSystem, key)
		if err != nil {
			logCryptoFailure("decrypt", "mp.globalSystem", userID, err)
		}
		mp.GlobalSystem = opened
		out.MP = &mp
	}
	return &out
}

// reencryptSettings moves the sensitive fields from oldKey to newKey for
// a password change. Unopenable values are carried unchanged.
func reencryptSettings(s *Settings, oldKey, newKey []byte) *Settings {
	if s == nil {
		return s
	}
	out := *s

	out.Providers = make([]Provider, len(s.Providers))
	for i, p := range s.Providers {
		p.APIKey = crypto.ResealField(p.APIKey, oldKey, newKey)
		out.Providers[i] = p
	}
	if s.MP != nil {
		mp := *s.MP
		mp.GlobalSystem = crypto.ResealField(mp.GlobalSystem, oldKey, newKey)
		out.MP = &mp
	}
	return &out
}

// logCryptoFailure records a swallowed codec error. Decrypt failures mean
// corruption, tampering, or a stale key -- invisible to the user (they
// just see an empty field), so they must at least be visible to operators.
func logCryptoFailure(op, field, userID string, err error) {
	slog.Warn("settings codec failure",
		slog.String("op", op),
		slog.String("field", field),
		slog.String("user_id", userID),
		slog.Any("error", err),
	)
}
