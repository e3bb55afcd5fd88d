/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package generator

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// TOKEN_HASH_LENGTH is the number of hex characters after the prefix of a token.
	TOKEN_HASH_LENGTH    = 16
	DEFAULT_TOKEN_PREFIX = "anon_"
	SALT_SIZE            = 16
)

/*
TokenHasher maps values to salted sha256 tokens of the form <prefix><16 hex chars>.

Equal (prefix, value) pairs get equal tokens for as long as the salt is unchanged, so a
hashed key column still joins with the same key hashed in another table. The prefix is
part of the hash input: "users" as a table and "users" as a column give different tokens.
Not safe for concurrent use.
*/
type TokenHasher struct {
	salt  string
	cache map[string]string
}

func NewTokenHasher(salt string) *TokenHasher {
	return &TokenHasher{salt: salt, cache: make(map[string]string)}
}

// GenerateSalt returns size random bytes, hex encoded.
func GenerateSalt(size int) (string, error) {
	buf := make([]byte, size)
	_, err := rand.Read(buf)
	if err != nil {
		return "", fmt.Errorf("read random salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SetSalt replaces the salt and drops every cached token.
func (h *TokenHasher) SetSalt(salt string) {
	h.salt = salt
	h.cache = make(map[string]string)
}

func (h *TokenHasher) Token(prefix string, value string) string {
	if value == "" {
		return ""
	}
	key := prefix + "\x00" + value
	if token, ok := h.cache[key]; ok {
		return token
	}
	sum := sha256.Sum256([]byte(prefix + h.salt + value))
	token := prefix + hex.EncodeToString(sum[:])[:TOKEN_HASH_LENGTH]
	h.cache[key] = token
	return token
}

// IsToken reports whether s looks like a token produced with prefix.
func IsToken(prefix string, s string) bool {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok || len(rest) != TOKEN_HASH_LENGTH {
		return false
	}
	_, err := hex.DecodeString(rest)
	return err == nil
}

// hashToken replaces the original value with its token. Already hashed values are kept,
// so running a dump through twice is harmless.
func hashToken(env *Env, value any, args []string) (any, error) {
	prefix := DEFAULT_TOKEN_PREFIX
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		prefix = strings.TrimSpace(args[0])
	}
	s := Stringify(value)
	if IsToken(prefix, s) {
		return s, nil
	}
	return env.Tokens.Token(prefix, s), nil
}
