package topology

import (
	"crypto/sha256"
	"encoding/base32"
	"strings"
)

// tokenLength matches the 13-character unique suffix convention used across
// default resource names.
const tokenLength = 13

// Token derives the deterministic naming token for an environment. The same
// (subscription, environment, location) triple always yields the same token,
// so re-resolving an environment produces stable resource names.
func Token(subscriptionID, environmentName, location string) string {
	sum := sha256.Sum256([]byte(subscriptionID + "|" + environmentName + "|" + location))
	enc := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:])
	return strings.ToLower(enc[:tokenLength])
}
