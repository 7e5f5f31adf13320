package kiro

import (
	"crypto/sha256"
	"encoding/hex"
)

// defaultMachineKey is the literal fallback used when uuid, profile_arn and
// client_id are all empty.
const defaultMachineKey = "KIRO_DEFAULT_MACHINE"

// MachineID derives a deterministic, time-invariant 64-hex-character machine
// identifier from the first non-empty key in (uuid, profileArn, clientID),
// falling back to a fixed literal. It deliberately never mixes in wall-clock
// time: a credential's machine ID must stay constant across refreshes, or
// server-side churn detection would flag the account as suspicious.
func MachineID(uuid, profileArn, clientID string) string {
	key := defaultMachineKey
	switch {
	case uuid != "":
		key = uuid
	case profileArn != "":
		key = profileArn
	case clientID != "":
		key = clientID
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// machineIDFor derives the machine id for a stored credential, using its
// profile_arn and client_id as fingerprint keys (the credential itself carries no
// separate "uuid" field distinct from its store ID, so that slot is left empty —
// the store ID is not wire-observable to the upstream service and must not be used
// as a fingerprint key).
func machineIDFor(c *Credential) string {
	return MachineID("", c.ProfileArn, c.ClientID)
}
