package outputs

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/specialistvlad/actionref/internal/actions"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// VersionPrefix starts every action version.
const VersionPrefix = "v-"

const versionLength = 10

// ComputeVersion hashes the declarative definition of an action.
//
// The hash covers the kind, type and name, the config as written (templates
// unresolved, defaults applied) and the versions of the action's
// dependencies. Dependency versions are treated as a set and sorted. Every
// field is length-prefixed.
func ComputeVersion(a *actions.Action, depVersions []string) (string, error) {
	h := sha256.New()

	writeField := func(data []byte) {
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(data)))
		h.Write(length[:])
		h.Write(data)
	}

	writeField([]byte(a.Kind))
	writeField([]byte(a.Type))
	writeField([]byte(a.Name))

	raw := a.Raw
	if raw.IsNull() {
		raw = cty.EmptyObjectVal
	}
	config, err := ctyjson.Marshal(raw, raw.Type())
	if err != nil {
		return "", fmt.Errorf("failed to encode config of %s: %w", a.Ref(), err)
	}
	writeField(config)

	sorted := make([]string, len(depVersions))
	copy(sorted, depVersions)
	sort.Strings(sorted)
	var count [8]byte
	binary.BigEndian.PutUint64(count[:], uint64(len(sorted)))
	writeField(count[:])
	for _, v := range sorted {
		writeField([]byte(v))
	}

	sum := hex.EncodeToString(h.Sum(nil))
	return VersionPrefix + sum[:versionLength], nil
}
