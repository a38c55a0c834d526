package reconstruct

import "strings"

// Reference type prefixes observed in stored parent/thread references.
// Comment references carry "t1_", submission references "t3_". Prefixes are
// tried in declaration order and the first hit wins.
var (
	ReplyRefPrefixes  = []string{"t1_", "t3_"}
	ThreadRefPrefixes = []string{"t3_"}
)

// NormalizeReference strips the first matching known prefix from a raw
// reference, yielding the fragment used for candidate search. A reference
// with no known prefix passes through unchanged. An empty reference yields
// an empty fragment; callers treat that as "no reference, skip".
func NormalizeReference(reference string, knownPrefixes []string) string {
	for _, prefix := range knownPrefixes {
		if strings.HasPrefix(reference, prefix) {
			return strings.TrimPrefix(reference, prefix)
		}
	}
	return reference
}
