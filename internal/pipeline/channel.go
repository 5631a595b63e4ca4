package pipeline

import "strings"

// ChannelNormalizer rewrites a channel label for output.
type ChannelNormalizer func(string) string

// StripChannelPrefix returns a normalizer that removes prefix from labels
// where the remainder starts with a digit, as in reporter-ion masses:
//
//	X126  -> 126
//	X127N -> 127N
//	126   -> 126
//	Xeno  -> Xeno
//
// An empty prefix yields the identity normalizer.
func StripChannelPrefix(prefix string) ChannelNormalizer {
	if prefix == "" {
		return identityChannel
	}
	return func(ch string) string {
		rest, ok := strings.CutPrefix(ch, prefix)
		if !ok || rest == "" || rest[0] < '0' || rest[0] > '9' {
			return ch
		}
		return rest
	}
}

func identityChannel(ch string) string {
	return ch
}
