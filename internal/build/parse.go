package build

import "strings"

// ParseArtifactID extracts the artifact identifier from store push output.
//
// Only the first non-empty line is consulted and it must carry at least two
// whitespace-separated tokens. The store prints "url: cs:~team/name-42", where
// the leading token is a field label and the identifier is the second token.
// A line of the form "name-42 pushed" carries the identifier first.
func ParseArtifactID(output string) (string, error) {
	fields := strings.Fields(firstNonEmptyLine(output))
	if len(fields) < 2 {
		return "", &MalformedStoreOutputError{Output: output}
	}
	if strings.HasSuffix(fields[0], ":") {
		return fields[1], nil
	}
	return fields[0], nil
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
