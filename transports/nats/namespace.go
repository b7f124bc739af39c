package nats

import "strings"

// namespace maps a transport subject onto the NATS subject it travels on,
// under the bytedata prefix. NATS rejects whitespace and empty tokens, so
// both are dropped; wildcard tokens pass through for Handle.
func namespace(subject string) string {
	tokens := []string{"bytedata"}
	for _, token := range strings.Split(subject, ".") {
		token = strings.Join(strings.Fields(token), "")
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return strings.Join(tokens, ".")
}
