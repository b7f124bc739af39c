package nats

import "testing"

func TestNamespace(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		expected string
	}{
		{name: "single token", subject: "records", expected: "bytedata.records"},
		{name: "nested tokens", subject: "records.created", expected: "bytedata.records.created"},
		{name: "token wildcard", subject: "records.*", expected: "bytedata.records.*"},
		{name: "full wildcard", subject: "records.>", expected: "bytedata.records.>"},
		{name: "empty tokens dropped", subject: ".records..created.", expected: "bytedata.records.created"},
		{name: "whitespace dropped", subject: " records . created\t", expected: "bytedata.records.created"},
		{name: "case preserved", subject: "Records.ID", expected: "bytedata.Records.ID"},
		{name: "empty subject", subject: "", expected: "bytedata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := namespace(tt.subject)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

// A sender and a handler given the same subject must meet on one NATS
// subject even when one side was written with stray separators.
func TestNamespaceSendMatchesHandle(t *testing.T) {
	send := namespace("cache.snapshot")
	handle := namespace("cache..snapshot ")

	if send != handle {
		t.Errorf("Expected Send subject '%s' to equal Handle subject '%s'", send, handle)
	}
}
