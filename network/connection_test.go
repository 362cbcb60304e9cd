package network

import (
	"errors"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	envelope, err := ParseEnvelope([]byte(`{"type":"join_queue"}`))
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if envelope.Type != "join_queue" {
		t.Errorf("Expected type join_queue, got %q", envelope.Type)
	}
	if string(envelope.Raw) != `{"type":"join_queue"}` {
		t.Error("Raw should carry the original payload")
	}
}

func TestParseEnvelope_MissingType(t *testing.T) {
	// 缺少 type 字段不算格式错误,路由层按未知类型忽略
	envelope, err := ParseEnvelope([]byte(`{"foo":1}`))
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if envelope.Type != "" {
		t.Errorf("Expected empty type, got %q", envelope.Type)
	}
}

func TestParseEnvelope_Malformed(t *testing.T) {
	for _, payload := range []string{`not json`, `[1,2]`, `"join_queue"`, ``} {
		_, err := ParseEnvelope([]byte(payload))
		if !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("Payload %q should yield ErrMalformedMessage, got %v", payload, err)
		}
	}
}
