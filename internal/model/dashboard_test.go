package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestDocumentUpdatedAtJSON 测试未保存过的文档不输出 updatedAt
func TestDocumentUpdatedAtJSON(t *testing.T) {
	raw, err := json.Marshal(DefaultDocument())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(raw), "updatedAt") {
		t.Errorf("bootstrapped document should omit updatedAt: %s", raw)
	}

	doc := DefaultDocument()
	doc.UpdatedAt = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	raw, err = json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(raw), `"updatedAt":"2025-01-15T10:00:00Z"`) {
		t.Errorf("saved document should carry updatedAt: %s", raw)
	}
}

// TestSameAs 测试文档比较
func TestSameAs(t *testing.T) {
	at := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	a := DefaultDocument()
	a.UpdatedAt = at

	tests := []struct {
		name   string
		mutate func(*Document)
		want   bool
	}{
		{"identical", func(*Document) {}, true},
		{"different time", func(d *Document) { d.UpdatedAt = at.Add(time.Second) }, false},
		{"different content", func(d *Document) { d.TargetRevenue++ }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := a.Clone()
			tt.mutate(b)
			if got := a.SameAs(b); got != tt.want {
				t.Errorf("SameAs = %v, want %v", got, tt.want)
			}
		})
	}

	var none *Document
	if none.SameAs(a) || !none.SameAs(nil) {
		t.Error("nil comparison mismatch")
	}
}
