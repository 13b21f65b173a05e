package report

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	notePolicy     *bluemonday.Policy
	notePolicyOnce sync.Once
)

// getNotePolicy 备注只保留纯文本
func getNotePolicy() *bluemonday.Policy {
	notePolicyOnce.Do(func() {
		notePolicy = bluemonday.StrictPolicy()
	})
	return notePolicy
}

// SanitizeNote 清除备注中的 HTML
func SanitizeNote(note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return ""
	}
	return strings.TrimSpace(getNotePolicy().Sanitize(note))
}
