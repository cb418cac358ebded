package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"", logrus.InfoLevel},
		{"chatty", logrus.InfoLevel},
	}

	for _, tc := range tests {
		if got := NewLogger(tc.level).GetLevel(); got != tc.want {
			t.Errorf("NewLogger(%q): expected level %v, got %v", tc.level, tc.want, got)
		}
	}
}
