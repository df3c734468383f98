package smtp

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	msg := string(buildMessage("camp@college.edu", "ravi@college.edu", "Your code", "line1\nline2", at))

	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	assert.True(t, found)
	assert.Contains(t, headers, "From: camp@college.edu\r\n")
	assert.Contains(t, headers, "To: ravi@college.edu\r\n")
	assert.Contains(t, headers, "Subject: Your code\r\n")
	assert.Contains(t, headers, "Date: Fri, 01 Mar 2024 09:30:00 +0000")
	assert.Contains(t, headers, "Content-Type: text/plain; charset=UTF-8")
	assert.Equal(t, "line1\r\nline2", body)
}

func TestBuildMessage_EncodesNonASCIISubject(t *testing.T) {
	msg := string(buildMessage("a@b", "c@d", "Rakta Dāna", "", time.Now()))
	assert.Contains(t, msg, "Subject: =?utf-8?q?")
}
