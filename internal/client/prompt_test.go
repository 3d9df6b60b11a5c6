package client

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptCredentials(t *testing.T) {
	in := bufio.NewScanner(strings.NewReader(" alice \nalice@example.com\nhunter2\n"))
	var out bytes.Buffer

	c := PromptCredentials(in, &out, true)

	assert.Equal(t, Credentials{Username: "alice", Email: "alice@example.com", Password: "hunter2"}, c)
	assert.Equal(t, "Username: Email: Password: ", out.String())
}

func TestPromptCredentials_EOF(t *testing.T) {
	in := bufio.NewScanner(strings.NewReader("bob\n"))
	c := PromptCredentials(in, &bytes.Buffer{}, false)
	assert.Equal(t, "bob", c.Username)
	assert.Empty(t, c.Password)
}

func TestPrintRecent(t *testing.T) {
	var out bytes.Buffer
	PrintRecent(&out, nil)
	assert.Equal(t, "No diagnoses yet\n", out.String())

	out.Reset()
	PrintRecent(&out, []RecentDiagnosis{{ID: 7, Disease: "Potato healthy", Confidence: 88.5, Timestamp: "now"}})
	assert.Contains(t, out.String(), "Potato healthy")
	assert.Contains(t, out.String(), "88.50%")
}

func TestPrintDiagnosis(t *testing.T) {
	var out bytes.Buffer
	PrintDiagnosis(&out, &Diagnosis{Disease: "Tomato healthy", Confidence: "99.00%", Recommendation: "Keep watering."})
	assert.Equal(t, "Disease:    Tomato healthy\nConfidence: 99.00%\n\nKeep watering.\n", out.String())
}
