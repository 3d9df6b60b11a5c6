package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Credentials collected from the terminal.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// PromptCredentials asks for a username and password, plus an email when
// withEmail is set.
func PromptCredentials(in *bufio.Scanner, out io.Writer, withEmail bool) Credentials {
	var c Credentials
	c.Username = ask(in, out, "Username: ")
	if withEmail {
		c.Email = ask(in, out, "Email: ")
	}
	c.Password = ask(in, out, "Password: ")
	return c
}

func ask(in *bufio.Scanner, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

// PrintDiagnosis renders a prediction result.
func PrintDiagnosis(out io.Writer, d *Diagnosis) {
	fmt.Fprintf(out, "Disease:    %s\nConfidence: %s\n\n%s\n", d.Disease, d.Confidence, d.Recommendation)
}

// PrintRecent renders the recent diagnoses list.
func PrintRecent(out io.Writer, recs []RecentDiagnosis) {
	if len(recs) == 0 {
		fmt.Fprintln(out, "No diagnoses yet")
		return
	}
	for _, r := range recs {
		fmt.Fprintf(out, "%-5d %-45s %6.2f%%  %s\n", r.ID, r.Disease, r.Confidence, r.Timestamp)
	}
}
