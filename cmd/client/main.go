package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/AdityaD28/GreenGuardian/internal/client"
)

var (
	version   string
	buildDate string
)

const helpText = "Available commands: help, register, login, predict <image>, recent, history, logout, exit"

// repl runs the interactive shell loop against the diagnosis server.
func repl(c *client.Client, in *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprint(out, "greenguardian> ")
		if !in.Scan() {
			break
		}
		args := strings.Fields(strings.TrimSpace(in.Text()))
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Fprintln(out, helpText)
		case "register":
			cr := client.PromptCredentials(in, out, true)
			if err := c.Register(cr.Username, cr.Email, cr.Password); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			fmt.Fprintln(out, "✅ Registration successful. Please log in.")
		case "login":
			cr := client.PromptCredentials(in, out, false)
			if err := c.Login(cr.Username, cr.Password); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			fmt.Fprintf(out, "Logged in as %s\n", cr.Username)
		case "predict":
			if len(args) < 2 {
				fmt.Fprintln(out, "Usage: predict <image>")
				continue
			}
			d, err := c.Predict(args[1])
			if err != nil {
				printErr(out, err)
				continue
			}
			client.PrintDiagnosis(out, d)
		case "recent":
			recs, err := c.Recent()
			if err != nil {
				printErr(out, err)
				continue
			}
			client.PrintRecent(out, recs)
		case "history":
			recs, err := c.History()
			if err != nil {
				printErr(out, err)
				continue
			}
			if len(recs) == 0 {
				fmt.Fprintln(out, "No diagnoses yet")
			}
			for _, r := range recs {
				fmt.Fprintf(out, "%-5d %s  %-45s %6.2f%%  %s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Disease, r.Confidence, r.ImageFilename)
			}
		case "logout":
			if err := c.Logout(); err != nil {
				printErr(out, err)
				continue
			}
			fmt.Fprintln(out, "Logged out")
		case "exit":
			fmt.Fprintln(out, "Bye")
			return
		default:
			fmt.Fprintln(out, "Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func printErr(out io.Writer, err error) {
	if client.IsUnauthorized(err) {
		fmt.Fprintln(out, "Please log in first")
		return
	}
	fmt.Fprintln(out, err)
}

// main parses command-line flags and starts the shell.
func main() {
	var (
		baseURL string
		showVer bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:5002", "server base URL")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("GreenGuardian Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	c, err := client.New(baseURL, nil)
	if err != nil {
		log.Fatal(err)
	}
	repl(c, bufio.NewScanner(os.Stdin), os.Stdout)
}
