package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/klabast/wb-services/civic-registry/internal/app"
)

// HashPassword handles the hash-password subcommand
func HashPassword(args []string) {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	overwrite := fs.Bool("overwrite", false, "Overwrite existing auth file without asking")
	insecureUnmask := fs.Bool("insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: civic-registry hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Creates an auth.secret file with hashed password (Argon2id).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s    Path to auth file (default: ./%s)\n", app.AuthFileEnv, app.DefaultAuthFile)
	}
	fs.Parse(args)

	stdin := bufio.NewReader(os.Stdin)

	fmt.Print("Enter username: ")
	username, err := readLine(stdin)
	if err != nil {
		fail("Error reading username: %v", err)
	}
	if username == "" {
		fail("Username cannot be empty")
	}

	var password, passwordConfirm string
	if *insecureUnmask {
		fmt.Fprintf(os.Stderr, "⚠️  WARNING: Password will be visible on screen!\n")
		fmt.Print("Enter password:   ")
		if password, err = readLine(stdin); err != nil {
			fail("Error reading password: %v", err)
		}
		fmt.Print("Confirm password: ")
		if passwordConfirm, err = readLine(stdin); err != nil {
			fail("Error reading password confirmation: %v", err)
		}
	} else {
		password = readPasswordWithMask("Enter password:   ")
		passwordConfirm = readPasswordWithMask("Confirm password: ")
	}

	if password == "" {
		fail("Password cannot be empty")
	}
	if password != passwordConfirm {
		fail("Passwords do not match")
	}

	confirm := func(path string) bool {
		fmt.Printf("Auth file already exists: %s\n", path)
		fmt.Print("Overwrite? (y/N): ")
		answer, _ := readLine(stdin)
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes"
	}

	path, err := app.CreateAuthFile(username, password, *overwrite, confirm)
	if errors.Is(err, app.ErrAborted) {
		fail("Aborted, auth file left unchanged")
	}
	if err != nil {
		fail("Error: %v", err)
	}

	fmt.Printf("✅ Auth file created: %s (mode: 0400 read-only)\n", path)
	fmt.Printf("   Username: %s\n", username)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPasswordWithMask reads password input and displays asterisks
func readPasswordWithMask(prompt string) string {
	fmt.Print(prompt)
	fd := int(syscall.Stdin)

	// Not a terminal or no raw mode: fall back to hidden input
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		password, _ := term.ReadPassword(fd)
		fmt.Println()
		return string(password)
	}
	defer term.Restore(fd, oldState)

	var password []byte
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			break
		}

		switch c := buf[0]; c {
		case '\n', '\r':
			fmt.Print("\r\n")
			return string(password)
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Print("\b \b")
			}
		case 3: // Ctrl+C
			term.Restore(fd, oldState)
			fmt.Println()
			os.Exit(1)
		default:
			if c >= 32 && c <= 126 {
				password = append(password, c)
				fmt.Print("*")
			}
		}
	}

	fmt.Print("\r\n")
	return string(password)
}
