// Command gensecret prints a random hex key suitable for SECRET_KEY
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// HS256 key should be at least as long as the hash output
const minSecretKeyBytesLen = 32

func main() {
	if err := run(os.Stdout, rand.Reader, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, random io.Reader, args []string) error {
	fs := pflag.NewFlagSet("gensecret", pflag.ContinueOnError)
	length := fs.IntP("bytes", "n", minSecretKeyBytesLen, "Key length in bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *length < minSecretKeyBytesLen {
		return fmt.Errorf("key must be at least %d bytes", minSecretKeyBytesLen)
	}

	b := make([]byte, *length)
	if _, err := io.ReadFull(random, b); err != nil {
		return err
	}

	_, err := fmt.Fprintln(out, hex.EncodeToString(b))
	return err
}
