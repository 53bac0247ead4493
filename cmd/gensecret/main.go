// Command gensecret prints a random hex string suitable for SECRET_KEY
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

const defaultKeyBytesLen = 32

func main() {
	length := pflag.IntP("bytes", "n", defaultKeyBytesLen, "Secret key length in bytes")
	pflag.Parse()

	if *length <= 0 {
		fmt.Fprintln(os.Stderr, "key length must be positive")
		os.Exit(1)
	}

	b := make([]byte, *length)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
