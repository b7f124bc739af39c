package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// readInput reads the file named by args, or stdin when args is empty.
// When hexMode is true the input is hex with optional whitespace between
// digit pairs.
func readInput(args []string, stdin io.Reader, hexMode bool) ([]byte, error) {
	var data []byte
	var err error
	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", args[0], err)
		}
	} else {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}

	if hexMode {
		return decodeHexInput(data)
	}
	return data, nil
}

// decodeHexInput decodes hex dumps of a stream. Digit pairs may be run
// together ("0e0100"), separated by whitespace ("0e 01 00"), or written as
// a Go byte literal body ("0x0e, 0x01, 0x00") as copied from a test.
func decodeHexInput(data []byte) ([]byte, error) {
	fields := strings.FieldsFunc(string(data), func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})

	var cleaned strings.Builder
	for _, field := range fields {
		if rest, ok := strings.CutPrefix(field, "0x"); ok {
			field = rest
		} else if rest, ok := strings.CutPrefix(field, "0X"); ok {
			field = rest
		}
		cleaned.WriteString(field)
	}

	if cleaned.Len() == 0 {
		return nil, errors.New("no hex digits in input")
	}
	decoded, err := hex.DecodeString(cleaned.String())
	if err != nil {
		return nil, fmt.Errorf("decode hex stream: %w", err)
	}
	return decoded, nil
}
