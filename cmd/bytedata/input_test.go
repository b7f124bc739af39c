package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeHexInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{
			name:  "lowercase hex",
			input: "0e0300000061620a",
			want:  []byte{0x0e, 0x03, 0x00, 0x00, 0x00, 0x61, 0x62, 0x0a},
		},
		{
			name:  "uppercase hex",
			input: "0E0300000061620A",
			want:  []byte{0x0e, 0x03, 0x00, 0x00, 0x00, 0x61, 0x62, 0x0a},
		},
		{
			name:  "hex with spaces",
			input: "0e 03 00 00 00 61 62 0a",
			want:  []byte{0x0e, 0x03, 0x00, 0x00, 0x00, 0x61, 0x62, 0x0a},
		},
		{
			name:  "hex with mixed whitespace",
			input: "0e\t03 0000\n00 61\t62 0a\n",
			want:  []byte{0x0e, 0x03, 0x00, 0x00, 0x00, 0x61, 0x62, 0x0a},
		},
		{
			name:  "go byte literal",
			input: "0x0e, 0x03, 0x00, 0x00, 0x00,\n0x61, 0x62, 0x0A,",
			want:  []byte{0x0e, 0x03, 0x00, 0x00, 0x00, 0x61, 0x62, 0x0a},
		},
		{
			name:  "uppercase prefix",
			input: "0X0E 0X03",
			want:  []byte{0x0e, 0x03},
		},
		{
			name:    "odd digit count",
			input:   "0e 0",
			wantErr: true,
		},
		{
			name:    "commas only",
			input:   ", ,\n",
			wantErr: true,
		},
		{
			name:    "invalid hex",
			input:   "not hex data",
			wantErr: true,
		},
		{
			name:    "empty after whitespace",
			input:   "   \n\t  ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeHexInput([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %x, want %x", got, tt.want)
			}
		})
	}
}

func TestReadInputFile(t *testing.T) {
	content := []byte{0x00, 0x01, 0x07}
	path := filepath.Join(t.TempDir(), "value.bin")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	got, err := readInput([]string{path}, strings.NewReader("ignored"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("got %x, want %x", got, content)
	}
}

func TestReadInputStdin(t *testing.T) {
	got, err := readInput(nil, strings.NewReader("01 07"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x07}) {
		t.Errorf("got %x, want 0107", got)
	}
}

func TestReadInputMissingFile(t *testing.T) {
	if _, err := readInput([]string{filepath.Join(t.TempDir(), "missing")}, nil, false); err == nil {
		t.Fatal("expected error")
	}
}
