package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Summary holds the counters of one run. It is printed, never persisted.
type Summary struct {
	Total         int
	Uploaded      int
	Skipped       int
	Errors        int
	UploadedBytes int64

	// Failed lists the relative paths whose upload failed.
	Failed []string
}

func (s *Summary) skip() {
	s.Skipped++
}

func (s *Summary) upload(n int64) {
	s.Uploaded++
	s.UploadedBytes += n
}

func (s *Summary) fail(relPath string) {
	s.Errors++
	s.Failed = append(s.Failed, relPath)
}

// Print writes the end-of-run resume.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\n=> Resume\n")
	fmt.Fprintf(w, "==> Total   : %d\n", s.Total)
	fmt.Fprintf(w, "==> Uploaded: %d (%s)\n", s.Uploaded, humanize.Bytes(uint64(s.UploadedBytes)))
	fmt.Fprintf(w, "==> Skipped : %d\n", s.Skipped)
	fmt.Fprintf(w, "==> Error   : %d\n", s.Errors)
	for _, p := range s.Failed {
		fmt.Fprintf(w, "====> %s\n", p)
	}
}
