package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryCounters(t *testing.T) {
	s := &Summary{Total: 4}
	s.skip()
	s.upload(1000)
	s.upload(500)
	s.fail("site/broken.js")

	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 2, s.Uploaded)
	assert.Equal(t, int64(1500), s.UploadedBytes)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, []string{"site/broken.js"}, s.Failed)
}

func TestSummaryPrint(t *testing.T) {
	s := &Summary{Total: 3, Uploaded: 1, Skipped: 1, Errors: 1, UploadedBytes: 2048, Failed: []string{"site/a.js"}}

	var buf bytes.Buffer
	s.Print(&buf)

	want := "\n=> Resume\n" +
		"==> Total   : 3\n" +
		"==> Uploaded: 1 (2.0 kB)\n" +
		"==> Skipped : 1\n" +
		"==> Error   : 1\n" +
		"====> site/a.js\n"
	assert.Equal(t, want, buf.String())
}

func TestReporterLevels(t *testing.T) {
	tests := []struct {
		name        string
		verbose     int
		wantNotice  bool
		wantDetail  bool
		wantSummary bool
	}{
		{"silent", verboseNone, true, false, false},
		{"summary", verboseSummary, true, false, true},
		{"full", verboseFull, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := reporter{w: &buf, verbose: tt.verbose}

			r.progress("file exist, skip %s", "site/a.js")
			r.notice("file uploaded %s", "site/b.js")
			r.summary(&Summary{Total: 2})

			out := buf.String()
			assert.Equal(t, tt.wantDetail, bytes.Contains(buf.Bytes(), []byte("=> file exist, skip site/a.js\n")), out)
			assert.Equal(t, tt.wantNotice, bytes.Contains(buf.Bytes(), []byte("=> file uploaded site/b.js\n")), out)
			assert.Equal(t, tt.wantSummary, bytes.Contains(buf.Bytes(), []byte("=> Resume")), out)
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, verboseNone).Warn("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, verboseSummary).Warn("low disk")
	assert.Contains(t, buf.String(), "low disk")

	buf.Reset()
	newLogger(&buf, verboseFull).Info("listing loaded", "keys", 3)
	assert.Contains(t, buf.String(), "listing loaded")
	assert.Contains(t, buf.String(), "keys=3")
	assert.NotContains(t, buf.String(), "\x1b[", "non-terminal output must not be colored")
}
