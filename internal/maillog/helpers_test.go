package maillog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.Local)

func at(hour, min, sec int) time.Time {
	return time.Date(2026, time.October, 19, hour, min, sec, 0, time.Local)
}

func stamp(t time.Time) string {
	return t.Format(syslogLayout)
}

func noiseLine(t time.Time) string {
	return stamp(t) + " mail postfix/smtpd[2211]: connect from unknown[192.0.2.10]"
}

func sentLineAt(t time.Time) string {
	return stamp(t) + " mail postfix/smtp[3120]: 4F1A2B3C4D: to=<bob@example.org>, relay=mx.example.org[198.51.100.7]:25, delay=0.8, delays=0.1/0/0.3/0.4, dsn=2.0.0, status=sent (250 2.0.0 Ok: queued as 9ZZ)"
}

func receivedLineAt(t time.Time) string {
	return stamp(t) + " mail postfix/pipe[3301]: 5A6B7C8D9E: to=<alice@example.com>, relay=dovecot, delay=0.12, delays=0.05/0.01/0/0.06, dsn=2.0.0, status=sent (delivered via dovecot service)"
}

func rejectedLineAt(t time.Time) string {
	return stamp(t) + " mail postfix/smtpd[2211]: NOQUEUE: reject: RCPT from unknown[203.0.113.5]: 554 5.7.1 <carol@example.com>: Recipient address rejected: Access denied; from=<spam@example.net> to=<carol@example.com> proto=ESMTP helo=<bad>"
}

func greylistedLineAt(t time.Time) string {
	return stamp(t) + " mail postfix/smtpd[2211]: NOQUEUE: reject: RCPT from unknown[203.0.113.9]: 450 4.2.0 <dave@example.com>: Recipient address rejected: Greylisted, see http://postgrey.schweikert.ch/help/example.com.html; from=<x@example.net> to=<dave@example.com> proto=ESMTP helo=<mx>"
}

func writeLog(t *testing.T, path string, lines []string) {
	t.Helper()
	data := strings.Join(lines, "\n")
	if len(lines) > 0 {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func writeGzipLog(t *testing.T, path string, lines []string) {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	for _, l := range lines {
		if _, err := zw.Write([]byte(l + "\n")); err != nil {
			t.Fatalf("failed to compress: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func writeZstdLog(t *testing.T, path string, lines []string) {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("failed to create zstd encoder: %v", err)
	}
	defer enc.Close()
	data := enc.EncodeAll([]byte(strings.Join(lines, "\n")+"\n"), nil)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func newTestParser() *TimestampParser {
	return NewTimestampParser(time.Local, func() time.Time { return testNow })
}

func newTestScanner(t *testing.T) *Scanner {
	return NewScanner(newTestParser(), nil, false, 0, ".1", zaptest.NewLogger(t))
}

func tempLog(t *testing.T) string {
	return filepath.Join(t.TempDir(), "mail.log")
}
