package maillog

import (
	"regexp"

	"github.com/mikey/postfix-stats/internal/core"
)

// The patterns match postfix log output verbatim and must not be relaxed.
const (
	sentLine       = ` postfix/smtp.* to.*, status=sent`
	receivedLine   = ` postfix/pipe.* to.*, relay=dovecot, .*, status=sent`
	rejectLine     = ` postfix/smtpd.* NOQUEUE: reject:.* rejected:`
	greylistMarker = `Greylisted`
)

type rule struct {
	kind core.Kind
	re   *regexp.Regexp
}

var (
	// rules are tried in order; the first match wins
	rules = []rule{
		{kind: core.KindSent, re: regexp.MustCompile(sentLine)},
		{kind: core.KindReceived, re: regexp.MustCompile(receivedLine)},
		{kind: core.KindRejected, re: regexp.MustCompile(rejectLine)},
	}
	reGreylisted = regexp.MustCompile(greylistMarker)
)

// Classify matches a log line against the classification rules
func Classify(line []byte) core.Classification {
	for _, r := range rules {
		if !r.re.Match(line) {
			continue
		}
		c := core.Classification{Kind: r.kind}
		if r.kind == core.KindRejected {
			c.Greylisted = reGreylisted.Match(line)
		}
		return c
	}
	return core.Classification{Kind: core.KindUnclassified}
}
