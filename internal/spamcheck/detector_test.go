package spamcheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	warns  []string
	errors []string
	fields []map[string]interface{}
}

func (s *captureSink) Warn(event string, fields map[string]interface{}) {
	s.warns = append(s.warns, event)
	s.fields = append(s.fields, fields)
}

func (s *captureSink) Error(event string, fields map[string]interface{}) {
	s.errors = append(s.errors, event)
	s.fields = append(s.fields, fields)
}

type panicSink struct{}

func (panicSink) Warn(string, map[string]interface{})  { panic("sink down") }
func (panicSink) Error(string, map[string]interface{}) { panic("sink down") }

func TestDetect_EmptyInput(t *testing.T) {
	d := New(nil)

	result := d.Detect("")
	assert.False(t, result.IsSpam)
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Reasons)
}

func TestDetect_WhitelistedNamesScoreZero(t *testing.T) {
	d := New(nil)

	for _, name := range []string{
		"Microsoft",
		"GitHub",
		"Acme Solutions",
		"Northwind Consulting",
		"The Orchard Company",
		"Freelance Development",
	} {
		result := d.Detect(name)
		assert.Equal(t, 0, result.Score, "expected zero score for %q", name)
		assert.False(t, result.IsSpam)
		assert.Empty(t, result.Reasons)
	}
}

func TestDetect_GenericNameBeatsWhitelist(t *testing.T) {
	d := New(nil)

	// "test company" would match the business-suffix whitelist entry if the
	// generic-name stage didn't run first.
	result := d.Detect("test company")
	assert.GreaterOrEqual(t, result.Score, 30)
	assert.Contains(t, result.Reasons, "Contains generic/test name patterns")
}

func TestDetect_GenericNameWithDigits(t *testing.T) {
	d := New(nil)

	result := d.Detect("test123")
	assert.GreaterOrEqual(t, result.Score, 30)
	assert.Contains(t, result.Reasons, "Contains generic/test name patterns")
}

func TestDetect_ObviousSpamIsSpam(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	result := d.Detect("WIN FREE CASH!!! http://bit.ly/xyz")
	assert.True(t, result.IsSpam)
	assert.GreaterOrEqual(t, result.Score, SpamThreshold)
	assert.Contains(t, result.Reasons, "Contains suspicious URLs or links")
	assert.Contains(t, result.Reasons, "Contains prize/winning language")
	assert.Contains(t, result.Reasons, "Contains monetary references")
	assert.Contains(t, result.Reasons, "Excessive use of exclamation marks")

	require.Len(t, sink.warns, 1)
	assert.Equal(t, "spam detected", sink.warns[0])
	assert.Equal(t, "spam_detection", sink.fields[0]["alert_type"])
}

func TestDetect_ExcessiveNumbers(t *testing.T) {
	d := New(nil)

	result := d.Detect("myorg 12345")
	assert.Contains(t, result.Reasons, "Contains excessive numbers")
	assert.GreaterOrEqual(t, result.Score, 25)
}

func TestDetect_CapsAloneStaysBelowThreshold(t *testing.T) {
	d := New(nil)

	result := d.Detect("AAAA")
	assert.False(t, result.IsSpam)
	assert.Less(t, result.Score, SpamThreshold)
}

func TestDetect_RepeatedCharacters(t *testing.T) {
	d := New(nil)

	result := d.Detect("aaaaaxq")
	assert.Contains(t, result.Reasons, "Contains repeated characters")

	// Four in a row is not enough.
	result = d.Detect("aaaa lounge")
	assert.NotContains(t, result.Reasons, "Contains repeated characters")
}

func TestDetect_MixedScripts(t *testing.T) {
	d := New(nil)

	// Latin text with a Cyrillic "о" lookalike.
	result := d.Detect("Micrоsоft")
	assert.Contains(t, result.Reasons, "Contains mixed character scripts")
	assert.GreaterOrEqual(t, result.Score, 40)
}

func TestDetect_SuspiciousWordContextExceptions(t *testing.T) {
	d := New(nil)

	// "free" followed by a software context is not suspicious as a word,
	// and the whole phrase is whitelisted outright.
	result := d.Detect("free software initiative")
	assert.Equal(t, 0, result.Score)

	// "checkout" neutralizes "check" via the context exception.
	result = d.Detect("checkout experts")
	for _, r := range result.Reasons {
		assert.NotContains(t, r, "suspicious word")
	}
}

func TestDetect_SuspiciousWordCountInReason(t *testing.T) {
	d := New(nil)

	result := d.Detect("crypto bonus hub")
	var wordReason string
	for _, r := range result.Reasons {
		if strings.Contains(r, "suspicious word") {
			wordReason = r
		}
	}
	require.NotEmpty(t, wordReason)
	assert.Contains(t, wordReason, "2 suspicious words")
	assert.Contains(t, wordReason, "crypto")
	assert.Contains(t, wordReason, "bonus")
}

func TestDetect_LengthChecks(t *testing.T) {
	d := New(nil)

	result := d.Detect("x")
	assert.Contains(t, result.Reasons, "Text too short")

	long := strings.Repeat("ab ", 50)
	result = d.Detect(long)
	assert.Contains(t, result.Reasons, "Text unusually long")
}

func TestDetect_ReasonsDeduplicated(t *testing.T) {
	d := New(nil)

	// Both the https and www patterns fire with the same reason label.
	result := d.Detect("visit http://example.com and www.example.com")
	count := 0
	for _, r := range result.Reasons {
		if r == "Contains suspicious URLs or links" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestIsHighRisk(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	assert.True(t, d.IsHighRisk("Claim your prize, click here for $500!!!"))
	assert.True(t, d.IsHighRisk("blockchain compensation urgent payout"))
	assert.True(t, d.IsHighRisk("visit gclnk.com today"))
	assert.False(t, d.IsHighRisk("Northwind Consulting"))

	require.Len(t, sink.errors, 3)
	assert.Equal(t, "high_risk_content", sink.fields[0]["alert_type"])
}

func TestShouldBlock(t *testing.T) {
	d := New(nil)

	assert.True(t, d.ShouldBlock("WIN FREE CASH NOW!!! click here for $500 crypto bonus http://bit.ly/xyz"))
	assert.False(t, d.ShouldBlock("Northwind Consulting"))
}

func TestShouldFlag(t *testing.T) {
	d := New(nil)

	assert.True(t, d.ShouldFlag("test123"))
	assert.False(t, d.ShouldFlag("Northwind Consulting"))
}

func TestDetect_SinkPanicIsSwallowed(t *testing.T) {
	d := New(panicSink{})

	assert.NotPanics(t, func() {
		result := d.Detect("WIN FREE CASH!!! http://bit.ly/xyz")
		assert.True(t, result.IsSpam)
	})
	assert.NotPanics(t, func() {
		assert.True(t, d.IsHighRisk("win $100 urgent"))
	})
}

func TestSanitize(t *testing.T) {
	out := Sanitize("  Check this   out!!! http://spam.example.com/offer  ")
	assert.NotContains(t, out, "http://")
	assert.Contains(t, out, "[URL_REMOVED]")
	assert.NotContains(t, out, "!!!")
	assert.NotContains(t, out, "   ")
	assert.LessOrEqual(t, len([]rune(out)), 100)
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"WIN FREE CASH!!! http://bit.ly/xyz",
		"  spaced   out   text  ",
		strings.Repeat("long text ", 30),
		"plain organization name",
		"www.example.com trailing",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		assert.Equal(t, once, twice, "sanitize not stable for %q", in)
	}
}

func TestSanitize_Empty(t *testing.T) {
	assert.Equal(t, "", Sanitize(""))
}
