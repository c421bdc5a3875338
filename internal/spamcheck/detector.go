package spamcheck

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/teamspace/guardrail/internal/util"
)

// Scoring thresholds. These are fixed product constants, not tunables.
const (
	// SpamThreshold is the accumulated score at which text is labelled spam.
	SpamThreshold = 50
	// AutoFlagThreshold is the score above which bulk scans may auto-flag.
	AutoFlagThreshold = 70
	// BlockThreshold is the score above which signups are hard-blocked.
	BlockThreshold = 80
)

// Result is the outcome of scoring a single piece of text.
type Result struct {
	IsSpam  bool     `json:"is_spam"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// scoredPattern pairs a spam indicator with its reason label. Patterns are
// iterated in order; each match contributes a fixed 25 points.
type scoredPattern struct {
	re     *regexp.Regexp
	reason string
}

// Whitelist for legitimate organizations that might trigger false positives.
// Evaluated against the lower-cased, trimmed text.
var whitelistPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(microsoft|google|apple|amazon|facebook|meta|twitter|linkedin|github|stackoverflow)$`),
	regexp.MustCompile(`^.*(inc|llc|ltd|corp|corporation|company|co|group|enterprises|solutions|services|consulting|tech|technologies|agency|studio|lab|labs|systems|software|development|designs?)$`),
	// "free" is fine when it's clearly about software/business
	regexp.MustCompile(`free.*(software|source|lance|consulting|solutions|services|tech|development|range|market|trade)`),
	regexp.MustCompile(`(open|free).*(software|source)`),
	regexp.MustCompile(`^[a-z]+\s+(software|solutions|services|consulting|tech|technologies|systems|development|designs?|agency|studio|labs?|group|company)$`),
	regexp.MustCompile(`^(the\s+)?[a-z]+\s+(company|group|studio|agency|lab|labs)$`),
}

// Obvious placeholder names. These run BEFORE the whitelist so that
// "test solutions" cannot hide behind the business-suffix whitelist entry.
var genericNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(test|example|demo|fake|spam|abuse|temp)\s*(company|org|corp|inc|llc)?$`),
	regexp.MustCompile(`(?i)(test|demo|fake|spam|abuse|temp)\s*(123|abc|xyz|\d+)`),
}

var spamPatterns = []scoredPattern{
	// URLs and links
	{regexp.MustCompile(`(?i)https?://`), "Contains suspicious URLs or links"},
	{regexp.MustCompile(`(?i)www\.`), "Contains suspicious URLs or links"},
	{regexp.MustCompile(`(?i)\b\w+\.(com|net|org|io|co|me|ly|tk|ml|ga|cf|cc|to|us|biz|info|xyz)\b`), "Contains suspicious URLs or links"},

	// Common spam phrases
	{regexp.MustCompile(`(?i)click\s*(here|link|now)`), "Contains call-to-click language"},
	{regexp.MustCompile(`(?i)urgent|emergency|immediate|limited.time`), "Contains urgent/emergency language"},
	{regexp.MustCompile(`(?i)win|won|winner|prize|reward|congratulations`), "Contains prize/winning language"},
	{regexp.MustCompile(`(?i)free|bonus|gift|offer|special.offer`), "Contains free/bonus offer language"},
	{regexp.MustCompile(`(?i)check\s*(out|this|pay)|verify|claim`), "Contains verification/claim phrasing"},
	{regexp.MustCompile(`(?i)blockchain|crypto|bitcoin|compensation|investment`), "Contains cryptocurrency references"},
	{regexp.MustCompile(`(?i)cash|money|dollars?|\$\d+|earn.*money`), "Contains monetary references"},

	// Excessive special characters
	{regexp.MustCompile(`[!]{2,}`), "Excessive use of exclamation marks"},
	{regexp.MustCompile(`[🔔⬅👆💰$💎🎁🎉⚡]`), "Contains suspicious emojis or symbols"},
	{regexp.MustCompile(`\b[A-Z]{4,}\b`), "Contains excessive capital letters"},

	// Suspicious formatting
	{regexp.MustCompile(`\s{3,}`), "Contains excessive whitespace"},
	{regexp.MustCompile(`[.]{3,}`), "Contains excessive ellipsis"},

	// Additional suspicious patterns
	{regexp.MustCompile(`(?i)act.now|don.t.miss|guaranteed|limited.spots`), "Contains pressure-sale phrasing"},
	{regexp.MustCompile(`(?i)download|install|app|software`), "Contains install/download phrasing"},
	{regexp.MustCompile(`(?i)survey|questionnaire|feedback`), "Contains survey phrasing"},
	{regexp.MustCompile(`(?i)\d+%.*off|save.*\$|discount`), "Contains discount phrasing"},
}

var suspiciousWords = []string{
	"urgent", "emergency", "click", "link", "win", "winner", "prize",
	"free", "bonus", "cash", "money", "blockchain", "crypto", "compensation",
	"check", "pay", "reward", "offer", "gift", "congratulations", "claim",
	"verify", "earn", "investment", "guaranteed", "limited", "exclusive",
	"download", "install", "survey", "feedback", "discount", "save",
}

// Contextual exceptions keep common business uses of a suspicious word from
// counting against the text.
var wordExceptions = map[string]*regexp.Regexp{
	"free":  regexp.MustCompile(`(?i)free.*(software|source|lance|consulting|solutions|services|tech|development|range|market|trade)`),
	"check": regexp.MustCompile(`(?i)check.*(list|mark|point|out|up|in|book|ing|ed)`),
	"save":  regexp.MustCompile(`(?i)save.*(data|file|document|time|energy|environment|earth)`),
}

var highRiskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)gclnk\.com`),
	regexp.MustCompile(`(?i)bit\.ly/scam`),
	regexp.MustCompile(`(?i)tinyurl\.com/scam`),
	regexp.MustCompile(`(?i)\$\d{3,}.*crypto`),
	regexp.MustCompile(`(?i)blockchain.*compensation.*urgent`),
	regexp.MustCompile(`(?i)win.*\$\d+.*urgent`),
	regexp.MustCompile(`(?i)click.*here.*\$\d+`),
}

var (
	digitRunRe = regexp.MustCompile(`\d{4,}`)
	latinRe    = regexp.MustCompile(`[a-zA-Z]`)
	cyrillicRe = regexp.MustCompile(`[\x{0400}-\x{04FF}]`)
	greekRe    = regexp.MustCompile(`[\x{0370}-\x{03FF}]`)
)

// Detector scores free text for spam signals. Alerts go to the injected Sink
// so chat-ops integrations can be swapped without touching scoring logic.
type Detector struct {
	sink Sink
}

// New returns a Detector. A nil sink falls back to structured logging.
func New(sink Sink) *Detector {
	if sink == nil {
		sink = NewLogSink()
	}
	return &Detector{sink: sink}
}

// Detect scores text and returns the verdict with deduplicated reasons.
// It never fails: empty input yields a zero result.
func (d *Detector) Detect(text string) Result {
	if text == "" {
		return Result{IsSpam: false, Score: 0, Reasons: []string{}}
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	var reasons []string
	score := 0

	// Stage 1: hard overrides. Generic/test names score before the whitelist
	// gets a chance to bypass them.
	for _, re := range genericNamePatterns {
		if re.MatchString(strings.TrimSpace(text)) {
			score += 30
			reasons = append(reasons, "Contains generic/test name patterns")
			break
		}
	}

	// Stage 2: whitelist bypass, only when no generic pattern fired.
	// Whitelisting is absolute and skips all further checks.
	if score == 0 {
		for _, re := range whitelistPatterns {
			if re.MatchString(normalized) {
				return Result{IsSpam: false, Score: 0, Reasons: []string{}}
			}
		}
	}

	// Stage 3: scored accumulation.
	for _, p := range spamPatterns {
		if p.re.MatchString(text) {
			score += 25
			reasons = append(reasons, p.reason)
		}
	}

	var hits []string
	for _, word := range suspiciousWords {
		if !strings.Contains(normalized, word) {
			continue
		}
		if exc, ok := wordExceptions[word]; ok && exc.MatchString(text) {
			continue
		}
		hits = append(hits, word)
	}
	if len(hits) >= 1 {
		score += len(hits) * 20
		plural := ""
		if len(hits) > 1 {
			plural = "s"
		}
		reasons = append(reasons, fmt.Sprintf("Contains %d suspicious word%s: %s", len(hits), plural, strings.Join(hits, ", ")))
	}

	length := utf8.RuneCountInString(text)
	if length < 2 {
		score += 20
		reasons = append(reasons, "Text too short")
	} else if length > 100 {
		score += 25
		reasons = append(reasons, "Text unusually long")
	}

	if hasRepeatedRun(text, 5) {
		score += 20
		reasons = append(reasons, "Contains repeated characters")
	}

	// Homograph defense: Latin mixed with Cyrillic or Greek code points.
	hasLatin := latinRe.MatchString(text)
	if (hasLatin && cyrillicRe.MatchString(text)) || (hasLatin && greekRe.MatchString(text)) {
		score += 40
		reasons = append(reasons, "Contains mixed character scripts")
	}

	if digitRunRe.MatchString(text) {
		score += 25
		reasons = append(reasons, "Contains excessive numbers")
	}

	isSpam := score >= SpamThreshold
	deduped := dedupe(reasons)

	if isSpam || score > 30 {
		d.emit(func() {
			d.sink.Warn("spam detected", map[string]interface{}{
				"text":       util.SanitizeForLog(truncate(text, 100)),
				"score":      score,
				"reasons":    deduped,
				"is_spam":    isSpam,
				"alert_type": "spam_detection",
			})
		})
	}

	return Result{IsSpam: isSpam, Score: score, Reasons: deduped}
}

// IsHighRisk checks a narrow set of known-scam patterns, independent of the
// accumulated score.
func (d *Detector) IsHighRisk(text string) bool {
	var matched []string
	for _, re := range highRiskPatterns {
		if re.MatchString(text) {
			matched = append(matched, re.String())
		}
	}
	if len(matched) == 0 {
		return false
	}

	d.emit(func() {
		d.sink.Error("high risk content detected", map[string]interface{}{
			"text":             util.SanitizeForLog(truncate(text, 100)),
			"matched_patterns": matched,
			"alert_type":       "high_risk_content",
		})
	})
	return true
}

// ShouldBlock reports whether text is bad enough to reject outright.
func (d *Detector) ShouldBlock(text string) bool {
	result := d.Detect(text)
	return result.Score > BlockThreshold || d.IsHighRisk(text)
}

// ShouldFlag reports whether text carries any suspicion at all.
func (d *Detector) ShouldFlag(text string) bool {
	result := d.Detect(text)
	return result.Score > 0 || len(result.Reasons) > 0
}

var (
	sanitizeURLRe   = regexp.MustCompile(`(?i)https?://[^\s]+`)
	sanitizeWWWRe   = regexp.MustCompile(`(?i)www\.[^\s]+`)
	sanitizeEmojiRe = regexp.MustCompile(`[🔔⬅👆💰$]{2,}`)
	sanitizeBangRe  = regexp.MustCompile(`[!]{3,}`)
	sanitizeSpaceRe = regexp.MustCompile(`\s{3,}`)
)

// Sanitize strips URLs, emoji runs and noisy punctuation for display/storage.
// Scoring must always see the raw text, never the sanitized form.
// Sanitizing already-sanitized text is a no-op.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	s := strings.TrimSpace(text)
	s = sanitizeURLRe.ReplaceAllString(s, "[URL_REMOVED]")
	s = sanitizeWWWRe.ReplaceAllString(s, "[URL_REMOVED]")
	s = sanitizeEmojiRe.ReplaceAllString(s, "")
	s = sanitizeBangRe.ReplaceAllString(s, "!")
	s = sanitizeSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(truncate(s, 100))
}

// emit runs a sink call and swallows anything it panics with. Alerting is
// best-effort and must never take the scoring path down.
func (d *Detector) emit(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

// hasRepeatedRun reports whether text contains n or more consecutive
// identical runes. RE2 has no backreferences, so this is a plain scan.
func hasRepeatedRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

func dedupe(reasons []string) []string {
	out := make([]string, 0, len(reasons))
	seen := make(map[string]struct{}, len(reasons))
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
