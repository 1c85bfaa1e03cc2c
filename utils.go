package tmigo

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	actionMessageRegex = regexp.MustCompile(`^\x01ACTION ([^\x01]+)\x01$`)
	justinfanRegex     = regexp.MustCompile(`^(justinfan)(\d+$)`)
	tokenRegex         = regexp.MustCompile(`(?i)^oauth:`)
)

var ircEscapedChars = map[rune]string{
	's':  " ",
	'n':  "",
	':':  ";",
	'r':  "",
	'\\': "\\",
}

var ircUnescapedChars = map[rune]string{
	' ':  "s",
	'\n': "n",
	';':  ":",
	'\r': "r",
	'\\': "\\",
}

var htmlUnescapes = [...][2]string{
	{`\&amp\;`, "&"},
	{`\&lt\;`, "<"},
	{`\&gt\;`, ">"},
	{`\&quot\;`, `"`},
	{`\&#039\;`, "'"},
}

// justinfanRand backs Justinfan. A package-level source avoids reseeding
// math/rand on every call, matching the original's process-wide RNG.
var justinfanRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// Justinfan returns a random justinfan<N> username for anonymous connections,
// with N uniform over [1000, 89999] inclusive.
func Justinfan() string {
	return fmt.Sprintf("justinfan%d", justinfanRand.Intn(89000)+1000)
}

// IsJustinfan checks if a username is a justinfan username
func IsJustinfan(username string) bool {
	return justinfanRegex.MatchString(username)
}

// Channel returns a valid channel name (with # prefix)
func Channel(str string) string {
	channel := strings.ToLower(strings.TrimSpace(str))
	if channel == "" {
		return "#"
	}
	if strings.HasPrefix(channel, "#") {
		return channel
	}
	return "#" + channel
}

// ChannelAll returns valid channel names for all values
func ChannelAll(strs []string) []string {
	if len(strs) == 0 {
		return []string{}
	}

	res := make([]string, len(strs))

	for idx, str := range strs {
		res[idx] = Channel(str)
	}

	return res
}

// Username returns a valid username (without # prefix)
func Username(str string) string {
	username := strings.ToLower(strings.TrimSpace(str))
	if username == "" {
		return ""
	}
	if strings.HasPrefix(username, "#") {
		return username[1:]
	}
	return username
}

// Token returns a valid token (removes oauth: prefix if present)
func Token(str string) string {
	if str == "" {
		return ""
	}
	return tokenRegex.ReplaceAllString(str, "")
}

// Password returns a valid password with oauth: prefix
func Password(str string) string {
	token := Token(str)
	if token == "" {
		return ""
	}
	return "oauth:" + token
}

// IsActionMessage checks if a message is an action message (/me)
func IsActionMessage(msg string) (bool, string) {
	matches := actionMessageRegex.FindStringSubmatch(msg)
	if len(matches) > 1 {
		return true, matches[1]
	}
	return false, ""
}

// UnescapeIRC unescapes IRC message tag values
func UnescapeIRC(msg string) string {
	if msg == "" || !strings.Contains(msg, "\\") {
		return msg
	}

	result := strings.Builder{}
	escaped := false

	for _, ch := range msg {
		if escaped {
			if replacement, ok := ircEscapedChars[ch]; ok {
				result.WriteString(replacement)
			} else {
				result.WriteRune(ch)
			}
			escaped = false
		} else if ch == '\\' {
			escaped = true
		} else {
			result.WriteRune(ch)
		}
	}

	return result.String()
}

// EscapeIRC escapes values for IRC message tags
func EscapeIRC(msg string) string {
	if msg == "" {
		return msg
	}

	result := strings.Builder{}
	for _, ch := range msg {
		if replacement, ok := ircUnescapedChars[ch]; ok {
			result.WriteRune('\\')
			result.WriteString(replacement)
		} else {
			result.WriteRune(ch)
		}
	}

	return result.String()
}

// PaginateMessage splits a message into chunks no longer than limit,
// preferring to break on the last space within the limit so words are not
// split across chunks. The returned chunks concatenate back to the original
// message (modulo the single space consumed at each split point).
func PaginateMessage(msg string, limit int) []string {
	if limit <= 0 {
		limit = 500
	}

	chunks := make([]string, 0, 1)
	for len(msg) > limit {
		splitAt := strings.LastIndex(msg[:limit], " ")
		if splitAt == -1 {
			splitAt = limit
		}

		chunks = append(chunks, msg[:splitAt])
		msg = strings.TrimLeft(msg[splitAt:], " ")
	}

	chunks = append(chunks, msg)
	return chunks
}

// UnescapeHTML reverses the handful of HTML entity escapes Twitch uses in
// emote-related payloads.
func UnescapeHTML(msg string) string {
	for _, pair := range htmlUnescapes {
		msg = strings.ReplaceAll(msg, pair[0], pair[1])
	}
	return msg
}

// IsInteger checks if a string can be parsed as an integer
func IsInteger(input string) bool {
	_, err := strconv.Atoi(input)
	return err == nil
}

// ParseInt safely parses a string to int, returns 0 on error
func ParseInt(input string) int {
	val, err := strconv.Atoi(input)
	if err != nil {
		return 0
	}
	return val
}
