package logger

import "strings"

// RedactEmail masks a recipient address before it reaches a log line.
// The first two characters of the local part survive ("jo***@example.com");
// local parts of two characters or fewer are masked entirely. Anything that
// does not look like an address is masked wholesale.
func RedactEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 || strings.Count(email, "@") != 1 {
		return "***@***"
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 2 {
		return "***@" + domain
	}
	return local[:2] + "***@" + domain
}
