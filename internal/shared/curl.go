// Utilities for pulling the backend session cookie out of a browser "Copy as cURL" command.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRegex = regexp.MustCompile(`(?:-H|--header)\s+'([^']+)'|(?:-H|--header)\s+"([^"]+)"`)
	curlCookieRegex = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
)

// CurlSession holds what setsmith needs from a captured browser request.
type CurlSession struct {
	Cookie  string
	Origin  string
	Headers map[string]string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts the session.
func ParseCurlFile(path string) (*CurlSession, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts its cookie and headers.
//
// A -b/--cookie flag takes precedence over a Cookie header.
func ParseCurlCommand(cmd string) (*CurlSession, error) {
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	session := &CurlSession{Headers: map[string]string{}}
	var headerCookie string

	for _, match := range curlHeaderRegex.FindAllStringSubmatch(cmd, -1) {
		line := firstGroup(match)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "cookie":
			headerCookie = value
		case "origin":
			session.Origin = value
			session.Headers[key] = value
		default:
			session.Headers[key] = value
		}
	}

	if m := curlCookieRegex.FindStringSubmatch(cmd); m != nil {
		session.Cookie = firstGroup(m)
	} else {
		session.Cookie = headerCookie
	}

	if session.Cookie == "" {
		return nil, fmt.Errorf("%w: no cookie found in curl command", ErrMissingCredentials)
	}

	return session, nil
}

// Cookies parses the captured cookie string into [http.Cookie] values.
func (c *CurlSession) Cookies() ([]*http.Cookie, error) {
	return ParseCookies(c.Cookie)
}

// ParseCookies parses a Cookie header value ("a=1; b=2").
func ParseCookies(raw string) ([]*http.Cookie, error) {
	if IsBlank(raw) {
		return nil, nil
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cookie: %v", ErrInvalidArgument, err)
	}
	return cookies, nil
}

func firstGroup(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}
