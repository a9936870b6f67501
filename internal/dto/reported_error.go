// Package dto holds the notice shapes exchanged with Honeybadger. The same
// types describe a submitted notice and one read back through the Read API.
package dto

import (
	"fmt"

	json "github.com/json-iterator/go"
)

// ReportedError is a single notice as reported to, or loaded from, Honeybadger.
type ReportedError struct {
	Notifier *Notifier             `json:"notifier,omitempty"`
	Error    *ErrorDetails         `json:"error,omitempty"`
	Request  *Request              `json:"request,omitempty"`
	Server   *ServerDetails        `json:"server,omitempty"`
	Details  map[string]Properties `json:"details,omitempty"`
}

// Notifier identifies the client library that produced a notice.
type Notifier struct {
	Name     string `json:"name,omitempty"`
	URL      string `json:"url,omitempty"`
	Version  string `json:"version,omitempty"`
	Language string `json:"language,omitempty"`
}

// ErrorDetails describes the error itself.
type ErrorDetails struct {
	Class       string          `json:"class,omitempty"`
	Message     string          `json:"message,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Backtrace   []BacktraceLine `json:"backtrace,omitempty"`
	Causes      []Cause         `json:"causes,omitempty"`
}

// BacktraceLine is one stack frame.
type BacktraceLine struct {
	Number  LineNumber `json:"number,omitempty"`
	File    string     `json:"file,omitempty"`
	Method  string     `json:"method,omitempty"`
	Context string     `json:"context,omitempty"`
}

// LineNumber is a backtrace line number. Notifiers send it either as a JSON
// string or as a JSON number; both decode to the same text.
type LineNumber string

// UnmarshalJSON accepts a string, a number or null.
func (n *LineNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = LineNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("backtrace line number: %w", err)
	}
	*n = LineNumber(num.String())
	return nil
}

// Cause is a nested error that led to the reported one.
type Cause struct {
	Class     string          `json:"class,omitempty"`
	Message   string          `json:"message,omitempty"`
	Backtrace []BacktraceLine `json:"backtrace,omitempty"`
}

// Properties is a free-form string map such as a session or parameter set.
type Properties map[string]interface{}

// Request captures the web request that was being served when the error happened.
type Request struct {
	URL       string     `json:"url,omitempty"`
	Component string     `json:"component,omitempty"`
	Action    string     `json:"action,omitempty"`
	Context   Properties `json:"context,omitempty"`
	Params    Properties `json:"params,omitempty"`
	Session   Properties `json:"session,omitempty"`
	// CGIData holds the web server environment variables. The Read API returns
	// these under the top-level web_environment key instead.
	CGIData Properties `json:"cgi_data,omitempty"`
}
