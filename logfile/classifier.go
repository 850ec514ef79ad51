// Package logfile classifies the files a cloud storage logging pipeline
// deposits in the logs bucket and parses daily storage logs into
// billing records. Everything here is pure: no I/O, no clocks.
package logfile

import (
	"regexp"

	"github.com/storagestats/gcs-stats/constants"
)

type Kind int

const (
	Unrecognized Kind = iota
	StorageLog
	UsageLog
)

func (k Kind) String() string {
	switch k {
	case StorageLog:
		return constants.ClassStorageLog
	case UsageLog:
		return constants.ClassUsageLog
	default:
		return constants.ClassUnrecognized
	}
}

// Classification is the result of Classify. ProjectID, LoggedBucket and
// DateString are set only for StorageLog. ProjectID is empty for logs
// written under the default name, since a project name is never empty
// when present.
type Classification struct {
	Kind         Kind
	ProjectID    string
	LoggedBucket string
	// DateString is the YYYY_MM_DD portion of the name. Calendar
	// correctness is checked by the parser, not here.
	DateString string
}

// Name parts. Storage logs use lowercase names, usage logs may be
// mixed-case. All log names end with a timestamp, a lowercase
// alphanumeric token and _v0.
const (
	projectChars = `[a-z0-9\-]+`
	bucketChars  = `[a-z0-9\-_.]+`
	usageChars   = `[a-zA-Z0-9\-_.]+`
	dateGroup    = `([0-9]{4}_[0-9]{2}_[0-9]{2})`
	timeAndToken = `_[0-9]{2}_[0-9]{2}_[0-9]{2}_[a-z0-9]+_v0`
)

// matcher is one naming rule. Rules are tried in order and the first
// match wins.
type matcher struct {
	pattern *regexp.Regexp
	extract func(groups []string) Classification
}

// PROJECT_<project>_BUCKET_<bucket>_storage_<date>_<time>_<token>_v0
var prefixedStorageLog = matcher{
	pattern: regexp.MustCompile(`^PROJECT_(` + projectChars + `)_BUCKET_(` + bucketChars + `)_storage_` + dateGroup + timeAndToken + `$`),
	extract: func(groups []string) Classification {
		return Classification{
			Kind:         StorageLog,
			ProjectID:    groups[1],
			LoggedBucket: groups[2],
			DateString:   groups[3],
		}
	},
}

// <bucket>_storage_<date>_<time>_<token>_v0
var defaultStorageLog = matcher{
	pattern: regexp.MustCompile(`^(` + bucketChars + `)_storage_` + dateGroup + timeAndToken + `$`),
	extract: func(groups []string) Classification {
		return Classification{
			Kind:         StorageLog,
			LoggedBucket: groups[1],
			DateString:   groups[2],
		}
	},
}

// <name>_usage_<date>_<time>_<token>_v0
var usageLog = matcher{
	pattern: regexp.MustCompile(`^(` + usageChars + `)_usage_` + dateGroup + timeAndToken + `$`),
	extract: func(groups []string) Classification {
		return Classification{Kind: UsageLog}
	},
}

var matchers = []matcher{
	prefixedStorageLog,
	defaultStorageLog,
	usageLog,
}

// Classify maps a file name to a Classification. It never fails: names
// that match no rule are Unrecognized.
func Classify(objectID string) Classification {
	for _, m := range matchers {
		if groups := m.pattern.FindStringSubmatch(objectID); groups != nil {
			return m.extract(groups)
		}
	}
	return Classification{Kind: Unrecognized}
}

// IsComplete returns true if the classification carries everything the
// parser needs to build a record.
func (c Classification) IsComplete() bool {
	return c.Kind == StorageLog && c.LoggedBucket != "" && c.DateString != ""
}
