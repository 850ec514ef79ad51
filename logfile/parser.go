package logfile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/apd/v3"
	"github.com/storagestats/gcs-stats/constants"
	"github.com/storagestats/gcs-stats/models/service"
)

// Storage logs are CSV with a header on line 0 and the data row on
// line 1. Field 1 of the data row is storage_byte_hours.
const (
	dataRowIndex         = 1
	byteHoursFieldIndex  = 1
	decimalPrecision     = 34
	dateSeparatorInName  = "_"
	dateSeparatorInCivil = "-"
)

var hoursPerDay = apd.New(constants.HoursPerDay, 0)

// Parse builds a BillingRecord from the raw content of the storage log
// described by c. Param objectID becomes the record's Filename, and
// now becomes its IngestTime. All failures are ErrMalformedLog.
func Parse(objectID string, c Classification, content []byte, now time.Time) (*service.BillingRecord, error) {
	if !c.IsComplete() {
		return nil, service.NewError(service.ErrMalformedLog, objectID,
			"file name does not identify a logged bucket and date", nil)
	}
	date, err := ParseDate(c.DateString)
	if err != nil {
		return nil, service.NewError(service.ErrMalformedLog, objectID, "invalid log date", err)
	}
	byteHours, err := parseByteHours(string(content))
	if err != nil {
		return nil, service.NewError(service.ErrMalformedLog, objectID, "invalid log content", err)
	}
	bytes, err := BytesFromByteHours(byteHours)
	if err != nil {
		return nil, service.NewError(service.ErrMalformedLog, objectID, "cannot convert byte-hours", err)
	}
	return &service.BillingRecord{
		ProjectID:        c.ProjectID,
		Bucket:           c.LoggedBucket,
		StorageByteHours: byteHours,
		Bytes:            bytes,
		Date:             date,
		IngestTime:       now.UTC(),
		Filename:         objectID,
	}, nil
}

// ParseDate converts the YYYY_MM_DD date in a log name to a calendar date.
func ParseDate(dateString string) (civil.Date, error) {
	return civil.ParseDate(strings.ReplaceAll(dateString, dateSeparatorInName, dateSeparatorInCivil))
}

func parseByteHours(content string) (int64, error) {
	lines := strings.Split(content, "\n")
	if len(lines) <= dataRowIndex {
		return 0, fmt.Errorf("expected a header and a data row, found %d line(s)", len(lines))
	}
	row := strings.ReplaceAll(lines[dataRowIndex], `"`, "")
	fields := strings.Split(row, ",")
	if len(fields) <= byteHoursFieldIndex {
		return 0, fmt.Errorf("data row has %d field(s), storage_byte_hours is missing", len(fields))
	}
	value := strings.TrimSpace(fields[byteHoursFieldIndex])
	byteHours, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("storage_byte_hours %q is not an integer", value)
	}
	if byteHours < 0 {
		return 0, fmt.Errorf("storage_byte_hours %d is negative", byteHours)
	}
	return byteHours, nil
}

// BytesFromByteHours returns the average number of bytes stored over a
// day, byteHours / 24, rounded half up.
func BytesFromByteHours(byteHours int64) (int64, error) {
	ctx := apd.BaseContext.WithPrecision(decimalPrecision)
	ctx.Rounding = apd.RoundHalfUp
	var quotient, rounded apd.Decimal
	if _, err := ctx.Quo(&quotient, apd.New(byteHours, 0), hoursPerDay); err != nil {
		return 0, err
	}
	if _, err := ctx.RoundToIntegralValue(&rounded, &quotient); err != nil {
		return 0, err
	}
	return rounded.Int64()
}
