/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package util

import (
	"time"
)

// ParseTimestamp parses an RFC 3339 timestamp. A missing zone designator is read as UTC,
// which is how issuers commonly write "2018-03-15T00:00:00".
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}

	if t, zerr := time.Parse(time.RFC3339Nano, s+"Z"); zerr == nil {
		return t, nil
	}

	return time.Time{}, err
}

// FormatTimestamp renders t in UTC with second precision, e.g. 2018-03-15T00:00:00Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
