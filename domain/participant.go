// Package domain contains core concepts of the relay.
// This file defines how participants are named.
package domain

import "strconv"

const displayNamePrefix = "User #"

// DisplayName derives the public name of the n-th session ever opened.
func DisplayName(n int64) string {
	return displayNamePrefix + strconv.FormatInt(n, 10)
}
