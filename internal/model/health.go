// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Health is the backend status as shown in the header badge.
// Any status string the backend reports is displayed verbatim.
type Health string

const (
	HealthChecking    Health = "checking..."
	HealthHealthy     Health = "healthy"
	HealthUnreachable Health = "unreachable"
)

// IsHealthy returns true only for the backend's "healthy" status.
func (h Health) IsHealthy() bool {
	return h == HealthHealthy
}

// String returns the badge text.
func (h Health) String() string {
	if h == "" {
		return string(HealthChecking)
	}
	return string(h)
}
