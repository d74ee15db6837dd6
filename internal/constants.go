/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import "time"

const (
	UserAgent          = "donuts/0.3.0 (+https://github.com/mikeb26/donuts)"
	DefaultCacheBucket = "mikeb26-donuts-prod-webcache"
	// roster pages change rarely between pairing runs
	RosterCacheMaxAge = 12 * time.Hour
)
